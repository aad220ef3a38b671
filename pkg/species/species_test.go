package species

import "testing"

func TestHitboxForCanonicalSpecies(t *testing.T) {
	tests := []struct {
		sp   Species
		want Hitbox
	}{
		{Swordfish, Hitbox{BodyW: 1.3, BodyH: 0.6, MouthRadius: 0.25, MouthOffset: 0.6}},
		{Blobfish, Hitbox{BodyW: 1.3, BodyH: 1.3, MouthRadius: 0.35, MouthOffset: 0.6}},
		{Pufferfish, Hitbox{BodyW: 1.2, BodyH: 1.2, MouthRadius: 0.40, MouthOffset: 0.6}},
		{Shark, Hitbox{BodyW: 1.8, BodyH: 0.9, MouthRadius: 0.35, MouthOffset: 0.9}},
		{Sacabambaspis, Hitbox{BodyW: 2.0, BodyH: 1.0, MouthRadius: 0.40, MouthOffset: 0.9}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sp), func(t *testing.T) {
			if got := HitboxFor(tt.sp); got != tt.want {
				t.Errorf("HitboxFor(%s) = %+v, want %+v", tt.sp, got, tt.want)
			}
		})
	}
}

func TestHitboxForUnknownSpeciesFallsBackToDefault(t *testing.T) {
	want := Hitbox{BodyW: 2.5, BodyH: 1.0, MouthRadius: 0.30, MouthOffset: 1.2}
	if got := HitboxFor(Species("mystery-fish")); got != want {
		t.Errorf("HitboxFor(unknown) = %+v, want default %+v", got, want)
	}
}

func TestValid(t *testing.T) {
	if !Valid(Shark) {
		t.Errorf("expected shark to be a valid species")
	}
	if Valid(Species("mystery-fish")) {
		t.Errorf("expected an unknown tag to be invalid")
	}
}
