// Package species holds the per-species hitbox ratio table. Species are a
// plain string tag dispatched through a small data table, not a type
// hierarchy; the powerup effects are applied in package ocean.
package species

// Species is a tag, not a type: new species are new rows in the table
// below, not new implementations of an interface.
type Species string

const (
	Swordfish     Species = "swordfish"
	Blobfish      Species = "blobfish"
	Pufferfish    Species = "pufferfish"
	Shark         Species = "shark"
	Sacabambaspis Species = "sacabambaspis"
)

// Hitbox holds four unit-less ratios, scaled by a fish's
// size-capped-at-MaxSize to produce the mouth circle radius/offset and the
// body OBB half-extents.
type Hitbox struct {
	BodyW       float64
	BodyH       float64
	MouthRadius float64
	MouthOffset float64
}

var hitboxes = map[Species]Hitbox{
	Swordfish:     {BodyW: 1.3, BodyH: 0.6, MouthRadius: 0.25, MouthOffset: 0.6},
	Blobfish:      {BodyW: 1.3, BodyH: 1.3, MouthRadius: 0.35, MouthOffset: 0.6},
	Pufferfish:    {BodyW: 1.2, BodyH: 1.2, MouthRadius: 0.40, MouthOffset: 0.6},
	Shark:         {BodyW: 1.8, BodyH: 0.9, MouthRadius: 0.35, MouthOffset: 0.9},
	Sacabambaspis: {BodyW: 2.0, BodyH: 1.0, MouthRadius: 0.40, MouthOffset: 0.9},
}

var defaultHitbox = Hitbox{BodyW: 2.5, BodyH: 1.0, MouthRadius: 0.30, MouthOffset: 1.2}

// HitboxFor looks up the canonical ratios for a species, falling back to
// a default row for unknown tags.
func HitboxFor(s Species) Hitbox {
	if hb, ok := hitboxes[s]; ok {
		return hb
	}
	return defaultHitbox
}

// Valid reports whether s is one of the five canonical species tags.
func Valid(s Species) bool {
	_, ok := hitboxes[s]
	return ok
}
