package geo

import "testing"

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{X: 1, Y: 2}
	b := Vec2{X: 3, Y: -1}

	if got := a.Add(b); got != (Vec2{X: 4, Y: 1}) {
		t.Errorf("Add() = %+v", got)
	}
	if got := a.Sub(b); got != (Vec2{X: -2, Y: 3}) {
		t.Errorf("Sub() = %+v", got)
	}
	if got := a.Mul(2); got != (Vec2{X: 2, Y: 4}) {
		t.Errorf("Mul() = %+v", got)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
}

func TestVec2NormalizeZeroVector(t *testing.T) {
	v := Vec2{}
	got := v.Normalize()
	if got != (Vec2{}) {
		t.Errorf("expected Normalize() of the zero vector to stay zero, got %+v", got)
	}
}

func TestVec2NormalizeUnitLength(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	got := v.Normalize()
	if l := got.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("expected unit length, got %v", l)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Errorf("Lerp(0,10,0.5) = %v, want 5", got)
	}
	if got := Lerp(0, 10, 0); got != 0 {
		t.Errorf("Lerp(0,10,0) = %v, want 0", got)
	}
	if got := Lerp(0, 10, 1); got != 10 {
		t.Errorf("Lerp(0,10,1) = %v, want 10", got)
	}
}

func TestDistance(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 3, Y: 4}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}
