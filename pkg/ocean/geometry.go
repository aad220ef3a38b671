package ocean

import (
	"math"

	"fishserver/pkg/geo"
	"fishserver/pkg/species"
)

// MouthCircle computes a player's mouth hitbox, applying the swordfish
// powerup's ×2 radius / ×1.5 offset scaling while that powerup is active.
func MouthCircle(p *Player) geo.Circle {
	hb := species.HitboxFor(p.Species)
	size := p.CappedSize()
	radiusRatio := hb.MouthRadius
	offsetRatio := hb.MouthOffset
	if p.PowerupActive && p.Species == species.Swordfish {
		radiusRatio *= 2
		offsetRatio *= 1.5
	}
	dir := geo.Vec2{X: math.Cos(p.Rotation), Y: math.Sin(p.Rotation)}
	center := p.Pos.Add(dir.Mul(size * offsetRatio))
	return geo.Circle{Center: center, Radius: size * radiusRatio}
}

// BodyOBB computes a player's body hitbox from its species' ratio table.
func BodyOBB(p *Player) geo.OBB {
	hb := species.HitboxFor(p.Species)
	size := p.CappedSize()
	return geo.OBB{
		Center:      p.Pos,
		HalfExtents: geo.Vec2{X: size * hb.BodyW / 2, Y: size * hb.BodyH / 2},
		Rotation:    p.Rotation,
	}
}

// bodyBoundingRadius is a conservative circumscribing radius used only to
// size quadtree query candidates; exact overlap is always re-tested with
// the real OBB/circle predicates.
func bodyBoundingRadius(p *Player) float64 {
	hb := species.HitboxFor(p.Species)
	size := p.CappedSize()
	hw := size * hb.BodyW / 2
	hh := size * hb.BodyH / 2
	return math.Hypot(hw, hh)
}

// CanEat reports whether eater can eat victim under the size threshold:
// eater.size >= victim.size * SizeMultiplier.
func CanEat(eaterSize, victimSize, sizeMultiplier float64) bool {
	return eaterSize >= victimSize*sizeMultiplier
}
