// Package ocean implements the persistent arena: the fixed-rate simulator,
// its entity model, and the per-client interest-managed broadcast. One
// goroutine owns a world and mutates it only under the world lock; every
// entity is a plain struct with a fixed, known shape rather than a generic
// property bag.
package ocean

import (
	"sync"
	"time"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/species"
	"fishserver/pkg/wire"
)

// PlayerConn is the callback surface the simulator uses to reach a
// connection without ever touching its internals.
type PlayerConn interface {
	Enqueue(f wire.Frame)
	EnqueueMeta(f wire.Frame)
}

// Player is a fish controlled by one client.
type Player struct {
	ID      string
	Name    string
	Species species.Species

	Pos      geo.Vec2
	Vel      geo.Vec2
	Rotation float64
	Size     float64
	Score    int

	Alive     bool
	RespawnIn time.Duration
	KilledBy  string
	LastSeq   uint32

	InputDir   geo.Vec2
	InputBoost bool

	PowerupActive    bool
	PowerupRemaining time.Duration
	PowerupBaseSize  float64 // pufferfish's pre-powerup size, restored on expiry

	Conn PlayerConn

	seenMu sync.Mutex
	seen   map[string]bool // peer ids already PlayerInfo-announced to this connection
}

func NewPlayer(id, name string, sp species.Species, pos geo.Vec2, conn PlayerConn) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Species: sp,
		Pos:     pos,
		Size:    constants.InitialSize,
		Alive:   true,
		Conn:    conn,
		seen:    make(map[string]bool),
	}
}

// MarkSeen records that peerID's PlayerInfo has been announced to this
// player's connection, and reports whether it was already known. A peer
// stays known only while it remains in view: PruneSeen forgets it once it
// leaves ViewDistance, so it is announced again each time it comes back.
func (p *Player) MarkSeen(peerID string) (alreadyKnown bool) {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	if p.seen[peerID] {
		return true
	}
	p.seen[peerID] = true
	return false
}

// ForgetSeen drops a peer from the announced set, e.g. once it leaves view,
// so a returning peer is re-announced with fresh PlayerInfo.
func (p *Player) ForgetSeen(peerID string) {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	delete(p.seen, peerID)
}

// PruneSeen forgets every announced peer not present in inView, so a peer
// that drops out of ViewDistance and later returns gets a fresh
// PlayerInfoFrame instead of staying silently assumed-known.
func (p *Player) PruneSeen(inView map[string]struct{}) {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	for id := range p.seen {
		if _, ok := inView[id]; !ok {
			delete(p.seen, id)
		}
	}
}

// CappedSize is size clamped at MaxSize, the basis for all hitbox scaling.
func (p *Player) CappedSize() float64 {
	if p.Size > constants.MaxSize {
		return constants.MaxSize
	}
	return p.Size
}

// Food is a consumable world entity; ids are monotonic and never reused.
type Food struct {
	ID     uint64
	Pos    geo.Vec2
	Radius float64
}

// Powerup has the same shape as Food but grants a species effect on pickup.
type Powerup struct {
	ID     uint64
	Pos    geo.Vec2
	Radius float64
}

// InputMsg is one client input sample, queued non-blockingly.
type InputMsg struct {
	PlayerID string
	Dir      geo.Vec2
	Boost    bool
	Seq      uint32
}
