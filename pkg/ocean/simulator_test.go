package ocean

import (
	"testing"
	"time"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/species"
	"fishserver/pkg/wire"
)

// fakeConn records every frame it's asked to enqueue, standing in for the
// transport-backed PlayerConn the real session wires up.
type fakeConn struct {
	frames     []wire.Frame
	metaFrames []wire.Frame
}

func (c *fakeConn) Enqueue(f wire.Frame)     { c.frames = append(c.frames, f) }
func (c *fakeConn) EnqueueMeta(f wire.Frame) { c.metaFrames = append(c.metaFrames, f) }

func newTestSimulator() *Simulator {
	return &Simulator{World: NewWorld()}
}

func addPlayer(w *World, id string, sp species.Species, pos geo.Vec2, size float64) *Player {
	p := NewPlayer(id, id, sp, pos, &fakeConn{})
	p.Size = size
	p.Rotation = 0
	w.AddPlayer(p)
	return p
}

// S1 — ocean eat chain.
func TestEatChain(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	p1 := addPlayer(w, "p1", species.Swordfish, geo.Vec2{X: 500, Y: 500}, 30)
	p2 := addPlayer(w, "p2", species.Swordfish, geo.Vec2{X: 520, Y: 500}, 25)
	p1.Rotation = 0 // facing +x, mouth points toward p2

	w.mu.Lock()
	w.index = s.rebuildIndex(w)
	s.resolveEating(w)
	w.mu.Unlock()

	if p2.Alive {
		t.Fatalf("expected p2 to be eaten")
	}
	if p2.KilledBy != "p1" {
		t.Errorf("expected killedBy = p1, got %q", p2.KilledBy)
	}
	if p2.RespawnIn != constants.RespawnDelay {
		t.Errorf("expected respawnIn = %v, got %v", constants.RespawnDelay, p2.RespawnIn)
	}
	if p1.Size < 42.5 {
		t.Errorf("expected p1.size >= 42.5, got %v", p1.Size)
	}
	if p1.Score != 100 {
		t.Errorf("expected p1.score = 100, got %v", p1.Score)
	}
}

// S2 — bounce rather than eat: two equal-size sharks push apart instead of
// either dying.
func TestBounceInsteadOfEat(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	a := addPlayer(w, "a", species.Shark, geo.Vec2{X: 500, Y: 500}, 40)
	b := addPlayer(w, "b", species.Shark, geo.Vec2{X: 530, Y: 500}, 40)

	var lastDist float64
	for i := 0; i < 5; i++ {
		w.mu.Lock()
		w.index = s.rebuildIndex(w)
		s.resolveEating(w)
		s.resolveBouncing(w)
		s.stepPhysics(w, constants.TickInterval.Seconds())
		w.mu.Unlock()

		if !a.Alive || !b.Alive {
			t.Fatalf("neither shark should die, tick %d: a.alive=%v b.alive=%v", i, a.Alive, b.Alive)
		}
		lastDist = geo.Distance(a.Pos, b.Pos)
	}
	initialDist := geo.Distance(geo.Vec2{X: 500, Y: 500}, geo.Vec2{X: 530, Y: 500})
	if lastDist <= initialDist {
		t.Errorf("expected bounce to increase separation over ticks: initial=%v final=%v", initialDist, lastDist)
	}
}

// S3 — pufferfish powerup round trip.
func TestPufferfishPowerupRoundTrip(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	p := addPlayer(w, "p", species.Pufferfish, geo.Vec2{X: 500, Y: 500}, 50)
	pu := &Powerup{ID: 1, Pos: p.Pos, Radius: 5}
	w.Powerups[pu.ID] = pu

	w.mu.Lock()
	s.playerCollectsPowerup(w, p, pu)
	w.mu.Unlock()

	if !p.PowerupActive {
		t.Fatalf("expected powerup active")
	}
	if p.PowerupBaseSize != 50 {
		t.Errorf("expected baseSize = 50, got %v", p.PowerupBaseSize)
	}
	if p.Size != 75 {
		t.Errorf("expected size = 75 immediately after pickup, got %v", p.Size)
	}

	// Fast-forward past the powerup duration in one big step, as
	// stepPowerups would across several ticks.
	w.mu.Lock()
	s.stepPowerups(w, constants.PowerupDuration.Seconds()+0.1)
	w.mu.Unlock()

	if p.PowerupActive {
		t.Errorf("expected powerup to have expired")
	}
	if p.Size != 50 {
		t.Errorf("expected size restored to 50, got %v", p.Size)
	}
	if p.PowerupBaseSize != 0 {
		t.Errorf("expected baseSize cleared, got %v", p.PowerupBaseSize)
	}
}

func TestBlobfishInvulnerableWhilePowerupActive(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	eater := addPlayer(w, "eater", species.Swordfish, geo.Vec2{X: 500, Y: 500}, 100)
	// The eater's mouth circle is centred at (560,500) with radius 25, so it
	// overlaps the victim's body; only the powerup keeps the victim alive.
	victim := addPlayer(w, "victim", species.Blobfish, geo.Vec2{X: 555, Y: 500}, 10)
	victim.PowerupActive = true

	w.mu.Lock()
	w.index = s.rebuildIndex(w)
	s.resolveEating(w)
	w.mu.Unlock()

	if !victim.Alive {
		t.Errorf("expected invulnerable blobfish to survive")
	}
	if eater.Score != 0 {
		t.Errorf("expected no score change, got %v", eater.Score)
	}
}

func TestPositionClampedToWorldBounds(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	p := addPlayer(w, "p", species.Swordfish, geo.Vec2{X: 1, Y: 1}, constants.InitialSize)
	p.InputDir = geo.Vec2{X: -1, Y: -1}.Normalize()
	p.Vel = geo.Vec2{X: -1000, Y: -1000}

	for i := 0; i < 100; i++ {
		w.mu.Lock()
		s.stepPhysics(w, constants.TickInterval.Seconds())
		w.mu.Unlock()
	}

	if p.Pos.X < 0 || p.Pos.X > w.Bounds.W || p.Pos.Y < 0 || p.Pos.Y > w.Bounds.H {
		t.Errorf("expected position clamped within bounds, got %+v", p.Pos)
	}
	if p.Vel.X != 0 || p.Vel.Y != 0 {
		t.Errorf("expected velocity zeroed on the clamped axes, got %+v", p.Vel)
	}
}

func TestSizeNeverExceedsMaxAfterEating(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	eater := addPlayer(w, "eater", species.Swordfish, geo.Vec2{X: 500, Y: 500}, constants.MaxSize-1)
	victim := addPlayer(w, "victim", species.Swordfish, geo.Vec2{X: 510, Y: 500}, 50)

	w.mu.Lock()
	s.playerEatsPlayer(eater, victim)
	w.mu.Unlock()

	if eater.Size > constants.MaxSize {
		t.Errorf("expected size capped at %v, got %v", constants.MaxSize, eater.Size)
	}
}

// S6 — interest management: three players in a line, ViewDistance=600.
func TestInterestManagementFiltersByViewDistance(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	connA := &fakeConn{}
	connB := &fakeConn{}
	connC := &fakeConn{}
	a := NewPlayer("a", "a", species.Swordfish, geo.Vec2{X: 0, Y: 0}, connA)
	b := NewPlayer("b", "b", species.Swordfish, geo.Vec2{X: 500, Y: 0}, connB)
	c := NewPlayer("c", "c", species.Swordfish, geo.Vec2{X: 1000, Y: 0}, connC)
	w.AddPlayer(a)
	w.AddPlayer(b)
	w.AddPlayer(c)

	s.broadcastState()

	stateOf := func(conn *fakeConn) wire.StateFrame {
		for _, f := range conn.frames {
			if sf, ok := f.(wire.StateFrame); ok {
				return sf
			}
		}
		t.Fatalf("no state frame found")
		return wire.StateFrame{}
	}

	othersOf := func(sf wire.StateFrame) map[string]bool {
		m := map[string]bool{}
		for _, o := range sf.Others {
			m[o.ID] = true
		}
		return m
	}

	aOthers := othersOf(stateOf(connA))
	if !aOthers["b"] || aOthers["c"] {
		t.Errorf("A should see B but not C, got %+v", aOthers)
	}
	bOthers := othersOf(stateOf(connB))
	if !bOthers["a"] || !bOthers["c"] {
		t.Errorf("B should see both A and C, got %+v", bOthers)
	}
	cOthers := othersOf(stateOf(connC))
	if !cOthers["b"] || cOthers["a"] {
		t.Errorf("C should see B but not A, got %+v", cOthers)
	}

	// First sighting is preceded by a PlayerInfo frame sent on the secondary
	// channel, per the ocean send policy; re-broadcasting doesn't repeat it,
	// and it never lands on the primary channel.
	hasPlayerInfoFor := func(frames []wire.Frame, id string) bool {
		for _, f := range frames {
			if pi, ok := f.(wire.PlayerInfoFrame); ok && pi.ID == id {
				return true
			}
		}
		return false
	}
	if !hasPlayerInfoFor(connA.metaFrames, "b") {
		t.Errorf("expected a one-shot PlayerInfo for B on A's meta connection")
	}
	if hasPlayerInfoFor(connA.frames, "b") {
		t.Errorf("expected PlayerInfo not to be sent on A's primary connection")
	}

	connA.metaFrames = nil
	s.broadcastState()
	if hasPlayerInfoFor(connA.metaFrames, "b") {
		t.Errorf("expected PlayerInfo for B not to repeat on the second broadcast")
	}
}

// TestPlayerInfoReAnnouncedAfterLeavingAndReenteringView confirms that a
// peer who drops out of ViewDistance and later comes back in range gets a
// fresh PlayerInfoFrame instead of staying silently assumed-known forever.
func TestPlayerInfoReAnnouncedAfterLeavingAndReenteringView(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	connA := &fakeConn{}
	connB := &fakeConn{}
	a := NewPlayer("a", "a", species.Swordfish, geo.Vec2{X: 0, Y: 0}, connA)
	b := NewPlayer("b", "b", species.Swordfish, geo.Vec2{X: 500, Y: 0}, connB)
	w.AddPlayer(a)
	w.AddPlayer(b)

	hasPlayerInfoFor := func(frames []wire.Frame, id string) bool {
		for _, f := range frames {
			if pi, ok := f.(wire.PlayerInfoFrame); ok && pi.ID == id {
				return true
			}
		}
		return false
	}

	s.broadcastState()
	if !hasPlayerInfoFor(connA.metaFrames, "b") {
		t.Fatalf("expected initial PlayerInfo for B on A's meta connection")
	}

	// B moves out of view; A should forget it was ever announced.
	connA.metaFrames = nil
	w.mu.Lock()
	b.Pos = geo.Vec2{X: 5000, Y: 0}
	w.mu.Unlock()
	s.broadcastState()
	if hasPlayerInfoFor(connA.metaFrames, "b") {
		t.Errorf("expected no PlayerInfo while B is out of view")
	}

	// B returns to view; A should be re-announced.
	connA.metaFrames = nil
	w.mu.Lock()
	b.Pos = geo.Vec2{X: 500, Y: 0}
	w.mu.Unlock()
	s.broadcastState()
	if !hasPlayerInfoFor(connA.metaFrames, "b") {
		t.Errorf("expected B to be re-announced with a fresh PlayerInfo after re-entering view")
	}
}

func TestRotationFollowsVelocityWithPiOffset(t *testing.T) {
	s := newTestSimulator()
	w := s.World
	p := addPlayer(w, "p", species.Swordfish, geo.Vec2{X: 500, Y: 500}, constants.InitialSize)
	p.InputDir = geo.Vec2{X: 1, Y: 0}

	// Several ticks so velocity lerps up past the |v|>0.1 threshold.
	for i := 0; i < 10; i++ {
		w.mu.Lock()
		s.stepPhysics(w, constants.TickInterval.Seconds())
		w.mu.Unlock()
	}

	// atan2(0, +) is 0; the wire offset adds pi.
	if diff := p.Rotation - (0 + 3.141592653589793); diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected rotation = atan2(vel)+pi, got %v", p.Rotation)
	}
}

func TestRespawnAfterDelay(t *testing.T) {
	s := newTestSimulator()
	w := s.World
	p := addPlayer(w, "p", species.Swordfish, geo.Vec2{X: 500, Y: 500}, 10)
	p.Alive = false
	p.RespawnIn = 100 * time.Millisecond

	w.mu.Lock()
	s.stepRespawns(w, 0.05)
	w.mu.Unlock()
	if p.Alive {
		t.Fatalf("expected still dead before the delay elapses")
	}

	w.mu.Lock()
	s.stepRespawns(w, 0.1)
	w.mu.Unlock()
	if !p.Alive {
		t.Fatalf("expected respawned once the timer elapses")
	}
	if p.Size != constants.InitialSize {
		t.Errorf("expected size reset to InitialSize, got %v", p.Size)
	}
}

func TestSpawnersRespectCaps(t *testing.T) {
	s := newTestSimulator()
	w := s.World

	for i := 0; i < 1000; i++ {
		w.mu.Lock()
		s.spawnFood(w)
		s.spawnPowerups(w)
		w.mu.Unlock()
	}
	if len(w.Food) > constants.MaxFoodCount {
		t.Errorf("expected food count <= %d, got %d", constants.MaxFoodCount, len(w.Food))
	}
	if len(w.Powerups) > constants.MaxPowerupCount {
		t.Errorf("expected powerup count <= %d, got %d", constants.MaxPowerupCount, len(w.Powerups))
	}
}
