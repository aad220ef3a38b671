package ocean

import (
	"math"
	"sync"
	"time"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/quadtree"
	"fishserver/pkg/species"
)

// Simulator owns one World's tick loop plus the independent broadcast,
// leaderboard, and shark-vision clocks: one ticker-driven goroutine per
// concern rather than a single monolithic loop.
type Simulator struct {
	World *World

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewSimulator() *Simulator {
	return &Simulator{
		World:  NewWorld(),
		stopCh: make(chan struct{}),
	}
}

// Run starts the tick loop and the three broadcast clocks as separate
// goroutines. It does not block.
func (s *Simulator) Run() {
	s.wg.Add(4)
	go s.runTickLoop()
	go s.runBroadcastLoop()
	go s.runLeaderboardLoop()
	go s.runSharkVisionLoop()
}

func (s *Simulator) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Simulator) runTickLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

// tick runs one fixed-order simulation step under the world's writer lock
// for its entire duration: inputs, physics, spatial index, eating, bouncing,
// respawns, powerup timers, then spawners.
func (s *Simulator) tick() {
	w := s.World
	w.mu.Lock()
	defer w.mu.Unlock()

	dt := constants.TickInterval.Seconds()

	s.drainInputs(w)
	s.stepPhysics(w, dt)
	w.index = s.rebuildIndex(w)
	s.resolveEating(w)
	s.resolveBouncing(w)
	s.stepRespawns(w, dt)
	s.stepPowerups(w, dt)
	s.spawnFood(w)
	s.spawnPowerups(w)
}

// drainInputs non-blockingly drains the shared input queue, applying each
// sample to the alive player it targets.
func (s *Simulator) drainInputs(w *World) {
	for {
		select {
		case in := <-w.inputQueue:
			p, ok := w.Players[in.PlayerID]
			if !ok || !p.Alive {
				continue
			}
			dir := in.Dir
			if dir.Length() > 0 {
				dir = dir.Normalize()
			} else {
				dir = geo.Vec2{}
			}
			p.InputDir = dir
			p.InputBoost = in.Boost
			p.LastSeq = in.Seq
		default:
			return
		}
	}
}

// stepPhysics integrates velocity and position for every alive player,
// clamps to the world bounds, and applies the boost size cost.
func (s *Simulator) stepPhysics(w *World, dt float64) {
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		target := p.InputDir.Mul(constants.PlayerSpeed)
		if p.InputBoost {
			target = target.Mul(constants.BoostMultiplier)
		}
		p.Vel = geo.LerpVec2(p.Vel, target, constants.VelocityLerp)
		p.Pos = p.Pos.Add(p.Vel.Mul(dt))

		if p.Pos.X < w.Bounds.X {
			p.Pos.X = w.Bounds.X
			p.Vel.X = 0
		} else if p.Pos.X > w.Bounds.X+w.Bounds.W {
			p.Pos.X = w.Bounds.X + w.Bounds.W
			p.Vel.X = 0
		}
		if p.Pos.Y < w.Bounds.Y {
			p.Pos.Y = w.Bounds.Y
			p.Vel.Y = 0
		} else if p.Pos.Y > w.Bounds.Y+w.Bounds.H {
			p.Pos.Y = w.Bounds.Y + w.Bounds.H
			p.Vel.Y = 0
		}

		if p.Vel.Length() > 0.1 {
			p.Rotation = math.Atan2(p.Vel.Y, p.Vel.X) + math.Pi
		}

		if p.Vel.Length() > 1.5*constants.PlayerSpeed && p.Size > constants.MinSize {
			p.Size -= constants.BoostCostPerSec * dt
			if p.Size < constants.MinSize {
				p.Size = constants.MinSize
			}
		}
	}
}

// rebuildIndex builds a fresh quadtree over alive players, food, and
// powerups for this tick's collision queries.
func (s *Simulator) rebuildIndex(w *World) *quadtree.Quadtree {
	qt := quadtree.New(w.Bounds)
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		qt.Insert(quadtree.Item{Pos: p.Pos, Radius: bodyBoundingRadius(p), Payload: p})
	}
	for _, f := range w.Food {
		qt.Insert(quadtree.Item{Pos: f.Pos, Radius: f.Radius, Payload: f})
	}
	for _, pu := range w.Powerups {
		qt.Insert(quadtree.Item{Pos: pu.Pos, Radius: pu.Radius, Payload: pu})
	}
	return qt
}

// canActuallyEat accounts for the blobfish invulnerability exception on
// top of the raw size threshold, so both the eating pass and the bounce
// pass agree on whether a kill would have happened.
func canActuallyEat(eater, victim *Player) bool {
	if victim.Species == species.Blobfish && victim.PowerupActive {
		return false
	}
	return CanEat(eater.Size, victim.Size, constants.SizeMultiplier)
}

// resolveEating tests every alive player's mouth and body against nearby
// players, food, and powerups, and resolves whatever overlaps.
func (s *Simulator) resolveEating(w *World) {
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		mouth := MouthCircle(p)
		body := BodyOBB(p)
		candidates := w.index.QueryCircle(p.Pos, constants.ViewDistance)
		for _, it := range candidates {
			switch q := it.Payload.(type) {
			case *Player:
				if q.ID == p.ID || !q.Alive {
					continue
				}
				if geo.CircleOBBOverlap(mouth, BodyOBB(q)) && canActuallyEat(p, q) {
					s.playerEatsPlayer(p, q)
				}
			case *Food:
				if _, stillThere := w.Food[q.ID]; !stillThere {
					continue
				}
				fc := geo.Circle{Center: q.Pos, Radius: q.Radius}
				if geo.CircleCircleOverlap(mouth, fc) || geo.CircleOBBOverlap(fc, body) {
					s.playerEatsFood(w, p, q)
				}
			case *Powerup:
				if _, stillThere := w.Powerups[q.ID]; !stillThere {
					continue
				}
				pc := geo.Circle{Center: q.Pos, Radius: q.Radius}
				if geo.CircleCircleOverlap(mouth, pc) || geo.CircleOBBOverlap(pc, body) {
					s.playerCollectsPowerup(w, p, q)
				}
			}
		}
	}
}

func (s *Simulator) playerEatsPlayer(eater, victim *Player) {
	eater.Size += victim.Size * 0.5
	if eater.Size > constants.MaxSize {
		eater.Size = constants.MaxSize
	}
	eater.Score += victim.Score + 100
	victim.Alive = false
	victim.KilledBy = eater.Name
	victim.RespawnIn = constants.RespawnDelay
	victim.Vel = geo.Vec2{}
}

func (s *Simulator) playerEatsFood(w *World, eater *Player, f *Food) {
	eater.Size += constants.FoodValue
	if eater.Size > constants.MaxSize {
		eater.Size = constants.MaxSize
	}
	eater.Score++
	delete(w.Food, f.ID)
}

func (s *Simulator) playerCollectsPowerup(w *World, p *Player, pu *Powerup) {
	if p.PowerupActive {
		return
	}
	delete(w.Powerups, pu.ID)
	p.PowerupActive = true
	p.PowerupRemaining = constants.PowerupDuration
	if p.Species == species.Pufferfish {
		p.PowerupBaseSize = p.Size
		newSize := p.Size * 1.5
		if newSize > constants.MaxSize {
			newSize = constants.MaxSize
		}
		p.Size = newSize
	}
	// swordfish mouth scaling: geometry.go's MouthCircle.
	// blobfish invulnerability: canActuallyEat above.
	// shark vision feed: runSharkVisionLoop.
	// sacabambaspis: cosmetic, no simulation effect.
}

// resolveBouncing pushes apart overlapping bodies that neither player could
// eat, so same-size fish glance off each other instead of overlapping.
func (s *Simulator) resolveBouncing(w *World) {
	alive := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			collides, sep := geo.OBBOBBOverlap(BodyOBB(a), BodyOBB(b))
			if !collides {
				continue
			}
			if canActuallyEat(a, b) || canActuallyEat(b, a) {
				continue
			}
			impulse := sep.Mul(constants.BounceStrength * 0.016)
			a.Vel = a.Vel.Sub(impulse)
			b.Vel = b.Vel.Add(impulse)
		}
	}
}

// stepRespawns counts down dead players' respawn timers and resets anyone
// whose timer has elapsed to a fresh position at the initial size.
func (s *Simulator) stepRespawns(w *World, dt float64) {
	for _, p := range w.Players {
		if p.Alive {
			continue
		}
		p.RespawnIn -= time.Duration(dt * float64(time.Second))
		if p.RespawnIn <= 0 {
			p.Pos = w.RandomInteriorPosition(constants.RespawnMargin)
			p.Size = constants.InitialSize
			p.Rotation = 0
			p.Alive = true
			p.Vel = geo.Vec2{}
			p.KilledBy = ""
			p.RespawnIn = 0
		}
	}
}

// stepPowerups counts down active powerup timers and reverts their effect
// on expiry.
func (s *Simulator) stepPowerups(w *World, dt float64) {
	for _, p := range w.Players {
		if !p.PowerupActive {
			continue
		}
		p.PowerupRemaining -= time.Duration(dt * float64(time.Second))
		if p.PowerupRemaining <= 0 {
			p.PowerupActive = false
			p.PowerupRemaining = 0
			if p.Species == species.Pufferfish {
				p.Size = p.PowerupBaseSize
				p.PowerupBaseSize = 0
			}
		}
	}
}

// spawnFood tops food up towards the cap, a few items per tick.
func (s *Simulator) spawnFood(w *World) {
	spawned := 0
	for len(w.Food) < constants.MaxFoodCount && spawned < constants.FoodSpawnRate {
		id := w.nextFoodIDLocked()
		radius := constants.MinFoodRadius + w.rng.Float64()*(constants.MaxFoodRadius-constants.MinFoodRadius)
		w.Food[id] = &Food{ID: id, Pos: w.RandomInteriorPosition(0), Radius: radius}
		spawned++
	}
}

// spawnPowerups tops powerups up to the cap, with no per-tick rate limit.
func (s *Simulator) spawnPowerups(w *World) {
	for len(w.Powerups) < constants.MaxPowerupCount {
		id := w.nextPowerupIDLocked()
		w.Powerups[id] = &Powerup{ID: id, Pos: w.RandomInteriorPosition(0), Radius: constants.PowerupRadius}
	}
}
