package ocean

import (
	"log"
	"math/rand"
	"sync"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/quadtree"
	"fishserver/pkg/util"
)

const inputQueueCapacity = 512

// World holds all ocean state. The simulator's tick loop does all of the
// simulation's mutation; connection goroutines add and remove players under
// the write lock (AddPlayer/RemovePlayer) and otherwise reach it through
// the bounded input queue, and broadcasts read it under the read lock. The
// world lock is always the outer lock; any per-connection lock is inner.
type World struct {
	mu sync.RWMutex

	Bounds geo.Rect

	Players  map[string]*Player
	Food     map[uint64]*Food
	Powerups map[uint64]*Powerup

	nextFoodID    uint64
	nextPowerupID uint64

	inputQueue chan InputMsg

	rng *rand.Rand

	// index is rebuilt every tick from the current alive-players, food,
	// and powerup maps; only the tick loop reads or writes it.
	index *quadtree.Quadtree
}

func NewWorld() *World {
	return &World{
		Bounds:     geo.Rect{X: 0, Y: 0, W: constants.WorldWidth, H: constants.WorldHeight},
		Players:    make(map[string]*Player),
		Food:       make(map[uint64]*Food),
		Powerups:   make(map[uint64]*Powerup),
		inputQueue: make(chan InputMsg, inputQueueCapacity),
		rng:        util.NewWorldRand(),
	}
}

// SubmitInput enqueues a client input non-blockingly. A full queue drops
// the input and logs — the simulator must never block on a slow producer.
func (w *World) SubmitInput(in InputMsg) {
	select {
	case w.inputQueue <- in:
	default:
		log.Printf("ocean: input queue full, dropping input for player %s", in.PlayerID)
	}
}

// AddPlayer registers a newly joined player under the world lock.
func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Players[p.ID] = p
}

// RemovePlayer removes a player (disconnect), under the world lock.
func (w *World) RemovePlayer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.Players, id)
}

func (w *World) GetPlayer(id string) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.Players[id]
	return p, ok
}

// RandomInteriorPosition returns a uniformly random point at least margin
// from every wall, used for both join and respawn placement.
func (w *World) RandomInteriorPosition(margin float64) geo.Vec2 {
	x := margin + w.rng.Float64()*(w.Bounds.W-2*margin)
	y := margin + w.rng.Float64()*(w.Bounds.H-2*margin)
	return geo.Vec2{X: x, Y: y}
}

func (w *World) nextFoodIDLocked() uint64 {
	w.nextFoodID++
	return w.nextFoodID
}

func (w *World) nextPowerupIDLocked() uint64 {
	w.nextPowerupID++
	return w.nextPowerupID
}
