package racing

import (
	"math/rand"
	"sync"

	"fishserver/pkg/species"
	"fishserver/pkg/util"
)

// World owns every race, including the single distinguished waiting lobby
// new joiners are placed into. Exactly one race at a time is the lobby;
// when it transitions to Countdown it is atomically replaced.
type World struct {
	mu sync.RWMutex

	Races        map[string]*Race
	waitingLobby *Race

	rng *rand.Rand
}

func NewWorld() *World {
	w := &World{
		Races: make(map[string]*Race),
		rng:   util.NewWorldRand(),
	}
	lobby := newRace(w)
	w.Races[lobby.ID] = lobby
	w.waitingLobby = lobby
	return w
}

// Join places a newly connected client into the current waiting lobby and
// registers the player there. The caller still owes the client a Welcome
// frame; Join itself triggers the lobby's broadcast once the player lands.
func (w *World) Join(conn Conn, name string, sp species.Species) (*Race, *Player) {
	w.mu.RLock()
	lobby := w.waitingLobby
	w.mu.RUnlock()

	p := &Player{
		ID:      util.NewID(),
		Name:    name,
		Species: sp,
		Conn:    conn,
	}
	lobby.addPlayer(p)
	return lobby, p
}

// replaceLobby swaps in a fresh empty lobby once old has moved on to
// Countdown, so joiners arriving afterwards start a new race rather than
// interrupting one already underway. A no-op if old is no longer current
// (e.g. called twice by a racy caller).
func (w *World) replaceLobby(old *Race) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitingLobby != old {
		return
	}
	fresh := newRace(w)
	w.Races[fresh.ID] = fresh
	w.waitingLobby = fresh
}

// removeRace drops a finished, emptied race from the registry. The waiting
// lobby is never removed this way even if momentarily empty; it stays in
// place for the next joiner.
func (w *World) removeRace(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.waitingLobby != nil && w.waitingLobby.ID == id {
		return
	}
	delete(w.Races, id)
}
