package racing

import (
	"sort"
	"sync"
	"time"

	"fishserver/pkg/constants"
	"fishserver/pkg/util"
)

// Race is one lobby/countdown/racing/finished lifecycle. Exactly one
// goroutine at a time mutates a Race's progress-bearing state outside the
// request path — the countdown scheduler and the 100ms tick loop — and both
// acquire the same lock as the Handle* request handlers, so there is never
// a second writer racing the tick.
type Race struct {
	mu    sync.RWMutex
	ID    string
	World *World

	State          RaceState
	Players        map[string]*Player
	StartTime      time.Time
	CountdownStart time.Time
	Results        []RaceResult
}

func newRace(w *World) *Race {
	return &Race{
		ID:      util.NewID(),
		World:   w,
		State:   StateLobby,
		Players: make(map[string]*Player),
	}
}

// StateSnapshot reads the current state under the race lock, for the
// Welcome frame sent immediately after Join.
func (r *Race) StateSnapshot() RaceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

func (r *Race) addPlayer(p *Player) {
	r.mu.Lock()
	r.Players[p.ID] = p
	r.mu.Unlock()
	r.broadcastState()
}

// HandleReady marks a player ready in the Lobby state and, once every
// present player is ready (with at least one present), advances to
// Countdown. A ready received outside Lobby is silently ignored.
func (r *Race) HandleReady(playerID string) {
	r.mu.Lock()
	p, ok := r.Players[playerID]
	if !ok || r.State != StateLobby {
		r.mu.Unlock()
		return
	}
	p.Ready = true
	allReady := len(r.Players) > 0
	for _, pp := range r.Players {
		if !pp.Ready {
			allReady = false
			break
		}
	}
	r.mu.Unlock()

	if allReady {
		r.startCountdown()
		return
	}
	r.broadcastState()
}

// startCountdown moves Lobby to Countdown, hands the world a fresh waiting
// lobby so later joiners don't interrupt this race, and schedules the
// once-per-second countdown broadcasts.
func (r *Race) startCountdown() {
	r.mu.Lock()
	if r.State != StateLobby {
		r.mu.Unlock()
		return
	}
	r.State = StateCountdown
	r.CountdownStart = time.Now()
	r.mu.Unlock()

	r.World.replaceLobby(r)
	r.broadcastState()
	go r.runCountdown()
}

func (r *Race) runCountdown() {
	ticks := int(constants.CountdownTime / time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for i := 0; i < ticks; i++ {
		<-ticker.C
		r.broadcastState()
	}
	r.startRacing()
}

func (r *Race) startRacing() {
	r.mu.Lock()
	if r.State != StateCountdown {
		r.mu.Unlock()
		return
	}
	r.State = StateRacing
	r.StartTime = time.Now()
	r.mu.Unlock()

	r.broadcastState()
	go r.runTickLoop()
}

// runTickLoop drives the per-race 100ms cadence: stall auto-finish, the
// all-finished check, then a state broadcast. It exits once the race
// reaches Finished.
func (r *Race) runTickLoop() {
	ticker := time.NewTicker(constants.RaceTickInterval)
	defer ticker.Stop()
	for range ticker.C {
		if r.tick() {
			return
		}
	}
}

func (r *Race) tick() (finished bool) {
	now := time.Now()

	r.mu.Lock()
	if r.State != StateRacing {
		r.mu.Unlock()
		return true
	}
	for _, p := range r.Players {
		if p.Finished {
			continue
		}
		if p.Progress >= constants.StallProgress && now.Sub(p.LastUpdate) > constants.StallTimeout {
			r.finishPlayerLocked(p, now)
		}
	}
	allDone := r.allFinishedLocked()
	r.mu.Unlock()

	if allDone {
		r.finishRace()
		return true
	}
	r.broadcastState()
	return false
}

// allFinishedLocked reports whether every present player has finished.
// Caller must hold r.mu.
func (r *Race) allFinishedLocked() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Finished {
			return false
		}
	}
	return true
}

// finishPlayerLocked marks a player finished, whether by reaching full
// progress or by stall auto-finish — the two share the same MAPM formula
// and commit identically to Results. Caller must hold r.mu.
func (r *Race) finishPlayerLocked(p *Player, now time.Time) {
	p.Finished = true
	p.FinishTime = now.Sub(r.StartTime)
	var mapm float64
	if secs := p.FinishTime.Seconds(); secs > 0 {
		mapm = (float64(p.MouthCycles) * 2 / secs) * 60
	}
	r.Results = append(r.Results, RaceResult{
		PlayerID:   p.ID,
		Name:       p.Name,
		Species:    p.Species,
		FinishTime: p.FinishTime,
		MAPM:       mapm,
	})
}

// HandleStateUpdate applies the authoritative mouthCycles count from a
// stateUpdate message. Ignored once the race is Finished — results are
// already committed.
func (r *Race) HandleStateUpdate(playerID string, cycles int) {
	now := time.Now()

	r.mu.Lock()
	p, ok := r.Players[playerID]
	if !ok || r.State == StateFinished {
		r.mu.Unlock()
		return
	}
	p.MouthCycles = cycles
	p.LastUpdate = now
	p.lastStateUpdateAt = now
	p.Progress = progressFor(cycles)
	justFinished := false
	if p.Progress >= 1 && !p.Finished {
		r.finishPlayerLocked(p, now)
		justFinished = true
	}
	allDone := justFinished && r.allFinishedLocked()
	r.mu.Unlock()

	if allDone {
		r.finishRace()
		return
	}
	r.broadcastState()
}

// HandleMouthCycleIncrement applies a legacy mouthCycle{} bump. stateUpdate
// is the source of truth: an increment received within one tick interval
// of the last stateUpdate is dropped rather than double-counted.
func (r *Race) HandleMouthCycleIncrement(playerID string, delta int) {
	if delta < 1 {
		delta = 1
	}
	now := time.Now()

	r.mu.Lock()
	p, ok := r.Players[playerID]
	if !ok || r.State == StateFinished {
		r.mu.Unlock()
		return
	}
	if now.Sub(p.lastStateUpdateAt) < constants.RaceTickInterval {
		r.mu.Unlock()
		return
	}
	p.MouthCycles += delta
	p.LastUpdate = now
	p.Progress = progressFor(p.MouthCycles)
	justFinished := false
	if p.Progress >= 1 && !p.Finished {
		r.finishPlayerLocked(p, now)
		justFinished = true
	}
	allDone := justFinished && r.allFinishedLocked()
	r.mu.Unlock()

	if allDone {
		r.finishRace()
		return
	}
	r.broadcastState()
}

func progressFor(cycles int) float64 {
	p := float64(cycles) * constants.CycleProgress
	if p > 1 {
		p = 1
	}
	return p
}

// RemovePlayer drops a disconnected client from the race. A Finished race
// left empty is removed from the world; an emptied waiting Lobby is left in
// place for the next joiner.
func (r *Race) RemovePlayer(playerID string) {
	r.mu.Lock()
	delete(r.Players, playerID)
	empty := len(r.Players) == 0
	state := r.State
	r.mu.Unlock()

	if state == StateFinished && empty {
		r.World.removeRace(r.ID)
		return
	}
	r.broadcastState()
}

// broadcastState fans a RaceState frame out to every present connection.
// The snapshot is built under the read lock and released before any send,
// so a slow or blocked client can never hold the race lock.
func (r *Race) broadcastState() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	views := make([]playerView, 0, len(ids))
	readyCount := 0
	conns := make(map[string]Conn, len(ids))
	progress := make(map[string]float64, len(ids))
	for _, id := range ids {
		p := r.Players[id]
		if p.Ready {
			readyCount++
		}
		views = append(views, playerView{
			ID:       p.ID,
			Name:     p.Name,
			Model:    string(p.Species),
			Progress: p.Progress,
			Finished: p.Finished,
			Ready:    p.Ready,
		})
		conns[id] = p.Conn
		progress[id] = p.Progress
	}

	state := r.State
	var timeRemaining float64
	switch state {
	case StateCountdown:
		timeRemaining = (constants.CountdownTime - time.Since(r.CountdownStart)).Seconds()
		if timeRemaining < 0 {
			timeRemaining = 0
		}
	case StateLobby:
		timeRemaining = constants.LobbyWaitTime.Seconds()
	}
	total := len(ids)
	r.mu.RUnlock()

	for _, id := range ids {
		conn := conns[id]
		if conn == nil {
			continue
		}
		conn.Send(raceStateMessage{
			Type:          "raceState",
			RaceState:     string(state),
			TimeRemaining: timeRemaining,
			Players:       views,
			YourProgress:  progress[id],
			ReadyCount:    readyCount,
			TotalPlayers:  total,
		})
	}
}

// finishRace sorts Results by finish time, assigns ranks 1..n, and
// broadcasts RaceResults once.
func (r *Race) finishRace() {
	r.mu.Lock()
	r.State = StateFinished
	sort.Slice(r.Results, func(i, j int) bool { return r.Results[i].FinishTime < r.Results[j].FinishTime })
	for i := range r.Results {
		r.Results[i].Rank = i + 1
	}
	results := make([]RaceResult, len(r.Results))
	copy(results, r.Results)
	conns := make([]Conn, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	r.mu.Unlock()

	views := make([]raceResultView, 0, len(results))
	for _, res := range results {
		views = append(views, raceResultView{
			PlayerID:              res.PlayerID,
			Name:                  res.Name,
			Model:                 string(res.Species),
			FinishTime:            res.FinishTime.Seconds(),
			MouthActionsPerMinute: res.MAPM,
			Rank:                  res.Rank,
		})
	}
	msg := raceResultsMessage{Type: "raceResults", Results: views}
	for _, c := range conns {
		c.Send(msg)
	}
}
