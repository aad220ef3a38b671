package ocean

import (
	"sort"
	"time"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/species"
	"fishserver/pkg/wire"
)

func (s *Simulator) runBroadcastLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(constants.BroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.broadcastState()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Simulator) runLeaderboardLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(constants.LeaderboardInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.broadcastLeaderboard()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Simulator) runSharkVisionLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(constants.SharkVisionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.broadcastSharkVision()
		case <-s.stopCh:
			return
		}
	}
}

// broadcastState walks all players under the read lock and builds each
// connection's own state-plus-interest frame.
func (s *Simulator) broadcastState() {
	w := s.World
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, owner := range w.Players {
		if owner.Conn == nil {
			continue
		}
		playerInfos, state := s.buildStateFrames(w, owner)
		for _, f := range playerInfos {
			owner.Conn.EnqueueMeta(f)
		}
		owner.Conn.Enqueue(state)
	}
}

// buildStateFrames returns the PlayerInfo one-shots (for peers newly
// visible to owner, including peers that left view earlier and have come
// back) separately from owner's State frame, since spec.md's send
// policy routes them to different channels: playerInfo prefers the
// secondary channel, state always goes to the primary. owner's seen-set
// lock is acquired here, inside the world read lock already held by the
// caller.
func (s *Simulator) buildStateFrames(w *World, owner *Player) ([]wire.PlayerInfoFrame, wire.StateFrame) {
	var playerInfos []wire.PlayerInfoFrame
	others := make([]wire.OtherPlayer, 0)
	inView := make(map[string]struct{}, len(w.Players))

	for _, q := range w.Players {
		if q.ID == owner.ID || !q.Alive {
			continue
		}
		if geo.Distance(owner.Pos, q.Pos) > constants.ViewDistance {
			continue
		}
		inView[q.ID] = struct{}{}
		if !owner.MarkSeen(q.ID) {
			playerInfos = append(playerInfos, wire.PlayerInfoFrame{ID: q.ID, Name: q.Name, Model: string(q.Species)})
		}
		others = append(others, wire.OtherPlayer{
			ID:            q.ID,
			X:             float32(q.Pos.X),
			Y:             float32(q.Pos.Y),
			VelX:          float32(q.Vel.X),
			VelY:          float32(q.Vel.Y),
			Rotation:      float32(q.Rotation),
			Size:          float32(q.Size),
			PowerupActive: q.PowerupActive,
		})
	}
	owner.PruneSeen(inView)

	food := make([]wire.FoodItem, 0)
	for _, f := range w.Food {
		if geo.Distance(owner.Pos, f.Pos) > constants.ViewDistance {
			continue
		}
		food = append(food, wire.FoodItem{ID: f.ID, X: float32(f.Pos.X), Y: float32(f.Pos.Y), Radius: float32(f.Radius)})
	}

	powerups := make([]wire.PowerupItem, 0, len(w.Powerups))
	for _, pu := range w.Powerups {
		powerups = append(powerups, wire.PowerupItem{ID: pu.ID, X: float32(pu.Pos.X), Y: float32(pu.Pos.Y), Radius: float32(pu.Radius)})
	}

	state := wire.StateFrame{
		Alive:    owner.Alive,
		X:        float32(owner.Pos.X),
		Y:        float32(owner.Pos.Y),
		VelX:     float32(owner.Vel.X),
		VelY:     float32(owner.Vel.Y),
		Rotation: float32(owner.Rotation),
		Size:     float32(owner.Size),
		Score:    uint32(owner.Score),
		Seq:      owner.LastSeq,
		Others:   others,
		Food:     food,
		Powerups: powerups,
	}
	if !owner.Alive {
		if owner.KilledBy != "" {
			state.HasKilledBy = true
			state.KilledBy = owner.KilledBy
		}
		state.HasRespawnIn = true
		state.RespawnIn = float32(owner.RespawnIn.Seconds())
	}
	if owner.PowerupActive {
		state.PowerupActive = true
		state.PowerupDuration = float32(owner.PowerupRemaining.Seconds())
	}

	return playerInfos, state
}

// broadcastLeaderboard sends the top-10 alive-or-dead players by score once
// per second, on each connection's secondary channel where one is bound.
func (s *Simulator) broadcastLeaderboard() {
	w := s.World
	w.mu.RLock()
	players := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		players = append(players, p)
	}
	conns := make([]PlayerConn, 0, len(w.Players))
	for _, p := range w.Players {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	w.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool { return players[i].Score > players[j].Score })
	n := len(players)
	if n > 10 {
		n = 10
	}
	entries := make([]wire.LeaderboardEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, wire.LeaderboardEntry{Name: players[i].Name, Score: uint32(players[i].Score)})
	}
	frame := wire.LeaderboardFrame{Entries: entries}
	for _, conn := range conns {
		conn.EnqueueMeta(frame)
	}
}

// broadcastSharkVision sends AllPlayers positions twice a second, only to
// shark clients whose powerup is currently active.
func (s *Simulator) broadcastSharkVision() {
	w := s.World
	w.mu.RLock()
	defer w.mu.RUnlock()

	positions := make([]wire.PlayerPos, 0, len(w.Players))
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		positions = append(positions, wire.PlayerPos{ID: p.ID, X: float32(p.Pos.X), Y: float32(p.Pos.Y)})
	}
	frame := wire.AllPlayersFrame{Players: positions}

	for _, p := range w.Players {
		if p.Conn == nil {
			continue
		}
		if p.Species == species.Shark && p.PowerupActive {
			p.Conn.EnqueueMeta(frame)
		}
	}
}
