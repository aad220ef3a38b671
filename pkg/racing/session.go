package racing

import (
	"encoding/json"
	"log"

	"fishserver/pkg/constants"
	"fishserver/pkg/species"
	"fishserver/pkg/transport"
)

// connAdapter marshals outbound racing messages to JSON and hands them to
// the connection's non-blocking send queue, so Race never touches
// transport internals directly.
type connAdapter struct {
	conn *transport.Connection
}

func (a *connAdapter) Send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("racing: encoding %T: %v", v, err)
		return
	}
	a.conn.Enqueue(data)
}

// HandleSession drives one racing connection end to end: JSON in, JSON out,
// dispatching join/ready/mouthInput/mouthCycle/stateUpdate/ping. On return
// it removes whatever player was joined from its race.
func HandleSession(world *World, conn *transport.Connection) {
	var race *Race
	var playerID string
	adapter := &connAdapter{conn: conn}

	conn.ReadLoop(func(data []byte) {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("racing: malformed inbound frame: %v", err)
			return
		}
		switch env.Type {
		case "join":
			if playerID != "" {
				return
			}
			var msg joinMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("racing: malformed join: %v", err)
				return
			}
			name := msg.Name
			if len(name) > constants.MaxNameLen {
				name = name[:constants.MaxNameLen]
			}
			if name == "" {
				name = constants.DefaultName
			}
			sp := species.Species(msg.Model)
			if !species.Valid(sp) {
				sp = species.Swordfish
			}
			r, p := world.Join(adapter, name, sp)
			race = r
			playerID = p.ID
			adapter.Send(welcomeMessage{
				Type:      "welcome",
				PlayerID:  p.ID,
				RaceID:    r.ID,
				Name:      name,
				Model:     string(sp),
				RaceState: string(r.StateSnapshot()),
			})
		case "ready":
			if race == nil || playerID == "" {
				return
			}
			race.HandleReady(playerID)
		case "mouthInput":
			// mouthInput alone never affects progress; see race.go's
			// stateUpdate/mouthCycle precedence.
		case "mouthCycle":
			if race == nil || playerID == "" {
				return
			}
			var msg mouthCycleMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("racing: malformed mouthCycle: %v", err)
				return
			}
			race.HandleMouthCycleIncrement(playerID, msg.MouthCycle)
		case "stateUpdate":
			if race == nil || playerID == "" {
				return
			}
			var msg stateUpdateMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("racing: malformed stateUpdate: %v", err)
				return
			}
			race.HandleStateUpdate(playerID, msg.FishState.MouthCycles)
		case "ping":
			adapter.Send(pongMessage{Type: "pong"})
		default:
			log.Printf("racing: unknown message type %q", env.Type)
		}
	})

	if race != nil && playerID != "" {
		race.RemovePlayer(playerID)
	}
}
