package ocean

import (
	"bytes"
	"encoding/json"
	"log"

	"fishserver/pkg/constants"
	"fishserver/pkg/geo"
	"fishserver/pkg/species"
	"fishserver/pkg/transport"
	"fishserver/pkg/util"
	"fishserver/pkg/wire"
)

// connAdapter turns a transport.Connection's raw-byte queue into the small
// enqueue(frame)/enqueueMeta(frame) interface the simulator uses, so the
// simulator never touches connection internals directly.
type connAdapter struct {
	conn *transport.Connection
}

func (a *connAdapter) Enqueue(f wire.Frame) {
	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		log.Printf("ocean: encoding frame: %v", err)
		return
	}
	a.conn.Enqueue(buf.Bytes())
}

func (a *connAdapter) EnqueueMeta(f wire.Frame) {
	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		log.Printf("ocean: encoding meta frame: %v", err)
		return
	}
	a.conn.EnqueueMeta(buf.Bytes())
}

type inboundEnvelope struct {
	Type string `json:"type"`
}

type joinMessage struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

type inputMessage struct {
	DirX  float64 `json:"dirX"`
	DirY  float64 `json:"dirY"`
	Boost bool    `json:"boost"`
	Seq   uint32  `json:"seq"`
}

// AttachMeta binds a second WebSocket as playerID's low-rate metadata
// channel, for the /ws/meta?id=<clientId> endpoint.
func (s *Simulator) AttachMeta(playerID string, meta *transport.Connection) bool {
	p, ok := s.World.GetPlayer(playerID)
	if !ok {
		return false
	}
	adapter, ok := p.Conn.(*connAdapter)
	if !ok || adapter == nil {
		return false
	}
	adapter.conn.AttachMeta(meta)
	return true
}

// HandleSession drives one primary ocean connection end to end: it blocks
// in the read loop dispatching join/input/ping messages, and on return
// removes whatever player was joined.
func (s *Simulator) HandleSession(conn *transport.Connection) {
	var playerID string

	conn.ReadLoop(func(data []byte) {
		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("ocean: malformed inbound frame: %v", err)
			return
		}
		switch env.Type {
		case "join":
			if playerID != "" {
				return
			}
			var msg joinMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("ocean: malformed join: %v", err)
				return
			}
			playerID = s.join(conn, msg)
		case "input":
			if playerID == "" {
				return
			}
			var msg inputMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("ocean: malformed input: %v", err)
				return
			}
			s.World.SubmitInput(InputMsg{
				PlayerID: playerID,
				Dir:      geo.Vec2{X: msg.DirX, Y: msg.DirY},
				Boost:    msg.Boost,
				Seq:      msg.Seq,
			})
		case "ping":
			conn.Enqueue(encodeFrame(wire.PongFrame{}))
		default:
			log.Printf("ocean: unknown message type %q", env.Type)
		}
	})

	if playerID != "" {
		s.World.RemovePlayer(playerID)
	}
}

func (s *Simulator) join(conn *transport.Connection, msg joinMessage) string {
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

	id := util.NewID()
	adapter := &connAdapter{conn: conn}
	pos := s.World.RandomInteriorPosition(constants.RespawnMargin)
	p := NewPlayer(id, name, sp, pos, adapter)
	s.World.AddPlayer(p)

	adapter.Enqueue(wire.WelcomeFrame{
		ID:     id,
		Name:   name,
		Model:  string(sp),
		WorldW: s.World.Bounds.W,
		WorldH: s.World.Bounds.H,
	})
	return id
}

func encodeFrame(f wire.Frame) []byte {
	var buf bytes.Buffer
	if err := wire.Encode(&buf, f); err != nil {
		log.Printf("ocean: encoding %T: %v", f, err)
		return nil
	}
	return buf.Bytes()
}
