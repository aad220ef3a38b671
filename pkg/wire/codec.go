// Package wire implements the ocean mode's binary frame codec: big-endian,
// length-prefixed strings, float32 kinematics, bit-packed flag bytes, and
// batching of multiple frames into one outbound message. Frames are built
// with a manual byte buffer and explicit bit-pattern conversion rather than
// reflection-based encoding, so the wire layout is easy to read off the
// code.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

type FrameType byte

const (
	TagWelcome     FrameType = 1
	TagState       FrameType = 2
	TagPong        FrameType = 3
	TagLeaderboard FrameType = 4
	TagPlayerInfo  FrameType = 5
	TagAllPlayers  FrameType = 6
)

// Frame is any of the six outbound frame shapes.
type Frame interface {
	Tag() FrameType
}

type WelcomeFrame struct {
	ID     string
	Name   string
	Model  string
	WorldW float64
	WorldH float64
}

func (WelcomeFrame) Tag() FrameType { return TagWelcome }

type OtherPlayer struct {
	ID            string
	X, Y          float32
	VelX, VelY    float32
	Rotation      float32
	Size          float32
	PowerupActive bool
}

type FoodItem struct {
	ID     uint64
	X, Y   float32
	Radius float32
}

type PowerupItem struct {
	ID     uint64
	X, Y   float32
	Radius float32
}

type StateFrame struct {
	Alive           bool
	X, Y            float32
	VelX, VelY      float32
	Rotation        float32
	Size            float32
	Score           uint32
	Seq             uint32
	KilledBy        string
	HasKilledBy     bool
	RespawnIn       float32
	HasRespawnIn    bool
	PowerupActive   bool
	PowerupDuration float32

	Others   []OtherPlayer
	Food     []FoodItem
	Powerups []PowerupItem
}

func (StateFrame) Tag() FrameType { return TagState }

type PongFrame struct{}

func (PongFrame) Tag() FrameType { return TagPong }

type LeaderboardEntry struct {
	Name  string
	Score uint32
}

type LeaderboardFrame struct {
	Entries []LeaderboardEntry
}

func (LeaderboardFrame) Tag() FrameType { return TagLeaderboard }

type PlayerInfoFrame struct {
	ID    string
	Name  string
	Model string
}

func (PlayerInfoFrame) Tag() FrameType { return TagPlayerInfo }

type PlayerPos struct {
	ID   string
	X, Y float32
}

type AllPlayersFrame struct {
	Players []PlayerPos
}

func (AllPlayersFrame) Tag() FrameType { return TagAllPlayers }

var errTruncated = errors.New("wire: truncated frame")
var errOverlongString = errors.New("wire: overlong string")

// ---- encoding ----

func writeString(buf *bytes.Buffer, s string) {
	b := []byte(s)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func writeU8(buf *bytes.Buffer, v uint8) {
	buf.WriteByte(v)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeF32(buf *bytes.Buffer, v float32) {
	writeU32(buf, math.Float32bits(v))
}

func writeF64(buf *bytes.Buffer, v float64) {
	writeU64(buf, math.Float64bits(v))
}

// Encode writes a single frame (tag byte + payload) into buf.
func Encode(buf *bytes.Buffer, f Frame) error {
	writeU8(buf, byte(f.Tag()))
	switch v := f.(type) {
	case WelcomeFrame:
		writeString(buf, v.ID)
		writeString(buf, v.Name)
		writeString(buf, v.Model)
		writeF64(buf, v.WorldW)
		writeF64(buf, v.WorldH)
	case StateFrame:
		var flags byte
		if v.Alive {
			flags |= 1 << 0
		}
		if v.HasKilledBy {
			flags |= 1 << 1
		}
		if v.HasRespawnIn {
			flags |= 1 << 2
		}
		if v.PowerupActive {
			flags |= 1 << 3
		}
		writeU8(buf, flags)
		writeF32(buf, v.X)
		writeF32(buf, v.Y)
		writeF32(buf, v.VelX)
		writeF32(buf, v.VelY)
		writeF32(buf, v.Rotation)
		writeF32(buf, v.Size)
		writeU32(buf, v.Score)
		writeU32(buf, v.Seq)
		if v.HasKilledBy {
			writeString(buf, v.KilledBy)
		}
		if v.HasRespawnIn {
			writeF32(buf, v.RespawnIn)
		}
		if v.PowerupActive {
			writeF32(buf, v.PowerupDuration)
		}
		writeU16(buf, uint16(len(v.Others)))
		for _, o := range v.Others {
			writeString(buf, o.ID)
			writeF32(buf, o.X)
			writeF32(buf, o.Y)
			writeF32(buf, o.VelX)
			writeF32(buf, o.VelY)
			writeF32(buf, o.Rotation)
			writeF32(buf, o.Size)
			var pa byte
			if o.PowerupActive {
				pa = 1
			}
			writeU8(buf, pa)
		}
		writeU16(buf, uint16(len(v.Food)))
		for _, fd := range v.Food {
			writeU64(buf, fd.ID)
			writeF32(buf, fd.X)
			writeF32(buf, fd.Y)
			writeF32(buf, fd.Radius)
		}
		writeU16(buf, uint16(len(v.Powerups)))
		for _, p := range v.Powerups {
			writeU64(buf, p.ID)
			writeF32(buf, p.X)
			writeF32(buf, p.Y)
			writeF32(buf, p.Radius)
		}
	case PongFrame:
		// no payload
	case LeaderboardFrame:
		writeU8(buf, uint8(len(v.Entries)))
		for _, e := range v.Entries {
			writeString(buf, e.Name)
			writeU32(buf, e.Score)
		}
	case PlayerInfoFrame:
		writeString(buf, v.ID)
		writeString(buf, v.Name)
		writeString(buf, v.Model)
	case AllPlayersFrame:
		writeU16(buf, uint16(len(v.Players)))
		for _, p := range v.Players {
			writeString(buf, p.ID)
			writeF32(buf, p.X)
			writeF32(buf, p.Y)
		}
	default:
		return errors.New("wire: unknown frame type")
	}
	return nil
}

// EncodeBatch concatenates multiple frames into a single outbound message,
// matching the writer goroutine's server-side batching policy.
func EncodeBatch(frames []Frame) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range frames {
		if err := Encode(&buf, f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// ---- decoding ----

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) readU8() (byte, error) {
	if d.remaining() < 1 {
		return 0, errTruncated
	}
	v := d.data[d.off]
	d.off++
	return v, nil
}

func (d *decoder) readU16() (uint16, error) {
	if d.remaining() < 2 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint16(d.data[d.off:])
	d.off += 2
	return v, nil
}

func (d *decoder) readU32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint32(d.data[d.off:])
	d.off += 4
	return v, nil
}

func (d *decoder) readU64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint64(d.data[d.off:])
	d.off += 8
	return v, nil
}

func (d *decoder) readF32() (float32, error) {
	v, err := d.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *decoder) readF64() (float64, error) {
	v, err := d.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

const maxStringLen = 1 << 15 // guard against a corrupt or hostile length prefix

func (d *decoder) readString() (string, error) {
	n, err := d.readU16()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", errOverlongString
	}
	if d.remaining() < int(n) {
		return "", errTruncated
	}
	s := string(d.data[d.off : d.off+int(n)])
	d.off += int(n)
	return s, nil
}

// Decode decodes a batch of concatenated frames, advancing until the buffer
// is exhausted. A decoder invariant violation (overlong string, truncated
// record) aborts decoding the remainder of the batch — frames decoded
// before the error are still returned.
func Decode(data []byte) ([]Frame, error) {
	d := &decoder{data: data}
	var frames []Frame
	for d.remaining() > 0 {
		tagByte, err := d.readU8()
		if err != nil {
			return frames, err
		}
		f, err := decodeFrame(d, FrameType(tagByte))
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func decodeFrame(d *decoder, tag FrameType) (Frame, error) {
	switch tag {
	case TagWelcome:
		id, err := d.readString()
		if err != nil {
			return nil, err
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		model, err := d.readString()
		if err != nil {
			return nil, err
		}
		w, err := d.readF64()
		if err != nil {
			return nil, err
		}
		h, err := d.readF64()
		if err != nil {
			return nil, err
		}
		return WelcomeFrame{ID: id, Name: name, Model: model, WorldW: w, WorldH: h}, nil
	case TagState:
		return decodeState(d)
	case TagPong:
		return PongFrame{}, nil
	case TagLeaderboard:
		n, err := d.readU8()
		if err != nil {
			return nil, err
		}
		entries := make([]LeaderboardEntry, 0, n)
		for i := 0; i < int(n); i++ {
			name, err := d.readString()
			if err != nil {
				return nil, err
			}
			score, err := d.readU32()
			if err != nil {
				return nil, err
			}
			entries = append(entries, LeaderboardEntry{Name: name, Score: score})
		}
		return LeaderboardFrame{Entries: entries}, nil
	case TagPlayerInfo:
		id, err := d.readString()
		if err != nil {
			return nil, err
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		model, err := d.readString()
		if err != nil {
			return nil, err
		}
		return PlayerInfoFrame{ID: id, Name: name, Model: model}, nil
	case TagAllPlayers:
		n, err := d.readU16()
		if err != nil {
			return nil, err
		}
		players := make([]PlayerPos, 0, n)
		for i := 0; i < int(n); i++ {
			id, err := d.readString()
			if err != nil {
				return nil, err
			}
			x, err := d.readF32()
			if err != nil {
				return nil, err
			}
			y, err := d.readF32()
			if err != nil {
				return nil, err
			}
			players = append(players, PlayerPos{ID: id, X: x, Y: y})
		}
		return AllPlayersFrame{Players: players}, nil
	default:
		return nil, errors.New("wire: unknown frame tag")
	}
}

func decodeState(d *decoder) (Frame, error) {
	flags, err := d.readU8()
	if err != nil {
		return nil, err
	}
	s := StateFrame{
		Alive:         flags&(1<<0) != 0,
		HasKilledBy:   flags&(1<<1) != 0,
		HasRespawnIn:  flags&(1<<2) != 0,
		PowerupActive: flags&(1<<3) != 0,
	}
	var ferr error
	if s.X, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.Y, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.VelX, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.VelY, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.Rotation, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.Size, ferr = d.readF32(); ferr != nil {
		return nil, ferr
	}
	if s.Score, ferr = d.readU32(); ferr != nil {
		return nil, ferr
	}
	if s.Seq, ferr = d.readU32(); ferr != nil {
		return nil, ferr
	}
	if s.HasKilledBy {
		if s.KilledBy, ferr = d.readString(); ferr != nil {
			return nil, ferr
		}
	}
	if s.HasRespawnIn {
		if s.RespawnIn, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
	}
	if s.PowerupActive {
		if s.PowerupDuration, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
	}
	nOthers, err := d.readU16()
	if err != nil {
		return nil, err
	}
	s.Others = make([]OtherPlayer, 0, nOthers)
	for i := 0; i < int(nOthers); i++ {
		var o OtherPlayer
		if o.ID, ferr = d.readString(); ferr != nil {
			return nil, ferr
		}
		if o.X, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if o.Y, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if o.VelX, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if o.VelY, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if o.Rotation, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if o.Size, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		pa, ferr2 := d.readU8()
		if ferr2 != nil {
			return nil, ferr2
		}
		o.PowerupActive = pa != 0
		s.Others = append(s.Others, o)
	}
	nFood, err := d.readU16()
	if err != nil {
		return nil, err
	}
	s.Food = make([]FoodItem, 0, nFood)
	for i := 0; i < int(nFood); i++ {
		var fd FoodItem
		if fd.ID, ferr = d.readU64(); ferr != nil {
			return nil, ferr
		}
		if fd.X, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if fd.Y, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if fd.Radius, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		s.Food = append(s.Food, fd)
	}
	nPowerups, err := d.readU16()
	if err != nil {
		return nil, err
	}
	s.Powerups = make([]PowerupItem, 0, nPowerups)
	for i := 0; i < int(nPowerups); i++ {
		var p PowerupItem
		if p.ID, ferr = d.readU64(); ferr != nil {
			return nil, ferr
		}
		if p.X, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if p.Y, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		if p.Radius, ferr = d.readF32(); ferr != nil {
			return nil, ferr
		}
		s.Powerups = append(s.Powerups, p)
	}
	return s, nil
}
