// Package transport owns the per-client reader/writer tasks shared by both
// game modes: heartbeat, non-blocking enqueue, server-side batching for
// binary connections, and the optional secondary metadata connection an
// ocean client can attach after its primary join.
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	readWait       = 60 * time.Second
	pingInterval   = (readWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrade promotes an HTTP request to a WebSocket and wraps it as a
// Connection. messageType is websocket.BinaryMessage or
// websocket.TextMessage, matching the mode's wire format; batch controls
// whether the writer greedily concatenates queued messages before writing.
func Upgrade(w http.ResponseWriter, r *http.Request, id string, messageType int, batch bool) (*Connection, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		ID:          id,
		ws:          ws,
		messageType: messageType,
		batch:       batch,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
	}
	go c.writePump()
	return c, nil
}

// Connection is one accepted WebSocket plus its outbound queue. The meta
// pointer (the attached secondary connection) is guarded by mu, per the
// rule that per-connection state gets its own lock, acquired inside any
// world lock that is already held; the send channel needs no lock.
type Connection struct {
	ID          string
	ws          *websocket.Conn
	messageType int
	batch       bool

	send chan []byte
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	meta *Connection

	// OnClose, if set before the read loop starts, runs exactly once on
	// teardown so the owning simulator can drop this client's state.
	OnClose func()
}

// Close tears the connection down immediately, e.g. when an upgrade
// succeeded but the endpoint-specific handshake that follows (attaching a
// metadata channel to an unknown player id) failed.
func (c *Connection) Close() {
	c.teardown()
}

// AttachMeta binds a second connection as this one's low-rate metadata
// channel. EnqueueMeta prefers it once set.
func (c *Connection) AttachMeta(meta *Connection) {
	c.mu.Lock()
	c.meta = meta
	c.mu.Unlock()
}

// Enqueue queues a raw message for the writer, non-blockingly. A full
// queue means the client can't keep up; it is disconnected rather than
// allowed to stall the sender. It reports false once the connection has
// been torn down.
func (c *Connection) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		c.teardown()
		return false
	}
}

// EnqueueMeta sends on the attached metadata connection if one is bound,
// else falls back to the primary channel.
func (c *Connection) EnqueueMeta(data []byte) bool {
	c.mu.Lock()
	meta := c.meta
	c.mu.Unlock()
	if meta != nil {
		return meta.Enqueue(data)
	}
	return c.Enqueue(data)
}

// ReadLoop blocks reading frames until the connection errors or closes,
// invoking handle for each. It extends the read deadline on every message
// and pong, per the 60s heartbeat.
func (c *Connection) ReadLoop(handle func(data []byte)) {
	defer c.teardown()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(readWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(readWait))
		handle(data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if c.batch {
				data = c.drainQueued(data)
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(c.messageType, data); err != nil {
				c.teardown()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.teardown()
				return
			}
		case <-c.done:
			return
		}
	}
}

// drainQueued greedily appends whatever else is already queued onto first,
// the server-side batching that lets one WebSocket message carry several
// frames.
func (c *Connection) drainQueued(first []byte) []byte {
	buf := first
	for {
		select {
		case more := <-c.send:
			buf = append(buf, more...)
		default:
			return buf
		}
	}
}

func (c *Connection) teardown() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
		if c.OnClose != nil {
			c.OnClose()
		}
	})
}
