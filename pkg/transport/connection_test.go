package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type upgradeFixture struct {
	srv    *httptest.Server
	conn   *Connection
	client *websocket.Conn
}

func serveOneUpgrade(t *testing.T, batch bool) upgradeFixture {
	t.Helper()
	connCh := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := Upgrade(w, r, "test-id", websocket.BinaryMessage, batch)
		if err != nil {
			t.Fatalf("Upgrade() error = %v", err)
		}
		connCh <- c
		c.ReadLoop(func([]byte) {})
	}))
	dialURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	return upgradeFixture{srv: srv, conn: <-connCh, client: client}
}

func TestEnqueueDeliversMessage(t *testing.T) {
	f := serveOneUpgrade(t, false)
	if !f.conn.Enqueue([]byte("hello")) {
		t.Fatalf("expected Enqueue to succeed on a fresh connection")
	}
	f.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := f.client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected client to receive %q, got %q", "hello", data)
	}
}

func TestEnqueueAfterCloseReportsFailure(t *testing.T) {
	f := serveOneUpgrade(t, false)
	f.conn.Close()
	if f.conn.Enqueue([]byte("too late")) {
		t.Errorf("expected Enqueue to report failure on a torn-down connection")
	}
}

func TestAttachMetaPrefersMetaChannel(t *testing.T) {
	primary := serveOneUpgrade(t, false)
	meta := serveOneUpgrade(t, false)

	primary.conn.AttachMeta(meta.conn)
	if !primary.conn.EnqueueMeta([]byte("meta-payload")) {
		t.Fatalf("expected EnqueueMeta to succeed once a meta channel is attached")
	}

	meta.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := meta.client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() on the meta client error = %v", err)
	}
	if string(data) != "meta-payload" {
		t.Errorf("expected the meta connection's client to receive the payload, got %q", data)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := serveOneUpgrade(t, false)
	f.conn.Close()
	f.conn.Close() // must not panic
}
