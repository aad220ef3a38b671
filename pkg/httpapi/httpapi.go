// Package httpapi binds the three WebSocket upgrade endpoints and the
// liveness route to a gorilla/mux router, replacing the teacher's manual
// strings.HasSuffix path-switching in http.HandleFunc("/api/rooms/", ...)
// with a route table that can grow (ocean, ocean-meta, racing) without
// nested string matching.
package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"fishserver/pkg/ocean"
	"fishserver/pkg/racing"
	"fishserver/pkg/transport"
	"fishserver/pkg/util"
)

// API binds the ocean simulator and the racing world to their upgrade
// endpoints.
type API struct {
	Ocean  *ocean.Simulator
	Racing *racing.World
}

func New(oceanSim *ocean.Simulator, racingWorld *racing.World) *API {
	return &API{Ocean: oceanSim, Racing: racingWorld}
}

// Router builds the route table: liveness, ocean primary, ocean metadata,
// and racing.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", a.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/ws", a.handleOcean).Methods(http.MethodGet)
	r.HandleFunc("/ws/meta", a.handleOceanMeta).Methods(http.MethodGet)
	r.HandleFunc("/ws/racing", a.handleRacing).Methods(http.MethodGet)
	return r
}

func (a *API) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("fishserver: ok"))
}

// handleOcean upgrades to the ocean primary channel: binary out, JSON in,
// server-side write batching on.
func (a *API) handleOcean(w http.ResponseWriter, r *http.Request) {
	conn, err := transport.Upgrade(w, r, util.NewID(), websocket.BinaryMessage, true)
	if err != nil {
		log.Printf("httpapi: ocean upgrade: %v", err)
		return
	}
	a.Ocean.HandleSession(conn)
}

// handleOceanMeta upgrades a second WebSocket for an already-joined ocean
// client, attaching it as that player's low-rate metadata channel. The
// client id arrives as a query parameter since the client hasn't sent any
// message yet at upgrade time.
func (a *API) handleOceanMeta(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	conn, err := transport.Upgrade(w, r, util.NewID(), websocket.BinaryMessage, true)
	if err != nil {
		log.Printf("httpapi: ocean meta upgrade: %v", err)
		return
	}
	if !a.Ocean.AttachMeta(clientID, conn) {
		conn.Close()
		return
	}
	// The metadata channel carries no inbound business messages; the read
	// loop only exists to service the heartbeat and detect disconnects.
	conn.ReadLoop(func([]byte) {})
}

// handleRacing upgrades to the racing channel: JSON both ways, no
// server-side batching (message rate is low).
func (a *API) handleRacing(w http.ResponseWriter, r *http.Request) {
	conn, err := transport.Upgrade(w, r, util.NewID(), websocket.TextMessage, false)
	if err != nil {
		log.Printf("httpapi: racing upgrade: %v", err)
		return
	}
	racing.HandleSession(a.Racing, conn)
}
