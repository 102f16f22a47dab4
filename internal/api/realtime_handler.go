package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"roombooking/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + 10*time.Second
)

var realtimeTables = map[string]bool{"rooms": true, "bookings": true, "profiles": true, "user_roles": true}

type RealtimeHandler struct {
	base
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeHandler accepts upgrades from the given origins; "*" or an empty
// list accepts any origin.
func NewRealtimeHandler(hub *realtime.Hub, origins []string, log *logrus.Logger) *RealtimeHandler {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &RealtimeHandler{
		base: base{log: log},
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(allowed, r.Header.Get("Origin"))
			},
		},
	}
}

// originAllowed accepts any origin only for an empty or "*" list. A configured
// list must name the origin, so requests without one are refused.
func originAllowed(allowed map[string]bool, origin string) bool {
	if len(allowed) == 0 || allowed["*"] {
		return true
	}
	return origin != "" && allowed[origin]
}

// Subscribe streams {"table","event","id"} messages for ?tables=bookings,rooms
// (every table when omitted) until the client goes away.
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var tables []string
	if raw := r.URL.Query().Get("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if !realtimeTables[t] {
				h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown table " + t})
				return
			}
			tables = append(tables, t)
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("realtime upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(tables...)
	defer h.hub.Unsubscribe(sub)

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case change, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer stops
// answering pings or disconnects.
func (h *RealtimeHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
