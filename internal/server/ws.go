package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// eventMessage is pushed to websocket clients on every state change.
type eventMessage struct {
	stateResponse
	History   []string `json:"history"`
	Timestamp int64    `json:"timestamp"`
}

// EventsHandler pushes calculator state changes over a websocket. Each
// client receives the current state on connect and after every change.
type EventsHandler struct {
	ctrl Controller
	log  zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler for ctrl.
func NewEventsHandler(ctrl Controller, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{ctrl: ctrl, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	events, unsubscribe := h.ctrl.Subscribe()
	defer unsubscribe()

	// Detect client disconnects by reading until an error.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-events:
			if err := h.send(conn); err != nil {
				h.log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}

func (h *EventsHandler) send(conn *websocket.Conn) error {
	msg, err := json.Marshal(eventMessage{
		stateResponse: snapshot(h.ctrl),
		History:       h.ctrl.History(),
		Timestamp:     time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
