package viewer

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/walkthrough/internal/log"
)

var upgrader = websocket.Upgrader{}

// reloadMessage is sent to every connected page when data files change.
type reloadMessage struct {
	Action string   `json:"action"`
	Files  []string `json:"files"`
}

// Hub tracks the pages connected for live reload.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*websocket.Conn]struct{}
	logger zerolog.Logger
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: log.WithComponent("reload"),
	}
}

// ServeHTTP upgrades the request and keeps the connection until the page
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Pages never send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("websocket read")
			}
			return
		}
	}
}

// Len returns the number of connected pages.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastReload tells every connected page to reload.
func (h *Hub) BroadcastReload(files []string) {
	data, err := json.Marshal(reloadMessage{Action: "reload", Files: files})
	if err != nil {
		h.logger.Error().Err(err).Msg("marshalling reload message")
		return
	}

	// Writes are serialized by the write lock; gorilla connections allow a
	// single concurrent writer.
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) == 0 {
		return
	}
	h.logger.Info().Str(log.FieldEvent, "reload.broadcast").Strs("files", files).Int("pages", len(h.conns)).Msg("broadcasting reload")
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Msg("sending reload")
		}
	}
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}
