package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/logging"
)

// Event types published by the hub
const (
	EventBuilding = "building"
	EventSuccess  = "success"
	EventError    = "error"
)

// Event describes one step of a rebuild
type Event struct {
	Type        string     `json:"type"`
	Timestamp   int64      `json:"timestamp"` // Unix timestamp
	Files       []string   `json:"files,omitempty"`
	Duration    float64    `json:"duration,omitempty"` // Milliseconds
	Fingerprint string     `json:"fingerprint,omitempty"`
	Tags        int        `json:"tags,omitempty"`
	Error       *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo holds the diagnostic of a failed rebuild
type ErrorInfo struct {
	Message string   `json:"message"`
	File    string   `json:"file,omitempty"`
	Line    int      `json:"line,omitempty"`
	Code    string   `json:"code,omitempty"`
	Phase   string   `json:"phase,omitempty"`
	Path    string   `json:"path,omitempty"`
	Values  []string `json:"values,omitempty"`
}

// NewErrorInfo converts a compilation error for the wire
func NewErrorInfo(err error) *ErrorInfo {
	ce, ok := errors.As(err)
	if !ok {
		return &ErrorInfo{Message: err.Error()}
	}
	return &ErrorInfo{
		Message: ce.Message,
		File:    ce.Location.File,
		Line:    ce.Location.Line,
		Code:    ce.Code,
		Phase:   ce.Phase,
		Path:    ce.Path,
		Values:  ce.Values,
	}
}

// EventHub fans rebuild events out to websocket clients
type EventHub struct {
	connections map[*websocket.Conn]bool
	broadcast   chan *Event
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewEventHub creates a hub and starts its dispatch loop
func NewEventHub(logger *zap.Logger) *EventHub {
	h := &EventHub{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan *Event, 256),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		done:        make(chan struct{}),
		logger:      logging.OrNop(logger).Named("events"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     localOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go h.run()

	return h
}

// localOrigin accepts same-origin requests and pages served from localhost
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// run handles the websocket connection lifecycle
func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.connections[conn] = true
			total := len(h.connections)
			h.mutex.Unlock()
			h.logger.Debug("client connected", zap.Int("total", total))

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				conn.Close()
			}
			total := len(h.connections)
			h.mutex.Unlock()
			h.logger.Debug("client disconnected", zap.Int("total", total))

		case event := <-h.broadcast:
			h.sendToAll(event)
		}
	}
}

// sendToAll sends an event to every connected client
func (h *EventHub) sendToAll(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal event", zap.Error(err))
		return
	}

	h.mutex.RLock()
	var failed []*websocket.Conn
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("send failed", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	h.mutex.RUnlock()

	if len(failed) > 0 {
		h.mutex.Lock()
		for _, conn := range failed {
			if _, ok := h.connections[conn]; ok {
				conn.Close()
				delete(h.connections, conn)
			}
		}
		h.mutex.Unlock()
	}
}

// ServeHTTP upgrades the request to a websocket subscribed to all events
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go h.readMessages(conn)
}

// readMessages drains the client side, keeping the connection alive
func (h *EventHub) readMessages(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket error", zap.Error(err))
			}
			return
		}
	}
}

// Publish queues an event for every client. Events published after Close
// are dropped.
func (h *EventHub) Publish(event *Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// NotifyBuilding announces a rebuild triggered by files
func (h *EventHub) NotifyBuilding(files []string) {
	h.Publish(&Event{Type: EventBuilding, Files: files})
}

// NotifySuccess announces a successfully compiled schema
func (h *EventHub) NotifySuccess(duration time.Duration, fingerprint string, tags int) {
	h.Publish(&Event{
		Type:        EventSuccess,
		Duration:    float64(duration.Milliseconds()),
		Fingerprint: fingerprint,
		Tags:        tags,
	})
}

// NotifyError announces a failed rebuild
func (h *EventHub) NotifyError(err error) {
	h.Publish(&Event{Type: EventError, Error: NewErrorInfo(err)})
}

// ConnectionCount returns the number of active connections
func (h *EventHub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections)
}

// Close closes all connections and stops the dispatch loop
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mutex.Lock()
		defer h.mutex.Unlock()
		for conn := range h.connections {
			conn.Close()
		}
		h.connections = make(map[*websocket.Conn]bool)
	})
}
