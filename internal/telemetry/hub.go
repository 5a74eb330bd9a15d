package telemetry

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/greenshed/plantnode/internal/logging"
	"go.uber.org/zap"
)

// Event types pushed to telemetry subscribers.
const (
	EventCommand  = "command"
	EventMoisture = "moisture"
	EventLink     = "link"
)

// Event is one telemetry message, JSON-encoded on the wire.
type Event struct {
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Category string    `json:"category,omitempty"`
	Token    string    `json:"token,omitempty"`
	Code     int       `json:"code,omitempty"`
	Value    int       `json:"value,omitempty"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to,omitempty"`
}

const writeTimeout = 5 * time.Second

// Hub streams node events to websocket subscribers on /events. It runs
// beside the REST service on its own port so the REST surface keeps its
// single-client contract; each subscriber gets its own goroutine.
type Hub struct {
	addr string

	upgrader websocket.Upgrader
	srv      *http.Server
	ln       net.Listener

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates a hub bound to addr (e.g. ":8480").
func NewHub(addr string) *Hub {
	return &Hub{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Local-subnet device, same policy as the REST surface
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Start begins accepting subscribers.
func (h *Hub) Start() error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	h.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleSubscribe)
	h.srv = &http.Server{Handler: mux}
	go func() {
		if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Error("telemetry server failed", zap.Error(err))
		}
	}()

	logging.Info("telemetry hub started", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (h *Hub) Addr() string {
	if h.ln == nil {
		return ""
	}
	return h.ln.Addr().String()
}

// Update is a no-op: subscribers are serviced on their own goroutines.
func (h *Hub) Update() error { return nil }

// Stop disconnects all subscribers and closes the listener. Idempotent.
func (h *Hub) Stop() {
	if h.srv == nil {
		return
	}
	h.mu.Lock()
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.mu.Unlock()

	_ = h.srv.Close()
	h.srv = nil
	h.ln = nil
	logging.Info("telemetry hub stopped")
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("telemetry upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	logging.Info("telemetry subscriber connected", zap.String("remote_addr", r.RemoteAddr))

	// Reader loop only exists to notice the peer going away
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	_ = conn.Close()
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Publish fans an event out to every subscriber. Slow or dead subscribers
// are dropped rather than allowed to stall the node.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Error("failed to marshal telemetry event", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Warn("telemetry write failed, dropping subscriber", zap.Error(err))
			h.drop(conn)
		}
	}
}

// PublishCommand satisfies the REST service's event sink.
func (h *Hub) PublishCommand(category, token string, code byte) {
	h.Publish(Event{
		Type:     EventCommand,
		Category: category,
		Token:    token,
		Code:     int(code),
	})
}

// PublishMoisture reports a sensor sample.
func (h *Hub) PublishMoisture(value int) {
	h.Publish(Event{Type: EventMoisture, Value: value})
}

// PublishLink satisfies the station supervisor's link sink.
func (h *Hub) PublishLink(from, to string) {
	h.Publish(Event{Type: EventLink, From: from, To: to})
}
