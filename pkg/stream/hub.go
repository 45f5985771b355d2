// Package stream pushes live dashboard data to websocket clients.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nspass/nspass-mockd/pkg/logging"
)

// MessageOverview is the type of dashboard snapshot messages.
const MessageOverview = "overview"

const (
	sendBuffer = 8
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is one frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) { h.log = logging.Component(log, "stream") }
}

// WithOriginCheck replaces the default same-origin policy.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

// WithClientGauge is called with the client count after every change.
func WithClientGauge(fn func(n int)) Option {
	return func(h *Hub) { h.onCount = fn }
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and broadcasts snapshots to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	snapshot func() any
	upgrader websocket.Upgrader
	onCount  func(int)
	log      *slog.Logger
}

// NewHub returns a hub whose snapshot function produces the overview
// payload sent on connect and on every Publish.
func NewHub(snapshot func() any, opts ...Option) *Hub {
	h := &Hub{
		clients:  make(map[*client]struct{}),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// sameOrigin allows requests without an Origin header, localhost origins,
// and origins matching the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.Contains(origin, "://localhost:") || strings.Contains(origin, "://127.0.0.1:") {
		return true
	}
	if host, ok := strings.CutPrefix(origin, "http://"); ok {
		return host == r.Host
	}
	if host, ok := strings.CutPrefix(origin, "https://"); ok {
		return host == r.Host
	}
	return false
}

// ServeHTTP upgrades the connection and streams messages until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if h.snapshot != nil {
		if msg, err := encode(MessageOverview, h.snapshot()); err == nil {
			c.send <- msg
		}
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// Publish sends a fresh overview snapshot to every client.
func (h *Hub) Publish() {
	if h.snapshot == nil {
		return
	}
	h.Broadcast(MessageOverview, h.snapshot())
}

// Broadcast sends one message to every client. Slow clients miss it.
func (h *Hub) Broadcast(typ string, data any) {
	msg, err := encode(typ, data)
	if err != nil {
		h.log.Warn("encoding stream message failed", "type", typ, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
	h.count(0)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.count(n)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.count(n)
	}
}

func (h *Hub) count(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// readPump discards client frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(typ string, data any) ([]byte, error) {
	return json.Marshal(Message{Type: typ, Data: data})
}
