package notification

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"bridge-be/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan Message
	hub    *Hub
}

// Hub fans messages out to each user's websocket connections. A client
// whose buffer is full is dropped rather than blocking the sender.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub accepts upgrades from allowedOrigin only; an empty origin accepts any.
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *Hub) Push(userID, kind string, data any) {
	msg := Message{Type: kind, Data: data, Timestamp: time.Now().UTC().Format(time.RFC3339)}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		default:
			logger.L().Warn("websocket client too slow, dropping", zap.String("user_id", userID))
			h.drop(c)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to upgrade to websocket", zap.Error(err))
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan Message, sendBuffer), hub: h}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	logger.FromCtx(r.Context()).Info("websocket client connected", zap.Int("client_count", h.ClientCount(userID)))

	go c.writePump()
	go c.readPump()
}

func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.clients {
		for c := range set {
			h.drop(c)
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with mu held.
func (h *Hub) drop(c *client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Warn("websocket read error", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				logger.L().Error("failed to marshal websocket message", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
