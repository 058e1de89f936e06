// Package websocket fans inventory events out to connected watchers.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wms/internal/authz"
	"wms/internal/logger"
	"wms/internal/metrics"
	"wms/internal/model"
	"wms/internal/token"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers are authenticated by the token query parameter, not by origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Verifier checks a bearer token and returns its claims.
type Verifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Client is one connected watcher.
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	watchers   atomic.Int32
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log.With(logger.Component("ws_hub")),
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.Send)
			delete(h.clients, c)
		}
		h.setWatchers()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setWatchers()
			h.log.Info("watcher connected", zap.String("client_id", c.ID))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
				h.setWatchers()
				h.log.Info("watcher disconnected", zap.String("client_id", c.ID))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(c.Send)
					delete(h.clients, c)
					h.log.Warn("dropping slow watcher", zap.String("client_id", c.ID))
				}
			}
			h.setWatchers()
		}
	}
}

func (h *Hub) setWatchers() {
	h.watchers.Store(int32(len(h.clients)))
	metrics.SetWatchers(len(h.clients))
}

// Watchers reports how many clients are connected.
func (h *Hub) Watchers() int { return int(h.watchers.Load()) }

// Publish queues ev for every watcher. It never blocks the caller.
func (h *Hub) Publish(ev model.InventoryEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encode inventory event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, event dropped", zap.String("event", ev.Event))
	}
}

// writePump writes queued messages, batching anything already waiting into one
// newline-separated frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			n := len(c.Send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.Send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.Hub.log.Warn("watcher read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

// ServeWs upgrades an authenticated request. The token travels in the "token"
// query parameter because browsers cannot set headers on websocket requests.
func ServeWs(hub *Hub, v Verifier, c *gin.Context) {
	log := logger.From(c.Request.Context())

	raw := c.Query("token")
	if raw == "" {
		log.Info("websocket rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims, err := v.Verify(raw)
	if err != nil {
		log.Info("websocket rejected: invalid token", zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if err := authz.Check(claims.Identity(), authz.InventoryWatch, 0); err != nil {
		metrics.AuthzDenied(string(authz.InventoryWatch))
		log.Info("websocket rejected", zap.Error(err))
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{ID: uuid.NewString(), Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer)}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
