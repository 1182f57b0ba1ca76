package desk

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bondhedge/hedge-engine/internal/metrics"
)

// Event types pushed to WebSocket clients.
const (
	EventCalculationCreated = "calculation_created"
	EventScenariosSwept     = "scenarios_swept"
)

// WSMessage is a JSON message sent to WebSocket clients.
// Decimal values are sent as strings.
type WSMessage struct {
	Type          string `json:"type"`
	CalculationID string `json:"calculation_id"`
	SweepID       string `json:"sweep_id,omitempty"`

	LotsRequired          int64  `json:"lots_required,omitempty"`
	NetReturnWithHedgeINR string `json:"net_return_with_hedge_inr,omitempty"`
	ReturnPercentHedged   string `json:"return_percent_with_hedge,omitempty"`
	CostModel             string `json:"cost_model,omitempty"`

	Rows       int `json:"rows,omitempty"`
	FailedRows int `json:"failed_rows,omitempty"`
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// WSHub fans calculation events out to every connected client.
type WSHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing
// every remaining connection.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			metrics.WebSocketClients.Set(0)
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			slog.Info("ws client connected", "total", total)

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(total))
		}
	}
}

func (h *WSHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(total))
}

// Clients returns the number of connected clients.
func (h *WSHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a message for every connected client. It never blocks;
// messages are dropped when the buffer is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("ws broadcast dropped", "type", msg.Type)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // origins are enforced by the CORS layer
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws.
// The feed is one-way; anything a client sends is discarded.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// Read pump: detect disconnects.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	// Keep the connection alive through proxies.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for range ticker.C {
			h.mu.RLock()
			_, ok := h.clients[conn]
			h.mu.RUnlock()
			if !ok {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}()
}
