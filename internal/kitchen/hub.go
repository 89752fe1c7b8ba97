// Package kitchen streams order events to kitchen display screens over
// WebSocket.
package kitchen

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"comanda/internal/models"
	"comanda/internal/restaurant"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // displays run on the local network
	},
}

// Message is the frame pushed to displays. Snapshot frames carry the current
// queue; event frames carry one order change.
type Message struct {
	Type   string            `json:"type"`
	Event  *restaurant.Event `json:"event,omitempty"`
	Orders []models.Order    `json:"orders,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

// QueueFunc returns the orders the kitchen is working on
type QueueFunc func() []models.Order

// Hub fans order events out to connected displays
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	queue   QueueFunc
	logger  zerolog.Logger
}

// client holds back events until its snapshot is queued so a display never
// sees an event older than its snapshot replace a newer one.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	ready   bool
	pending [][]byte
}

// NewHub creates a hub. queue may be nil, in which case new displays get an
// empty snapshot.
func NewHub(queue QueueFunc, logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		queue:   queue,
		logger:  logger.With().Str("component", "kitchen_hub").Logger(),
	}
}

// Clients returns the number of connected displays
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Observe broadcasts every event except table rejections, which never reach
// the kitchen.
func (h *Hub) Observe(event restaurant.Event) {
	if event.Type == restaurant.EventTableRejected {
		return
	}
	h.Broadcast(Message{Type: "event", Event: &event, SentAt: time.Now()})
}

// Broadcast queues msg on every client. Slow clients drop the frame.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode kitchen message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.deliver(data)
	}
}

// HandleWebSocket upgrades the request and registers the display
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	cl := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	// register before reading the queue so no event falls between the two
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	var orders []models.Order
	if h.queue != nil {
		orders = h.queue()
	}
	snapshot, err := json.Marshal(Message{Type: "snapshot", Orders: orders, SentAt: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode kitchen snapshot")
	}
	cl.start(snapshot)
	h.logger.Info().Str("remote", c.Request.RemoteAddr).Msg("display connected")

	go cl.writePump()
	go cl.readPump()
}

// start queues the snapshot followed by the events held back while it was
// being read.
func (c *client) start(snapshot []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snapshot != nil {
		c.push(snapshot)
	}
	for _, data := range c.pending {
		c.push(data)
	}
	c.pending = nil
	c.ready = true
}

func (c *client) deliver(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		c.pending = append(c.pending, data)
		return
	}
	c.push(data)
}

// push never blocks; a full buffer drops the frame. Callers hold c.mu.
func (c *client) push(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn().Msg("display buffer full, dropping message")
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump only services control frames; displays do not send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("display connection error")
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
