package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const pingInterval = 15 * time.Second

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub accepts websocket peers and relays every message a peer sends to all
// other peers and to local subscribers. A peer or subscriber that cannot
// keep up loses messages.
type Hub struct {
	log    *zap.Logger
	buffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	subs    map[chan Message]struct{}
}

func NewHub(log *zap.Logger, buffer int) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		log:     log,
		buffer:  buffer,
		clients: map[*client]struct{}{},
		subs:    map[chan Message]struct{}{},
	}
}

// Subscribe returns a channel receiving every message peers send.
func (h *Hub) Subscribe() chan Message {
	ch := make(chan Message, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Clients reports the number of connected peers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends a locally originated message to every peer. Local
// subscribers do not see it.
func (h *Hub) Publish(msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	for c := range h.clients {
		h.enqueue(c, b)
	}
	h.mu.RUnlock()
}

func (h *Hub) relay(from *client, msg Message, raw []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c != from {
			h.enqueue(c, raw)
		}
	}
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.log.Debug("relay subscriber lagging, message dropped", zap.String("act", msg.Act))
		}
	}
}

func (h *Hub) enqueue(c *client, b []byte) {
	select {
	case c.send <- b:
	default:
		h.log.Debug("relay peer lagging, message dropped", zap.String("peer", c.id))
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn("relay accept failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.buffer)}
	hello, _ := json.Marshal(Hello())

	// Registered before the greeting so a peer that has seen hello is
	// already receiving relayed messages.
	h.mu.Lock()
	h.clients[c] = struct{}{}
	c.send <- hello
	h.mu.Unlock()
	h.log.Info("relay peer connected", zap.String("peer", c.id))

	ctx, cancel := context.WithCancel(r.Context())
	done := make(chan struct{})
	go h.writeLoop(ctx, c, done)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Act == "" {
			h.log.Debug("relay dropped malformed message", zap.String("peer", c.id))
			continue
		}
		if msg.Act == ActHello {
			continue
		}
		h.relay(c, msg, data)
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	cancel()
	<-done
	h.log.Info("relay peer disconnected", zap.String("peer", c.id))
}

func (h *Hub) writeLoop(ctx context.Context, c *client, done chan<- struct{}) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
		close(done)
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
