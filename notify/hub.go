package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"mostralo-api/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Event is a change hint pushed to subscribers. The feed is best-effort
// and never authoritative: clients re-fetch through the HTTP API before
// acting.
type Event struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
}

// Publisher is the write side of the feed, all the core needs to know.
type Publisher interface {
	Publish(topic string, event Event)
}

// TopicAvailableOrders is the per-store pool feed.
func TopicAvailableOrders(storeID uint) string {
	return fmt.Sprintf("available-orders:%d", storeID)
}

// TopicDriver is the per-driver invitation/update feed.
func TopicDriver(driverID uint) string {
	return fmt.Sprintf("driver:%d", driverID)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	id     string
	userID uint
	topics []string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans events out to websocket subscribers per topic. Slow clients
// are dropped rather than blocking a publish.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]*client // topic -> client id -> client
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[string]*client)}
}

// Publish sends the event to every subscriber of the topic.
func (h *Hub) Publish(topic string, event Event) {
	event.Topic = topic
	msg, err := json.Marshal(event)
	if err != nil {
		logger.Error("notify: marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.topics[topic] {
		select {
		case c.send <- msg:
		default:
			// buffer full, client is too slow; it will reconnect
			logger.Debug("notify: dropping slow client %s on %s", c.id, topic)
		}
	}
}

// SubscriberCount reports how many clients watch a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ActiveTopics returns every topic with at least one subscriber.
func (h *Hub) ActiveTopics() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.topics))
	for t, subs := range h.topics {
		if len(subs) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range c.topics {
		if h.topics[t] == nil {
			h.topics[t] = make(map[string]*client)
		}
		h.topics[t][c.id] = c
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range c.topics {
		if subs, ok := h.topics[t]; ok {
			if _, ok := subs[c.id]; ok {
				delete(subs, c.id)
				if len(subs) == 0 {
					delete(h.topics, t)
				}
			}
		}
	}
}

// ServeWS upgrades the request and subscribes it to the given topics.
// Topic authorization is the caller's job; the connection stays open
// until the client leaves or stops answering pings.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint, topics []string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("notify: ws upgrade: %v", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		userID: userID,
		topics: topics,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)

	_ = conn.WriteJSON(map[string]interface{}{"status": "subscribed", "topics": topics})

	go c.writePump()
	c.readPump(h)
}

// readPump discards client messages and tears the client down when the
// connection dies. Runs on the request goroutine.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
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
