package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestTopicNames(t *testing.T) {
	if got := TopicAvailableOrders(12); got != "available-orders:12" {
		t.Errorf("TopicAvailableOrders(12) = %q", got)
	}
	if got := TopicDriver(7); got != "driver:7" {
		t.Errorf("TopicDriver(7) = %q", got)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	// must not block or panic
	h.Publish(TopicDriver(1), Event{Type: "assignment_accepted"})
	if n := h.SubscriberCount(TopicDriver(1)); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
	if topics := h.ActiveTopics(); len(topics) != 0 {
		t.Errorf("ActiveTopics = %v, want none", topics)
	}
}

// dial connects a real websocket client subscribed to the given topics
// and consumes the subscription ack, so the client is known registered.
func dial(t *testing.T, h *Hub, userID uint, topics []string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, userID, topics)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack map[string]interface{}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack["status"] != "subscribed" {
		t.Fatalf("ack = %v, want subscribed", ack)
	}
	return conn
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	h := NewHub()
	conn := dial(t, h, 7, []string{TopicDriver(7)})

	if n := h.SubscriberCount(TopicDriver(7)); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	// an event on a foreign topic must not reach this client
	h.Publish(TopicDriver(99), Event{Type: "assignment_accepted"})
	h.Publish(TopicDriver(7), Event{
		Type:    "assignment_accepted",
		Payload: map[string]interface{}{"order_id": 1},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != "assignment_accepted" {
		t.Errorf("event type = %q", ev.Type)
	}
	if ev.Topic != TopicDriver(7) {
		t.Errorf("event topic = %q, want %q", ev.Topic, TopicDriver(7))
	}
}

func TestDisconnectUnregistersClient(t *testing.T) {
	h := NewHub()
	conn := dial(t, h, 7, []string{TopicDriver(7)})

	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount(TopicDriver(7)) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client still registered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if topics := h.ActiveTopics(); len(topics) != 0 {
		t.Errorf("ActiveTopics = %v after disconnect, want none", topics)
	}
}

// A subscriber that never drains its buffer must not stall a publish;
// the event is dropped instead.
func TestPublishDropsSlowClients(t *testing.T) {
	h := NewHub()
	stuck := &client{
		id:     "stuck",
		userID: 1,
		topics: []string{TopicDriver(1)},
		send:   make(chan []byte),
	}
	h.register(stuck)
	defer h.unregister(stuck)

	done := make(chan struct{})
	go func() {
		h.Publish(TopicDriver(1), Event{Type: "assignment_accepted"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a client with a full buffer")
	}
}
