package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub("127.0.0.1:0")
	if err := h.Start(); err != nil {
		t.Fatalf("Start(): %v", err)
	}
	t.Cleanup(h.Stop)
	return h
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+h.Addr()+"/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the subscriber
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", payload, err)
	}
	return ev
}

func TestPublishCommand(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	h.PublishCommand("color", "blue", 0x0A)

	ev := readEvent(t, conn)
	if ev.Type != EventCommand {
		t.Errorf("type = %q, want %q", ev.Type, EventCommand)
	}
	if ev.Category != "color" || ev.Token != "blue" || ev.Code != 0x0A {
		t.Errorf("event = %+v", ev)
	}
	if ev.Time.IsZero() {
		t.Error("event time not set")
	}
}

func TestPublishFansOut(t *testing.T) {
	h := startHub(t)
	a := dial(t, h)
	b := dial(t, h)

	h.PublishMoisture(618)

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		if ev.Type != EventMoisture || ev.Value != 618 {
			t.Errorf("event = %+v", ev)
		}
	}
}

func TestPublishLink(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	h.PublishLink("connected", "disconnected")

	ev := readEvent(t, conn)
	if ev.Type != EventLink || ev.From != "connected" || ev.To != "disconnected" {
		t.Errorf("event = %+v", ev)
	}
}

func TestStopDisconnectsSubscribers(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	h.Stop()
	h.Stop() // idempotent

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after Stop")
	}
	if h.Subscribers() != 0 {
		t.Errorf("subscribers = %d after Stop, want 0", h.Subscribers())
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := startHub(t)
	// Must not panic or block
	h.PublishCommand("power", "on", 0x07)
}
