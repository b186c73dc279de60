package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// wait for the hub to register the client before broadcasting
	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(Event{Type: EventModelReloaded})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if evt.Type != EventModelReloaded {
		t.Fatalf("unexpected event type %q", evt.Type)
	}
	if evt.Timestamp.IsZero() {
		t.Fatal("event missing timestamp")
	}
}

// An upgrade landing after the hub stopped must not leave the handler
// goroutine parked on the register channel.
func TestHandleWSAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	returned := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWS(w, r)
		close(returned)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after hub stop")
	}
}

// The upgrade must survive the full middleware stack, which wraps the
// response writer for status logging. A wrapper without hijack support
// would fail every handshake with a 500.
func TestWebSocketUpgradeThroughMiddleware(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	mux := http.NewServeMux()
	NewHandlers(&fakeProvider{}, hub, ModelInfo{}).Register(mux)

	cfg := DefaultServerConfig()
	chain := Chain(
		RecoveryMiddleware,
		LoggerMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware(cfg.AllowedOrigins),
		TimeoutMiddleware(cfg.Timeout),
		RequestSizeMiddleware(cfg.MaxRequestBytes),
	)

	srv := httptest.NewServer(chain(mux))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial through middleware: %v", err)
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(Event{Type: EventModelReloaded})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if evt.Type != EventModelReloaded {
		t.Fatalf("unexpected event type %q", evt.Type)
	}
}
