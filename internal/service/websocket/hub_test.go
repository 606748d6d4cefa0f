package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sid110307/FaceCounter/internal/logger"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*HubService, context.CancelFunc) {
	t.Helper()

	log, err := logger.NewQuiet(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })

	hub := NewHubService(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func dialViewer(t *testing.T, hub *HubService) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *HubService, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, hub.GetClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubService_Broadcast(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	conn := dialViewer(t, hub)
	waitForClients(t, hub, 1)

	if !hub.Broadcast([]byte(`{"faces":2}`)) {
		t.Fatal("expected broadcast to be queued")
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(message) != `{"faces":2}` {
		t.Errorf("unexpected message %s", message)
	}
}

func TestHubService_BroadcastDropsWhenBusy(t *testing.T) {
	log, err := logger.NewQuiet(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Close()

	// Not running: the single buffered slot fills and the next frame is dropped.
	hub := NewHubService(log)
	if !hub.Broadcast([]byte("first")) {
		t.Fatal("expected first broadcast to be queued")
	}
	if hub.Broadcast([]byte("second")) {
		t.Error("expected second broadcast to be dropped")
	}
}

func TestHubService_RunDisconnectsOnCancel(t *testing.T) {
	hub, cancel := newTestHub(t)

	dialViewer(t, hub)
	waitForClients(t, hub, 1)

	cancel()
	waitForClients(t, hub, 0)

	if hub.Register(nil) {
		t.Error("Register should fail after the hub stopped")
	}
}
