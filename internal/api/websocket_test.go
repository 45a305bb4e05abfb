package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"bomb-arena/internal/game"
	"bomb-arena/internal/input"
)

func startHub(t *testing.T, cfg HubConfig, in InputInterface) (*WebSocketHub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewWebSocketHub(cfg, in)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return hub, ts, cancel
}

func dial(t *testing.T, ts *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	return websocket.DefaultDialer.Dial(url, nil)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestWebSocketStateBroadcast tests that connected clients receive game:state
func TestWebSocketStateBroadcast(t *testing.T) {
	hub, ts, _ := startHub(t, HubConfig{}, nil)

	conn, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.StartBroadcastLoop(ctx, NewMockSession(), 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var msg struct {
		Event string          `json:"event"`
		Raw   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Event != "game:state" {
		t.Errorf("Expected game:state, got %q", msg.Event)
	}
	if !strings.Contains(string(msg.Raw), `"levelName":"Basic"`) {
		t.Errorf("Unexpected payload: %s", msg.Raw)
	}
}

// TestWebSocketSkipsUnchangedSnapshot tests that a stale sequence is not resent
func TestWebSocketSkipsUnchangedSnapshot(t *testing.T) {
	hub, ts, _ := startHub(t, HubConfig{}, nil)
	conn, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	session := NewMockSession()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.StartBroadcastLoop(ctx, session, 5*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("First read failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(60 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("Expected no message for an unchanged snapshot")
	}
}

// TestWebSocketInput tests that client messages reach the input state
func TestWebSocketInput(t *testing.T) {
	state := input.NewState(0)
	hub, ts, _ := startHub(t, HubConfig{}, state)

	conn, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"jump","pressed":true}`))
	if err := conn.WriteJSON(input.Message{Action: "bomb", Pressed: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	waitFor(t, "bomb pressed", func() bool { return state.IsActionPressed(game.ActionBomb) })
}

// TestWebSocketPerIPLimit tests the per-IP connection cap
func TestWebSocketPerIPLimit(t *testing.T) {
	hub, ts, _ := startHub(t, HubConfig{MaxConnectionsPerIP: 1}, nil)

	first, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	_, resp, err := dial(t, ts)
	if err == nil {
		t.Fatal("Expected second connection to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %v", resp)
	}

	first.Close()
	waitFor(t, "slot release", func() bool { return hub.wsLimiter.Count("127.0.0.1") == 0 })

	again, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Reconnect after release failed: %v", err)
	}
	again.Close()
}

// TestWebSocketOriginRejected tests the origin check
func TestWebSocketOriginRejected(t *testing.T) {
	_, ts, _ := startHub(t, HubConfig{Origins: []string{"https://arena.example"}}, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Expected origin rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
}

// TestWebSocketHubShutdown tests that cancelling Run disconnects clients
func TestWebSocketHubShutdown(t *testing.T) {
	hub, ts, cancel := startHub(t, HubConfig{}, nil)

	conn, _, err := dial(t, ts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	cancel()
	waitFor(t, "drain", func() bool { return hub.ClientCount() == 0 })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to close")
	}
}
