package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(engine.New(), nil, []string{"http://localhost:5173"})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, stateResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var payload stateResponse
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rr.Body.String())
		}
	}
	return rr, payload
}

func TestHandleState(t *testing.T) {
	h := newTestServer(t).Handler()

	rr, payload := do(t, h, http.MethodGet, "/api/state", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if payload.State.Turn.CurrentPlayer != board.Red || payload.State.Turn.MovesLeft != engine.MovesPerTurn {
		t.Errorf("turn = %+v", payload.State.Turn)
	}
	if payload.State.Red.Pieces != 24 {
		t.Errorf("red pieces = %d", payload.State.Red.Pieces)
	}
}

func TestHandleClick(t *testing.T) {
	h := newTestServer(t).Handler()

	rr, payload := do(t, h, http.MethodPost, "/api/click", `{"x":0,"y":5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if sel := payload.State.Turn.Selected; sel == nil || *sel != (board.Cell{X: 0, Y: 5}) {
		t.Errorf("selected = %v", sel)
	}

	rr, payload = do(t, h, http.MethodPost, "/api/click", `{"x":0,"y":4}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("move: status %d", rr.Code)
	}
	if payload.State.Turn.MovesLeft != 4 {
		t.Errorf("moves left = %d, want 4", payload.State.Turn.MovesLeft)
	}
}

func TestHandleClickRejected(t *testing.T) {
	h := newTestServer(t).Handler()

	rr, payload := do(t, h, http.MethodPost, "/api/click", `{"x":8,"y":0}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	if payload.Error != "That cell is off the board." {
		t.Errorf("error = %q", payload.Error)
	}
	if payload.State.Message != payload.Error {
		t.Errorf("state message = %q, want %q", payload.State.Message, payload.Error)
	}
}

func TestBadRequests(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"invalid json", http.MethodPost, "/api/click", `{"x":`, http.StatusBadRequest},
		{"missing y", http.MethodPost, "/api/click", `{"x":1}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/click", `{"x":1,"y":2,"z":3}`, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/api/mode", `{"mode":"fly"}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/click", ``, http.StatusMethodNotAllowed},
		{"too large", http.MethodPost, "/api/mode", `{"mode":"` + strings.Repeat("a", int(maxJSONBodyBytes)) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestModeEndTurnReset(t *testing.T) {
	h := newTestServer(t).Handler()

	_, payload := do(t, h, http.MethodPost, "/api/mode", `{"mode":"attack"}`)
	if payload.State.Turn.Mode != engine.ModeAttack {
		t.Errorf("mode = %s, want attack", payload.State.Turn.Mode)
	}

	_, payload = do(t, h, http.MethodPost, "/api/end-turn", ``)
	if payload.State.Turn.CurrentPlayer != board.Blue || payload.State.Turn.Mode != engine.ModeMove {
		t.Errorf("after end turn: %+v", payload.State.Turn)
	}

	_, payload = do(t, h, http.MethodPost, "/api/reset", ``)
	if payload.State.Turn.CurrentPlayer != board.Red || payload.State.Turn.Turn != 1 {
		t.Errorf("after reset: %+v", payload.State.Turn)
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/click", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin %q", got)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m wsMessage
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return m
}

// readUntil skips messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		if m := readMessage(t, conn); match(m) {
			return m
		}
	}
	t.Fatal("expected message not received")
	return wsMessage{}
}

func TestWebSocket(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn)
	if first.Type != msgState || first.State.Turn.CurrentPlayer != board.Red {
		t.Fatalf("first message = %+v", first)
	}

	if err := conn.WriteJSON(wsCommand{Type: "click", X: 0, Y: 5}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	sel := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == msgEvent && m.Event != nil && m.Event.Kind == engine.EventSelect
	})
	if sel.State.Turn.Selected == nil {
		t.Error("select event without selection in state")
	}

	// HTTP actions are broadcast to socket clients too.
	resp, err := http.Post(ts.URL+"/api/end-turn", "application/json", nil)
	if err != nil {
		t.Fatalf("POST end-turn: %v", err)
	}
	resp.Body.Close()
	end := readUntil(t, conn, func(m wsMessage) bool {
		return m.Type == msgEvent && m.Event != nil && m.Event.Kind == engine.EventEndTurn
	})
	if end.State.Turn.CurrentPlayer != board.Blue {
		t.Errorf("current player = %s, want Blue", end.State.Turn.CurrentPlayer)
	}

	if err := conn.WriteJSON(wsCommand{Type: "click", X: -1, Y: 0}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	rej := readUntil(t, conn, func(m wsMessage) bool { return m.Type == msgError })
	if rej.Error != "That cell is off the board." {
		t.Errorf("error = %q", rej.Error)
	}

	if n := s.Hub().Len(); n != 1 {
		t.Errorf("hub clients = %d, want 1", n)
	}
}

func TestWebSocketOriginRejected(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	hdr := http.Header{"Origin": []string{"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, hdr); err == nil {
		t.Fatal("Dial from a foreign origin succeeded")
	}
}
