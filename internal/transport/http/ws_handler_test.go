package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"pdd-quiz-service/internal/app"
	"pdd-quiz-service/internal/bank"
	"pdd-quiz-service/internal/domain"
	"pdd-quiz-service/internal/infra/memory"
)

func TestWebSocketExamFlow(t *testing.T) {
	conn := dialTestServer(t)

	msgType, payload := readNext(conn, t, "ready")
	if tickets, _ := payload["tickets"].([]any); len(tickets) != 1 {
		t.Fatalf("expected one ticket in %s payload, got %v", msgType, payload)
	}

	send(t, conn, "command", map[string]any{"kind": "ticket", "args": []string{"1"}})
	_, payload = readNext(conn, t, "result")
	step, _ := payload["step"].(map[string]any)
	display, _ := step["display"].(map[string]any)
	if display["position"] != float64(1) || display["target"] != float64(20) {
		t.Fatalf("expected first question of 20, got %v", payload)
	}

	send(t, conn, "answer", map[string]any{"index": 5, "ordinal": 1})
	_, payload = readNext(conn, t, "error")
	if payload["message"] != domain.ErrInvalidAnswer.Error() {
		t.Fatalf("expected invalid answer error, got %v", payload)
	}

	send(t, conn, "answer", map[string]any{"index": 1, "ordinal": 1})
	_, payload = readNext(conn, t, "answerResult")
	if payload["correct"] != true {
		t.Fatalf("expected correct answer, got %v", payload)
	}
	_, payload = readNext(conn, t, "question")
	if payload["position"] != float64(2) {
		t.Fatalf("expected second question, got %v", payload)
	}

	send(t, conn, "current", nil)
	_, payload = readNext(conn, t, "question")
	if payload["position"] != float64(2) {
		t.Fatalf("expected current to stay on question 2, got %v", payload)
	}

	send(t, conn, "skip", nil)
	readNext(conn, t, "skipped")
	_, payload = readNext(conn, t, "summary")
	if payload["scored"] != float64(1) || payload["attempted"] != float64(1) || payload["passed"] != false {
		t.Fatalf("unexpected summary %v", payload)
	}
}

func TestWebSocketCancel(t *testing.T) {
	conn := dialTestServer(t)
	readNext(conn, t, "ready")

	send(t, conn, "command", map[string]any{"kind": "mode", "args": []string{"express"}})
	readNext(conn, t, "result")
	send(t, conn, "answer", map[string]any{"index": 1})
	readNext(conn, t, "answerResult")
	readNext(conn, t, "question")

	send(t, conn, "cancel", nil)
	_, payload := readNext(conn, t, "summary")
	if payload["state"] != string(domain.StateCancelled) || payload["percentage"] != float64(100) {
		t.Fatalf("expected cancelled summary over attempted, got %v", payload)
	}

	send(t, conn, "dance", nil)
	readNext(conn, t, "error")
}

func TestWebSocketRequiresUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(newTestHandler(t).ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", newTestHandler(t).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newTestHandler(t *testing.T) *WSHandler {
	t.Helper()
	b, err := bank.New(sampleTickets())
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return NewWSHandler(app.NewQuizService(memory.NewSessionStore(), b))
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleTickets() []domain.Ticket {
	question := func(text string) domain.Question {
		return domain.Question{
			Text: text,
			Answers: []domain.Answer{
				{Text: "3", Correct: false},
				{Text: "4", Correct: true},
				{Text: "5", Correct: false},
			},
		}
	}
	return []domain.Ticket{{
		Number:    1,
		Questions: []domain.Question{question("What is 2 + 2?"), question("What is 1 + 3?")},
	}}
}
