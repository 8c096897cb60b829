package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"eduquest-service/internal/app"
	"eduquest-service/internal/domain"
	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	srv, service := newTestServer(t, stubSupplier{qs: sampleQuestions()})
	if _, err := service.Login(context.Background(), app.LoginRequest{Name: "Ana", Course: "4°AHC"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	conn := dial(t, srv.URL, "stats-position-measures")
	defer conn.Close()

	_, payload := readNext(conn, t, "question")
	if payload["total"].(float64) != 2 {
		t.Fatalf("expected 2 questions, got %v", payload["total"])
	}

	send(t, conn, "next", nil)
	readNext(conn, t, "error")

	send(t, conn, "answer", map[string]string{"option": "3"})
	_, payload = readNext(conn, t, "answerResult")
	if payload["correct"] != true {
		t.Fatalf("expected correct answer, got %v", payload)
	}
	send(t, conn, "answer", map[string]string{"option": "1"})
	_, payload = readNext(conn, t, "answerResult")
	if payload["accepted"] != false || payload["answer"] != "3" {
		t.Fatalf("expected duplicate to be ignored, got %v", payload)
	}

	send(t, conn, "next", nil)
	readNext(conn, t, "question")
	send(t, conn, "answer", map[string]string{"option": "P25"})
	readNext(conn, t, "answerResult")
	send(t, conn, "next", nil)
	_, payload = readNext(conn, t, "results")
	if payload["score"].(float64) != 20 || payload["correct"].(float64) != 2 {
		t.Fatalf("unexpected results %v", payload)
	}

	send(t, conn, "finish", nil)
	readNext(conn, t, "completed")

	user, err := service.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Points != 20 {
		t.Fatalf("expected 20 points, got %d", user.Points)
	}
}

func TestWebSocketEmptyState(t *testing.T) {
	srv, service := newTestServer(t, stubSupplier{err: domain.ErrNoQuestions})
	if _, err := service.Login(context.Background(), app.LoginRequest{Name: "Ana", Course: "4°AHC"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	conn := dial(t, srv.URL, "paes-math-prep")
	defer conn.Close()
	_, payload := readNext(conn, t, "empty")
	if payload["state"] != string(app.StateNoQuestions) {
		t.Fatalf("expected no_questions state, got %v", payload)
	}
}

func TestWebSocketRequiresActivity(t *testing.T) {
	srv, _ := newTestServer(t, stubSupplier{})
	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func dial(t *testing.T, serverURL, activityID string) *websocket.Conn {
	t.Helper()
	u := "ws" + serverURL[len("http"):] + "/ws?activityId=" + activityID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(map[string]interface{}{"type": typ, "payload": payload}); err != nil {
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
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
