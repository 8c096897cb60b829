package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"eduquest-service/internal/app"
	"eduquest-service/internal/domain"
	"eduquest-service/internal/pkg/logger"
	"github.com/gorilla/websocket"
)

// WSHandler plays one activity per connection: the server pushes the current
// question, the client answers and advances, and finishing merges the result
// into the learner's profile. Closing the socket early abandons the session.
type WSHandler struct {
	service  *app.QuizService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type resultsPayload struct {
	Score   int `json:"score"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	activityID := r.URL.Query().Get("activityId")
	if activityID == "" {
		http.Error(w, "missing activityId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	started, err := h.service.StartActivity(ctx, activityID)
	if errors.Is(err, domain.ErrNoQuestions) {
		_ = conn.WriteJSON(outboundMessage[app.Snapshot]{Type: "empty", Payload: started.Snapshot})
		return
	}
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	sessionID := started.SessionID
	finished := false
	defer func() {
		if !finished {
			h.service.Abandon(context.WithoutCancel(ctx), sessionID)
		}
	}()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "question", Payload: started.Snapshot}

	for !finished {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			outcome, _, err := h.service.Answer(ctx, sessionID, payload.Option)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: outcome}
		case "next":
			snap, err := h.service.Advance(ctx, sessionID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			if snap.State == app.StateResults {
				send <- outboundMessage[any]{Type: "results", Payload: resultsPayload{
					Score:   snap.Score,
					Correct: snap.Correct,
					Total:   snap.Total,
				}}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: snap}
		case "finish":
			res, err := h.service.Finish(ctx, sessionID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			finished = true
			send <- outboundMessage[any]{Type: "completed", Payload: res}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
