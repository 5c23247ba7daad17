package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"pdd-quiz-service/internal/app"
	"pdd-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type commandPayload struct {
	Kind domain.CommandKind `json:"kind"`
	Args []string           `json:"args"`
}

type answerPayload struct {
	Index   int `json:"index"`
	Ordinal int `json:"ordinal"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type readyPayload struct {
	UserID  string        `json:"userId"`
	Modes   []domain.Mode `json:"modes"`
	Tickets []int         `json:"tickets"`
}

// ServeWS upgrades HTTP requests to websockets and drives one user's quiz session over
// JSON frames.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if err := conn.WriteJSON(outboundMessage[readyPayload]{Type: "ready", Payload: readyPayload{
		UserID:  userID,
		Modes:   h.service.Modes(),
		Tickets: h.service.Tickets(),
	}}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.dispatch(ctx, userID, inbound) {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, userID string, inbound inboundMessage) []outboundMessage[any] {
	switch inbound.Type {
	case "command":
		var payload commandPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid command payload")
		}
		res, err := h.service.HandleCommand(ctx, userID, payload.Kind, payload.Args)
		if err != nil {
			return fail(err.Error())
		}
		return reply("result", res)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid answer payload")
		}
		res, err := h.service.SubmitAnswer(ctx, userID, domain.AnswerSubmission{Index: payload.Index, Ordinal: payload.Ordinal})
		if err != nil {
			return fail(err.Error())
		}
		return append(reply("answerResult", res), h.next(ctx, userID)...)
	case "skip":
		if err := h.service.Skip(ctx, userID); err != nil {
			return fail(err.Error())
		}
		return append(reply("skipped", struct{}{}), h.next(ctx, userID)...)
	case "next":
		return h.next(ctx, userID)
	case "current":
		d, ok := h.service.Current(ctx, userID)
		if !ok {
			return fail("no active question")
		}
		return reply("question", d)
	case "cancel":
		summary, err := h.service.Cancel(ctx, userID)
		if err != nil {
			return fail(err.Error())
		}
		return reply("summary", summary)
	case "finish":
		summary, err := h.service.Finish(ctx, userID)
		if err != nil {
			return fail(err.Error())
		}
		return reply("summary", summary)
	default:
		return fail("unsupported message type")
	}
}

func (h *WSHandler) next(ctx context.Context, userID string) []outboundMessage[any] {
	step, err := h.service.Next(ctx, userID)
	if err != nil {
		return fail(err.Error())
	}
	if step.Display != nil {
		return reply("question", *step.Display)
	}
	return reply("summary", *step.Summary)
}

func reply(typ string, payload any) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: typ, Payload: payload}}
}

func fail(message string) []outboundMessage[any] {
	return reply("error", errorPayload{Message: message})
}
