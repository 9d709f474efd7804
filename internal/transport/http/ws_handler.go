// Package http exposes the session engine over a websocket, one session per
// connection.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/session"
)

// EngineFactory builds a fresh engine for one connection. notify receives
// the engine's question-context pushes and must be wired into Deps.Notify.
type EngineFactory func(categoryID, userID string, notify func(domain.QuestionContext)) *session.Engine

type WSHandler struct {
	engines  EngineFactory
	upgrader websocket.Upgrader
}

func NewWSHandler(engines EngineFactory) *WSHandler {
	return &WSHandler{
		engines: engines,
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
	Answer string `json:"answer"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type completePayload struct {
	Stats   domain.SessionStats    `json:"stats"`
	Outcome domain.RewardOutcome   `json:"outcome"`
	Review  []domain.AnswerSummary `json:"review"`
}

// ServeWS upgrades the request and drives one quiz session over the socket.
// Inbound types: start, answer, next, prev, reset, state. All engine calls
// happen on the read loop, so session mutations stay serialized per
// connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category")
	userID := r.URL.Query().Get("userId")
	if categoryID == "" || userID == "" {
		http.Error(w, "missing category or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	engine := h.engines(categoryID, userID, func(qc domain.QuestionContext) {
		send <- outboundMessage{Type: "question", Payload: qc}
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			if err := engine.Start(r.Context()); err != nil {
				send <- errorMessage(err)
				continue
			}
			h.sendView(send, engine)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: messagePayload{Message: "invalid answer payload"}}
				continue
			}
			if err := engine.SelectAnswer(r.Context(), payload.Answer); err != nil {
				if !errors.Is(err, domain.ErrPersist) {
					send <- errorMessage(err)
					continue
				}
				// Local progress stands; the write failure is only a warning.
				send <- outboundMessage{Type: "warning", Payload: messagePayload{Message: err.Error()}}
			}
			h.sendAnswerResult(send, engine)
		case "next":
			err := engine.Advance(r.Context())
			if engine.CurrentState() == session.StateComplete {
				if err != nil {
					// Completion stands even if the reward credit failed.
					send <- outboundMessage{Type: "warning", Payload: messagePayload{Message: err.Error()}}
				}
				h.sendComplete(send, engine)
				continue
			}
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			h.sendView(send, engine)
		case "prev":
			if err := engine.Retreat(); err != nil {
				send <- errorMessage(err)
				continue
			}
			h.sendView(send, engine)
		case "reset":
			engine.Reset()
			send <- outboundMessage{Type: "state", Payload: map[string]string{"state": engine.CurrentState().String()}}
		case "state":
			switch engine.CurrentState() {
			case session.StateComplete:
				h.sendComplete(send, engine)
			case session.StateNotStarted:
				send <- outboundMessage{Type: "state", Payload: map[string]string{"state": engine.CurrentState().String()}}
			default:
				h.sendView(send, engine)
			}
		default:
			send <- outboundMessage{Type: "error", Payload: messagePayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) sendView(send chan<- outboundMessage, engine *session.Engine) {
	view, ok := engine.Current()
	if !ok {
		send <- outboundMessage{Type: "noContent", Payload: messagePayload{Message: "no questions available"}}
		return
	}
	send <- outboundMessage{Type: "view", Payload: view}
}

func (h *WSHandler) sendAnswerResult(send chan<- outboundMessage, engine *session.Engine) {
	view, ok := engine.Current()
	if !ok {
		send <- outboundMessage{Type: "noContent", Payload: messagePayload{Message: "no questions available"}}
		return
	}
	if summary, answered := engine.SummaryFor(view.Number); answered {
		send <- outboundMessage{Type: "answerResult", Payload: summary}
	}
}

func (h *WSHandler) sendComplete(send chan<- outboundMessage, engine *session.Engine) {
	outcome, _ := engine.Outcome()
	send <- outboundMessage{Type: "complete", Payload: completePayload{
		Stats:   engine.Stats(),
		Outcome: outcome,
		Review:  engine.Summaries(),
	}}
}

func errorMessage(err error) outboundMessage {
	if errors.Is(err, domain.ErrNoContent) {
		return outboundMessage{Type: "noContent", Payload: messagePayload{Message: err.Error()}}
	}
	return outboundMessage{Type: "error", Payload: messagePayload{Message: err.Error()}}
}
