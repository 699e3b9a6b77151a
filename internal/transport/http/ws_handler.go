package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"learning-games-service/internal/app"
	"learning-games-service/internal/domain"
	"learning-games-service/internal/logger"
)

type WSHandler struct {
	service  *app.GameService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, log *logger.Logger) *WSHandler {
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

type evaluationPayload struct {
	Evaluated bool                     `json:"evaluated"`
	Result    *domain.EvaluationResult `json:"result,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one game instance per connection.
//
// Inbound messages:
//
//	{"type":"answer","payload":<answer>}   store the in-progress answer
//	{"type":"evaluate"}                    check the stored answer without recording it
//	{"type":"submit","payload":<answer>?}  score and record; payload defaults to the stored answer
//
// Every game event for the learner is forwarded with its own type.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learnerId")
	gameID := r.URL.Query().Get("gameId")
	if learnerID == "" || gameID == "" {
		http.Error(w, "missing learnerId or gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	events, cancel := h.service.Subscribe(ctx, learnerID)
	defer cancel()

	if _, err := h.service.Start(ctx, learnerID, gameID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(ctx, learnerID, gameID)

	out := newOutbox(16, func(msg outboundMessage[any]) error { return conn.WriteJSON(msg) }, h.log)
	closeSignals := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.GameID != gameID {
					continue
				}
				if !out.push(outboundMessage[any]{Type: ev.Type, Payload: ev}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	fail := func(msg string) bool {
		return out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}})
	}

	// A false push means the writer is gone; stop reading so Leave and cancel run.
	for alive := true; alive; {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			answer, err := domain.DecodeAnswer(inbound.Payload)
			if err != nil {
				alive = fail("invalid answer payload")
				continue
			}
			if err := h.service.SetAnswer(ctx, learnerID, gameID, answer); err != nil {
				alive = fail(err.Error())
			}
		case "evaluate":
			result, ok, err := h.service.Evaluate(ctx, learnerID, gameID)
			if err != nil {
				alive = fail(err.Error())
				continue
			}
			alive = out.push(outboundMessage[any]{Type: "evaluation", Payload: newEvaluationPayload(result, ok)})
		case "submit":
			var answer domain.AnswerPayload
			if len(inbound.Payload) > 0 && string(inbound.Payload) != "null" {
				answer, err = domain.DecodeAnswer(inbound.Payload)
				if err != nil {
					alive = fail("invalid answer payload")
					continue
				}
			}
			result, ok, err := h.service.Submit(ctx, learnerID, gameID, answer)
			if err != nil {
				alive = fail(err.Error())
				continue
			}
			alive = out.push(outboundMessage[any]{Type: "result", Payload: newEvaluationPayload(result, ok)})
		default:
			alive = fail("unsupported message type")
		}
	}

	close(closeSignals)
	<-eventsDone
	out.close()
}

// outbox serializes writes to one connection; gorilla connections do not support concurrent
// writers. After the first write error it stops draining and push reports false.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int, write func(outboundMessage[any]) error, log *logger.Logger) *outbox {
	o := &outbox{
		send: make(chan outboundMessage[any], size),
		done: make(chan struct{}),
	}
	go func() {
		defer close(o.done)
		for msg := range o.send {
			if err := write(msg); err != nil {
				log.Warn("ws write error", "error", err)
				return
			}
		}
	}()
	return o
}

// push queues msg, or returns false without blocking once the writer has stopped.
func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

// close must be called once, after the last push.
func (o *outbox) close() {
	close(o.send)
	<-o.done
}

func newEvaluationPayload(result domain.EvaluationResult, ok bool) evaluationPayload {
	if !ok {
		return evaluationPayload{}
	}
	return evaluationPayload{Evaluated: true, Result: &result}
}
