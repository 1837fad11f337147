package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
)

var errUnsupportedMessage = errors.New("unsupported message type")

// WSHandler streams live board updates to admin clients and accepts the
// mutation commands that drive them.
type WSHandler struct {
	service  *app.LedgerService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.LedgerService) *WSHandler {
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

type statusPayload struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

type quizPayload struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type ackPayload struct {
	Op string `json:"op"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and wires it into a board subscription.
// Query params: mode=daily|overall, date=YYYY-MM-DD (daily only).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = domain.BoardDaily
	}
	date := r.URL.Query().Get("date")
	if mode == domain.BoardDaily && date == "" {
		http.Error(w, "missing date", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), mode, date)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case board, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "board", Payload: board}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.handleCommand(r, mode, date, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		send <- outboundMessage[any]{Type: "ack", Payload: ackPayload{Op: inbound.Type}}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleCommand(r *http.Request, mode, date string, inbound inboundMessage) error {
	if mode != domain.BoardDaily {
		return domain.ErrInvalidBoardMode
	}
	switch inbound.Type {
	case "setStatus":
		var payload statusPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.ErrInvalidPayload
		}
		return h.service.MarkAttendance(r.Context(), date, payload.StudentID, domain.Status(payload.Status))
	case "logQuiz":
		var payload quizPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.ErrInvalidPayload
		}
		return h.service.LogQuizResult(r.Context(), date, domain.QuizDay{
			First:  payload.First,
			Second: payload.Second,
			Third:  payload.Third,
		})
	case "resetDay":
		return h.service.ResetAttendanceDay(r.Context(), date)
	case "resetQuizDay":
		return h.service.ResetQuizDay(r.Context(), date)
	default:
		return errUnsupportedMessage
	}
}
