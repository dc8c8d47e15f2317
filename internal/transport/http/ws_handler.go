package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"emoji-quiz-service/internal/app"
	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/identity"
	"github.com/gorilla/websocket"
)

// Ranker produces a ranked leaderboard for a time window.
type Ranker interface {
	RankUsers(ctx context.Context, window domain.Window) ([]domain.LeaderboardRow, error)
}

type WSHandler struct {
	game     *app.GameService
	wheel    *app.WheelService
	ranker   Ranker
	upgrader websocket.Upgrader
}

func NewWSHandler(game *app.GameService, wheel *app.WheelService, ranker Ranker) *WSHandler {
	return &WSHandler{
		game:   game,
		wheel:  wheel,
		ranker: ranker,
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

type startPayload struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Rounds     int    `json:"rounds"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type spinPayload struct {
	Free bool `json:"free"`
}

type leaderboardPayload struct {
	Window string `json:"window"`
}

type unlockPayload struct {
	Category string `json:"category"`
}

type roundMessage struct {
	Round      int      `json:"round"`
	Rounds     int      `json:"rounds"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	DurationMs int64    `json:"durationMs"`
}

type tickMessage struct {
	RemainingMs int64 `json:"remainingMs"`
}

type roundResultMessage struct {
	Round      int    `json:"round"`
	Correct    bool   `json:"correct"`
	Answer     string `json:"answer"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// use cases. The userId query parameter becomes the connection's identity.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if userID == "" || displayName == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := identity.WithUser(r.Context(), userID)

	if err := h.game.EnsureUser(ctx, displayName); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
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

	// cancelGameEvents tears down the forwarder of the current session's
	// events; starting a new game replaces it.
	var cancelGameEvents func()
	defer func() {
		if cancelGameEvents != nil {
			cancelGameEvents()
		}
	}()

	send <- outboundMessage[any]{Type: "welcome", Payload: map[string]any{"userId": userID, "name": displayName}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid start payload")
				continue
			}
			session, err := h.game.StartGame(ctx, payload.Category, payload.Difficulty, payload.Rounds)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			if cancelGameEvents != nil {
				cancelGameEvents()
			}
			cancelGameEvents = h.forwardGameEvents(session, send, closeSignals)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			// Outcome messages flow through the session's event stream.
			if _, err := h.game.SubmitAnswer(ctx, payload.Choice); err != nil {
				send <- errMsg(err.Error())
			}
		case "spin":
			var payload spinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid spin payload")
				continue
			}
			result, err := h.wheel.Spin(ctx, payload.Free)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "spinResult", Payload: result}
		case "leaderboard":
			var payload leaderboardPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid leaderboard payload")
				continue
			}
			window, ok := domain.ParseWindow(payload.Window)
			if !ok {
				send <- errMsg("unknown leaderboard window")
				continue
			}
			rows, err := h.ranker.RankUsers(ctx, window)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: rows}
		case "unlock":
			var payload unlockPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid unlock payload")
				continue
			}
			if err := h.game.UnlockCategory(ctx, payload.Category); err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "unlocked", Payload: map[string]any{"category": payload.Category}}
		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	if cancelGameEvents != nil {
		cancelGameEvents()
		cancelGameEvents = nil
	}
	close(send)
	<-writerDone
}

// forwardGameEvents subscribes to the session and translates its events into
// outbound messages until the game finishes or the connection closes.
func (h *WSHandler) forwardGameEvents(session *app.GameSession, send chan<- outboundMessage[any], closed <-chan struct{}) func() {
	events, cancel := session.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				msg, final := translateEvent(ev)
				select {
				case send <- msg:
				case <-closed:
					return
				}
				if final {
					return
				}
			case <-closed:
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// translateEvent converts a session event to its wire form. The round event
// deliberately omits the correct answer.
func translateEvent(ev app.Event) (outboundMessage[any], bool) {
	switch e := ev.(type) {
	case app.RoundStarted:
		return outboundMessage[any]{Type: "round", Payload: roundMessage{
			Round:      e.Round,
			Rounds:     e.RoundsTotal,
			Prompt:     e.Options.Question.Prompt,
			Options:    e.Options.Options,
			DurationMs: e.Duration.Milliseconds(),
		}}, false
	case app.TimeLeft:
		return outboundMessage[any]{Type: "tick", Payload: tickMessage{
			RemainingMs: e.Remaining.Milliseconds(),
		}}, false
	case app.RoundResolved:
		return outboundMessage[any]{Type: "roundResult", Payload: roundResultMessage{
			Round:      e.Round,
			Correct:    e.Correct,
			Answer:     e.Answer,
			Awarded:    e.Awarded,
			TotalScore: e.TotalScore,
		}}, false
	case app.GameFinished:
		return outboundMessage[any]{Type: "gameOver", Payload: e.Summary}, true
	}
	return errMsg("unknown session event"), false
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
