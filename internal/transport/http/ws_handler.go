package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
	"github.com/DevPanchal02/dental-edge-sub000/internal/timer"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserTier = "X-User-Tier"
)

// WSHandler bridges one websocket connection to one live attempt session.
type WSHandler struct {
	engine   *app.QuizEngine
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(quizEngine *app.QuizEngine, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		engine: quizEngine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type labelPayload struct {
	Label string `json:"label"`
}

type highlightPayload struct {
	ContentKey string `json:"contentKey"`
	HTML       string `json:"html"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type timerPayload struct {
	domain.TimerSnapshot
	Display string `json:"display"`
}

type navigatePayload struct {
	Path      string `json:"path"`
	AttemptID string `json:"attemptId"`
}

type errorPayload struct {
	Code    domain.ErrorCode `json:"code,omitempty"`
	Message string           `json:"message"`
}

// ResultsPath is where the presentation layer shows a finalized attempt.
func ResultsPath(ids domain.QuizIdentifiers, attemptID string) string {
	return fmt.Sprintf("/app/results/%s/%s/%s?attemptId=%s",
		url.PathEscape(ids.TopicID), url.PathEscape(string(ids.SectionType)),
		url.PathEscape(ids.QuizID), url.QueryEscape(attemptID))
}

// NewResultsRouter logs every results hand-off. Connected clients receive the matching
// navigate envelope when their session reaches the completed state.
func NewResultsRouter(logger zerolog.Logger) app.Router {
	log := logger.With().Str("component", "router").Logger()
	return app.RouterFunc(func(ids domain.QuizIdentifiers, attemptID string) {
		log.Info().Str("path", ResultsPath(ids, attemptID)).Msg("show results")
	})
}

// ParseRequest reads the identity headers and the quiz query parameters.
func ParseRequest(r *http.Request) (domain.Identity, domain.QuizIdentifiers) {
	q := r.URL.Query()
	preview, _ := strconv.ParseBool(q.Get("preview"))
	ids := domain.QuizIdentifiers{
		TopicID:         q.Get("topicId"),
		SectionType:     domain.SectionType(q.Get("sectionType")),
		QuizID:          q.Get("quizId"),
		ReviewAttemptID: q.Get("reviewAttemptId"),
		IsPreviewMode:   preview,
	}
	identity := domain.Identity{
		UserID: r.Header.Get(HeaderUserID),
		Tier:   domain.ParseTier(r.Header.Get(HeaderUserTier)),
	}
	return identity, ids
}

// ServeWS upgrades HTTP requests to websockets and wires them into the attempt session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, ids := ParseRequest(r)
	if ids.TopicID == "" || ids.SectionType == "" || ids.QuizID == "" {
		http.Error(w, "missing topicId, sectionType, or quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	// Sessions outlive the upgrade request; the engine owns their context.
	session, err := h.engine.Open(context.Background(), identity, ids)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: toErrorPayload(err)})
		return
	}
	defer h.engine.Leave(session)

	views, cancelViews := session.Subscribe()
	defer cancelViews()
	ticks, cancelTicks := session.SubscribeTimer()
	defer cancelTicks()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		navigated := false
		push := func(msg outboundMessage[any]) bool {
			select {
			case send <- msg:
				return true
			case <-closeSignals:
				return false
			}
		}
		for {
			select {
			case view, ok := <-views:
				if !ok {
					return
				}
				if !push(outboundMessage[any]{Type: "state", Payload: view}) {
					return
				}
				if view.Status == engine.StatusCompleted && !navigated {
					navigated = true
					nav := navigatePayload{Path: ResultsPath(view.Identifiers, view.Attempt.ID), AttemptID: view.Attempt.ID}
					if !push(outboundMessage[any]{Type: "navigate", Payload: nav}) {
						return
					}
				}
			case snap, ok := <-ticks:
				if !ok {
					ticks = nil
					continue
				}
				if !push(outboundMessage[any]{Type: "timer", Payload: timerPayload{TimerSnapshot: snap, Display: timer.Format(snap.Value)}}) {
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
		if err := h.apply(r.Context(), session, inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: toErrorPayload(err)}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupported = errors.New("unsupported message type")

func (h *WSHandler) apply(ctx context.Context, s *app.Session, msg inboundMessage) error {
	switch msg.Type {
	case "selectOption":
		var p labelPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		s.SelectOption(p.Label)
	case "toggleCrossOff":
		var p labelPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		s.ToggleCrossOff(p.Label)
	case "toggleMark":
		s.ToggleMark()
	case "updateHighlight":
		var p highlightPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		s.UpdateHighlight(p.ContentKey, p.HTML)
	case "toggleExhibit":
		s.ToggleExhibit()
	case "toggleSolution":
		s.ToggleSolution()
	case "toggleExplanation":
		s.ToggleExplanation()
	case "nextQuestion":
		s.NextQuestion()
	case "previousQuestion":
		s.PreviousQuestion()
	case "jumpToQuestion":
		var p jumpPayload
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		s.JumpToQuestion(p.Index)
	case "openReviewSummary":
		s.OpenReviewSummary(ctx)
	case "closeReviewSummary":
		s.CloseReviewSummary()
	case "dismissRegistration":
		s.DismissRegistration()
	case "startAttemptWithOptions":
		var p domain.PracticeTestSettings
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		s.StartAttemptWithOptions(ctx, p)
	case "startNewAttempt":
		s.StartNewAttempt(ctx)
	case "resumeAttempt":
		s.ResumeAttempt(ctx)
	case "saveProgress":
		s.SaveProgress(ctx)
	case "finalizeAttempt":
		return s.FinalizeAttempt(ctx)
	default:
		return errUnsupported
	}
	return nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func toErrorPayload(err error) errorPayload {
	var ee *domain.EngineError
	if errors.As(err, &ee) {
		return errorPayload{Code: ee.Code, Message: ee.Message}
	}
	if errors.Is(err, domain.ErrAccessDenied) {
		return errorPayload{Code: domain.ErrCodeAccessDenied, Message: err.Error()}
	}
	return errorPayload{Message: err.Error()}
}
