package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/bridge"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
	"github.com/DevPanchal02/dental-edge-sub000/internal/timer"
)

// flushTimeout bounds the best-effort save issued by Close.
const flushTimeout = 5 * time.Second

// View is the read model handed to the presentation layer.
type View struct {
	Status       engine.Status             `json:"status"`
	Identifiers  domain.QuizIdentifiers    `json:"identifiers"`
	QuizContent  *domain.QuizContent       `json:"quizContent,omitempty"`
	Attempt      domain.PersistableAttempt `json:"attempt"`
	Timer        domain.TimerSnapshot      `json:"timerSnapshot"`
	TimerDisplay string                    `json:"timerDisplay"`
	UI           engine.UIState            `json:"uiState"`
	Error        *domain.EngineError       `json:"error,omitempty"`
}

// Session runs one attempt for one user and quiz. Every state change goes through the
// session mutex; the clock, autosave and expiry goroutines read state through it as well.
type Session struct {
	ids      domain.QuizIdentifiers
	identity domain.Identity
	content  ContentProvider
	attempts AttemptStore
	cache    LocalCache
	router   Router
	log      zerolog.Logger
	now      func() time.Time
	opts     Options
	clock    *timer.Timer

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	closeOnce sync.Once

	// saveMu serializes progress writes against finalize. Never acquired under mu.
	saveMu sync.Mutex

	mu          sync.Mutex
	state       engine.State
	closed      bool
	finalizing  bool
	viewers     int
	shownAt     time.Time
	pendingNav  *time.Timer
	pendingSave *time.Timer
	subscribers map[chan View]struct{}
}

// NewSession builds an idle session. Call Start to run initialization.
func NewSession(ids domain.QuizIdentifiers, identity domain.Identity, deps Dependencies) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	opts := deps.Options.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ids:      ids,
		identity: identity,
		content:  gateContent(deps.Content, identity, ids),
		attempts: deps.Attempts,
		cache:    scopeCache(deps.Cache, identity.UserID),
		router:   deps.Router,
		log: deps.Logger.With().
			Str("component", "session").
			Str("topic_id", ids.TopicID).
			Str("section", string(ids.SectionType)).
			Str("quiz_id", ids.QuizID).
			Str("user_id", identity.UserID).
			Logger(),
		now:         now,
		opts:        opts,
		clock:       timer.New(opts.TimerPeriod),
		ctx:         ctx,
		cancel:      cancel,
		state:       engine.NewState(),
		subscribers: make(map[chan View]struct{}),
	}
}

// Identifiers returns the quiz tuple the session was opened for.
func (s *Session) Identifiers() domain.QuizIdentifiers {
	return s.ids
}

// Identity returns the user the session belongs to.
func (s *Session) Identity() domain.Identity {
	return s.identity
}

// Start runs initialization once and launches the background loops. Later calls
// are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.watchExpiry()
		if !s.ids.IsPreviewMode {
			go s.autosaveLoop()
		}
		s.initialize(ctx)
	})
}

// Close flushes a best-effort save, stops the background loops and the clock, and
// drops every later dispatch.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		st := s.state.Clone()
		s.closed = true
		if s.pendingNav != nil {
			s.pendingNav.Stop()
			s.pendingNav = nil
		}
		if s.pendingSave != nil {
			s.pendingSave.Stop()
			s.pendingSave = nil
		}
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()

		if st.Status.Saveable() {
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			s.persist(ctx, st, s.clock.Snapshot())
			cancel()
		}
		s.cancel()
		s.clock.Close()
		s.log.Debug().Str("status", string(st.Status)).Msg("session closed")
	})
}

// State returns the current view.
func (s *Session) State() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel of views, seeded with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// SubscribeTimer returns the clock's snapshot stream.
func (s *Session) SubscribeTimer() (<-chan domain.TimerSnapshot, func()) {
	return s.clock.Subscribe()
}

// SelectOption records label as the answer to the current question.
func (s *Session) SelectOption(label string) {
	s.update(func(st engine.State) []engine.Action {
		q, ok := answerable(st)
		if !ok || !q.HasOption(label) {
			return nil
		}
		return []engine.Action{engine.SelectOption{Index: st.Attempt.CurrentQuestionIndex, Label: label}}
	})
}

// ToggleCrossOff flips label's eliminated flag on the current question.
func (s *Session) ToggleCrossOff(label string) {
	applied := s.update(func(st engine.State) []engine.Action {
		q, ok := answerable(st)
		if !ok || !q.HasOption(label) {
			return nil
		}
		return []engine.Action{engine.ToggleCrossOff{Index: st.Attempt.CurrentQuestionIndex, Label: label}}
	})
	if applied {
		s.scheduleSave()
	}
}

// ToggleMark flips the review flag on the current question.
func (s *Session) ToggleMark() {
	s.update(func(st engine.State) []engine.Action {
		if _, ok := answerable(st); !ok {
			return nil
		}
		return []engine.Action{engine.ToggleMark{Index: st.Attempt.CurrentQuestionIndex}}
	})
}

// UpdateHighlight stores the highlighted markup for a content block.
func (s *Session) UpdateHighlight(contentKey, html string) {
	if contentKey == "" {
		return
	}
	applied := s.update(func(st engine.State) []engine.Action {
		if !st.Status.AcceptsAttemptActions() {
			return nil
		}
		return []engine.Action{engine.UpdateHighlight{ContentKey: contentKey, HTML: html}}
	})
	if applied {
		s.scheduleSave()
	}
}

// ToggleExhibit opens or closes the reference exhibit.
func (s *Session) ToggleExhibit() {
	s.update(func(st engine.State) []engine.Action {
		if !st.Status.AcceptsAttemptActions() {
			return nil
		}
		return []engine.Action{engine.ToggleExhibit{}}
	})
}

// ToggleSolution temporarily reveals the current answer. Question banks only.
func (s *Session) ToggleSolution() {
	s.update(func(st engine.State) []engine.Action {
		if !st.Status.AcceptsAttemptActions() || st.Identifiers.SectionType != domain.SectionQBank {
			return nil
		}
		return []engine.Action{engine.ToggleSolution{}}
	})
}

// ToggleExplanation shows the explanation once the answer is revealed or in review.
func (s *Session) ToggleExplanation() {
	s.update(func(st engine.State) []engine.Action {
		if !st.Status.AcceptsAttemptActions() {
			return nil
		}
		idx := st.Attempt.CurrentQuestionIndex
		if !st.UI.SolutionRevealed[idx] && st.Status != engine.StatusReviewingAttempt {
			return nil
		}
		return []engine.Action{engine.ToggleExplanation{}}
	})
}

// OpenReviewSummary captures time on the current question, shows the summary and saves.
func (s *Session) OpenReviewSummary(ctx context.Context) {
	applied := s.update(func(st engine.State) []engine.Action {
		if st.Status != engine.StatusActive {
			return nil
		}
		actions := s.timeSpentLocked(st)
		s.shownAt = s.now()
		return append(actions, engine.OpenReviewSummary{})
	})
	if applied {
		s.SaveProgress(ctx)
	}
}

// CloseReviewSummary returns to the current question.
func (s *Session) CloseReviewSummary() {
	s.update(func(st engine.State) []engine.Action {
		if st.Status != engine.StatusReviewingSummary {
			return nil
		}
		s.shownAt = s.now()
		return []engine.Action{engine.CloseReviewSummary{}}
	})
}

// DismissRegistration closes the preview registration prompt.
func (s *Session) DismissRegistration() {
	s.update(func(st engine.State) []engine.Action {
		if st.Status != engine.StatusPromptingRegistration {
			return nil
		}
		s.shownAt = s.now()
		return []engine.Action{engine.DismissRegistration{}}
	})
}

// StartAttemptWithOptions leaves the options prompt and starts a fresh attempt.
func (s *Session) StartAttemptWithOptions(ctx context.Context, settings domain.PracticeTestSettings) {
	if s.current().Status != engine.StatusPromptingOptions {
		return
	}
	id := s.newAttemptID(ctx)
	applied := s.update(func(st engine.State) []engine.Action {
		if st.Status != engine.StatusPromptingOptions {
			return nil
		}
		return []engine.Action{engine.SetDataAndStart{Content: st.QuizContent, AttemptID: id, Settings: &settings}}
	})
	if applied {
		s.startClock()
	}
}

// StartNewAttempt discards saved progress. Practice sections go back to the options
// prompt; question banks restart immediately.
func (s *Session) StartNewAttempt(ctx context.Context) {
	st := s.current()
	if s.ids.IsReview() || (st.Status != engine.StatusPromptingResume && !st.Status.Saveable()) {
		return
	}
	s.clock.Stop()
	s.discardProgress(ctx, st.Attempt.ID)

	if s.ids.SectionType == domain.SectionPractice {
		s.dispatch(engine.PromptOptions{Content: st.QuizContent})
		s.clock.Initialize(0, timer.CountUp)
		return
	}
	id := s.newAttemptID(ctx)
	if s.dispatch(engine.ResetAttempt{NewAttemptID: id}) {
		s.startClock()
	}
}

// ResumeAttempt accepts the resume prompt.
func (s *Session) ResumeAttempt(ctx context.Context) {
	applied := s.update(func(st engine.State) []engine.Action {
		if st.Status != engine.StatusPromptingResume {
			return nil
		}
		s.shownAt = s.now()
		return []engine.Action{engine.ResumeAttempt{}}
	})
	if !applied || s.current().Status != engine.StatusActive {
		return
	}
	snap := s.clock.Snapshot()
	if snap.IsCountdown && snap.Value == 0 {
		if err := s.finalize(ctx, true); err != nil {
			s.log.Warn().Err(err).Msg("finalize of expired attempt failed")
		}
		return
	}
	s.clock.Start()
}

// FinalizeAttempt scores and submits the attempt.
func (s *Session) FinalizeAttempt(ctx context.Context) error {
	return s.finalize(ctx, false)
}

func (s *Session) current() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) dispatch(actions ...engine.Action) bool {
	return s.update(func(engine.State) []engine.Action { return actions })
}

// update applies the actions build returns as one atomic batch. build runs under the
// session lock and returns nil to drop the event.
func (s *Session) update(build func(st engine.State) []engine.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	actions := build(s.state)
	if len(actions) == 0 {
		return false
	}
	s.applyLocked(actions...)
	return true
}

func (s *Session) applyLocked(actions ...engine.Action) {
	for _, action := range actions {
		s.state = engine.Reduce(s.state, action)
	}
	s.broadcastLocked()
}

func (s *Session) fail(err error) {
	ee := domain.NormalizeError(err)
	s.log.Error().Str("code", string(ee.Code)).Str("detail", ee.Detail).Msg("session failed")
	s.clock.Stop()
	s.dispatch(engine.SetError{Payload: ee})
}

func (s *Session) startClock() {
	st := s.current()
	s.clock.Restore(st.Timer)
	s.clock.Start()
	s.mu.Lock()
	s.shownAt = s.now()
	s.mu.Unlock()
}

func (s *Session) attach() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.viewers++
	return true
}

func (s *Session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewers > 0 {
		s.viewers--
	}
}

// IsEmpty reports whether no viewer is attached.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewers == 0
}

func (s *Session) broadcastLocked() {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *Session) viewLocked() View {
	snap := s.clock.Snapshot()
	var errCopy *domain.EngineError
	if s.state.Error != nil {
		e := *s.state.Error
		errCopy = &e
	}
	return View{
		Status:       s.state.Status,
		Identifiers:  s.state.Identifiers,
		QuizContent:  s.state.QuizContent,
		Attempt:      bridge.Serialize(s.state.Attempt),
		Timer:        snap,
		TimerDisplay: timer.Format(snap.Value),
		UI:           s.state.UI.Clone(),
		Error:        errCopy,
	}
}

// answerable returns the current question when answers, marks and cross-offs apply.
func answerable(st engine.State) (domain.Question, bool) {
	if !st.Status.AcceptsAttemptActions() || st.Status == engine.StatusReviewingAttempt {
		return domain.Question{}, false
	}
	q, ok := st.CurrentQuestion()
	if !ok || q.IsInert() {
		return domain.Question{}, false
	}
	return q, true
}
