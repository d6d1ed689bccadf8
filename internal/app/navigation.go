package app

import (
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
)

// NextQuestion advances one question. In preview mode the last free question leads to
// the registration prompt instead.
func (s *Session) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	idx := s.state.Attempt.CurrentQuestionIndex
	if s.ids.IsPreviewMode && s.state.Status == engine.StatusActive && idx >= s.opts.PreviewQuestions-1 {
		actions := append(s.timeSpentLocked(s.state), engine.PromptRegistration{})
		s.shownAt = s.now()
		s.applyLocked(actions...)
		return
	}
	s.navigateLocked(idx + 1)
}

// PreviousQuestion moves back one question.
func (s *Session) PreviousQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.navigateLocked(s.state.Attempt.CurrentQuestionIndex - 1)
}

// JumpToQuestion moves to index. From the review summary it also returns to the attempt.
func (s *Session) JumpToQuestion(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.navigateLocked(index)
}

func (s *Session) navigateLocked(target int) {
	if !s.canNavigateLocked(target) {
		return
	}
	if s.delayedLocked() {
		if s.pendingNav != nil {
			return
		}
		s.pendingNav = time.AfterFunc(s.opts.PrometricDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.pendingNav = nil
			if s.closed || !s.canNavigateLocked(target) {
				return
			}
			s.applyNavigationLocked(target)
		})
		return
	}
	s.applyNavigationLocked(target)
}

func (s *Session) canNavigateLocked(target int) bool {
	st := s.state
	if !st.Status.AcceptsAttemptActions() {
		return false
	}
	if target < 0 || target >= st.QuestionCount() {
		return false
	}
	return target != st.Attempt.CurrentQuestionIndex || st.Status == engine.StatusReviewingSummary
}

// delayedLocked reports whether navigation waits out the test-centre screen delay.
func (s *Session) delayedLocked() bool {
	return s.state.Status == engine.StatusActive &&
		s.state.Attempt.PracticeTestSettings.PrometricDelay &&
		s.opts.PrometricDelay > 0
}

// applyNavigationLocked records time and submission for the question being left and
// moves to target in a single batch.
func (s *Session) applyNavigationLocked(target int) {
	st := s.state
	var actions []engine.Action
	switch st.Status {
	case engine.StatusReviewingSummary:
		actions = append(actions, engine.CloseReviewSummary{})
	case engine.StatusActive:
		actions = append(actions, s.timeSpentLocked(st)...)
		actions = append(actions, engine.SubmitCurrentAnswer{})
	}
	actions = append(actions, engine.NavigateQuestion{Index: target})
	s.shownAt = s.now()
	s.applyLocked(actions...)
}

// timeSpentLocked returns the time-spent action for the visible question, if any.
func (s *Session) timeSpentLocked(st engine.State) []engine.Action {
	elapsed := s.elapsedLocked()
	if elapsed <= 0 {
		return nil
	}
	return []engine.Action{engine.UpdateTimeSpent{Index: st.Attempt.CurrentQuestionIndex, Delta: elapsed}}
}

func (s *Session) elapsedLocked() int {
	if s.shownAt.IsZero() {
		return 0
	}
	return int(s.now().Sub(s.shownAt) / time.Second)
}
