// Package engine holds the pure state transitions of a quiz attempt session: the
// lifecycle reducer and the attempt and UI sub-reducers it composes.
package engine

import (
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// Status drives which other slices of State are meaningful.
type Status string

const (
	StatusInitializing          Status = "initializing"
	StatusLoading               Status = "loading"
	StatusPromptingOptions      Status = "prompting_options"
	StatusPromptingResume       Status = "prompting_resume"
	StatusActive                Status = "active"
	StatusReviewingSummary      Status = "reviewing_summary"
	StatusReviewingAttempt      Status = "reviewing_attempt"
	StatusPromptingRegistration Status = "prompting_registration"
	StatusCompleted             Status = "completed"
	StatusError                 Status = "error"
)

// AcceptsAttemptActions reports whether attempt and UI actions may be dispatched.
// The reducers do not check this; callers gate on it.
func (s Status) AcceptsAttemptActions() bool {
	switch s {
	case StatusActive, StatusReviewingAttempt, StatusReviewingSummary:
		return true
	}
	return false
}

// Saveable reports whether in-progress persistence applies.
func (s Status) Saveable() bool {
	return s == StatusActive || s == StatusReviewingSummary
}

// Terminal reports whether no further transition is expected short of a fresh initialize.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// UIState holds ephemeral view flags. Per-question flags are sparse.
type UIState struct {
	ExhibitOpen      bool         `json:"exhibitOpen"`
	SolutionRevealed map[int]bool `json:"solutionRevealed"`
	ExplanationShown map[int]bool `json:"explanationShown"`
	IsSaving         bool         `json:"isSaving"`
}

// NewUIState returns cleared flags.
func NewUIState() UIState {
	return UIState{
		SolutionRevealed: map[int]bool{},
		ExplanationShown: map[int]bool{},
	}
}

// Clone returns a deep copy.
func (u UIState) Clone() UIState {
	out := u
	out.SolutionRevealed = make(map[int]bool, len(u.SolutionRevealed))
	for k, v := range u.SolutionRevealed {
		out.SolutionRevealed[k] = v
	}
	out.ExplanationShown = make(map[int]bool, len(u.ExplanationShown))
	for k, v := range u.ExplanationShown {
		out.ExplanationShown[k] = v
	}
	return out
}

// State is the whole session tree. QuizContent is shared read-only between copies.
type State struct {
	Status      Status
	Identifiers domain.QuizIdentifiers
	QuizContent *domain.QuizContent
	Attempt     domain.AttemptState
	Timer       domain.TimerSnapshot
	UI          UIState
	Error       *domain.EngineError
}

// NewState returns the pre-initialization state.
func NewState() State {
	return State{
		Status:  StatusInitializing,
		Attempt: domain.NewAttemptState(""),
		UI:      NewUIState(),
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s State) Clone() State {
	out := s
	out.Attempt = s.Attempt.Clone()
	out.UI = s.UI.Clone()
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}

// QuestionCount returns the number of loaded questions.
func (s State) QuestionCount() int {
	return s.QuizContent.QuestionCount()
}

// CurrentQuestion returns the question at the current index.
func (s State) CurrentQuestion() (domain.Question, bool) {
	return s.QuizContent.Question(s.Attempt.CurrentQuestionIndex)
}
