package engine

import (
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// Action is any input to Reduce.
type Action interface {
	Type() string
}

// Lifecycle actions.
type (
	InitializeAttempt struct {
		Identifiers domain.QuizIdentifiers
	}
	PromptOptions struct {
		Content *domain.QuizContent
	}
	PromptResume struct {
		Attempt domain.AttemptState
		Timer   domain.TimerSnapshot
		Content *domain.QuizContent
	}
	SetDataAndStart struct {
		Content   *domain.QuizContent
		AttemptID string
		Settings  *domain.PracticeTestSettings
		// Duration overrides the computed countdown length in seconds. It is ignored
		// for sections that count up.
		Duration *int
	}
	ResumeAttempt struct{}
	ResetAttempt  struct {
		NewAttemptID string
	}
	FinalizeSuccess struct {
		AttemptID string
	}
	SetError struct {
		Payload any
	}
	OpenReviewSummary   struct{}
	CloseReviewSummary  struct{}
	PromptRegistration  struct{}
	DismissRegistration struct{}
)

// Attempt actions.
type (
	SelectOption struct {
		Index int
		Label string
	}
	ToggleCrossOff struct {
		Index int
		Label string
	}
	ToggleMark struct {
		Index int
	}
	NavigateQuestion struct {
		Index int
	}
	SubmitCurrentAnswer struct{}
	UpdateTimeSpent     struct {
		Index int
		Delta int
	}
	UpdateHighlight struct {
		ContentKey string
		HTML       string
	}
)

// UI actions.
type (
	ToggleExhibit     struct{}
	ToggleSolution    struct{}
	ToggleExplanation struct{}
	SetIsSaving       struct {
		Saving bool
	}
)

func (InitializeAttempt) Type() string   { return "INITIALIZE_ATTEMPT" }
func (PromptOptions) Type() string       { return "PROMPT_OPTIONS" }
func (PromptResume) Type() string        { return "PROMPT_RESUME" }
func (SetDataAndStart) Type() string     { return "SET_DATA_AND_START" }
func (ResumeAttempt) Type() string       { return "RESUME_ATTEMPT" }
func (ResetAttempt) Type() string        { return "RESET_ATTEMPT" }
func (FinalizeSuccess) Type() string     { return "FINALIZE_SUCCESS" }
func (SetError) Type() string            { return "SET_ERROR" }
func (OpenReviewSummary) Type() string   { return "OPEN_REVIEW_SUMMARY" }
func (CloseReviewSummary) Type() string  { return "CLOSE_REVIEW_SUMMARY" }
func (PromptRegistration) Type() string  { return "PROMPT_REGISTRATION" }
func (DismissRegistration) Type() string { return "DISMISS_REGISTRATION" }

func (SelectOption) Type() string        { return "SELECT_OPTION" }
func (ToggleCrossOff) Type() string      { return "TOGGLE_CROSS_OFF" }
func (ToggleMark) Type() string          { return "TOGGLE_MARK" }
func (NavigateQuestion) Type() string    { return "NAVIGATE_QUESTION" }
func (SubmitCurrentAnswer) Type() string { return "SUBMIT_CURRENT_ANSWER" }
func (UpdateTimeSpent) Type() string     { return "UPDATE_TIME_SPENT" }
func (UpdateHighlight) Type() string     { return "UPDATE_HIGHLIGHT" }

func (ToggleExhibit) Type() string     { return "TOGGLE_EXHIBIT" }
func (ToggleSolution) Type() string    { return "TOGGLE_SOLUTION" }
func (ToggleExplanation) Type() string { return "TOGGLE_EXPLANATION" }
func (SetIsSaving) Type() string       { return "SET_IS_SAVING" }
