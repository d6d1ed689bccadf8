package engine

import (
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

const (
	// DefaultPracticeDuration is the practice-test length when metadata names none.
	DefaultPracticeDuration = 180 * 60
	// AdditionalTimeNumerator and AdditionalTimeDenominator scale the duration by 1.5.
	AdditionalTimeNumerator   = 3
	AdditionalTimeDenominator = 2
)

// ComputeTimer returns the starting timer for a new attempt. Practice sections count
// down from the quiz length (x1.5 with additional time); question banks count up.
func ComputeTimer(section domain.SectionType, meta domain.QuizMetadata, settings domain.PracticeTestSettings) domain.TimerSnapshot {
	if section != domain.SectionPractice {
		return domain.TimerSnapshot{}
	}
	base := meta.TimeLimitSeconds
	if base <= 0 {
		base = DefaultPracticeDuration
	}
	duration := base
	if settings.AdditionalTime {
		duration = base * AdditionalTimeNumerator / AdditionalTimeDenominator
	}
	return domain.TimerSnapshot{Value: duration, IsCountdown: true, InitialDuration: duration}
}

// Reduce is the root transition function. It owns status changes and full-slice
// replacement and delegates everything else to the sub-reducers.
func Reduce(s State, action Action) State {
	switch act := action.(type) {
	case InitializeAttempt:
		next := NewState()
		next.Status = StatusLoading
		next.Identifiers = act.Identifiers
		return next

	case PromptOptions:
		next := s.Clone()
		next.Status = StatusPromptingOptions
		next.QuizContent = act.Content
		next.Attempt = domain.NewAttemptState("")
		next.Timer = domain.TimerSnapshot{}
		next.UI = NewUIState()
		next.Error = nil
		return next

	case PromptResume:
		next := s.Clone()
		next.Status = StatusPromptingResume
		next.QuizContent = act.Content
		next.Attempt = act.Attempt.Clone()
		next.Timer = act.Timer
		next.UI = NewUIState()
		next.Error = nil
		return next

	case SetDataAndStart:
		next := s.Clone()
		next.Status = StatusActive
		next.QuizContent = act.Content
		next.Attempt = domain.NewAttemptState(act.AttemptID)
		var settings domain.PracticeTestSettings
		if act.Settings != nil {
			settings = *act.Settings
		}
		next.Attempt.PracticeTestSettings = settings
		var meta domain.QuizMetadata
		if act.Content != nil {
			meta = act.Content.Metadata
		}
		next.Timer = ComputeTimer(s.Identifiers.SectionType, meta, settings)
		// Only countdowns take a length override; count-up timers always start at zero.
		if act.Duration != nil && next.Timer.IsCountdown {
			d := *act.Duration
			if d < 0 {
				d = 0
			}
			next.Timer = domain.TimerSnapshot{Value: d, IsCountdown: true, InitialDuration: d}
		}
		next.UI = NewUIState()
		next.Error = nil
		return next

	case ResumeAttempt:
		next := s.Clone()
		if s.Identifiers.IsReview() {
			next.Status = StatusReviewingAttempt
		} else {
			next.Status = StatusActive
		}
		return next

	case ResetAttempt:
		next := s.Clone()
		next.Status = StatusActive
		next.Attempt = domain.NewAttemptState(act.NewAttemptID)
		next.Timer = domain.TimerSnapshot{}
		next.UI = NewUIState()
		return next

	case FinalizeSuccess:
		next := s.Clone()
		next.Status = StatusCompleted
		if act.AttemptID != "" {
			next.Attempt.ID = act.AttemptID
		}
		next.UI.IsSaving = false
		return next

	case SetError:
		next := s.Clone()
		next.Status = StatusError
		next.Error = domain.NormalizeError(act.Payload)
		next.UI.IsSaving = false
		return next

	case OpenReviewSummary:
		next := s.Clone()
		next.Status = StatusReviewingSummary
		return next

	case CloseReviewSummary, DismissRegistration:
		next := s.Clone()
		next.Status = StatusActive
		return next

	case PromptRegistration:
		next := s.Clone()
		next.Status = StatusPromptingRegistration
		return next
	}

	if isAttemptAction(action) {
		next := s
		next.Attempt = ReduceAttempt(s.Attempt, action)
		return next
	}
	if isUIAction(action) {
		next := s
		next.UI = ReduceUI(s.UI, action, s.Attempt.CurrentQuestionIndex)
		return next
	}
	return s
}
