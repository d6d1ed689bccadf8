package engine

import (
	"errors"
	"testing"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

func practiceIDs() domain.QuizIdentifiers {
	return domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionPractice, QuizID: "test-1"}
}

func sampleContent(n int) *domain.QuizContent {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			Options: []domain.Option{{Label: "A", IsCorrect: true}, {Label: "B"}},
		}
	}
	return &domain.QuizContent{Metadata: domain.QuizMetadata{Name: "Test 1"}, Questions: qs}
}

func TestInitializeResetsToLoading(t *testing.T) {
	s := NewState()
	if s.Status != StatusInitializing {
		t.Fatalf("expected initializing, got %s", s.Status)
	}
	s = Reduce(s, InitializeAttempt{Identifiers: practiceIDs()})
	if s.Status != StatusLoading || s.Identifiers.QuizID != "test-1" {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestAdditionalTimeDuration(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	content := sampleContent(2)
	content.Metadata.TimeLimitSeconds = 10800
	s = Reduce(s, SetDataAndStart{
		Content:   content,
		AttemptID: "a1",
		Settings:  &domain.PracticeTestSettings{AdditionalTime: true},
	})
	if s.Timer.Value != 16200 || s.Timer.InitialDuration != 16200 || !s.Timer.IsCountdown {
		t.Fatalf("expected 16200s countdown, got %+v", s.Timer)
	}
	if s.Status != StatusActive || s.Attempt.ID != "a1" || !s.Attempt.PracticeTestSettings.AdditionalTime {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestQBankCountsUp(t *testing.T) {
	ids := practiceIDs()
	ids.SectionType = domain.SectionQBank
	s := Reduce(NewState(), InitializeAttempt{Identifiers: ids})
	s = Reduce(s, SetDataAndStart{Content: sampleContent(1), AttemptID: "a1"})
	if s.Timer.IsCountdown || s.Timer.Value != 0 {
		t.Fatalf("expected count-up from zero, got %+v", s.Timer)
	}
}

func TestExplicitDurationOverrides(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	d := 90
	s = Reduce(s, SetDataAndStart{Content: sampleContent(1), AttemptID: "a1", Duration: &d})
	if s.Timer.Value != 90 || !s.Timer.IsCountdown {
		t.Fatalf("expected 90s countdown, got %+v", s.Timer)
	}
}

func TestDurationOverrideIgnoredWhenCountingUp(t *testing.T) {
	ids := practiceIDs()
	ids.SectionType = domain.SectionQBank
	s := Reduce(NewState(), InitializeAttempt{Identifiers: ids})
	d := 90
	s = Reduce(s, SetDataAndStart{Content: sampleContent(1), AttemptID: "a1", Duration: &d})
	if s.Timer.IsCountdown || s.Timer.Value != 0 || s.Timer.InitialDuration != 0 {
		t.Fatalf("expected count-up from zero, got %+v", s.Timer)
	}
}

func TestSetDataAndStartReplacesAttempt(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	s = Reduce(s, SetDataAndStart{Content: sampleContent(3), AttemptID: "old"})
	s = Reduce(s, SelectOption{Index: 2, Label: "B"})
	s = Reduce(s, ToggleMark{Index: 1})

	s = Reduce(s, SetDataAndStart{Content: sampleContent(1), AttemptID: "new"})
	if len(s.Attempt.UserAnswers) != 0 || len(s.Attempt.MarkedQuestions) != 0 {
		t.Fatalf("stale per-question data survived: %+v", s.Attempt)
	}
	if s.QuestionCount() != 1 {
		t.Fatalf("expected replaced content, got %d questions", s.QuestionCount())
	}
}

func TestResumeEntersActive(t *testing.T) {
	stored := domain.NewAttemptState("a1")
	stored.CurrentQuestionIndex = 1
	stored.UserAnswers[0] = "A"

	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	s = Reduce(s, PromptResume{
		Attempt: stored,
		Timer:   domain.TimerSnapshot{Value: 500, IsCountdown: true, InitialDuration: 10800},
		Content: sampleContent(2),
	})
	if s.Status != StatusPromptingResume {
		t.Fatalf("expected prompting_resume, got %s", s.Status)
	}
	s = Reduce(s, ResumeAttempt{})
	if s.Status != StatusActive {
		t.Fatalf("expected active, got %s", s.Status)
	}
	if s.Attempt.CurrentQuestionIndex != 1 || s.Attempt.UserAnswers[0] != "A" {
		t.Fatalf("resumed attempt not restored: %+v", s.Attempt)
	}
	if s.Timer.Value != 500 {
		t.Fatalf("expected timer 500, got %d", s.Timer.Value)
	}
}

func TestResumeWithReviewIDEntersReview(t *testing.T) {
	ids := practiceIDs()
	ids.ReviewAttemptID = "done-1"
	s := Reduce(NewState(), InitializeAttempt{Identifiers: ids})
	s = Reduce(s, PromptResume{Attempt: domain.NewAttemptState("done-1"), Content: sampleContent(1)})
	s = Reduce(s, ResumeAttempt{})
	if s.Status != StatusReviewingAttempt {
		t.Fatalf("expected reviewing_attempt, got %s", s.Status)
	}
}

func TestResetAttemptBlanksAttemptAndTimer(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	stored := domain.NewAttemptState("old")
	stored.UserAnswers[0] = "A"
	s = Reduce(s, PromptResume{Attempt: stored, Timer: domain.TimerSnapshot{Value: 77}, Content: sampleContent(2)})
	s = Reduce(s, ResetAttempt{NewAttemptID: "fresh"})
	if s.Attempt.ID != "fresh" || len(s.Attempt.UserAnswers) != 0 {
		t.Fatalf("expected blank attempt, got %+v", s.Attempt)
	}
	if s.Timer.Value != 0 {
		t.Fatalf("expected timer reset, got %+v", s.Timer)
	}
}

func TestFinalizeSuccessIsTerminal(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	s = Reduce(s, SetDataAndStart{Content: sampleContent(1), AttemptID: "local-1"})
	s = Reduce(s, FinalizeSuccess{AttemptID: "remote-9"})
	if s.Status != StatusCompleted || !s.Status.Terminal() {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.Attempt.ID != "remote-9" {
		t.Fatalf("expected attempt id from finalize, got %s", s.Attempt.ID)
	}
}

func TestSetErrorNormalizes(t *testing.T) {
	s := Reduce(NewState(), SetError{Payload: errors.New("boom")})
	if s.Status != StatusError || s.Error == nil || s.Error.Detail != "boom" {
		t.Fatalf("unexpected error state %+v", s.Error)
	}

	s = Reduce(NewState(), SetError{Payload: domain.ErrAccessDenied})
	if !s.Error.IsAccessDenied() {
		t.Fatalf("expected access denied code, got %s", s.Error.Code)
	}

	s = Reduce(NewState(), SetError{Payload: "plain"})
	if s.Error.Code != domain.ErrCodeUnknown || s.Error.Message == "" {
		t.Fatalf("expected unknown code with message, got %+v", s.Error)
	}

	s = Reduce(s, InitializeAttempt{Identifiers: practiceIDs()})
	if s.Error != nil || s.Status != StatusLoading {
		t.Fatalf("initialize must clear the error, got %+v", s)
	}
}

func TestSummaryAndRegistrationTransitions(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	s = Reduce(s, SetDataAndStart{Content: sampleContent(3), AttemptID: "a"})

	s = Reduce(s, OpenReviewSummary{})
	if s.Status != StatusReviewingSummary {
		t.Fatalf("expected reviewing_summary, got %s", s.Status)
	}
	s = Reduce(s, CloseReviewSummary{})
	if s.Status != StatusActive {
		t.Fatalf("expected active, got %s", s.Status)
	}
	s = Reduce(s, PromptRegistration{})
	if s.Status != StatusPromptingRegistration {
		t.Fatalf("expected prompting_registration, got %s", s.Status)
	}
	s = Reduce(s, DismissRegistration{})
	if s.Status != StatusActive {
		t.Fatalf("expected active after dismissal, got %s", s.Status)
	}
}

func TestRootDelegatesToSubReducers(t *testing.T) {
	s := Reduce(NewState(), InitializeAttempt{Identifiers: practiceIDs()})
	s = Reduce(s, SetDataAndStart{Content: sampleContent(3), AttemptID: "a"})
	s = Reduce(s, NavigateQuestion{Index: 2})
	s = Reduce(s, ToggleSolution{})
	if !s.UI.SolutionRevealed[2] {
		t.Fatalf("expected solution revealed for current index 2")
	}
	s = Reduce(s, ToggleExhibit{})
	if !s.UI.ExhibitOpen {
		t.Fatalf("expected exhibit open")
	}
}

func TestStatusGates(t *testing.T) {
	for _, st := range []Status{StatusActive, StatusReviewingAttempt, StatusReviewingSummary} {
		if !st.AcceptsAttemptActions() {
			t.Fatalf("%s should accept attempt actions", st)
		}
	}
	for _, st := range []Status{StatusLoading, StatusPromptingOptions, StatusCompleted, StatusError} {
		if st.AcceptsAttemptActions() {
			t.Fatalf("%s should not accept attempt actions", st)
		}
	}
	if StatusReviewingAttempt.Saveable() {
		t.Fatalf("review mode must not be saveable")
	}
}
