package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

func TestQuestionsRejectsEmptyList(t *testing.T) {
	if err := Questions(nil); !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected invalid content, got %v", err)
	}
}

func TestQuestionsRejectsDuplicateLabels(t *testing.T) {
	qs := []domain.Question{{
		Options: []domain.Option{{Label: "A"}, {Label: "A"}},
	}}
	err := Questions(qs)
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected invalid content, got %v", err)
	}
	if !strings.Contains(err.Error(), "question 0") {
		t.Fatalf("expected the offending index in %q", err)
	}
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	err := Struct(domain.QuizIdentifiers{TopicID: "bio", SectionType: "essay", QuizID: "q"})
	if err == nil || !strings.Contains(err.Error(), "sectionType") {
		t.Fatalf("expected sectionType in error, got %v", err)
	}
}

func TestStoredAttemptRequiresStatus(t *testing.T) {
	a := domain.StoredAttempt{ID: "a1", TopicID: "bio", SectionType: domain.SectionQBank, QuizID: "b1"}
	if err := StoredAttempt(a); err == nil {
		t.Fatalf("expected missing status to fail")
	}
	a.Status = domain.AttemptInProgress
	if err := StoredAttempt(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
