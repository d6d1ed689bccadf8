package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
)

func TestOpenSharesSessionAcrossViewers(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	ctx := context.Background()

	a, err := env.engine.Open(ctx, premium, qbankIDs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, err := env.engine.Open(ctx, premium, qbankIDs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same live session for one user and quiz")
	}
	if got, err := env.engine.Get(premium, qbankIDs); err != nil || got != a {
		t.Fatalf("get: %v", err)
	}

	a.SelectOption("B")
	if b.State().Attempt.UserAnswers[0] != "B" {
		t.Fatalf("viewers must see one attempt")
	}

	env.engine.Leave(a)
	if env.sessions.Len() != 1 {
		t.Fatalf("session dropped while a viewer remains")
	}
	env.engine.Leave(b)
	if env.sessions.Len() != 0 {
		t.Fatalf("expected session removed after last viewer left")
	}
	if _, err := env.engine.Get(premium, qbankIDs); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenSeparatesUsers(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	a := env.open(t, premium, qbankIDs)
	b := env.open(t, domain.Identity{UserID: "u9", Tier: domain.TierStandard}, qbankIDs)
	if a == b {
		t.Fatalf("different users must not share a session")
	}
}

func TestPreviewSessionsAreNotShared(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	preview := practiceIDs
	preview.IsPreviewMode = true

	a := env.open(t, domain.Identity{}, preview)
	b := env.open(t, domain.Identity{}, preview)
	if a == b {
		t.Fatalf("preview sessions must be private")
	}
	if env.sessions.Len() != 0 {
		t.Fatalf("preview sessions must not be registered")
	}
}

func TestOpenRejectsAnonymousAttempt(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	_, err := env.engine.Open(context.Background(), domain.Identity{}, practiceIDs)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestOpenValidatesIdentifiers(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	_, err := env.engine.Open(context.Background(), premium, domain.QuizIdentifiers{TopicID: "bio", SectionType: "essay", QuizID: "x"})
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeaveFlushesProgress(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	ctx := context.Background()

	s, err := env.engine.Open(ctx, premium, qbankIDs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := s.State().Attempt.ID
	s.SelectOption("A")
	env.engine.Leave(s)

	stored, err := env.attempts.GetInProgressAttempt(ctx, premium.UserID, qbankIDs)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != id || stored.Attempt.UserAnswers[0] != "A" {
		t.Fatalf("expected flushed progress, got %+v", stored)
	}

	again := env.open(t, premium, qbankIDs)
	if got := again.State().Status; got != engine.StatusPromptingResume {
		t.Fatalf("expected resume prompt, got %s", got)
	}
}

func TestCloseAllFlushesRegisteredSessions(t *testing.T) {
	env := newTestEnv(t, app.Options{})
	ctx := context.Background()

	s, err := env.engine.Open(ctx, premium, qbankIDs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SelectOption("B")
	env.engine.CloseAll()

	if env.sessions.Len() != 0 {
		t.Fatalf("expected no registered sessions, got %d", env.sessions.Len())
	}
	stored, err := env.attempts.GetInProgressAttempt(ctx, premium.UserID, qbankIDs)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Attempt.UserAnswers[0] != "B" {
		t.Fatalf("expected flushed answer, got %+v", stored.Attempt.UserAnswers)
	}
	if _, ok, _ := env.cache.Get(ctx, progressKey(premium, qbankIDs)); !ok {
		t.Fatalf("expected local progress entry")
	}

	s.SelectOption("A")
	if got := s.State().Attempt.UserAnswers[0]; got != "B" {
		t.Fatalf("closed session must drop actions, got %q", got)
	}
	env.engine.Leave(s)
}
