package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/DevPanchal02/dental-edge-sub000/internal/bridge"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
	"github.com/DevPanchal02/dental-edge-sub000/internal/schema"
)

const (
	PreviewDisplayName = "Free Preview"
	PreviewCategory    = "Preview"
)

func (s *Session) initialize(ctx context.Context) {
	s.dispatch(engine.InitializeAttempt{Identifiers: s.ids})
	if err := schema.Struct(s.ids); err != nil {
		s.fail(err)
		return
	}

	content, err := s.loadContent(ctx)
	if err != nil {
		s.fail(err)
		return
	}

	switch {
	case s.ids.IsPreviewMode:
		s.dispatch(engine.PromptOptions{Content: content})
	case s.ids.IsReview():
		s.enterReview(ctx, content)
	default:
		s.enterAttempt(ctx, content)
	}
}

// loadContent fetches questions and metadata concurrently, racing the content timeout.
func (s *Session) loadContent(ctx context.Context) (*domain.QuizContent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ContentTimeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	var (
		questions []domain.Question
		meta      domain.QuizMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := s.content.GetQuizData(gctx, s.ids.TopicID, s.ids.SectionType, s.ids.QuizID, s.ids.IsPreviewMode)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		questions = qs
		return nil
	})
	g.Go(func() error {
		m, err := s.content.GetQuizMetadata(gctx, s.ids.TopicID, s.ids.SectionType, s.ids.QuizID)
		if err != nil {
			return fmt.Errorf("load metadata: %w", err)
		}
		meta = m
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, domain.NewEngineError(domain.ErrCodeTimeout, domain.ErrContentTimeout)
		case errors.Is(err, domain.ErrAccessDenied):
			return nil, domain.NewEngineError(domain.ErrCodeAccessDenied, err)
		default:
			return nil, domain.NewEngineError(domain.ErrCodeContentLoad, err)
		}
	}

	if err := schema.Questions(questions); err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeInvalidData, err)
	}
	if err := schema.Struct(meta); err != nil {
		return nil, domain.NewEngineError(domain.ErrCodeInvalidData, err)
	}

	if s.ids.IsPreviewMode {
		if len(questions) > s.opts.PreviewQuestions {
			questions = questions[:s.opts.PreviewQuestions]
		}
		meta = s.previewMetadata(meta, len(questions))
	}
	if meta.TimeLimitSeconds <= 0 && s.ids.SectionType == domain.SectionPractice {
		meta.TimeLimitSeconds = int(s.opts.PracticeDuration.Seconds())
	}
	return &domain.QuizContent{Metadata: meta, Questions: questions}, nil
}

// previewMetadata advertises the full quiz while only the free questions are loaded.
func (s *Session) previewMetadata(meta domain.QuizMetadata, loaded int) domain.QuizMetadata {
	out := meta
	out.FullNameForDisplay = PreviewDisplayName
	out.CategoryForInstructions = PreviewCategory
	if s.opts.PreviewDisplayCount > 0 {
		out.QuestionCount = s.opts.PreviewDisplayCount
	}
	if out.QuestionCount <= 0 {
		out.QuestionCount = loaded
	}
	return out
}

// enterReview replays a historical attempt read-only.
func (s *Session) enterReview(ctx context.Context, content *domain.QuizContent) {
	if s.attempts == nil || s.identity.Anonymous() {
		s.fail(domain.NewEngineError(domain.ErrCodeReviewLoad, domain.ErrAttemptNotFound))
		return
	}
	stored, err := s.attempts.GetQuizAttemptByID(ctx, s.identity.UserID, s.ids.ReviewAttemptID)
	if err == nil {
		err = schema.StoredAttempt(stored)
	}
	if err == nil && !stored.Identifiers().SameQuiz(s.ids) {
		err = fmt.Errorf("attempt %s belongs to another quiz: %w", stored.ID, domain.ErrAttemptNotFound)
	}
	if err != nil {
		s.fail(domain.NewEngineError(domain.ErrCodeReviewLoad, err))
		return
	}

	attempt := bridge.Deserialize(stored.Attempt)
	attempt.ID = stored.ID
	s.clock.Restore(stored.Timer)
	s.dispatch(
		engine.PromptResume{Attempt: attempt, Timer: stored.Timer, Content: content},
		engine.ResumeAttempt{},
	)
}

// enterAttempt looks for progress locally, then remotely, before starting fresh.
func (s *Session) enterAttempt(ctx context.Context, content *domain.QuizContent) {
	if rec, ok := s.loadLocalProgress(ctx); ok {
		s.promptResume(content, bridge.Deserialize(rec.Attempt), rec.Timer)
		return
	}

	if s.remoteProgress() {
		stored, err := s.attempts.GetInProgressAttempt(ctx, s.identity.UserID, s.ids)
		if err == nil {
			err = schema.StoredAttempt(stored)
		}
		switch {
		case err == nil:
			attempt := bridge.Deserialize(stored.Attempt)
			attempt.ID = stored.ID
			s.promptResume(content, attempt, stored.Timer)
			return
		case errors.Is(err, domain.ErrAttemptNotFound):
		default:
			s.log.Warn().Err(err).Msg("remote resume check failed, starting fresh")
		}
	}

	if s.ids.SectionType == domain.SectionPractice {
		s.dispatch(engine.PromptOptions{Content: content})
		return
	}
	id := s.newAttemptID(ctx)
	if s.dispatch(engine.SetDataAndStart{Content: content, AttemptID: id}) {
		s.startClock()
	}
}

func (s *Session) promptResume(content *domain.QuizContent, attempt domain.AttemptState, snap domain.TimerSnapshot) {
	s.clock.Restore(snap)
	s.dispatch(engine.PromptResume{Attempt: attempt, Timer: snap, Content: content})
}
