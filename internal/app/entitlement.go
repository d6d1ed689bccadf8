package app

import (
	"context"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// entitledContent denies quizzes whose metadata requires a higher tier than the
// session's user holds. Previews are open to everyone.
type entitledContent struct {
	inner ContentProvider
	tier  domain.Tier
}

func gateContent(inner ContentProvider, identity domain.Identity, ids domain.QuizIdentifiers) ContentProvider {
	if inner == nil || ids.IsPreviewMode {
		return inner
	}
	return entitledContent{inner: inner, tier: identity.Tier}
}

func (c entitledContent) GetQuizData(ctx context.Context, topicID string, section domain.SectionType, quizID string, preview bool) ([]domain.Question, error) {
	if err := c.check(ctx, topicID, section, quizID); err != nil {
		return nil, err
	}
	return c.inner.GetQuizData(ctx, topicID, section, quizID, preview)
}

func (c entitledContent) GetQuizMetadata(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizMetadata, error) {
	meta, err := c.inner.GetQuizMetadata(ctx, topicID, section, quizID)
	if err != nil {
		return domain.QuizMetadata{}, err
	}
	if !c.tier.Allows(meta.RequiredTier) {
		return domain.QuizMetadata{}, domain.ErrAccessDenied
	}
	return meta, nil
}

func (c entitledContent) check(ctx context.Context, topicID string, section domain.SectionType, quizID string) error {
	_, err := c.GetQuizMetadata(ctx, topicID, section, quizID)
	return err
}
