package bridge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

const (
	localIDPrefix   = "local-"
	previewIDPrefix = "preview-"
)

// ProgressKey returns the cache key holding the in-progress attempt for a quiz.
func ProgressKey(topicID string, section domain.SectionType, quizID string) string {
	return fmt.Sprintf("quiz-progress:%s:%s:%s", topicID, section, quizID)
}

// ResultsKey returns the cache key holding the finalize-time results for a quiz.
func ResultsKey(topicID string, section domain.SectionType, quizID string) string {
	return fmt.Sprintf("quiz-results:%s:%s:%s", topicID, section, quizID)
}

// ProgressKeyFor is ProgressKey over identifiers.
func ProgressKeyFor(ids domain.QuizIdentifiers) string {
	return ProgressKey(ids.TopicID, ids.SectionType, ids.QuizID)
}

// ResultsKeyFor is ResultsKey over identifiers.
func ResultsKeyFor(ids domain.QuizIdentifiers) string {
	return ResultsKey(ids.TopicID, ids.SectionType, ids.QuizID)
}

// SessionKey names the live session for a user and quiz. Local cache keys are already
// per-user because each user has their own cache namespace; live sessions share a
// process, so the user id is part of the key.
func SessionKey(userID string, ids domain.QuizIdentifiers) string {
	key := fmt.Sprintf("user:%s:%s:%s:%s", userID, ids.TopicID, ids.SectionType, ids.QuizID)
	if ids.IsReview() {
		key += ":review:" + ids.ReviewAttemptID
	}
	return key
}

// NewLocalAttemptID mints a placeholder id for users without a remote attempt row.
func NewLocalAttemptID() string {
	return localIDPrefix + uuid.NewString()
}

// NewPreviewAttemptID mints an id for a preview attempt; previews are never persisted remotely.
func NewPreviewAttemptID() string {
	return previewIDPrefix + uuid.NewString()
}

// IsLocalAttemptID reports whether id was minted locally rather than by the remote store.
func IsLocalAttemptID(id string) bool {
	return id == "" || strings.HasPrefix(id, localIDPrefix) || strings.HasPrefix(id, previewIDPrefix)
}
