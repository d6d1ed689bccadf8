package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/memory"
)

// ContentRepository caches quiz content in Redis as one JSON blob per quiz and falls
// back to a loader on cache miss. Blobs live at quiz:content:{topic}/{section}/{quiz}.
type ContentRepository struct {
	client  *redis.Client
	loader  memory.ContentLoader
	ttl     time.Duration
	preview int
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex
}

func NewContentRepository(client *redis.Client, loader memory.ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client:  client,
		loader:  loader,
		ttl:     ttl,
		preview: memory.DefaultPreviewQuestions,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetQuizData(ctx context.Context, topicID string, section domain.SectionType, quizID string, preview bool) ([]domain.Question, error) {
	content, err := r.get(ctx, topicID, section, quizID)
	if err != nil {
		return nil, err
	}
	questions := content.Questions
	if preview && len(questions) > r.preview {
		questions = questions[:r.preview]
	}
	return questions, nil
}

func (r *ContentRepository) GetQuizMetadata(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizMetadata, error) {
	content, err := r.get(ctx, topicID, section, quizID)
	if err != nil {
		return domain.QuizMetadata{}, err
	}
	meta := content.Metadata
	if meta.QuestionCount == 0 {
		meta.QuestionCount = len(content.Questions)
	}
	return meta, nil
}

func (r *ContentRepository) get(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizContent, error) {
	key := r.contentKey(topicID, section, quizID)

	if content, ok := r.cached(ctx, key); ok {
		return content, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if content, ok := r.cached(ctx, key); ok {
			return content, nil
		}

		content, err := r.loader.LoadContent(ctx, topicID, section, quizID)
		if err != nil {
			return domain.QuizContent{}, err
		}

		if raw, err := json.Marshal(content); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.QuizContent{}, err
	}
	return result.(domain.QuizContent), nil
}

func (r *ContentRepository) cached(ctx context.Context, key string) (domain.QuizContent, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizContent{}, false
	}
	var content domain.QuizContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return domain.QuizContent{}, false
	}
	return content, true
}

func (r *ContentRepository) contentKey(topicID string, section domain.SectionType, quizID string) string {
	return "quiz:content:" + memory.ContentKey(topicID, section, quizID)
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
