package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// ContentLoader fetches quiz content from a backing store (e.g., Postgres).
type ContentLoader interface {
	LoadContent(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizContent, error)
}

// ContentKey names one quiz in catalogs and caches.
func ContentKey(topicID string, section domain.SectionType, quizID string) string {
	return fmt.Sprintf("%s/%s/%s", topicID, section, quizID)
}

// DefaultPreviewQuestions is how many questions a preview request returns.
const DefaultPreviewQuestions = 2

// ContentRepository caches quiz content with TTL to avoid repeated DB hits.
// It implements app.ContentProvider.
type ContentRepository struct {
	loader  ContentLoader
	ttl     time.Duration
	preview int
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedContent
}

type cachedContent struct {
	content   domain.QuizContent
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader:  loader,
		ttl:     ttl,
		preview: DefaultPreviewQuestions,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedContent),
	}
}

// GetQuizData returns the ordered questions, truncated for previews.
func (r *ContentRepository) GetQuizData(ctx context.Context, topicID string, section domain.SectionType, quizID string, preview bool) ([]domain.Question, error) {
	content, err := r.get(ctx, topicID, section, quizID)
	if err != nil {
		return nil, err
	}
	questions := content.Questions
	if preview && len(questions) > r.preview {
		questions = questions[:r.preview]
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, nil
}

// GetQuizMetadata returns the quiz's display metadata.
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
	key := ContentKey(topicID, section, quizID)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.content, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.content, nil
		}
		r.mu.RUnlock()

		content, err := r.loader.LoadContent(ctx, topicID, section, quizID)
		if err != nil {
			return domain.QuizContent{}, err
		}

		r.mu.Lock()
		r.cache[key] = cachedContent{
			content:   content,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return domain.QuizContent{}, err
	}
	return result.(domain.QuizContent), nil
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// ContentCatalog is a loader backed by an in-memory map (useful for tests/demos).
type ContentCatalog struct {
	mu      sync.RWMutex
	quizzes map[string]domain.QuizContent
}

func NewContentCatalog() *ContentCatalog {
	return &ContentCatalog{quizzes: make(map[string]domain.QuizContent)}
}

// Put registers content under the quiz tuple.
func (c *ContentCatalog) Put(topicID string, section domain.SectionType, quizID string, content domain.QuizContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[ContentKey(topicID, section, quizID)] = content
}

func (c *ContentCatalog) LoadContent(_ context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizContent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if content, ok := c.quizzes[ContentKey(topicID, section, quizID)]; ok {
		return content, nil
	}
	return domain.QuizContent{}, domain.ErrQuizNotFound
}
