package app_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/bridge"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/memory"
)

var (
	practiceIDs = domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionPractice, QuizID: "test-1"}
	qbankIDs    = domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionQBank, QuizID: "bank-1"}

	premium = domain.Identity{UserID: "u1", Tier: domain.TierPremium}
	free    = domain.Identity{UserID: "u2", Tier: domain.TierFree}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingStore records remote calls and can fail or hold finalization. When
// finalizeHeld is set, FinalizeQuizAttempt signals finalizeEntered and waits for it
// to be closed.
type countingStore struct {
	*memory.AttemptStore
	saves           atomic.Int32
	reads           atomic.Int32
	finalizes       atomic.Int32
	finalizeErr     error
	finalizeEntered chan struct{}
	finalizeHeld    chan struct{}
}

func (s *countingStore) SaveInProgressAttempt(ctx context.Context, in domain.InProgressAttempt) (string, error) {
	s.saves.Add(1)
	return s.AttemptStore.SaveInProgressAttempt(ctx, in)
}

func (s *countingStore) GetInProgressAttempt(ctx context.Context, userID string, ids domain.QuizIdentifiers) (domain.StoredAttempt, error) {
	s.reads.Add(1)
	return s.AttemptStore.GetInProgressAttempt(ctx, userID, ids)
}

func (s *countingStore) FinalizeQuizAttempt(ctx context.Context, final domain.FinalAttempt) (domain.FinalizeResult, error) {
	s.finalizes.Add(1)
	if s.finalizeHeld != nil {
		s.finalizeEntered <- struct{}{}
		<-s.finalizeHeld
	}
	if s.finalizeErr != nil {
		return domain.FinalizeResult{}, s.finalizeErr
	}
	return s.AttemptStore.FinalizeQuizAttempt(ctx, final)
}

type testEnv struct {
	catalog  *memory.ContentCatalog
	attempts *countingStore
	cache    *memory.LocalCache
	sessions *memory.SessionStore
	clock    *fakeClock
	routed   chan string
	deps     app.Dependencies
	engine   *app.QuizEngine
}

func newTestEnv(t *testing.T, opts app.Options) *testEnv {
	t.Helper()
	env := &testEnv{
		catalog:  memory.NewContentCatalog(),
		attempts: &countingStore{AttemptStore: memory.NewAttemptStore()},
		cache:    memory.NewLocalCache(),
		sessions: memory.NewSessionStore(),
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		routed:   make(chan string, 4),
	}
	env.catalog.Put(practiceIDs.TopicID, practiceIDs.SectionType, practiceIDs.QuizID, content("Biology Test 1", "A", "B", "C"))
	env.catalog.Put(qbankIDs.TopicID, qbankIDs.SectionType, qbankIDs.QuizID, content("Biology Bank 1", "A", "B"))

	if opts.AutosaveInterval == 0 {
		opts.AutosaveInterval = time.Hour
	}
	if opts.TimerPeriod == 0 {
		opts.TimerPeriod = time.Hour
	}
	env.deps = app.Dependencies{
		Content:  memory.NewContentRepository(env.catalog, time.Minute),
		Attempts: env.attempts,
		Cache:    env.cache,
		Router: app.RouterFunc(func(_ domain.QuizIdentifiers, attemptID string) {
			env.routed <- attemptID
		}),
		Logger:  zerolog.Nop(),
		Now:     env.clock.Now,
		Options: opts,
	}
	env.engine = app.NewQuizEngine(env.sessions, env.deps)
	return env
}

// open attaches to a session and leaves it when the test ends.
func (e *testEnv) open(t *testing.T, identity domain.Identity, ids domain.QuizIdentifiers) *app.Session {
	t.Helper()
	s, err := e.engine.Open(context.Background(), identity, ids)
	if err != nil {
		t.Fatalf("open %+v: %v", ids, err)
	}
	t.Cleanup(func() { e.engine.Leave(s) })
	return s
}

// content builds a quiz whose question i has correct[i] as its right answer.
func content(name string, correct ...string) domain.QuizContent {
	qs := make([]domain.Question, 0, len(correct))
	for _, c := range correct {
		q := domain.Question{
			Question:    domain.HTMLBlock{HTMLContent: "<p>Pick one</p>"},
			Explanation: domain.HTMLBlock{HTMLContent: "<p>Because.</p>"},
		}
		for _, label := range []string{"A", "B", "C", "D"} {
			q.Options = append(q.Options, domain.Option{Label: label, HTMLContent: label, IsCorrect: label == c})
		}
		qs = append(qs, q)
	}
	return domain.QuizContent{
		Metadata:  domain.QuizMetadata{Name: name, TopicName: "Biology", TimeLimitSeconds: 600},
		Questions: qs,
	}
}

// progressKey is where the cache holds identity's in-progress attempt for ids.
func progressKey(identity domain.Identity, ids domain.QuizIdentifiers) string {
	return "u:" + identity.UserID + ":" + bridge.ProgressKeyFor(ids)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
