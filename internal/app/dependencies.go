package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// ContentProvider serves read-only quiz content. Implementations return
// domain.ErrAccessDenied when the caller's entitlement does not cover the quiz.
type ContentProvider interface {
	GetQuizData(ctx context.Context, topicID string, section domain.SectionType, quizID string, preview bool) ([]domain.Question, error)
	GetQuizMetadata(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizMetadata, error)
}

// AttemptStore is the remote, per-user attempt store. Lookups that find nothing
// return domain.ErrAttemptNotFound.
type AttemptStore interface {
	SaveInProgressAttempt(ctx context.Context, attempt domain.InProgressAttempt) (string, error)
	GetInProgressAttempt(ctx context.Context, userID string, ids domain.QuizIdentifiers) (domain.StoredAttempt, error)
	DeleteInProgressAttempt(ctx context.Context, userID, attemptID string) error
	FinalizeQuizAttempt(ctx context.Context, attempt domain.FinalAttempt) (domain.FinalizeResult, error)
	GetQuizAttemptByID(ctx context.Context, userID, attemptID string) (domain.StoredAttempt, error)
}

// LocalCache is a string key/value store. Get reports a miss with ok=false and a nil error.
type LocalCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Router hands navigation off to the presentation layer once an attempt is finalized.
type Router interface {
	ShowResults(ids domain.QuizIdentifiers, attemptID string)
}

// RouterFunc adapts a function to Router.
type RouterFunc func(ids domain.QuizIdentifiers, attemptID string)

func (f RouterFunc) ShowResults(ids domain.QuizIdentifiers, attemptID string) {
	f(ids, attemptID)
}

// Options tunes session timing and preview behaviour.
type Options struct {
	ContentTimeout   time.Duration
	AutosaveInterval time.Duration
	TimerPeriod      time.Duration
	// SaveDebounce delays the save that follows a cross-off or highlight. Zero saves on
	// the next scheduler pass.
	SaveDebounce   time.Duration
	PrometricDelay time.Duration
	// PracticeDuration applies when quiz metadata carries no time limit.
	PracticeDuration time.Duration
	// PreviewQuestions is how many questions a preview visitor may see.
	PreviewQuestions int
	// PreviewDisplayCount is the advertised question count in preview metadata. Zero
	// uses the count from the real metadata.
	PreviewDisplayCount int
}

// DefaultOptions returns production timings.
func DefaultOptions() Options {
	return Options{
		ContentTimeout:   15 * time.Second,
		AutosaveInterval: 60 * time.Second,
		TimerPeriod:      time.Second,
		PrometricDelay:   2 * time.Second,
		PracticeDuration: 3 * time.Hour,
		PreviewQuestions: 2,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ContentTimeout <= 0 {
		o.ContentTimeout = def.ContentTimeout
	}
	if o.AutosaveInterval <= 0 {
		o.AutosaveInterval = def.AutosaveInterval
	}
	if o.TimerPeriod <= 0 {
		o.TimerPeriod = def.TimerPeriod
	}
	if o.SaveDebounce < 0 {
		o.SaveDebounce = 0
	}
	if o.PrometricDelay < 0 {
		o.PrometricDelay = 0
	}
	if o.PracticeDuration <= 0 {
		o.PracticeDuration = def.PracticeDuration
	}
	if o.PreviewQuestions <= 0 {
		o.PreviewQuestions = def.PreviewQuestions
	}
	return o
}

// Dependencies is everything a Session needs from the outside world.
type Dependencies struct {
	Content  ContentProvider
	Attempts AttemptStore
	Cache    LocalCache
	Router   Router
	Logger   zerolog.Logger
	// Now defaults to time.Now.
	Now     func() time.Time
	Options Options
}
