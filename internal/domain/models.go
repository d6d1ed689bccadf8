package domain

import (
	"sort"
	"time"
)

// SectionType distinguishes timed practice tests from untimed question-bank study.
type SectionType string

const (
	SectionPractice SectionType = "practice"
	SectionQBank    SectionType = "qbank"
)

// Valid reports whether the section type is one the engine knows how to run.
func (s SectionType) Valid() bool {
	return s == SectionPractice || s == SectionQBank
}

// QuizIdentifiers addresses one quiz instance for one session. Immutable for the
// life of a session.
type QuizIdentifiers struct {
	TopicID         string      `json:"topicId" validate:"required"`
	SectionType     SectionType `json:"sectionType" validate:"required,oneof=practice qbank"`
	QuizID          string      `json:"quizId" validate:"required"`
	ReviewAttemptID string      `json:"reviewAttemptId,omitempty"`
	IsPreviewMode   bool        `json:"isPreviewMode"`
}

// SameQuiz compares the three primary ids only.
func (q QuizIdentifiers) SameQuiz(other QuizIdentifiers) bool {
	return q.TopicID == other.TopicID && q.SectionType == other.SectionType && q.QuizID == other.QuizID
}

// IsReview reports whether the session replays a historical attempt.
func (q QuizIdentifiers) IsReview() bool {
	return q.ReviewAttemptID != ""
}

// HTMLBlock wraps pre-sanitized HTML supplied by the content provider.
type HTMLBlock struct {
	HTMLContent string `json:"html_content"`
}

// Option represents a possible answer for a question.
type Option struct {
	Label              string   `json:"label" validate:"required"`
	HTMLContent        string   `json:"html_content"`
	IsCorrect          bool     `json:"is_correct"`
	PercentageSelected *float64 `json:"percentage_selected,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// QuestionAnalytics carries aggregate stats shown after an answer is revealed.
type QuestionAnalytics struct {
	PercentCorrect     *float64 `json:"percent_correct,omitempty" validate:"omitempty,gte=0,lte=100"`
	AverageTimeSeconds *float64 `json:"average_time_seconds,omitempty" validate:"omitempty,gte=0"`
}

// Question models a single-answer MCQ. A question carrying an Error is inert.
type Question struct {
	ID          string             `json:"id,omitempty"`
	Question    HTMLBlock          `json:"question"`
	Options     []Option           `json:"options" validate:"unique=Label,dive"`
	Explanation HTMLBlock          `json:"explanation"`
	Passage     *HTMLBlock         `json:"passage,omitempty"`
	Analytics   *QuestionAnalytics `json:"analytics,omitempty"`
	Category    string             `json:"category,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// IsInert reports whether the question can only be displayed.
func (q Question) IsInert() bool {
	return q.Error != ""
}

// CorrectLabel returns the label of the option flagged correct.
func (q Question) CorrectLabel() (string, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.Label, true
		}
	}
	return "", false
}

// HasOption reports whether label names one of the question's options.
func (q Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// QuizMetadata describes a quiz for display purposes.
type QuizMetadata struct {
	Name                    string `json:"name" validate:"required"`
	TopicName               string `json:"topicName"`
	FullNameForDisplay      string `json:"fullNameForDisplay"`
	CategoryForInstructions string `json:"categoryForInstructions"`
	// QuestionCount is the display count; preview sessions load fewer questions.
	QuestionCount int `json:"questionCount,omitempty" validate:"gte=0"`
	// TimeLimitSeconds overrides the default practice duration when positive.
	TimeLimitSeconds int `json:"timeLimitSeconds,omitempty" validate:"gte=0"`
	// RequiredTier is the lowest entitlement that may open the quiz outside preview.
	RequiredTier Tier `json:"requiredTier,omitempty" validate:"omitempty,oneof=free standard premium"`
}

// QuizContent is read-only for the lifetime of an attempt.
type QuizContent struct {
	Metadata  QuizMetadata `json:"metadata"`
	Questions []Question   `json:"questions" validate:"required,min=1,dive"`
}

// QuestionCount returns the number of loaded questions.
func (c *QuizContent) QuestionCount() int {
	if c == nil {
		return 0
	}
	return len(c.Questions)
}

// Question returns the question at index, if any.
func (c *QuizContent) Question(index int) (Question, bool) {
	if c == nil || index < 0 || index >= len(c.Questions) {
		return Question{}, false
	}
	return c.Questions[index], true
}

// PracticeTestSettings are chosen at the options prompt and fixed once the attempt starts.
type PracticeTestSettings struct {
	PrometricDelay bool `json:"prometricDelay"`
	AdditionalTime bool `json:"additionalTime"`
}

// LabelSet is a set of option labels.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from labels.
func NewLabelSet(labels ...string) LabelSet {
	set := make(LabelSet, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (s LabelSet) clone() LabelSet {
	out := make(LabelSet, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}

// AttemptState is the mutable per-user progress record. Maps are sparse and keyed by
// question index, except HighlightedHTML which is keyed by content.
type AttemptState struct {
	ID                   string
	UserAnswers          map[int]string
	CrossedOffOptions    map[int]LabelSet
	MarkedQuestions      map[int]bool
	SubmittedAnswers     map[int]bool
	UserTimeSpent        map[int]int
	HighlightedHTML      map[string]string
	CurrentQuestionIndex int
	PracticeTestSettings PracticeTestSettings
}

// NewAttemptState returns an empty attempt carrying id.
func NewAttemptState(id string) AttemptState {
	return AttemptState{
		ID:                id,
		UserAnswers:       map[int]string{},
		CrossedOffOptions: map[int]LabelSet{},
		MarkedQuestions:   map[int]bool{},
		SubmittedAnswers:  map[int]bool{},
		UserTimeSpent:     map[int]int{},
		HighlightedHTML:   map[string]string{},
	}
}

// Clone returns a deep copy; the engine never shares maps between states.
func (a AttemptState) Clone() AttemptState {
	out := a
	out.UserAnswers = make(map[int]string, len(a.UserAnswers))
	for k, v := range a.UserAnswers {
		out.UserAnswers[k] = v
	}
	out.CrossedOffOptions = make(map[int]LabelSet, len(a.CrossedOffOptions))
	for k, v := range a.CrossedOffOptions {
		out.CrossedOffOptions[k] = v.clone()
	}
	out.MarkedQuestions = cloneFlags(a.MarkedQuestions)
	out.SubmittedAnswers = cloneFlags(a.SubmittedAnswers)
	out.UserTimeSpent = make(map[int]int, len(a.UserTimeSpent))
	for k, v := range a.UserTimeSpent {
		out.UserTimeSpent[k] = v
	}
	out.HighlightedHTML = make(map[string]string, len(a.HighlightedHTML))
	for k, v := range a.HighlightedHTML {
		out.HighlightedHTML[k] = v
	}
	return out
}

func cloneFlags(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// PersistableAttempt is the JSON-safe projection of AttemptState.
type PersistableAttempt struct {
	ID                   string               `json:"id"`
	UserAnswers          map[int]string       `json:"userAnswers"`
	CrossedOffOptions    map[int][]string     `json:"crossedOffOptions"`
	MarkedQuestions      map[int]bool         `json:"markedQuestions"`
	SubmittedAnswers     map[int]bool         `json:"submittedAnswers"`
	UserTimeSpent        map[int]int          `json:"userTimeSpent" validate:"dive,gte=0"`
	HighlightedHTML      map[string]string    `json:"highlightedHtml"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex" validate:"gte=0"`
	PracticeTestSettings PracticeTestSettings `json:"practiceTestSettings"`
}

// TimerSnapshot is the only timer information that crosses the persistence boundary.
type TimerSnapshot struct {
	Value           int  `json:"value" validate:"gte=0"`
	IsCountdown     bool `json:"isCountdown"`
	InitialDuration int  `json:"initialDuration" validate:"gte=0"`
}

// ProgressRecord is stored under the in-progress cache key.
type ProgressRecord struct {
	Identifiers QuizIdentifiers    `json:"identifiers"`
	Attempt     PersistableAttempt `json:"attempt"`
	Timer       TimerSnapshot      `json:"timer"`
	SavedAt     time.Time          `json:"savedAt"`
}

// ResultsRecord is stored under the results cache key at finalize time.
type ResultsRecord struct {
	AttemptID           string         `json:"attemptId"`
	Score               int            `json:"score"`
	TotalQuestions      int            `json:"totalQuestions"`
	TotalValidQuestions int            `json:"totalValidQuestions"`
	CorrectIndices      []int          `json:"correctIndices"`
	IncorrectIndices    []int          `json:"incorrectIndices"`
	UnansweredIndices   []int          `json:"unansweredIndices"`
	UserAnswers         map[int]string `json:"userAnswers"`
	Timestamp           time.Time      `json:"timestamp"`
	QuizName            string         `json:"quizName"`
	TimedOut            bool           `json:"timedOut"`
}
