package domain

import "time"

// InProgressAttempt is what the engine hands the remote store on every save.
// An empty Attempt.ID asks the store to mint a new row.
type InProgressAttempt struct {
	UserID      string             `json:"userId"`
	TopicID     string             `json:"topicId"`
	SectionType SectionType        `json:"sectionType"`
	QuizID      string             `json:"quizId"`
	Attempt     PersistableAttempt `json:"attempt"`
	Timer       TimerSnapshot      `json:"timer"`
}

// FinalAttempt is submitted once, when the attempt is finalized.
type FinalAttempt struct {
	InProgressAttempt
	Results ResultsRecord `json:"results"`
}

// FinalizeResult is returned by the remote store after finalization.
type FinalizeResult struct {
	AttemptID string `json:"attemptId"`
	Score     int    `json:"score"`
}

// AttemptStatus is the remote-store lifecycle of an attempt row.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// StoredAttempt is an attempt row as read back from the remote store.
type StoredAttempt struct {
	ID          string             `json:"id" validate:"required"`
	UserID      string             `json:"userId"`
	TopicID     string             `json:"topicId" validate:"required"`
	SectionType SectionType        `json:"sectionType" validate:"required,oneof=practice qbank"`
	QuizID      string             `json:"quizId" validate:"required"`
	Status      AttemptStatus      `json:"status" validate:"required,oneof=in_progress completed"`
	Attempt     PersistableAttempt `json:"attempt"`
	Timer       TimerSnapshot      `json:"timer"`
	Score       *int               `json:"score,omitempty"`
	Results     *ResultsRecord     `json:"results,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Identifiers returns the quiz tuple the stored attempt belongs to.
func (a StoredAttempt) Identifiers() QuizIdentifiers {
	return QuizIdentifiers{TopicID: a.TopicID, SectionType: a.SectionType, QuizID: a.QuizID}
}
