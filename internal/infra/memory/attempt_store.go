package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore. Like the Postgres
// store it keeps at most one in-progress attempt per user and quiz.
type AttemptStore struct {
	clock func() time.Time

	mu       sync.RWMutex
	attempts map[string]domain.StoredAttempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		clock:    time.Now,
		attempts: make(map[string]domain.StoredAttempt),
	}
}

func (s *AttemptStore) SaveInProgressAttempt(_ context.Context, in domain.InProgressAttempt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := domain.QuizIdentifiers{TopicID: in.TopicID, SectionType: in.SectionType, QuizID: in.QuizID}
	id := in.Attempt.ID
	if id == "" {
		// A new row replaces whatever was in flight for this quiz.
		if existing, ok := s.inProgressLocked(in.UserID, ids); ok {
			delete(s.attempts, existing.ID)
		}
		id = uuid.NewString()
	} else {
		existing, ok := s.attempts[id]
		if !ok || existing.UserID != in.UserID {
			return "", domain.ErrAttemptNotFound
		}
		if existing.Status != domain.AttemptInProgress {
			return "", fmt.Errorf("attempt %s already completed", id)
		}
	}

	attempt := in.Attempt
	attempt.ID = id
	s.attempts[id] = domain.StoredAttempt{
		ID:          id,
		UserID:      in.UserID,
		TopicID:     in.TopicID,
		SectionType: in.SectionType,
		QuizID:      in.QuizID,
		Status:      domain.AttemptInProgress,
		Attempt:     attempt,
		Timer:       in.Timer,
		UpdatedAt:   s.clock().UTC(),
	}
	return id, nil
}

func (s *AttemptStore) GetInProgressAttempt(_ context.Context, userID string, ids domain.QuizIdentifiers) (domain.StoredAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.inProgressLocked(userID, ids); ok {
		return a, nil
	}
	return domain.StoredAttempt{}, domain.ErrAttemptNotFound
}

func (s *AttemptStore) DeleteInProgressAttempt(_ context.Context, userID, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptID]
	if !ok || a.UserID != userID || a.Status != domain.AttemptInProgress {
		return domain.ErrAttemptNotFound
	}
	delete(s.attempts, attemptID)
	return nil
}

func (s *AttemptStore) FinalizeQuizAttempt(_ context.Context, final domain.FinalAttempt) (domain.FinalizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := final.Attempt.ID
	if id == "" {
		id = uuid.NewString()
	} else {
		existing, ok := s.attempts[id]
		if !ok || existing.UserID != final.UserID {
			return domain.FinalizeResult{}, domain.ErrAttemptNotFound
		}
		if existing.Status != domain.AttemptInProgress {
			return domain.FinalizeResult{}, fmt.Errorf("attempt %s already completed", id)
		}
	}

	attempt := final.Attempt
	attempt.ID = id
	results := final.Results
	results.AttemptID = id
	score := results.Score
	s.attempts[id] = domain.StoredAttempt{
		ID:          id,
		UserID:      final.UserID,
		TopicID:     final.TopicID,
		SectionType: final.SectionType,
		QuizID:      final.QuizID,
		Status:      domain.AttemptCompleted,
		Attempt:     attempt,
		Timer:       final.Timer,
		Score:       &score,
		Results:     &results,
		UpdatedAt:   s.clock().UTC(),
	}
	return domain.FinalizeResult{AttemptID: id, Score: score}, nil
}

func (s *AttemptStore) GetQuizAttemptByID(_ context.Context, userID, attemptID string) (domain.StoredAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[attemptID]
	if !ok || a.UserID != userID {
		return domain.StoredAttempt{}, domain.ErrAttemptNotFound
	}
	return a, nil
}

func (s *AttemptStore) inProgressLocked(userID string, ids domain.QuizIdentifiers) (domain.StoredAttempt, bool) {
	for _, a := range s.attempts {
		if a.UserID == userID && a.Status == domain.AttemptInProgress && a.Identifiers().SameQuiz(ids) {
			return a, true
		}
	}
	return domain.StoredAttempt{}, false
}
