package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

const attemptColumns = `id, user_id, topic_id, section_type, quiz_id, status, attempt, timer, score, results, updated_at`

// AttemptStore persists attempts in the quiz_attempts table. A partial unique index
// keeps at most one in-progress row per user and quiz.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) SaveInProgressAttempt(ctx context.Context, in domain.InProgressAttempt) (string, error) {
	id := in.Attempt.ID
	attempt := in.Attempt
	if id == "" {
		id = uuid.NewString()
	}
	attempt.ID = id
	attemptRaw, timerRaw, err := marshalProgress(attempt, in.Timer)
	if err != nil {
		return "", err
	}

	if in.Attempt.ID != "" {
		tag, err := s.pool.Exec(ctx, `
			UPDATE quiz_attempts SET attempt=$3::jsonb, timer=$4::jsonb, updated_at=now()
			WHERE id=$1 AND user_id=$2 AND status='in_progress'`,
			id, in.UserID, attemptRaw, timerRaw,
		)
		if err != nil {
			return "", fmt.Errorf("update attempt: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return "", domain.ErrAttemptNotFound
		}
		return id, nil
	}

	err = s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		// A new row replaces whatever was in flight for this quiz.
		if _, err := tx.Exec(ctx, `
			DELETE FROM quiz_attempts
			WHERE user_id=$1 AND topic_id=$2 AND section_type=$3 AND quiz_id=$4 AND status='in_progress'`,
			in.UserID, in.TopicID, string(in.SectionType), in.QuizID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO quiz_attempts (id, user_id, topic_id, section_type, quiz_id, status, attempt, timer, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'in_progress', $6::jsonb, $7::jsonb, now())`,
			id, in.UserID, in.TopicID, string(in.SectionType), in.QuizID, attemptRaw, timerRaw,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create attempt: %w", err)
	}
	return id, nil
}

func (s *AttemptStore) GetInProgressAttempt(ctx context.Context, userID string, ids domain.QuizIdentifiers) (domain.StoredAttempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts
		WHERE user_id=$1 AND topic_id=$2 AND section_type=$3 AND quiz_id=$4 AND status='in_progress'`,
		userID, ids.TopicID, string(ids.SectionType), ids.QuizID,
	)
	return scanAttempt(row)
}

func (s *AttemptStore) DeleteInProgressAttempt(ctx context.Context, userID, attemptID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM quiz_attempts WHERE id=$1 AND user_id=$2 AND status='in_progress'`,
		attemptID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (s *AttemptStore) FinalizeQuizAttempt(ctx context.Context, final domain.FinalAttempt) (domain.FinalizeResult, error) {
	id := final.Attempt.ID
	if id == "" {
		id = uuid.NewString()
	}
	attempt := final.Attempt
	attempt.ID = id
	results := final.Results
	results.AttemptID = id

	attemptRaw, timerRaw, err := marshalProgress(attempt, final.Timer)
	if err != nil {
		return domain.FinalizeResult{}, err
	}
	resultsRaw, err := json.Marshal(results)
	if err != nil {
		return domain.FinalizeResult{}, fmt.Errorf("marshal results: %w", err)
	}

	if final.Attempt.ID == "" {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO quiz_attempts (id, user_id, topic_id, section_type, quiz_id, status, attempt, timer, score, results, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'completed', $6::jsonb, $7::jsonb, $8, $9::jsonb, now())`,
			id, final.UserID, final.TopicID, string(final.SectionType), final.QuizID,
			attemptRaw, timerRaw, results.Score, string(resultsRaw),
		)
		if err != nil {
			return domain.FinalizeResult{}, fmt.Errorf("insert final attempt: %w", err)
		}
		return domain.FinalizeResult{AttemptID: id, Score: results.Score}, nil
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE quiz_attempts
		SET status='completed', attempt=$3::jsonb, timer=$4::jsonb, score=$5, results=$6::jsonb, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND status='in_progress'`,
		id, final.UserID, attemptRaw, timerRaw, results.Score, string(resultsRaw),
	)
	if err != nil {
		return domain.FinalizeResult{}, fmt.Errorf("finalize attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.FinalizeResult{}, domain.ErrAttemptNotFound
	}
	return domain.FinalizeResult{AttemptID: id, Score: results.Score}, nil
}

func (s *AttemptStore) GetQuizAttemptByID(ctx context.Context, userID, attemptID string) (domain.StoredAttempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id=$1 AND user_id=$2`,
		attemptID, userID,
	)
	return scanAttempt(row)
}

func marshalProgress(attempt domain.PersistableAttempt, timer domain.TimerSnapshot) (string, string, error) {
	attemptRaw, err := json.Marshal(attempt)
	if err != nil {
		return "", "", fmt.Errorf("marshal attempt: %w", err)
	}
	timerRaw, err := json.Marshal(timer)
	if err != nil {
		return "", "", fmt.Errorf("marshal timer: %w", err)
	}
	return string(attemptRaw), string(timerRaw), nil
}

func scanAttempt(row pgx.Row) (domain.StoredAttempt, error) {
	var (
		a                               domain.StoredAttempt
		section, status                 string
		attemptRaw, timerRaw, resultRaw []byte
		score                           *int
	)
	err := row.Scan(&a.ID, &a.UserID, &a.TopicID, &section, &a.QuizID, &status,
		&attemptRaw, &timerRaw, &score, &resultRaw, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.StoredAttempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.SectionType = domain.SectionType(section)
	a.Status = domain.AttemptStatus(status)
	a.Score = score
	if err := json.Unmarshal(attemptRaw, &a.Attempt); err != nil {
		return domain.StoredAttempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	if err := json.Unmarshal(timerRaw, &a.Timer); err != nil {
		return domain.StoredAttempt{}, fmt.Errorf("unmarshal timer: %w", err)
	}
	if len(resultRaw) > 0 {
		var results domain.ResultsRecord
		if err := json.Unmarshal(resultRaw, &results); err != nil {
			return domain.StoredAttempt{}, fmt.Errorf("unmarshal results: %w", err)
		}
		a.Results = &results
	}
	return a, nil
}
