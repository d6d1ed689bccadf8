package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// ContentLoader loads quiz metadata and questions JSONB from Postgres.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadContent(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizContent, error) {
	var metaRaw, questionsRaw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT metadata, questions FROM quizzes WHERE topic_id=$1 AND section_type=$2 AND quiz_id=$3`,
		topicID, string(section), quizID,
	).Scan(&metaRaw, &questionsRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizContent{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizContent{}, fmt.Errorf("load quiz: %w", err)
	}

	var content domain.QuizContent
	if err := json.Unmarshal(metaRaw, &content.Metadata); err != nil {
		return domain.QuizContent{}, fmt.Errorf("unmarshal quiz metadata: %w", err)
	}
	if err := json.Unmarshal(questionsRaw, &content.Questions); err != nil {
		return domain.QuizContent{}, fmt.Errorf("unmarshal quiz questions: %w", err)
	}
	return content, nil
}

// SaveContent upserts a quiz.
func (l *ContentLoader) SaveContent(ctx context.Context, topicID string, section domain.SectionType, quizID string, content domain.QuizContent) error {
	metaRaw, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("marshal quiz metadata: %w", err)
	}
	questionsRaw, err := json.Marshal(content.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz questions: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quizzes (topic_id, section_type, quiz_id, metadata, questions, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, now())
		ON CONFLICT (topic_id, section_type, quiz_id)
		DO UPDATE SET metadata=EXCLUDED.metadata, questions=EXCLUDED.questions, updated_at=now()`,
		topicID, string(section), quizID, string(metaRaw), string(questionsRaw),
	)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}
