package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/DevPanchal02/dental-edge-sub000/internal/config"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/postgres"
	"github.com/DevPanchal02/dental-edge-sub000/internal/logger"
	"github.com/DevPanchal02/dental-edge-sub000/internal/schema"
)

// NewSeedCmd loads a quiz JSON file into the quizzes table.
func NewSeedCmd(configPath *string) *cobra.Command {
	var topicID, section, quizID, file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a quiz JSON file ({metadata, questions}) into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

			ids := domain.QuizIdentifiers{TopicID: topicID, SectionType: domain.SectionType(section), QuizID: quizID}
			if err := schema.Struct(ids); err != nil {
				return err
			}
			content, err := readQuizFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewContentLoader(pool).SaveContent(ctx, ids.TopicID, ids.SectionType, ids.QuizID, content); err != nil {
				return err
			}
			log.Info().
				Str("topic_id", ids.TopicID).
				Str("section", section).
				Str("quiz_id", ids.QuizID).
				Int("questions", len(content.Questions)).
				Msg("quiz seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "topic id")
	cmd.Flags().StringVar(&section, "section", string(domain.SectionPractice), "section type (practice or qbank)")
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().StringVar(&file, "file", "", "path to quiz JSON")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readQuizFile(path string) (domain.QuizContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.QuizContent{}, err
	}
	var content domain.QuizContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return domain.QuizContent{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := schema.Struct(content); err != nil {
		return domain.QuizContent{}, err
	}
	return content, nil
}
