package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/config"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/memory"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/postgres"
	redisinfra "github.com/DevPanchal02/dental-edge-sub000/internal/infra/redis"
	"github.com/DevPanchal02/dental-edge-sub000/internal/logger"
	transport "github.com/DevPanchal02/dental-edge-sub000/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	quizEngine := app.NewQuizEngine(buildSessionStore(cfg, redisClient), buildDependencies(cfg, redisClient, pool, log))
	wsHandler := transport.NewWSHandler(quizEngine, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting quiz engine")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	// Hijacked websocket connections outlive Shutdown; flush their sessions here.
	quizEngine.CloseAll()
	return err
}

func buildSessionStore(cfg config.Config, client *redis.Client) app.SessionRepository {
	if client == nil {
		return memory.NewSessionStore()
	}
	return redisinfra.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
}

// buildDependencies picks redis and postgres backends when configured and falls back to
// in-process ones otherwise.
func buildDependencies(cfg config.Config, client *redis.Client, pool *pgxpool.Pool, log zerolog.Logger) app.Dependencies {
	var loader memory.ContentLoader = sampleCatalog()
	var attempts app.AttemptStore = memory.NewAttemptStore()
	if pool != nil {
		loader = postgres.NewContentLoader(pool)
		attempts = postgres.NewAttemptStore(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var content app.ContentProvider
	var cache app.LocalCache
	if client != nil {
		content = redisinfra.NewContentRepository(client, loader, quizTTL)
		cache = redisinfra.NewLocalCache(client, config.TTLDuration(cfg.Redis.CacheTTL, 7*24*time.Hour))
	} else {
		content = memory.NewContentRepository(loader, quizTTL)
		cache = memory.NewLocalCache()
	}

	return app.Dependencies{
		Content:  content,
		Attempts: attempts,
		Cache:    cache,
		Router:   transport.NewResultsRouter(log),
		Logger:   log,
		Options:  cfg.EngineOptions(),
	}
}

// sampleCatalog serves a practice test and a question bank when no database is configured.
func sampleCatalog() *memory.ContentCatalog {
	catalog := memory.NewContentCatalog()
	catalog.Put("biology", domain.SectionPractice, "test-1", domain.QuizContent{
		Metadata: domain.QuizMetadata{
			Name:                    "Biology Practice Test 1",
			TopicName:               "Biology",
			FullNameForDisplay:      "Biology Practice Test 1",
			CategoryForInstructions: "Biology",
			TimeLimitSeconds:        1800,
		},
		Questions: []domain.Question{
			sampleQuestion("Which organelle produces ATP?", "B", "Nucleus", "Mitochondrion", "Golgi apparatus"),
			sampleQuestion("Which base pairs with adenine in DNA?", "C", "Cytosine", "Guanine", "Thymine"),
			sampleQuestion("Where does translation occur?", "A", "Ribosome", "Lysosome", "Vacuole"),
		},
	})
	catalog.Put("biology", domain.SectionQBank, "bank-1", domain.QuizContent{
		Metadata: domain.QuizMetadata{
			Name:          "Biology Question Bank 1",
			TopicName:     "Biology",
			RequiredTier:  domain.TierStandard,
			QuestionCount: 2,
		},
		Questions: []domain.Question{
			sampleQuestion("Which molecule carries amino acids to the ribosome?", "C", "mRNA", "rRNA", "tRNA"),
			sampleQuestion("Which phase follows metaphase?", "A", "Anaphase", "Prophase", "Telophase"),
		},
	})
	return catalog
}

func sampleQuestion(prompt, correct string, options ...string) domain.Question {
	q := domain.Question{
		Question:    domain.HTMLBlock{HTMLContent: "<p>" + prompt + "</p>"},
		Explanation: domain.HTMLBlock{HTMLContent: "<p>The answer is " + correct + ".</p>"},
	}
	for i, text := range options {
		label := string(rune('A' + i))
		q.Options = append(q.Options, domain.Option{Label: label, HTMLContent: text, IsCorrect: label == correct})
	}
	return q
}
