package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/infra/memory"
)

func TestContentRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	catalog := memory.NewContentCatalog()
	catalog.Put("bio", domain.SectionPractice, "test-1", sampleContent())
	loader := &countingLoader{ContentLoader: catalog}
	repo := NewContentRepository(client, loader, time.Minute)

	qs, err := repo.GetQuizData(context.Background(), "bio", domain.SectionPractice, "test-1", false)
	if err != nil {
		t.Fatalf("get quiz data: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:content:bio/practice/test-1") {
		t.Fatalf("expected content blob in redis")
	}

	// Second call should hit cache, loader not incremented.
	meta, _ := repo.GetQuizMetadata(context.Background(), "bio", domain.SectionPractice, "test-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if meta.Name != "Biology Test 1" {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	preview, _ := repo.GetQuizData(context.Background(), "bio", domain.SectionPractice, "test-1", true)
	if len(preview) != memory.DefaultPreviewQuestions {
		t.Fatalf("expected truncated preview, got %d", len(preview))
	}
}

type countingLoader struct {
	memory.ContentLoader
	calls int
}

func (l *countingLoader) LoadContent(ctx context.Context, topicID string, section domain.SectionType, quizID string) (domain.QuizContent, error) {
	l.calls++
	return l.ContentLoader.LoadContent(ctx, topicID, section, quizID)
}

func sampleContent() domain.QuizContent {
	question := func(correct string) domain.Question {
		return domain.Question{
			Question: domain.HTMLBlock{HTMLContent: "<p>Which one?</p>"},
			Options: []domain.Option{
				{Label: "A", IsCorrect: correct == "A"},
				{Label: "B", IsCorrect: correct == "B"},
			},
		}
	}
	return domain.QuizContent{
		Metadata:  domain.QuizMetadata{Name: "Biology Test 1"},
		Questions: []domain.Question{question("A"), question("B"), question("A")},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
