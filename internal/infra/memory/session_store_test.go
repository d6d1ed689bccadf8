package memory

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	create := func() *app.Session {
		return app.NewSession(
			domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionQBank, QuizID: "bank-1"},
			domain.Identity{UserID: "u1", Tier: domain.TierFree},
			app.Dependencies{Logger: zerolog.Nop()},
		)
	}

	session, created := store.GetOrCreate("k1", create)
	if session == nil || !created {
		t.Fatalf("expected new session")
	}
	again, created := store.GetOrCreate("k1", create)
	if again != session || created {
		t.Fatalf("expected existing session to be reused")
	}
	if _, ok := store.Get("k1"); !ok {
		t.Fatalf("expected session present")
	}

	removed, ok := store.DeleteIfEmpty("k1")
	if !ok || removed != session {
		t.Fatalf("expected session removed when empty")
	}
	if _, ok := store.Get("k1"); ok {
		t.Fatalf("expected session gone")
	}
	removed.Close()
}

func TestSessionStoreDrain(t *testing.T) {
	store := NewSessionStore()
	for _, key := range []string{"k1", "k2"} {
		store.GetOrCreate(key, func() *app.Session {
			return app.NewSession(
				domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionQBank, QuizID: key},
				domain.Identity{UserID: "u1", Tier: domain.TierFree},
				app.Dependencies{Logger: zerolog.Nop()},
			)
		})
	}

	drained := store.Drain()
	if len(drained) != 2 || store.Len() != 0 {
		t.Fatalf("expected two drained sessions and an empty store, got %d and %d", len(drained), store.Len())
	}
	for _, session := range drained {
		session.Close()
	}
}
