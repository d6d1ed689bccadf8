package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/DevPanchal02/dental-edge-sub000/internal/bridge"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/schema"
)

// SessionRepository abstracts where live sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(key string, create func() *Session) (*Session, bool)
	Get(key string) (*Session, bool)
	// DeleteIfEmpty unregisters the session under key if no viewer is attached and
	// returns it so the caller can close it.
	DeleteIfEmpty(key string) (*Session, bool)
	// Drain unregisters every session and returns them.
	Drain() []*Session
}

// openAttempts bounds retries when Open races a session being torn down.
const openAttempts = 3

// QuizEngine hands out live sessions so every tab a user has open on one quiz drives
// the same attempt.
type QuizEngine struct {
	sessions SessionRepository
	deps     Dependencies
	log      zerolog.Logger
}

func NewQuizEngine(store SessionRepository, deps Dependencies) *QuizEngine {
	return &QuizEngine{
		sessions: store,
		deps:     deps,
		log:      deps.Logger.With().Str("component", "engine").Logger(),
	}
}

// Open attaches a viewer to the live session for identity and ids, creating and
// starting it if absent. Every successful Open must be paired with Leave.
func (e *QuizEngine) Open(ctx context.Context, identity domain.Identity, ids domain.QuizIdentifiers) (*Session, error) {
	if err := schema.Struct(ids); err != nil {
		return nil, err
	}
	if ids.IsPreviewMode {
		s := NewSession(ids, identity, e.deps)
		s.attach()
		s.Start(ctx)
		return s, nil
	}
	if identity.Anonymous() {
		return nil, fmt.Errorf("sign-in required: %w", domain.ErrAccessDenied)
	}

	key := bridge.SessionKey(identity.UserID, ids)
	for i := 0; i < openAttempts; i++ {
		s, created := e.sessions.GetOrCreate(key, func() *Session {
			return NewSession(ids, identity, e.deps)
		})
		if !s.attach() {
			// Closed between lookup and attach; drop it and try again.
			e.sessions.DeleteIfEmpty(key)
			continue
		}
		if created {
			e.log.Debug().Str("session", key).Msg("session created")
			s.Start(ctx)
		}
		return s, nil
	}
	return nil, domain.ErrSessionClosed
}

// Get returns the live session for identity and ids.
func (e *QuizEngine) Get(identity domain.Identity, ids domain.QuizIdentifiers) (*Session, error) {
	s, ok := e.sessions.Get(bridge.SessionKey(identity.UserID, ids))
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Leave detaches a viewer and closes the session once nobody is watching it.
func (e *QuizEngine) Leave(s *Session) {
	s.detach()
	if s.ids.IsPreviewMode {
		if s.IsEmpty() {
			s.Close()
		}
		return
	}
	key := bridge.SessionKey(s.identity.UserID, s.ids)
	if removed, ok := e.sessions.DeleteIfEmpty(key); ok {
		removed.Close()
		e.log.Debug().Str("session", key).Msg("session closed")
	}
}

// CloseAll closes every registered session, flushing its progress. Viewers still
// attached see their update streams end; their later Leave calls are no-ops.
func (e *QuizEngine) CloseAll() {
	sessions := e.sessions.Drain()
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
	if len(sessions) > 0 {
		e.log.Info().Int("sessions", len(sessions)).Msg("sessions closed")
	}
}
