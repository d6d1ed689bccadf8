package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/bridge"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
)

// SaveProgress writes the attempt to the local cache and, where the tier allows, the
// remote store. Remote failures are logged and swallowed.
func (s *Session) SaveProgress(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.finalizing || !s.state.Status.Saveable() {
		s.mu.Unlock()
		return
	}
	st := s.state.Clone()
	s.mu.Unlock()
	s.persist(ctx, st, s.clock.Snapshot())
}

// remoteProgress reports whether in-progress attempts go to the remote store.
func (s *Session) remoteProgress() bool {
	return s.attempts != nil &&
		!s.ids.IsPreviewMode &&
		!s.identity.Anonymous() &&
		s.identity.Tier.UsesRemoteProgress()
}

// remoteFinalize reports whether finished attempts are submitted to the remote store.
// Every signed-in tier submits results; only in-progress writes are tier gated.
func (s *Session) remoteFinalize() bool {
	return s.attempts != nil && !s.ids.IsPreviewMode && !s.identity.Anonymous()
}

// persist holds saveMu for the whole write. A save that finds finalize already under
// way writes nothing, so finalize's progress delete is never overtaken.
func (s *Session) persist(ctx context.Context, st engine.State, snap domain.TimerSnapshot) {
	if s.ids.IsPreviewMode || s.ids.IsReview() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.isFinalizing() {
		return
	}
	attempt := bridge.Serialize(st.Attempt)
	raw, err := bridge.EncodeProgress(domain.ProgressRecord{
		Identifiers: s.ids,
		Attempt:     attempt,
		Timer:       snap,
		SavedAt:     s.now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("encode progress failed")
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, bridge.ProgressKeyFor(s.ids), string(raw)); err != nil {
			s.log.Warn().Err(err).Msg("local save failed")
		}
	}

	if !s.remoteProgress() || bridge.IsLocalAttemptID(st.Attempt.ID) {
		return
	}
	s.dispatch(engine.SetIsSaving{Saving: true})
	defer s.dispatch(engine.SetIsSaving{Saving: false})
	if _, err := s.attempts.SaveInProgressAttempt(ctx, s.inProgress(attempt, snap)); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", st.Attempt.ID).Msg("remote save failed")
	}
}

func (s *Session) inProgress(attempt domain.PersistableAttempt, snap domain.TimerSnapshot) domain.InProgressAttempt {
	return domain.InProgressAttempt{
		UserID:      s.identity.UserID,
		TopicID:     s.ids.TopicID,
		SectionType: s.ids.SectionType,
		QuizID:      s.ids.QuizID,
		Attempt:     attempt,
		Timer:       snap,
	}
}

// newAttemptID asks the remote store to mint a row where the tier allows it, and falls
// back to a locally minted id.
func (s *Session) newAttemptID(ctx context.Context) string {
	if s.ids.IsPreviewMode {
		return bridge.NewPreviewAttemptID()
	}
	if s.remoteProgress() {
		blank := bridge.Serialize(domain.NewAttemptState(""))
		id, err := s.attempts.SaveInProgressAttempt(ctx, s.inProgress(blank, domain.TimerSnapshot{}))
		if err == nil && id != "" {
			return id
		}
		s.log.Warn().Err(err).Msg("remote attempt creation failed, using local id")
	}
	return bridge.NewLocalAttemptID()
}

func (s *Session) isFinalizing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizing
}

func (s *Session) loadLocalProgress(ctx context.Context) (domain.ProgressRecord, bool) {
	if s.cache == nil || s.ids.IsPreviewMode {
		return domain.ProgressRecord{}, false
	}
	key := bridge.ProgressKeyFor(s.ids)
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("local progress read failed")
		return domain.ProgressRecord{}, false
	}
	if !ok {
		return domain.ProgressRecord{}, false
	}
	rec, err := bridge.DecodeProgress([]byte(raw))
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable local progress")
		_ = s.cache.Delete(ctx, key)
		return domain.ProgressRecord{}, false
	}
	if !rec.Identifiers.SameQuiz(s.ids) {
		return domain.ProgressRecord{}, false
	}
	return rec, true
}

func (s *Session) discardProgress(ctx context.Context, attemptID string) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, bridge.ProgressKeyFor(s.ids)); err != nil {
			s.log.Warn().Err(err).Msg("local progress delete failed")
		}
	}
	if !s.remoteProgress() || bridge.IsLocalAttemptID(attemptID) {
		return
	}
	if err := s.attempts.DeleteInProgressAttempt(ctx, s.identity.UserID, attemptID); err != nil && !errors.Is(err, domain.ErrAttemptNotFound) {
		s.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("remote progress delete failed")
	}
}

// scheduleSave saves once edits settle for SaveDebounce.
func (s *Session) scheduleSave() {
	if s.ids.IsPreviewMode {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pendingSave != nil {
		s.pendingSave.Stop()
	}
	s.pendingSave = time.AfterFunc(s.opts.SaveDebounce, func() {
		s.SaveProgress(s.ctx)
	})
}

func (s *Session) autosaveLoop() {
	ticker := time.NewTicker(s.opts.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.SaveProgress(s.ctx)
		}
	}
}

func (s *Session) watchExpiry() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.clock.Expired():
			s.log.Info().Msg("time expired")
			if err := s.finalize(s.ctx, true); err != nil {
				s.log.Warn().Err(err).Msg("finalize on expiry failed")
			}
		}
	}
}

// finalize is one-shot per attempt. It captures the visible question, scores the
// attempt, submits it and records the results locally before routing to results.
func (s *Session) finalize(ctx context.Context, timedOut bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.finalizing || !s.state.Status.Saveable() {
		s.mu.Unlock()
		return nil
	}
	s.finalizing = true
	if s.pendingNav != nil {
		s.pendingNav.Stop()
		s.pendingNav = nil
	}
	if s.pendingSave != nil {
		s.pendingSave.Stop()
		s.pendingSave = nil
	}
	var actions []engine.Action
	if s.state.Status == engine.StatusActive {
		// The summary screen already charged its question when it opened.
		actions = s.timeSpentLocked(s.state)
	}
	actions = append(actions, engine.SubmitCurrentAnswer{})
	s.shownAt = s.now()
	s.applyLocked(actions...)
	st := s.state.Clone()
	s.mu.Unlock()

	// Wait out any save already writing.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.clock.Stop()
	snap := s.clock.Snapshot()
	results := ComputeResults(st, timedOut, s.now())
	attemptID := st.Attempt.ID

	if s.remoteFinalize() {
		s.dispatch(engine.SetIsSaving{Saving: true})
		attempt := bridge.Serialize(st.Attempt)
		if bridge.IsLocalAttemptID(attempt.ID) {
			attempt.ID = ""
		}
		res, err := s.attempts.FinalizeQuizAttempt(ctx, domain.FinalAttempt{
			InProgressAttempt: s.inProgress(attempt, snap),
			Results:           results,
		})
		if err != nil {
			s.fail(domain.NewEngineError(domain.ErrCodeFinalize, err))
			return fmt.Errorf("finalize attempt: %w", err)
		}
		if res.AttemptID != "" {
			attemptID = res.AttemptID
		}
	}
	results.AttemptID = attemptID

	if !s.ids.IsPreviewMode && s.cache != nil {
		if raw, err := bridge.EncodeResults(results); err != nil {
			s.log.Warn().Err(err).Msg("encode results failed")
		} else if err := s.cache.Set(ctx, bridge.ResultsKeyFor(s.ids), string(raw)); err != nil {
			s.log.Warn().Err(err).Msg("local results write failed")
		}
		if err := s.cache.Delete(ctx, bridge.ProgressKeyFor(s.ids)); err != nil {
			s.log.Warn().Err(err).Msg("local progress delete failed")
		}
	}

	s.dispatch(engine.FinalizeSuccess{AttemptID: attemptID})
	s.log.Info().
		Str("attempt_id", attemptID).
		Int("score", results.Score).
		Int("valid_questions", results.TotalValidQuestions).
		Bool("timed_out", timedOut).
		Msg("attempt finalized")
	if s.router != nil {
		s.router.ShowResults(s.ids, attemptID)
	}
	return nil
}
