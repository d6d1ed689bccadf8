// Package bridge translates between the in-memory attempt and its JSON-safe form and
// derives the cache keys a quiz is stored under. It performs no I/O.
package bridge

import (
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// Serialize converts crossed-off sets to sorted arrays; everything else is copied as is.
func Serialize(a domain.AttemptState) domain.PersistableAttempt {
	src := a.Clone()
	crossed := make(map[int][]string, len(src.CrossedOffOptions))
	for idx, set := range src.CrossedOffOptions {
		if len(set) == 0 {
			continue
		}
		crossed[idx] = set.Sorted()
	}
	return domain.PersistableAttempt{
		ID:                   src.ID,
		UserAnswers:          src.UserAnswers,
		CrossedOffOptions:    crossed,
		MarkedQuestions:      src.MarkedQuestions,
		SubmittedAnswers:     src.SubmittedAnswers,
		UserTimeSpent:        src.UserTimeSpent,
		HighlightedHTML:      src.HighlightedHTML,
		CurrentQuestionIndex: src.CurrentQuestionIndex,
		PracticeTestSettings: src.PracticeTestSettings,
	}
}

// Deserialize is the inverse of Serialize. Nil maps come back empty.
func Deserialize(p domain.PersistableAttempt) domain.AttemptState {
	out := domain.NewAttemptState(p.ID)
	for k, v := range p.UserAnswers {
		out.UserAnswers[k] = v
	}
	for idx, labels := range p.CrossedOffOptions {
		if len(labels) == 0 {
			continue
		}
		out.CrossedOffOptions[idx] = domain.NewLabelSet(labels...)
	}
	for k, v := range p.MarkedQuestions {
		if v {
			out.MarkedQuestions[k] = true
		}
	}
	for k, v := range p.SubmittedAnswers {
		if v {
			out.SubmittedAnswers[k] = true
		}
	}
	for k, v := range p.UserTimeSpent {
		out.UserTimeSpent[k] = v
	}
	for k, v := range p.HighlightedHTML {
		out.HighlightedHTML[k] = v
	}
	out.CurrentQuestionIndex = p.CurrentQuestionIndex
	out.PracticeTestSettings = p.PracticeTestSettings
	return out
}
