package engine

import (
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

// ReduceAttempt applies an attempt action. The input is never mutated. Non-attempt
// actions return the input unchanged.
func ReduceAttempt(a domain.AttemptState, action Action) domain.AttemptState {
	switch act := action.(type) {
	case SelectOption:
		next := a.Clone()
		next.UserAnswers[act.Index] = act.Label
		if set, ok := next.CrossedOffOptions[act.Index]; ok && set.Has(act.Label) {
			delete(set, act.Label)
			if len(set) == 0 {
				delete(next.CrossedOffOptions, act.Index)
			}
		}
		return next

	case ToggleCrossOff:
		next := a.Clone()
		set, ok := next.CrossedOffOptions[act.Index]
		if ok && set.Has(act.Label) {
			delete(set, act.Label)
			if len(set) == 0 {
				delete(next.CrossedOffOptions, act.Index)
			}
			return next
		}
		if !ok {
			set = domain.LabelSet{}
			next.CrossedOffOptions[act.Index] = set
		}
		set[act.Label] = struct{}{}
		// Crossing off the selected answer clears it.
		if next.UserAnswers[act.Index] == act.Label {
			delete(next.UserAnswers, act.Index)
		}
		return next

	case ToggleMark:
		next := a.Clone()
		if next.MarkedQuestions[act.Index] {
			delete(next.MarkedQuestions, act.Index)
		} else {
			next.MarkedQuestions[act.Index] = true
		}
		return next

	case NavigateQuestion:
		next := a.Clone()
		next.CurrentQuestionIndex = act.Index
		return next

	case SubmitCurrentAnswer:
		if _, answered := a.UserAnswers[a.CurrentQuestionIndex]; !answered {
			return a
		}
		next := a.Clone()
		next.SubmittedAnswers[a.CurrentQuestionIndex] = true
		return next

	case UpdateTimeSpent:
		if act.Delta <= 0 {
			return a
		}
		next := a.Clone()
		next.UserTimeSpent[act.Index] += act.Delta
		return next

	case UpdateHighlight:
		next := a.Clone()
		next.HighlightedHTML[act.ContentKey] = act.HTML
		return next
	}
	return a
}

func isAttemptAction(action Action) bool {
	switch action.(type) {
	case SelectOption, ToggleCrossOff, ToggleMark, NavigateQuestion,
		SubmitCurrentAnswer, UpdateTimeSpent, UpdateHighlight:
		return true
	}
	return false
}
