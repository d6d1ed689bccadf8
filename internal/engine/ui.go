package engine

// ReduceUI applies a UI action. current is the question index per-question flags apply to.
func ReduceUI(u UIState, action Action, current int) UIState {
	switch act := action.(type) {
	case ToggleExhibit:
		next := u.Clone()
		next.ExhibitOpen = !u.ExhibitOpen
		return next

	case ToggleSolution:
		next := u.Clone()
		toggle(next.SolutionRevealed, current)
		return next

	case ToggleExplanation:
		next := u.Clone()
		toggle(next.ExplanationShown, current)
		return next

	case SetIsSaving:
		if u.IsSaving == act.Saving {
			return u
		}
		next := u.Clone()
		next.IsSaving = act.Saving
		return next
	}
	return u
}

func toggle(flags map[int]bool, idx int) {
	if flags[idx] {
		delete(flags, idx)
		return
	}
	flags[idx] = true
}

func isUIAction(action Action) bool {
	switch action.(type) {
	case ToggleExhibit, ToggleSolution, ToggleExplanation, SetIsSaving:
		return true
	}
	return false
}
