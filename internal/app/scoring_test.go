package app_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
)

func startedState(ids domain.QuizIdentifiers, c domain.QuizContent) engine.State {
	st := engine.Reduce(engine.NewState(), engine.InitializeAttempt{Identifiers: ids})
	return engine.Reduce(st, engine.SetDataAndStart{Content: &c, AttemptID: "attempt-1"})
}

func TestComputeResultsScenario(t *testing.T) {
	st := startedState(practiceIDs, content("Two", "A", "B"))
	st = engine.Reduce(st, engine.SelectOption{Index: 0, Label: "A"})
	st = engine.Reduce(st, engine.SelectOption{Index: 1, Label: "A"})

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := app.ComputeResults(st, false, at)

	if rec.Score != 1 || rec.TotalQuestions != 2 || rec.TotalValidQuestions != 2 {
		t.Fatalf("unexpected totals %+v", rec)
	}
	if !reflect.DeepEqual(rec.CorrectIndices, []int{0}) || !reflect.DeepEqual(rec.IncorrectIndices, []int{1}) {
		t.Fatalf("unexpected classification correct=%v incorrect=%v", rec.CorrectIndices, rec.IncorrectIndices)
	}
	if rec.QuizName != "Two" || !rec.Timestamp.Equal(at) || rec.AttemptID != "attempt-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestComputeResultsUnansweredAtTimeout(t *testing.T) {
	c := content("Three", "A", "B", "C")
	c.Questions[2].Error = "missing image"

	practice := startedState(practiceIDs, c)
	rec := app.ComputeResults(practice, true, time.Now())
	if len(rec.IncorrectIndices) != 2 || len(rec.UnansweredIndices) != 0 || rec.TotalValidQuestions != 2 {
		t.Fatalf("timed-out practice should count unanswered as incorrect: %+v", rec)
	}

	rec = app.ComputeResults(practice, false, time.Now())
	if len(rec.UnansweredIndices) != 2 || len(rec.IncorrectIndices) != 0 {
		t.Fatalf("manual finalize keeps unanswered apart: %+v", rec)
	}

	bank := startedState(qbankIDs, c)
	rec = app.ComputeResults(bank, true, time.Now())
	if len(rec.UnansweredIndices) != 2 || len(rec.IncorrectIndices) != 0 {
		t.Fatalf("question banks never penalize unanswered: %+v", rec)
	}
}
