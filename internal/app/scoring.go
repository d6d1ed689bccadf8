package app

import (
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/engine"
)

// ComputeResults scores the attempt in st against its loaded questions. Questions with
// an error flag are skipped. Unanswered questions count as incorrect only when a
// practice test ran out of time.
func ComputeResults(st engine.State, timedOut bool, at time.Time) domain.ResultsRecord {
	rec := domain.ResultsRecord{
		AttemptID:         st.Attempt.ID,
		TotalQuestions:    st.QuestionCount(),
		CorrectIndices:    []int{},
		IncorrectIndices:  []int{},
		UnansweredIndices: []int{},
		UserAnswers:       make(map[int]string, len(st.Attempt.UserAnswers)),
		Timestamp:         at.UTC(),
		TimedOut:          timedOut,
	}
	if st.QuizContent != nil {
		rec.QuizName = st.QuizContent.Metadata.Name
	}
	for k, v := range st.Attempt.UserAnswers {
		rec.UserAnswers[k] = v
	}

	penalizeUnanswered := timedOut &&
		st.Identifiers.SectionType == domain.SectionPractice &&
		!st.Identifiers.IsReview()

	for i := 0; i < rec.TotalQuestions; i++ {
		q, _ := st.QuizContent.Question(i)
		if q.IsInert() {
			continue
		}
		rec.TotalValidQuestions++

		answer, answered := st.Attempt.UserAnswers[i]
		correct, hasCorrect := q.CorrectLabel()
		switch {
		case answered && hasCorrect && answer == correct:
			rec.CorrectIndices = append(rec.CorrectIndices, i)
		case answered, penalizeUnanswered:
			rec.IncorrectIndices = append(rec.IncorrectIndices, i)
		default:
			rec.UnansweredIndices = append(rec.UnansweredIndices, i)
		}
	}
	rec.Score = len(rec.CorrectIndices)
	return rec
}
