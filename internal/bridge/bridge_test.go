package bridge

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
)

func TestSerializeRoundTripKeepsCrossedOffSets(t *testing.T) {
	a := domain.NewAttemptState("attempt-1")
	a.UserAnswers[0] = "A"
	a.CrossedOffOptions[0] = domain.NewLabelSet("D", "B", "C")
	a.CrossedOffOptions[3] = domain.NewLabelSet("E")
	a.MarkedQuestions[2] = true
	a.SubmittedAnswers[0] = true
	a.UserTimeSpent[0] = 42
	a.HighlightedHTML["passage-7"] = "<mark>x</mark>"
	a.CurrentQuestionIndex = 3
	a.PracticeTestSettings = domain.PracticeTestSettings{AdditionalTime: true}

	p := Serialize(a)
	if got := p.CrossedOffOptions[0]; len(got) != 3 || got[0] != "B" || got[2] != "D" {
		t.Fatalf("expected sorted array, got %v", got)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded domain.PersistableAttempt
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	back := Deserialize(decoded)
	if len(back.CrossedOffOptions) != 2 {
		t.Fatalf("expected 2 crossed-off entries, got %d", len(back.CrossedOffOptions))
	}
	for idx, set := range a.CrossedOffOptions {
		got := back.CrossedOffOptions[idx]
		if len(got) != len(set) {
			t.Fatalf("index %d: expected %d labels, got %d", idx, len(set), len(got))
		}
		for label := range set {
			if !got.Has(label) {
				t.Fatalf("index %d: missing label %s", idx, label)
			}
		}
	}
	if back.UserAnswers[0] != "A" || back.UserTimeSpent[0] != 42 || !back.MarkedQuestions[2] {
		t.Fatalf("scalar fields not preserved: %+v", back)
	}
	if back.CurrentQuestionIndex != 3 || !back.PracticeTestSettings.AdditionalTime {
		t.Fatalf("index/settings not preserved: %+v", back)
	}
}

func TestSerializeDoesNotAliasState(t *testing.T) {
	a := domain.NewAttemptState("x")
	a.UserAnswers[1] = "C"
	p := Serialize(a)
	p.UserAnswers[1] = "D"
	if a.UserAnswers[1] != "C" {
		t.Fatalf("serialize must copy, state changed to %s", a.UserAnswers[1])
	}
}

func TestDeserializeNilMaps(t *testing.T) {
	back := Deserialize(domain.PersistableAttempt{ID: "y"})
	if back.UserAnswers == nil || back.CrossedOffOptions == nil || back.HighlightedHTML == nil {
		t.Fatalf("expected initialized maps")
	}
}

func TestKeysAreDeterministic(t *testing.T) {
	k1 := ProgressKey("bio", domain.SectionPractice, "test-1")
	k2 := ProgressKey("bio", domain.SectionPractice, "test-1")
	if k1 != k2 {
		t.Fatalf("progress key not deterministic: %s vs %s", k1, k2)
	}
	if k1 == ResultsKey("bio", domain.SectionPractice, "test-1") {
		t.Fatalf("progress and results keys must differ")
	}
	if k1 == ProgressKey("bio", domain.SectionQBank, "test-1") {
		t.Fatalf("section must be part of the key")
	}
}

func TestLocalAttemptIDs(t *testing.T) {
	if !IsLocalAttemptID(NewLocalAttemptID()) || !IsLocalAttemptID(NewPreviewAttemptID()) {
		t.Fatalf("minted ids must be recognised as local")
	}
	if IsLocalAttemptID("7d9a4c0e-0000-4000-8000-000000000000") {
		t.Fatalf("remote ids must not be recognised as local")
	}
}

func TestDecodeProgressValidates(t *testing.T) {
	rec := domain.ProgressRecord{
		Identifiers: domain.QuizIdentifiers{TopicID: "bio", SectionType: domain.SectionQBank, QuizID: "q"},
		Attempt:     Serialize(domain.NewAttemptState("local-1")),
		Timer:       domain.TimerSnapshot{Value: 5},
		SavedAt:     time.Now(),
	}
	raw, err := EncodeProgress(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeProgress(raw); err != nil {
		t.Fatalf("decode valid record: %v", err)
	}

	rec.Identifiers.SectionType = "exam"
	raw, _ = EncodeProgress(rec)
	if _, err := DecodeProgress(raw); !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected invalid content error, got %v", err)
	}

	if _, err := DecodeProgress([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error for garbage")
	}
}
