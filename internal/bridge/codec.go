package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/DevPanchal02/dental-edge-sub000/internal/domain"
	"github.com/DevPanchal02/dental-edge-sub000/internal/schema"
)

// EncodeProgress renders a progress record as cache JSON.
func EncodeProgress(rec domain.ProgressRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeProgress parses and validates cache JSON.
func DecodeProgress(raw []byte) (domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("decode progress: %w", err)
	}
	if err := schema.Progress(rec); err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("decode progress: %w", err)
	}
	return rec, nil
}

// EncodeResults renders a results record as cache JSON.
func EncodeResults(rec domain.ResultsRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeResults parses cache JSON written by EncodeResults.
func DecodeResults(raw []byte) (domain.ResultsRecord, error) {
	var rec domain.ResultsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ResultsRecord{}, fmt.Errorf("decode results: %w", err)
	}
	return rec, nil
}
