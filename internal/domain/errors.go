package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no live session exists for a quiz tuple.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned by operations on a session that has been torn down.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates the remote store has no such attempt.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAccessDenied is returned by the content provider when the user's entitlement
	// does not cover the quiz.
	ErrAccessDenied = errors.New("access denied")
	// ErrContentTimeout is returned when content loading exceeds its deadline.
	ErrContentTimeout = errors.New("quiz content load timed out")
	// ErrInvalidContent indicates an external payload failed schema validation.
	ErrInvalidContent = errors.New("invalid quiz content")
)

// ErrorCode identifies a fatal session error for the presentation layer.
type ErrorCode string

const (
	ErrCodeContentLoad  ErrorCode = "CONTENT_LOAD_FAILED"
	ErrCodeTimeout      ErrorCode = "CONTENT_TIMEOUT"
	ErrCodeAccessDenied ErrorCode = "ACCESS_DENIED"
	ErrCodeReviewLoad   ErrorCode = "REVIEW_LOAD_FAILED"
	ErrCodeInvalidData  ErrorCode = "INVALID_CONTENT"
	ErrCodeFinalize     ErrorCode = "FINALIZE_FAILED"
	ErrCodeUnknown      ErrorCode = "UNKNOWN"
)

// Message returns the user-visible text for a code.
func Message(code ErrorCode) string {
	switch code {
	case ErrCodeContentLoad:
		return "We couldn't load this quiz. Please return to the topic list and try again."
	case ErrCodeTimeout:
		return "Loading the quiz took too long. Please check your connection and try again."
	case ErrCodeAccessDenied:
		return "Your plan doesn't include this quiz."
	case ErrCodeReviewLoad:
		return "We couldn't load this attempt for review."
	case ErrCodeInvalidData:
		return "This quiz is temporarily unavailable."
	case ErrCodeFinalize:
		return "We couldn't submit your attempt. Your progress is saved on this device."
	default:
		return "Something went wrong."
	}
}

// EngineError is the single error shape held by a session in the error status.
type EngineError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + " (" + e.Detail + ")"
}

// IsAccessDenied reports whether the presentation should route to the upgrade flow.
func (e *EngineError) IsAccessDenied() bool {
	return e != nil && e.Code == ErrCodeAccessDenied
}

// NewEngineError builds an EngineError carrying err's text as detail.
func NewEngineError(code ErrorCode, err error) *EngineError {
	out := &EngineError{Code: code, Message: Message(code)}
	if err != nil {
		out.Detail = err.Error()
	}
	return out
}

// NormalizeError maps any thrown value onto an EngineError.
func NormalizeError(v any) *EngineError {
	switch e := v.(type) {
	case nil:
		return &EngineError{Code: ErrCodeUnknown, Message: Message(ErrCodeUnknown)}
	case *EngineError:
		cp := *e
		if cp.Code == "" {
			cp.Code = ErrCodeUnknown
		}
		if cp.Message == "" {
			cp.Message = Message(cp.Code)
		}
		return &cp
	case EngineError:
		return NormalizeError(&e)
	case error:
		var ee *EngineError
		if errors.As(e, &ee) {
			return NormalizeError(ee)
		}
		return NewEngineError(classify(e), e)
	case string:
		return &EngineError{Code: ErrCodeUnknown, Message: Message(ErrCodeUnknown), Detail: e}
	default:
		return &EngineError{Code: ErrCodeUnknown, Message: Message(ErrCodeUnknown), Detail: fmt.Sprint(v)}
	}
}

func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return ErrCodeAccessDenied
	case errors.Is(err, ErrContentTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, ErrInvalidContent):
		return ErrCodeInvalidData
	case errors.Is(err, ErrQuizNotFound):
		return ErrCodeContentLoad
	default:
		return ErrCodeUnknown
	}
}
