package trace

import (
	"errors"
	"fmt"
)

// ErrEmptyHistory is returned (wrapped in a history.DecodeError) when there is
// nothing to reconstruct.
var ErrEmptyHistory = errors.New("history has no events")

// CorrelationError reports a history the engine cannot correlate.
// It is fatal for the reconstruction that produced it.
type CorrelationError struct {
	// Code identifies the error category.
	Code CorrelationErrorCode

	// Message is a human-readable description.
	Message string

	// StateID is the state whose origin was requested.
	StateID string

	// StateExecutionID identifies the state execution being scheduled, if known.
	StateExecutionID string

	// EventIndex is the history position of the offending event, or -1.
	EventIndex int
}

// CorrelationErrorCode categorizes correlation errors.
type CorrelationErrorCode string

const (
	// ErrCodeNoPendingOrigin indicates a state was scheduled without any
	// outstanding origin.
	ErrCodeNoPendingOrigin CorrelationErrorCode = "NO_PENDING_ORIGIN"

	// ErrCodeInvalidSeed indicates the tracker was seeded twice or after use.
	ErrCodeInvalidSeed CorrelationErrorCode = "INVALID_SEED"
)

func (e *CorrelationError) Error() string {
	if e.EventIndex >= 0 && e.StateExecutionID != "" {
		return fmt.Sprintf("%s: %s (state=%s, stateExecution=%s, event=%d)",
			e.Code, e.Message, e.StateID, e.StateExecutionID, e.EventIndex)
	}
	if e.EventIndex >= 0 {
		return fmt.Sprintf("%s: %s (state=%s, event=%d)", e.Code, e.Message, e.StateID, e.EventIndex)
	}
	return fmt.Sprintf("%s: %s (state=%s)", e.Code, e.Message, e.StateID)
}

// IsCorrelationError returns true if err is (or wraps) a *CorrelationError.
func IsCorrelationError(err error) bool {
	var ce *CorrelationError
	return errors.As(err, &ce)
}

// IsNoPendingOrigin returns true if err is a NO_PENDING_ORIGIN correlation error.
func IsNoPendingOrigin(err error) bool {
	var ce *CorrelationError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNoPendingOrigin
	}
	return false
}

func newNoPendingOriginError(stateID string) *CorrelationError {
	return &CorrelationError{
		Code:       ErrCodeNoPendingOrigin,
		Message:    "no pending origin for state",
		StateID:    stateID,
		EventIndex: -1,
	}
}

func newInvalidSeedError(stateID, reason string) *CorrelationError {
	return &CorrelationError{
		Code:       ErrCodeInvalidSeed,
		Message:    reason,
		StateID:    stateID,
		EventIndex: -1,
	}
}
