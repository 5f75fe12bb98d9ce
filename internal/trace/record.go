package trace

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/statetrace/internal/history"
)

// RecordType discriminates trace records. The values are the eventType
// strings of the serialized trace.
type RecordType string

const (
	RecordStateWaitUntil    RecordType = "StateWaitUntil"
	RecordStateExecute      RecordType = "StateExecute"
	RecordSignalReceived    RecordType = "SignalReceived"
	RecordWorkflowCompleted RecordType = "WorkflowCompleted"
	RecordWorkflowFailed    RecordType = "WorkflowFailed"
)

// StatePhase holds the fields shared by wait and execute records.
type StatePhase struct {
	StateID          string           `json:"stateId"`
	StateExecutionID string           `json:"stateExecutionId"`
	Input            json.RawMessage  `json:"input,omitempty"`
	FirstAttemptTime int64            `json:"firstAttemptTime"`
	CompletedTime    *int64           `json:"completedTime,omitempty"`
	OriginEventIndex int              `json:"originEventIndex"`
	Options          json.RawMessage  `json:"options,omitempty"`
	Failure          *history.Failure `json:"failure,omitempty"`
}

// WaitPhase is the wait-until part of a state execution.
type WaitPhase struct {
	StatePhase
}

// ExecutePhase is the execute part of a state execution.
type ExecutePhase struct {
	StatePhase
	DecisionOutput json.RawMessage `json:"decisionOutput,omitempty"`
}

// Marker is a record that carries only its event time.
type Marker struct {
	Timestamp int64 `json:"timestamp"`
}

// Record is one entry of the reconstructed trace. Exactly one of Wait,
// Execute or Marker is set, according to Type.
type Record struct {
	Type    RecordType
	Wait    *WaitPhase
	Execute *ExecutePhase
	Marker  *Marker
}

// Phase returns the state phase of wait and execute records, or nil.
func (r *Record) Phase() *StatePhase {
	switch {
	case r.Wait != nil:
		return &r.Wait.StatePhase
	case r.Execute != nil:
		return &r.Execute.StatePhase
	default:
		return nil
	}
}

// variantKey is the JSON key holding the record payload.
func (t RecordType) variantKey() string {
	switch t {
	case RecordStateWaitUntil:
		return "stateWaitUntil"
	case RecordStateExecute:
		return "stateExecute"
	case RecordSignalReceived:
		return "signalReceived"
	case RecordWorkflowCompleted:
		return "workflowCompleted"
	case RecordWorkflowFailed:
		return "workflowFailed"
	default:
		return ""
	}
}

// MarshalJSON writes {"eventType": ..., "<variant>": {...}}.
func (r Record) MarshalJSON() ([]byte, error) {
	key := r.Type.variantKey()
	if key == "" {
		return nil, fmt.Errorf("marshal record: unknown record type %q", r.Type)
	}

	var payload any
	switch {
	case r.Wait != nil:
		payload = r.Wait
	case r.Execute != nil:
		payload = r.Execute
	case r.Marker != nil:
		payload = r.Marker
	default:
		return nil, fmt.Errorf("marshal record: %s has no payload", r.Type)
	}

	return json.Marshal(map[string]any{
		"eventType": r.Type,
		key:         payload,
	})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	var typ RecordType
	if err := json.Unmarshal(envelope["eventType"], &typ); err != nil {
		return fmt.Errorf("unmarshal record eventType: %w", err)
	}
	key := typ.variantKey()
	if key == "" {
		return fmt.Errorf("unmarshal record: unknown record type %q", typ)
	}

	out := Record{Type: typ}
	var target any
	switch typ {
	case RecordStateWaitUntil:
		out.Wait = &WaitPhase{}
		target = out.Wait
	case RecordStateExecute:
		out.Execute = &ExecutePhase{}
		target = out.Execute
	default:
		out.Marker = &Marker{}
		target = out.Marker
	}
	if err := json.Unmarshal(envelope[key], target); err != nil {
		return fmt.Errorf("unmarshal %s: %w", typ, err)
	}
	*r = out
	return nil
}

// Trace is an append-only record sequence. Append returns the record's
// index, which stays valid for the lifetime of the Trace.
type Trace struct {
	records []Record
}

// Append adds r and returns its index.
func (t *Trace) Append(r Record) int {
	t.records = append(t.records, r)
	return len(t.records) - 1
}

// At returns the record at index i. It panics if i is out of range.
func (t *Trace) At(i int) *Record {
	return &t.records[i]
}

// Len returns the number of records.
func (t *Trace) Len() int {
	return len(t.records)
}

// Records returns the records in order. The slice is never nil.
func (t *Trace) Records() []Record {
	if t.records == nil {
		return []Record{}
	}
	return t.records
}
