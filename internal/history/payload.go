package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SystemStatePrefix marks interpreter-internal next states (graceful complete,
// force fail, dead end). They never create origins.
const SystemStatePrefix = "_SYS_"

// StartInput is the decoded WorkflowExecutionStarted payload.
type StartInput struct {
	WorkflowType string          `json:"iwfWorkflowType,omitempty"`
	StartStateID string          `json:"startStateId"`
	StateInput   json.RawMessage `json:"stateInput,omitempty"`
	StateOptions json.RawMessage `json:"stateOptions,omitempty"`
	WorkerURL    string          `json:"iwfWorkerUrl,omitempty"`
}

// StateRequest is the decoded input of a wait or execute activity.
type StateRequest struct {
	WorkerURL string           `json:"iwfWorkerUrl,omitempty"`
	Request   StateRequestBody `json:"request"`
}

type StateRequestBody struct {
	WorkflowType string          `json:"workflowType,omitempty"`
	StateID      string          `json:"workflowStateId"`
	StateInput   json.RawMessage `json:"stateInput,omitempty"`
	Context      StateContext    `json:"context"`
}

type StateContext struct {
	WorkflowID               string `json:"workflowId,omitempty"`
	WorkflowRunID            string `json:"workflowRunId,omitempty"`
	StateExecutionID         string `json:"stateExecutionId"`
	WorkflowStartedTimestamp int64  `json:"workflowStartedTimestamp,omitempty"`
}

// StateID is a shorthand for Request.StateID.
func (r StateRequest) StateID() string { return r.Request.StateID }

// StateExecutionID is a shorthand for Request.Context.StateExecutionID.
func (r StateRequest) StateExecutionID() string { return r.Request.Context.StateExecutionID }

// StateDecision is the decoded result of an execute activity.
type StateDecision struct {
	Decision *Decision `json:"stateDecision,omitempty"`
}

type Decision struct {
	NextStates []NextState `json:"nextStates"`
}

type NextState struct {
	StateID      string          `json:"stateId"`
	StateInput   json.RawMessage `json:"stateInput,omitempty"`
	StateOptions json.RawMessage `json:"stateOptions,omitempty"`
}

// IsSystem reports whether the next state is an interpreter-internal transition.
func (n NextState) IsSystem() bool {
	return strings.HasPrefix(n.StateID, SystemStatePrefix)
}

// Next returns the decision's next states, or nil when the decision is empty.
func (d StateDecision) Next() []NextState {
	if d.Decision == nil {
		return nil
	}
	return d.Decision.NextStates
}

// DecodeStartInput decodes the workflow start payload of the event at index.
func DecodeStartInput(index int, ev Event) (StartInput, error) {
	var in StartInput
	if ev.Type != EventWorkflowExecutionStarted || ev.WorkflowStarted == nil {
		return in, &DecodeError{EventIndex: index, EventType: ev.Type,
			Err: fmt.Errorf("expected %s", EventWorkflowExecutionStarted)}
	}
	if err := decodePayload(ev.WorkflowStarted.Input, &in); err != nil {
		return in, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "input", Err: err}
	}
	if in.StartStateID == "" {
		return in, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "input.startStateId", Err: ErrMissingField}
	}
	in.StateInput = Compact(in.StateInput)
	in.StateOptions = Compact(in.StateOptions)
	return in, nil
}

// DecodeStateRequest decodes the input of a wait or execute activity.
func DecodeStateRequest(index int, ev Event) (StateRequest, error) {
	var req StateRequest
	if ev.ActivityScheduled == nil {
		return req, &DecodeError{EventIndex: index, EventType: ev.Type,
			Err: fmt.Errorf("expected %s", EventActivityTaskScheduled)}
	}
	if err := decodePayload(ev.ActivityScheduled.Input, &req); err != nil {
		return req, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "input", Err: err}
	}
	if req.Request.StateID == "" {
		return req, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "input.request.workflowStateId", Err: ErrMissingField}
	}
	if req.Request.Context.StateExecutionID == "" {
		return req, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "input.request.context.stateExecutionId", Err: ErrMissingField}
	}
	req.Request.StateInput = Compact(req.Request.StateInput)
	return req, nil
}

// DecodeStateDecision decodes the result of a completed execute activity.
// An absent result decodes to an empty decision.
func DecodeStateDecision(index int, ev Event) (StateDecision, error) {
	var dec StateDecision
	if ev.ActivityCompleted == nil {
		return dec, &DecodeError{EventIndex: index, EventType: ev.Type,
			Err: fmt.Errorf("expected %s", EventActivityTaskCompleted)}
	}
	if IsEmpty(ev.ActivityCompleted.Result) {
		return dec, nil
	}
	if err := decodePayload(ev.ActivityCompleted.Result, &dec); err != nil {
		return dec, &DecodeError{EventIndex: index, EventType: ev.Type, Field: "result", Err: err}
	}
	for i, next := range dec.Next() {
		if next.StateID == "" {
			return dec, &DecodeError{EventIndex: index, EventType: ev.Type,
				Field: fmt.Sprintf("result.stateDecision.nextStates[%d].stateId", i), Err: ErrMissingField}
		}
		dec.Decision.NextStates[i].StateInput = Compact(next.StateInput)
		dec.Decision.NextStates[i].StateOptions = Compact(next.StateOptions)
	}
	return dec, nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if IsEmpty(raw) {
		return ErrMissingPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// IsEmpty reports whether a raw payload is absent or JSON null.
func IsEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Compact returns raw with insignificant whitespace removed, or nil when the
// payload is empty. Invalid JSON is returned unchanged.
func Compact(raw json.RawMessage) json.RawMessage {
	if IsEmpty(raw) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}
