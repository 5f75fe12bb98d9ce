package history

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEvent(input string) Event {
	return Event{
		Type:            EventWorkflowExecutionStarted,
		WorkflowStarted: &WorkflowStartedAttributes{Input: json.RawMessage(input)},
	}
}

func scheduledEvent(input string) Event {
	return Event{
		Type: EventActivityTaskScheduled,
		ActivityScheduled: &ActivityScheduledAttributes{
			ActivityID:   "1",
			ActivityType: ActivityStateExecute,
			Input:        json.RawMessage(input),
		},
	}
}

func completedEvent(result string) Event {
	ev := Event{
		Type:              EventActivityTaskCompleted,
		ActivityCompleted: &ActivityCompletedAttributes{ActivityID: "1"},
	}
	if result != "" {
		ev.ActivityCompleted.Result = json.RawMessage(result)
	}
	return ev
}

func TestDecodeStartInput(t *testing.T) {
	in, err := DecodeStartInput(0, startEvent(`{
		"iwfWorkflowType": "OrderWorkflow",
		"startStateId": "Charge",
		"stateInput": { "amount": 42 },
		"stateOptions": { "retries": 3 }
	}`))
	require.NoError(t, err)

	assert.Equal(t, "OrderWorkflow", in.WorkflowType)
	assert.Equal(t, "Charge", in.StartStateID)
	assert.Equal(t, `{"amount":42}`, string(in.StateInput))
	assert.Equal(t, `{"retries":3}`, string(in.StateOptions))
}

func TestDecodeStartInputErrors(t *testing.T) {
	tests := []struct {
		name      string
		ev        Event
		wantField string
		wantErr   error
	}{
		{"wrong event", completedEvent(""), "", nil},
		{"no input", startEvent(""), "input", ErrMissingPayload},
		{"null input", startEvent("null"), "input", ErrMissingPayload},
		{"malformed", startEvent(`{"startStateId":`), "input", nil},
		{"no start state", startEvent(`{"stateInput":{}}`), "input.startStateId", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStartInput(0, tt.ev)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, 0, de.EventIndex)
			assert.Equal(t, tt.wantField, de.Field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeStateRequest(t *testing.T) {
	req, err := DecodeStateRequest(3, scheduledEvent(`{
		"iwfWorkerUrl": "http://worker",
		"request": {
			"workflowStateId": "Ship",
			"stateInput": {"carrier": "ups"},
			"context": {"workflowId": "wf", "stateExecutionId": "Ship-2"}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Ship", req.StateID())
	assert.Equal(t, "Ship-2", req.StateExecutionID())
	assert.Equal(t, "http://worker", req.WorkerURL)
	assert.Equal(t, `{"carrier":"ups"}`, string(req.Request.StateInput))
}

func TestDecodeStateRequestErrors(t *testing.T) {
	tests := []struct {
		name      string
		ev        Event
		wantField string
	}{
		{"not scheduled", completedEvent(""), ""},
		{"no input", scheduledEvent(""), "input"},
		{"no state id", scheduledEvent(`{"request":{"context":{"stateExecutionId":"A-1"}}}`), "input.request.workflowStateId"},
		{"no execution id", scheduledEvent(`{"request":{"workflowStateId":"A","context":{}}}`), "input.request.context.stateExecutionId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStateRequest(7, tt.ev)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, 7, de.EventIndex)
			assert.Equal(t, tt.wantField, de.Field)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestDecodeStateDecision(t *testing.T) {
	dec, err := DecodeStateDecision(4, completedEvent(`{
		"stateDecision": {
			"nextStates": [
				{"stateId": "B", "stateOptions": { "lane": "a" }},
				{"stateId": "_SYS_GRACEFUL_COMPLETING_WORKFLOW"}
			]
		}
	}`))
	require.NoError(t, err)

	next := dec.Next()
	require.Len(t, next, 2)
	assert.Equal(t, "B", next[0].StateID)
	assert.Equal(t, `{"lane":"a"}`, string(next[0].StateOptions))
	assert.False(t, next[0].IsSystem())
	assert.True(t, next[1].IsSystem())
	assert.Nil(t, next[1].StateOptions)
}

func TestDecodeStateDecisionEmpty(t *testing.T) {
	dec, err := DecodeStateDecision(4, completedEvent(""))
	require.NoError(t, err)
	assert.Nil(t, dec.Next())

	dec, err = DecodeStateDecision(4, completedEvent(`{}`))
	require.NoError(t, err)
	assert.Nil(t, dec.Next())
}

func TestDecodeStateDecisionErrors(t *testing.T) {
	_, err := DecodeStateDecision(4, scheduledEvent(`{}`))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))

	_, err = DecodeStateDecision(4, completedEvent(`{"stateDecision":{"nextStates":[{"stateId":"B"},{"stateInput":1}]}}`))
	require.Error(t, err)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "result.stateDecision.nextStates[1].stateId", de.Field)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "decode ActivityTaskCompleted at event 4")
}

func TestCompact(t *testing.T) {
	assert.Nil(t, Compact(nil))
	assert.Nil(t, Compact(json.RawMessage(" null ")))
	assert.Equal(t, `{"a":[1,2]}`, string(Compact(json.RawMessage("{ \"a\" : [1, 2] }"))))
	assert.Equal(t, `{bad`, string(Compact(json.RawMessage(`{bad`))))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(json.RawMessage("  ")))
	assert.True(t, IsEmpty(json.RawMessage("null")))
	assert.False(t, IsEmpty(json.RawMessage("{}")))
	assert.False(t, IsEmpty(json.RawMessage(`""`)))
}
