package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAttributes(t *testing.T) {
	ev := Event{
		Type:           EventActivityTaskFailed,
		ActivityFailed: &ActivityFailedAttributes{ActivityID: "7", Failure: &Failure{Message: "boom"}},
	}
	raw, err := EncodeAttributes(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"activity_id":"7","failure":{"message":"boom"}}`, string(raw))

	var back Event
	back.Type = ev.Type
	require.NoError(t, DecodeAttributes(&back, raw))
	assert.Equal(t, ev.ActivityFailed, back.ActivityFailed)
}

func TestEncodeAttributesWithoutPayload(t *testing.T) {
	raw, err := EncodeAttributes(Event{Type: EventWorkflowExecutionCompleted})
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = EncodeAttributes(Event{Type: "TimerFired"})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDecodeAttributesSetsMatchingPointer(t *testing.T) {
	ev := Event{Type: EventWorkflowExecutionSignaled}
	require.NoError(t, DecodeAttributes(&ev, json.RawMessage(`{"signal_name":"approve"}`)))
	require.NotNil(t, ev.Signaled)
	assert.Equal(t, "approve", ev.Signaled.SignalName)
	assert.Nil(t, ev.ActivityScheduled)

	// Known types get an empty payload even without attributes.
	ev = Event{Type: EventWorkflowExecutionCompleted}
	require.NoError(t, DecodeAttributes(&ev, nil))
	assert.NotNil(t, ev.WorkflowCompleted)

	ev = Event{Type: "TimerFired"}
	require.NoError(t, DecodeAttributes(&ev, json.RawMessage(`{"x":1}`)))
	assert.Equal(t, Event{Type: "TimerFired"}, ev)
}

func TestDecodeAttributesMalformed(t *testing.T) {
	ev := Event{Type: EventActivityTaskStarted}
	err := DecodeAttributes(&ev, json.RawMessage(`{"attempt":"one"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ActivityTaskStarted attributes")
}

func TestEventActivityIDFollowsType(t *testing.T) {
	ev := Event{
		Type:              EventActivityTaskFailed,
		ActivityCompleted: &ActivityCompletedAttributes{ActivityID: "stray"},
		ActivityFailed:    &ActivityFailedAttributes{ActivityID: "7"},
	}
	assert.Equal(t, "7", ev.ActivityID())

	ev.ActivityFailed = nil
	assert.Empty(t, ev.ActivityID())
}
