package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetrace/internal/history"
)

func TestHistoryBuilderProducesDecodableEvents(t *testing.T) {
	events := NewHistoryBuilder("wf-1", "A", nil).
		ScheduleWait("5", "A", "A-1").
		ScheduleExecute("7", "A", "A-1").
		Decide("7", history.NextState{StateID: "B"}).
		Events()

	require.Len(t, events, 4)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.ID)
	}

	start, err := history.DecodeStartInput(0, events[0])
	require.NoError(t, err)
	assert.Equal(t, "A", start.StartStateID)

	req, err := history.DecodeStateRequest(1, events[1])
	require.NoError(t, err)
	assert.Equal(t, "A", req.StateID())
	assert.Equal(t, "A-1", req.StateExecutionID())

	dec, err := history.DecodeStateDecision(3, events[3])
	require.NoError(t, err)
	require.Len(t, dec.Next(), 1)
	assert.Equal(t, "B", dec.Next()[0].StateID)
}

func TestHistoryBuilderIsDeterministic(t *testing.T) {
	build := func() []history.Event {
		return NewHistoryBuilder("wf-1", "A", nil).
			ScheduleExecute("5", "A", "A-1").
			Signal("ping").
			CompleteWorkflow().
			Events()
	}
	assert.Equal(t, build(), build())
}

func TestHistoryBuilderDocumentRoundTrip(t *testing.T) {
	b := NewHistoryBuilder("wf-doc", "A", nil).
		ScheduleExecute("2", "A", "A-1").
		Decide("2", history.NextState{StateID: "B"}).
		CompleteWorkflow()

	doc := b.Document("run-1", "2")
	assert.Equal(t, "wf-doc", doc.WorkflowID)
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "TestWorkflow", doc.SearchAttributes["IwfWorkflowType"])

	events, err := doc.Events()
	require.NoError(t, err)
	want := b.Events()
	require.Len(t, events, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, events[i].ID)
		assert.Equal(t, want[i].Type, events[i].Type)
		assert.True(t, want[i].Time.Equal(events[i].Time))
	}

	dec, err := history.DecodeStateDecision(2, events[2])
	require.NoError(t, err)
	require.Len(t, dec.Next(), 1)
	assert.Equal(t, "B", dec.Next()[0].StateID)
}
