package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/status"
	"github.com/roach88/statetrace/internal/testutil"
	"github.com/roach88/statetrace/internal/trace"
)

// fakeFetcher serves canned answers and records the run it was asked for.
type fakeFetcher struct {
	exec        history.Execution
	events      []history.Event
	describeErr error
	loadErr     error
	loadedRun   string
}

func (f *fakeFetcher) Describe(context.Context, string, string) (history.Execution, error) {
	return f.exec, f.describeErr
}

func (f *fakeFetcher) LoadEvents(_ context.Context, _, runID string) ([]history.Event, error) {
	f.loadedRun = runID
	return f.events, f.loadErr
}

func stateExecution(code string) history.Execution {
	return history.Execution{
		WorkflowID: "wf-1",
		RunID:      "run-1",
		Status:     code,
		SearchAttributes: map[string]json.RawMessage{
			status.AttrWorkflowType: json.RawMessage(`"OrderWorkflow"`),
		},
	}
}

func waitExecuteHistory() []history.Event {
	return testutil.NewHistoryBuilder("wf-1", "A", nil).
		ScheduleWait("2", "A", "A-1").
		ScheduleExecute("3", "A", "A-1").
		Events()
}

func TestHistory(t *testing.T) {
	f := &fakeFetcher{exec: stateExecution("2"), events: waitExecuteHistory()}

	resp, err := NewService(f).History(context.Background(), "wf-1", "")
	require.NoError(t, err)

	assert.Equal(t, "run-1", f.loadedRun)
	assert.Equal(t, testutil.BaseTime.Unix(), resp.WorkflowStartedTimestamp)
	assert.Equal(t, "OrderWorkflow", resp.WorkflowType)
	assert.Equal(t, status.Completed, resp.Status)
	assert.Equal(t, "A", resp.Input.StartStateID)
	require.Len(t, resp.HistoryEvents, 2)
	assert.Equal(t, trace.RecordStateWaitUntil, resp.HistoryEvents[0].Type)
	assert.Equal(t, trace.RecordStateExecute, resp.HistoryEvents[1].Type)
	assert.Equal(t, trace.WorkflowStartIndex, resp.HistoryEvents[1].Execute.OriginEventIndex)
}

func TestHistoryJSON(t *testing.T) {
	f := &fakeFetcher{
		exec: stateExecution(""),
		events: testutil.NewHistoryBuilder("wf-1", "A", nil).
			ScheduleExecute("2", "A", "A-1").
			Events(),
	}

	resp, err := NewService(f).History(context.Background(), "wf-1", "run-1")
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "status")
	assert.NotContains(t, body, "Dropped")
	assert.JSONEq(t, `"OrderWorkflow"`, string(body["workflowType"]))

	var events []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["historyEvents"], &events))
	require.Len(t, events, 1)
	assert.JSONEq(t, `"StateExecute"`, string(events[0]["eventType"]))
	assert.Contains(t, events[0], "stateExecute")
}

func TestHistoryFetchFailure(t *testing.T) {
	upstream := errors.New("connection refused")

	t.Run("describe", func(t *testing.T) {
		f := &fakeFetcher{describeErr: upstream}
		_, err := NewService(f).History(context.Background(), "wf-1", "")
		assertAPIError(t, err, ErrorTypeTemporalAPI)
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("load events", func(t *testing.T) {
		f := &fakeFetcher{exec: stateExecution("1"), loadErr: upstream}
		_, err := NewService(f).History(context.Background(), "wf-1", "")
		assertAPIError(t, err, ErrorTypeTemporalAPI)
		assert.Equal(t, "connection refused", AsResponse(err).Detail)
	})
}

func TestHistoryNotStateWorkflow(t *testing.T) {
	exec := stateExecution("1")
	exec.SearchAttributes = map[string]json.RawMessage{"CustomerTier": json.RawMessage(`"gold"`)}
	f := &fakeFetcher{exec: exec, events: waitExecuteHistory()}

	_, err := NewService(f).History(context.Background(), "wf-1", "")
	assertAPIError(t, err, ErrorTypeNotStateWorkflow)
	assert.Empty(t, f.loadedRun, "events must not be fetched")
}

func TestHistoryUnrecognizedStatus(t *testing.T) {
	f := &fakeFetcher{exec: stateExecution("99"), events: waitExecuteHistory()}

	_, err := NewService(f).History(context.Background(), "wf-1", "")
	assertAPIError(t, err, ErrorTypeUnrecognizedStatus)
	assert.ErrorIs(t, err, status.ErrUnrecognizedStatus)
}

func TestHistoryCorrelationError(t *testing.T) {
	f := &fakeFetcher{
		exec: stateExecution("1"),
		events: testutil.NewHistoryBuilder("wf-1", "A", nil).
			ScheduleExecute("2", "B", "B-1").
			Events(),
	}

	_, err := NewService(f).History(context.Background(), "wf-1", "")
	assertAPIError(t, err, ErrorTypeCorrelation)
	assert.True(t, trace.IsNoPendingOrigin(err))
}

func TestHistoryDecodeError(t *testing.T) {
	f := &fakeFetcher{exec: stateExecution("1"), events: nil}

	_, err := NewService(f).History(context.Background(), "wf-1", "")
	assertAPIError(t, err, ErrorTypeDecode)
	assert.ErrorIs(t, err, trace.ErrEmptyHistory)
}

func TestDigestIsStable(t *testing.T) {
	svc := NewService(&fakeFetcher{exec: stateExecution("2"), events: waitExecuteHistory()})

	first, err := svc.History(context.Background(), "wf-1", "")
	require.NoError(t, err)
	second, err := svc.History(context.Background(), "wf-1", "")
	require.NoError(t, err)

	d1, err := Digest(first)
	require.NoError(t, err)
	d2, err := Digest(second)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)

	second.HistoryEvents = second.HistoryEvents[:1]
	d3, err := Digest(second)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func assertAPIError(t *testing.T, err error, errorType string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, IsAPIError(err, errorType), "want %s, got %v", errorType, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	resp := apiErr.Response()
	assert.Equal(t, errorType, resp.ErrorType)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Detail)
}
