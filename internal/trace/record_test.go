package trace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMarshalVariantKeys(t *testing.T) {
	done := int64(12)
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "wait",
			rec: Record{Type: RecordStateWaitUntil, Wait: &WaitPhase{StatePhase: StatePhase{
				StateID: "A", StateExecutionID: "A-1", FirstAttemptTime: 10, OriginEventIndex: WorkflowStartIndex,
			}}},
			want: `{"eventType":"StateWaitUntil","stateWaitUntil":{"stateId":"A","stateExecutionId":"A-1","firstAttemptTime":10,"originEventIndex":-1}}`,
		},
		{
			name: "execute",
			rec: Record{Type: RecordStateExecute, Execute: &ExecutePhase{
				StatePhase: StatePhase{
					StateID: "A", StateExecutionID: "A-1", FirstAttemptTime: 11, CompletedTime: &done,
					Options: json.RawMessage(`{"retries":3}`),
				},
				DecisionOutput: json.RawMessage(`{"stateDecision":{}}`),
			}},
			want: `{"eventType":"StateExecute","stateExecute":{"stateId":"A","stateExecutionId":"A-1","firstAttemptTime":11,"completedTime":12,"originEventIndex":0,"options":{"retries":3},"decisionOutput":{"stateDecision":{}}}}`,
		},
		{
			name: "signal",
			rec:  Record{Type: RecordSignalReceived, Marker: &Marker{Timestamp: 5}},
			want: `{"eventType":"SignalReceived","signalReceived":{"timestamp":5}}`,
		},
		{
			name: "completed",
			rec:  Record{Type: RecordWorkflowCompleted, Marker: &Marker{Timestamp: 6}},
			want: `{"eventType":"WorkflowCompleted","workflowCompleted":{"timestamp":6}}`,
		},
		{
			name: "failed",
			rec:  Record{Type: RecordWorkflowFailed, Marker: &Marker{Timestamp: 7}},
			want: `{"eventType":"WorkflowFailed","workflowFailed":{"timestamp":7}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.rec)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Record
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.rec.Type, back.Type)
			again, err := json.Marshal(back)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestRecordMarshalErrors(t *testing.T) {
	_, err := json.Marshal(Record{Type: "Bogus", Marker: &Marker{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown record type "Bogus"`)

	_, err = json.Marshal(Record{Type: RecordStateExecute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no payload")

	var r Record
	err = json.Unmarshal([]byte(`{"eventType":"Bogus"}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record type")
}

func TestRecordPhase(t *testing.T) {
	wait := Record{Type: RecordStateWaitUntil, Wait: &WaitPhase{StatePhase: StatePhase{StateID: "A"}}}
	require.NotNil(t, wait.Phase())
	assert.Equal(t, "A", wait.Phase().StateID)

	wait.Phase().OriginEventIndex = 4
	assert.Equal(t, 4, wait.Wait.OriginEventIndex)

	marker := Record{Type: RecordSignalReceived, Marker: &Marker{}}
	assert.Nil(t, marker.Phase())
}

func TestTraceAppendAndAt(t *testing.T) {
	var tr Trace
	assert.NotNil(t, tr.Records())
	assert.Equal(t, 0, tr.Len())

	i := tr.Append(Record{Type: RecordSignalReceived, Marker: &Marker{Timestamp: 1}})
	j := tr.Append(Record{Type: RecordWorkflowCompleted, Marker: &Marker{Timestamp: 2}})
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)
	assert.Equal(t, 2, tr.Len())

	tr.At(0).Marker.Timestamp = 9
	assert.Equal(t, int64(9), tr.Records()[0].Marker.Timestamp)
}
