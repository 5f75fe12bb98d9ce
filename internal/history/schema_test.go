package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		WorkflowID:   "wf-1",
		WorkflowType: "Interpreter",
		Events: []DocumentEvent{
			{
				EventID:    1,
				EventType:  string(EventWorkflowExecutionStarted),
				EventTime:  "2024-01-01T00:00:00Z",
				Attributes: map[string]any{"input": map[string]any{"startStateId": "A"}},
			},
			{
				EventID:   2,
				EventType: string(EventActivityTaskScheduled),
				EventTime: "2024-01-01T00:00:01Z",
				Attributes: map[string]any{
					"activity_id":   "2",
					"activity_type": ActivityStateExecute,
				},
			},
			{
				EventID:    3,
				EventType:  string(EventActivityTaskFailed),
				EventTime:  "2024-01-01T00:00:02Z",
				Attributes: map[string]any{"activity_id": "2", "failure": map[string]any{"message": "boom"}},
			},
			{
				EventID:   4,
				EventType: string(EventWorkflowExecutionCompleted),
				EventTime: "2024-01-01T00:00:03Z",
			},
		},
	}
}

func TestValidateDocumentAcceptsValidHistory(t *testing.T) {
	require.NoError(t, ValidateDocument(validDocument()))
}

func TestValidateDocumentViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		want   string
	}{
		{
			name:   "empty workflow id",
			mutate: func(d *Document) { d.WorkflowID = "" },
			want:   "workflow_id",
		},
		{
			name:   "empty workflow type",
			mutate: func(d *Document) { d.WorkflowType = "" },
			want:   "workflow_type",
		},
		{
			name:   "bad event time",
			mutate: func(d *Document) { d.Events[1].EventTime = "yesterday" },
			want:   "event_time",
		},
		{
			name:   "non positive event id",
			mutate: func(d *Document) { d.Events[1].EventID = 0 },
			want:   "event_id",
		},
		{
			name:   "scheduled without activity id",
			mutate: func(d *Document) { delete(d.Events[1].Attributes, "activity_id") },
			want:   "activity_id",
		},
		{
			name:   "failure without message",
			mutate: func(d *Document) { d.Events[2].Attributes["failure"] = map[string]any{"type": "X"} },
			want:   "message",
		},
		{
			name:   "first event is not the start",
			mutate: func(d *Document) { d.Events = d.Events[1:] },
			want:   "event_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			err := ValidateDocument(doc)
			require.Error(t, err)

			var se *SchemaError
			require.True(t, errors.As(err, &se), "got %T: %v", err, err)
			require.NotEmpty(t, se.Violations)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateDocumentRejectsOutOfOrderEventIDs(t *testing.T) {
	doc := validDocument()
	doc.Events[1].EventID, doc.Events[2].EventID = 3, 2

	err := ValidateDocument(doc)
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Violations, Violation{
		Path:    "events.2.event_id",
		Message: "must be greater than 3 (previous event id)",
	})
}

func TestSchemaErrorFormatting(t *testing.T) {
	one := &SchemaError{Violations: []Violation{{Path: "events.0.event_id", Message: "invalid value"}}}
	assert.Equal(t, "history schema: events.0.event_id: invalid value", one.Error())

	two := &SchemaError{Violations: []Violation{
		{Path: "workflow_id", Message: "empty"},
		{Message: "conflict"},
	}}
	assert.Equal(t, "history schema: 2 violations: workflow_id: empty; conflict", two.Error())
}
