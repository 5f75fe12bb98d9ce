package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/statetrace/internal/history"
)

// HistoryBuilder assembles workflow histories for tests.
//
// Event ids and times come from a Sequence, so two builders fed the same calls
// produce identical histories.
type HistoryBuilder struct {
	seq        Sequence
	workflowID string
	events     []history.Event
}

// NewHistoryBuilder starts a history whose first event starts the workflow in
// startStateID. options may be nil.
func NewHistoryBuilder(workflowID, startStateID string, options json.RawMessage) *HistoryBuilder {
	b := &HistoryBuilder{workflowID: workflowID}
	input := map[string]any{
		"iwfWorkflowType": "TestWorkflow",
		"startStateId":    startStateID,
		"stateInput":      map[string]any{"workflow": workflowID},
	}
	if options != nil {
		input["stateOptions"] = options
	}
	b.append(history.Event{
		Type:            history.EventWorkflowExecutionStarted,
		WorkflowStarted: &history.WorkflowStartedAttributes{Input: MustJSON(input)},
	})
	return b
}

// ScheduleWait appends a StateApiWaitUntil scheduling.
func (b *HistoryBuilder) ScheduleWait(activityID, stateID, stateExecutionID string) *HistoryBuilder {
	return b.ScheduleActivity(activityID, history.ActivityStateWaitUntil, b.stateRequest(stateID, stateExecutionID))
}

// ScheduleExecute appends a StateApiExecute scheduling.
func (b *HistoryBuilder) ScheduleExecute(activityID, stateID, stateExecutionID string) *HistoryBuilder {
	return b.ScheduleActivity(activityID, history.ActivityStateExecute, b.stateRequest(stateID, stateExecutionID))
}

// ScheduleActivity appends an arbitrary activity scheduling.
func (b *HistoryBuilder) ScheduleActivity(activityID, activityType string, input json.RawMessage) *HistoryBuilder {
	return b.append(history.Event{
		Type: history.EventActivityTaskScheduled,
		ActivityScheduled: &history.ActivityScheduledAttributes{
			ActivityID:   activityID,
			ActivityType: activityType,
			Input:        input,
		},
	})
}

// Start appends an ActivityTaskStarted event.
func (b *HistoryBuilder) Start(activityID string) *HistoryBuilder {
	return b.append(history.Event{
		Type:            history.EventActivityTaskStarted,
		ActivityStarted: &history.ActivityStartedAttributes{ActivityID: activityID, Attempt: 1},
	})
}

// Complete appends an ActivityTaskCompleted event with a raw result.
func (b *HistoryBuilder) Complete(activityID string, result json.RawMessage) *HistoryBuilder {
	return b.append(history.Event{
		Type:              history.EventActivityTaskCompleted,
		ActivityCompleted: &history.ActivityCompletedAttributes{ActivityID: activityID, Result: result},
	})
}

// Decide completes an execute activity with a decision naming next states.
func (b *HistoryBuilder) Decide(activityID string, next ...history.NextState) *HistoryBuilder {
	return b.Complete(activityID, MustJSON(map[string]any{
		"stateDecision": map[string]any{"nextStates": next},
	}))
}

// Fail appends an ActivityTaskFailed event.
func (b *HistoryBuilder) Fail(activityID, message string) *HistoryBuilder {
	return b.append(history.Event{
		Type: history.EventActivityTaskFailed,
		ActivityFailed: &history.ActivityFailedAttributes{
			ActivityID: activityID,
			Failure:    &history.Failure{Message: message, Type: "ActivityError"},
		},
	})
}

// Signal appends a WorkflowExecutionSignaled event.
func (b *HistoryBuilder) Signal(name string) *HistoryBuilder {
	return b.append(history.Event{
		Type:     history.EventWorkflowExecutionSignaled,
		Signaled: &history.SignaledAttributes{SignalName: name},
	})
}

// CompleteWorkflow appends a WorkflowExecutionCompleted event.
func (b *HistoryBuilder) CompleteWorkflow() *HistoryBuilder {
	return b.append(history.Event{
		Type:              history.EventWorkflowExecutionCompleted,
		WorkflowCompleted: &history.WorkflowCompletedAttributes{},
	})
}

// FailWorkflow appends a WorkflowExecutionFailed event.
func (b *HistoryBuilder) FailWorkflow(message string) *HistoryBuilder {
	return b.append(history.Event{
		Type:           history.EventWorkflowExecutionFailed,
		WorkflowFailed: &history.WorkflowFailedAttributes{Failure: &history.Failure{Message: message}},
	})
}

// Other appends an event type the engine does not model.
func (b *HistoryBuilder) Other(t history.EventType) *HistoryBuilder {
	return b.append(history.Event{Type: t})
}

// Events returns a copy of the built history.
func (b *HistoryBuilder) Events() []history.Event {
	out := make([]history.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Document wraps the built history in a document as an importer would see it.
// The run carries the IwfWorkflowType search attribute of TestWorkflow.
func (b *HistoryBuilder) Document(runID, status string) *history.Document {
	doc := &history.Document{
		WorkflowID:       b.workflowID,
		RunID:            runID,
		WorkflowType:     "Interpreter",
		Status:           status,
		SearchAttributes: map[string]any{"IwfWorkflowType": "TestWorkflow"},
	}
	for _, ev := range b.events {
		de := history.DocumentEvent{
			EventID:   ev.ID,
			EventType: string(ev.Type),
			EventTime: ev.Time.Format(time.RFC3339Nano),
		}
		raw, err := history.EncodeAttributes(ev)
		if err != nil {
			panic(fmt.Sprintf("testutil: encode event %d: %v", ev.ID, err))
		}
		if raw != nil {
			if err := json.Unmarshal(raw, &de.Attributes); err != nil {
				panic(fmt.Sprintf("testutil: decode event %d: %v", ev.ID, err))
			}
		}
		doc.Events = append(doc.Events, de)
	}
	return doc
}

func (b *HistoryBuilder) append(ev history.Event) *HistoryBuilder {
	ev.ID, ev.Time = b.seq.Next()
	b.events = append(b.events, ev)
	return b
}

func (b *HistoryBuilder) stateRequest(stateID, stateExecutionID string) json.RawMessage {
	return MustJSON(map[string]any{
		"iwfWorkerUrl": "http://localhost:8803",
		"request": map[string]any{
			"workflowType":    "TestWorkflow",
			"workflowStateId": stateID,
			"stateInput":      map[string]any{"state": stateID},
			"context": map[string]any{
				"workflowId":       b.workflowID,
				"stateExecutionId": stateExecutionID,
			},
		},
	})
}

// MustJSON marshals v and panics on error. Use only in tests.
func MustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal %T: %v", v, err))
	}
	return data
}
