package history

import (
	"encoding/json"
	"fmt"
)

// EncodeAttributes returns the JSON form of the event's attributes, or nil
// for event kinds that carry none.
func EncodeAttributes(ev Event) (json.RawMessage, error) {
	var attrs any
	switch ev.Type {
	case EventWorkflowExecutionStarted:
		attrs = ev.WorkflowStarted
	case EventActivityTaskScheduled:
		attrs = ev.ActivityScheduled
	case EventActivityTaskStarted:
		attrs = ev.ActivityStarted
	case EventActivityTaskCompleted:
		attrs = ev.ActivityCompleted
	case EventActivityTaskFailed:
		attrs = ev.ActivityFailed
	case EventWorkflowExecutionSignaled:
		attrs = ev.Signaled
	case EventWorkflowExecutionCompleted:
		attrs = ev.WorkflowCompleted
	case EventWorkflowExecutionFailed:
		attrs = ev.WorkflowFailed
	default:
		return nil, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode %s attributes: %w", ev.Type, err)
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

// DecodeAttributes populates the attributes pointer of ev matching ev.Type
// from raw JSON. Unmodeled event types are left without attributes.
func DecodeAttributes(ev *Event, raw json.RawMessage) error {
	var target any
	switch ev.Type {
	case EventWorkflowExecutionStarted:
		ev.WorkflowStarted = &WorkflowStartedAttributes{}
		target = ev.WorkflowStarted
	case EventActivityTaskScheduled:
		ev.ActivityScheduled = &ActivityScheduledAttributes{}
		target = ev.ActivityScheduled
	case EventActivityTaskStarted:
		ev.ActivityStarted = &ActivityStartedAttributes{}
		target = ev.ActivityStarted
	case EventActivityTaskCompleted:
		ev.ActivityCompleted = &ActivityCompletedAttributes{}
		target = ev.ActivityCompleted
	case EventActivityTaskFailed:
		ev.ActivityFailed = &ActivityFailedAttributes{}
		target = ev.ActivityFailed
	case EventWorkflowExecutionSignaled:
		ev.Signaled = &SignaledAttributes{}
		target = ev.Signaled
	case EventWorkflowExecutionCompleted:
		ev.WorkflowCompleted = &WorkflowCompletedAttributes{}
		target = ev.WorkflowCompleted
	case EventWorkflowExecutionFailed:
		ev.WorkflowFailed = &WorkflowFailedAttributes{}
		target = ev.WorkflowFailed
	default:
		return nil
	}
	if IsEmpty(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s attributes: %w", ev.Type, err)
	}
	return nil
}
