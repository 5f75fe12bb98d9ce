package history

import (
	"encoding/json"
	"time"
)

// EventType is the backend event kind.
type EventType string

const (
	EventWorkflowExecutionStarted   EventType = "WorkflowExecutionStarted"
	EventWorkflowExecutionCompleted EventType = "WorkflowExecutionCompleted"
	EventWorkflowExecutionFailed    EventType = "WorkflowExecutionFailed"
	EventWorkflowExecutionSignaled  EventType = "WorkflowExecutionSignaled"
	EventActivityTaskScheduled      EventType = "ActivityTaskScheduled"
	EventActivityTaskStarted        EventType = "ActivityTaskStarted"
	EventActivityTaskCompleted      EventType = "ActivityTaskCompleted"
	EventActivityTaskFailed         EventType = "ActivityTaskFailed"
)

// Activity types scheduled by the state-machine interpreter.
const (
	ActivityStateWaitUntil = "StateApiWaitUntil"
	ActivityStateExecute   = "StateApiExecute"
)

// Event is one entry of a workflow history.
// Exactly one attributes pointer matching Type is set; unmodeled types carry none.
type Event struct {
	ID   int64
	Type EventType
	Time time.Time

	WorkflowStarted   *WorkflowStartedAttributes
	ActivityScheduled *ActivityScheduledAttributes
	ActivityStarted   *ActivityStartedAttributes
	ActivityCompleted *ActivityCompletedAttributes
	ActivityFailed    *ActivityFailedAttributes
	Signaled          *SignaledAttributes
	WorkflowCompleted *WorkflowCompletedAttributes
	WorkflowFailed    *WorkflowFailedAttributes
}

type WorkflowStartedAttributes struct {
	Input json.RawMessage `json:"input,omitempty" yaml:"input,omitempty"`
}

type ActivityScheduledAttributes struct {
	ActivityID   string          `json:"activity_id" yaml:"activity_id"`
	ActivityType string          `json:"activity_type" yaml:"activity_type"`
	Input        json.RawMessage `json:"input,omitempty" yaml:"input,omitempty"`
}

type ActivityStartedAttributes struct {
	ActivityID string `json:"activity_id" yaml:"activity_id"`
	Attempt    int32  `json:"attempt,omitempty" yaml:"attempt,omitempty"`
}

type ActivityCompletedAttributes struct {
	ActivityID string          `json:"activity_id" yaml:"activity_id"`
	Result     json.RawMessage `json:"result,omitempty" yaml:"result,omitempty"`
}

type ActivityFailedAttributes struct {
	ActivityID string   `json:"activity_id" yaml:"activity_id"`
	Failure    *Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

type SignaledAttributes struct {
	SignalName string          `json:"signal_name" yaml:"signal_name"`
	Input      json.RawMessage `json:"input,omitempty" yaml:"input,omitempty"`
}

type WorkflowCompletedAttributes struct {
	Result json.RawMessage `json:"result,omitempty" yaml:"result,omitempty"`
}

type WorkflowFailedAttributes struct {
	Failure *Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Failure describes an activity or workflow failure as reported by the backend.
type Failure struct {
	Message string `json:"message" yaml:"message"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Unix returns the event time in whole seconds.
func (e Event) Unix() int64 {
	return e.Time.Unix()
}

// ActivityID returns the activity identifier for activity events, or "".
func (e Event) ActivityID() string {
	switch {
	case e.Type == EventActivityTaskScheduled && e.ActivityScheduled != nil:
		return e.ActivityScheduled.ActivityID
	case e.Type == EventActivityTaskStarted && e.ActivityStarted != nil:
		return e.ActivityStarted.ActivityID
	case e.Type == EventActivityTaskCompleted && e.ActivityCompleted != nil:
		return e.ActivityCompleted.ActivityID
	case e.Type == EventActivityTaskFailed && e.ActivityFailed != nil:
		return e.ActivityFailed.ActivityID
	default:
		return ""
	}
}
