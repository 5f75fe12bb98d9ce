package history

import (
	"encoding/json"
	"time"
)

// Execution is the summary a backend returns when describing a workflow run.
type Execution struct {
	WorkflowID   string
	RunID        string
	WorkflowType string

	// Status is the raw backend status code; empty while unknown.
	Status string

	SearchAttributes map[string]json.RawMessage
	StartTime        time.Time
}

// Execution returns the summary of the document's workflow run.
func (d *Document) Execution() (Execution, error) {
	attrs, err := d.RawSearchAttributes()
	if err != nil {
		return Execution{}, err
	}
	return Execution{
		WorkflowID:       d.WorkflowID,
		RunID:            d.RunID,
		WorkflowType:     d.WorkflowType,
		Status:           d.Status,
		SearchAttributes: attrs,
		StartTime:        d.StartTime(),
	}, nil
}
