package inspect

import (
	"context"
	"fmt"

	"github.com/roach88/statetrace/internal/history"
)

// DocumentFetcher serves a single history document as a backend.
type DocumentFetcher struct {
	Doc *history.Document
}

// Describe returns the document's run summary.
func (f DocumentFetcher) Describe(_ context.Context, workflowID, runID string) (history.Execution, error) {
	if err := f.match(workflowID, runID); err != nil {
		return history.Execution{}, err
	}
	return f.Doc.Execution()
}

// LoadEvents returns the document's events in order.
func (f DocumentFetcher) LoadEvents(_ context.Context, workflowID, runID string) ([]history.Event, error) {
	if err := f.match(workflowID, runID); err != nil {
		return nil, err
	}
	return f.Doc.Events()
}

func (f DocumentFetcher) match(workflowID, runID string) error {
	if workflowID != "" && workflowID != f.Doc.WorkflowID {
		return fmt.Errorf("workflow %q not found in document (has %q)", workflowID, f.Doc.WorkflowID)
	}
	if runID != "" && f.Doc.RunID != "" && runID != f.Doc.RunID {
		return fmt.Errorf("run %q not found in document (has %q)", runID, f.Doc.RunID)
	}
	return nil
}
