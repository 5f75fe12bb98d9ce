package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/status"
)

// ImportHistory stores a history document and returns its run id.
//
// The run row is upserted and all of its previous events are replaced in one
// transaction, so re-importing a run never mixes old and new events. A
// document without a run id gets a fresh UUIDv7.
func (s *Store) ImportHistory(ctx context.Context, doc *history.Document) (string, error) {
	if doc.WorkflowID == "" {
		return "", fmt.Errorf("import history: workflow_id is required")
	}

	events, err := doc.Events()
	if err != nil {
		return "", fmt.Errorf("import history: %w", err)
	}
	exec, err := doc.Execution()
	if err != nil {
		return "", fmt.Errorf("import history: %w", err)
	}
	if exec.RunID == "" {
		exec.RunID = uuid.Must(uuid.NewV7()).String()
	}

	searchAttrs, err := marshalSearchAttributes(exec.SearchAttributes)
	if err != nil {
		return "", fmt.Errorf("import history: %w", err)
	}
	// A malformed known attribute must not block the import; it surfaces
	// when the run is inspected.
	attrs, err := status.MapAttributes(exec.SearchAttributes)
	if err != nil {
		s.logger.Warn("search attributes not mapped, state type left empty",
			"workflow_id", exec.WorkflowID,
			"run_id", exec.RunID,
			"error", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("import history: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflows
		(workflow_id, run_id, workflow_type, state_type, status, search_attributes, start_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workflow_id, run_id) DO UPDATE SET
			workflow_type = excluded.workflow_type,
			state_type = excluded.state_type,
			status = excluded.status,
			search_attributes = excluded.search_attributes,
			start_time = excluded.start_time
	`,
		exec.WorkflowID,
		exec.RunID,
		exec.WorkflowType,
		attrs.WorkflowType,
		exec.Status,
		searchAttrs,
		unixNanos(exec.StartTime),
	)
	if err != nil {
		return "", fmt.Errorf("import history: upsert workflow: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history_events WHERE workflow_id = ? AND run_id = ?
	`, exec.WorkflowID, exec.RunID)
	if err != nil {
		return "", fmt.Errorf("import history: clear events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history_events
		(workflow_id, run_id, event_id, event_type, event_time, attributes)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("import history: prepare: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		eventID := ev.ID
		if eventID == 0 {
			eventID = int64(i + 1)
		}
		attrsText, err := marshalAttributes(ev)
		if err != nil {
			return "", fmt.Errorf("import history: events[%d]: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			exec.WorkflowID,
			exec.RunID,
			eventID,
			string(ev.Type),
			formatEventTime(ev.Time),
			attrsText,
		); err != nil {
			return "", fmt.Errorf("import history: insert event %d: %w", eventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("import history: commit: %w", err)
	}

	return exec.RunID, nil
}

// DeleteWorkflow removes a run and its events.
// Returns ErrNotFound if the run does not exist.
func (s *Store) DeleteWorkflow(ctx context.Context, workflowID, runID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM workflows WHERE workflow_id = ? AND run_id = ?
	`, workflowID, runID)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workflow: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
