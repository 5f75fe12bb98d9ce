package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/status"
)

// Execution is a stored workflow run.
type Execution struct {
	history.Execution

	// StateWorkflowType is the state workflow type from the search attributes.
	StateWorkflowType string

	EventCount int
}

// ListOptions filters ListWorkflows.
type ListOptions struct {
	// Limit caps the number of runs returned; zero means no limit.
	Limit int

	// WorkflowType keeps only runs of this state workflow type.
	WorkflowType string

	// Status keeps only runs whose backend code maps to this label.
	Status status.Status

	// StartedAfter and StartedBefore bound the start time; zero means unbounded.
	// StartedAfter is inclusive, StartedBefore exclusive.
	StartedAfter  time.Time
	StartedBefore time.Time
}

// LoadEvents returns the events of a run ordered by event id.
// An empty runID selects the most recently started run of the workflow.
// Returns ErrNotFound if the run does not exist.
func (s *Store) LoadEvents(ctx context.Context, workflowID, runID string) ([]history.Event, error) {
	runID, err := s.resolveRun(ctx, workflowID, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, event_type, event_time, attributes
		FROM history_events
		WHERE workflow_id = ? AND run_id = ?
		ORDER BY event_id ASC
	`, workflowID, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []history.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// GetWorkflowExecution returns the stored summary of a run.
// An empty runID selects the most recently started run of the workflow.
// Returns ErrNotFound if the run does not exist.
func (s *Store) GetWorkflowExecution(ctx context.Context, workflowID, runID string) (Execution, error) {
	runID, err := s.resolveRun(ctx, workflowID, runID)
	if err != nil {
		return Execution{}, err
	}

	row := s.db.QueryRowContext(ctx, selectExecution+`
		WHERE w.workflow_id = ? AND w.run_id = ?
		GROUP BY w.workflow_id, w.run_id
	`, workflowID, runID)

	exec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Execution{}, ErrNotFound
	}
	return exec, err
}

// Describe returns the backend summary of a run.
func (s *Store) Describe(ctx context.Context, workflowID, runID string) (history.Execution, error) {
	exec, err := s.GetWorkflowExecution(ctx, workflowID, runID)
	if err != nil {
		return history.Execution{}, err
	}
	return exec.Execution, nil
}

// ListWorkflows returns stored runs, most recently started first.
// Ties are broken by workflow id then run id so the order is total.
func (s *Store) ListWorkflows(ctx context.Context, opts ListOptions) ([]Execution, error) {
	filter, err := compileListFilter(opts)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	query := selectExecution + filter.where()
	args := filter.args
	query += `
		GROUP BY w.workflow_id, w.run_id
		ORDER BY w.start_time DESC, w.workflow_id COLLATE BINARY ASC, w.run_id COLLATE BINARY ASC
	`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	defer rows.Close()

	execs := []Execution{}
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}

	return execs, nil
}

const selectExecution = `
	SELECT w.workflow_id, w.run_id, w.workflow_type, w.state_type, w.status,
	       w.search_attributes, w.start_time, COUNT(e.event_id)
	FROM workflows w
	LEFT JOIN history_events e ON e.workflow_id = w.workflow_id AND e.run_id = w.run_id
`

// resolveRun returns runID, or the latest run of the workflow when empty.
func (s *Store) resolveRun(ctx context.Context, workflowID, runID string) (string, error) {
	var query string
	args := []any{workflowID}
	if runID == "" {
		query = `
			SELECT run_id FROM workflows
			WHERE workflow_id = ?
			ORDER BY start_time DESC, run_id COLLATE BINARY DESC
			LIMIT 1
		`
	} else {
		query = `SELECT run_id FROM workflows WHERE workflow_id = ? AND run_id = ?`
		args = append(args, runID)
	}

	var resolved string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve run: %w", err)
	}
	return resolved, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (Execution, error) {
	var (
		exec        Execution
		searchAttrs string
		startTime   int64
	)
	err := row.Scan(
		&exec.WorkflowID,
		&exec.RunID,
		&exec.WorkflowType,
		&exec.StateWorkflowType,
		&exec.Status,
		&searchAttrs,
		&startTime,
		&exec.EventCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Execution{}, err
		}
		return Execution{}, fmt.Errorf("scan workflow: %w", err)
	}

	exec.SearchAttributes, err = unmarshalSearchAttributes(searchAttrs)
	if err != nil {
		return Execution{}, err
	}
	if startTime != 0 {
		exec.StartTime = time.Unix(0, startTime).UTC()
	}
	return exec, nil
}

func scanEvent(row scanner) (history.Event, error) {
	var (
		ev        history.Event
		eventType string
		eventTime string
		attrs     sql.NullString
	)
	if err := row.Scan(&ev.ID, &eventType, &eventTime, &attrs); err != nil {
		return history.Event{}, fmt.Errorf("scan event: %w", err)
	}

	ev.Type = history.EventType(eventType)
	t, err := history.ParseEventTime(eventTime)
	if err != nil {
		return history.Event{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	ev.Time = t

	var raw []byte
	if attrs.Valid {
		raw = []byte(attrs.String)
	}
	if err := history.DecodeAttributes(&ev, raw); err != nil {
		return history.Event{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	return ev, nil
}

func formatEventTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func unixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
