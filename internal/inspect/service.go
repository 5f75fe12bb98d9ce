package inspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/roach88/statetrace/internal/canonical"
	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/status"
	"github.com/roach88/statetrace/internal/trace"
)

// Fetcher loads a workflow run from a backend.
// An empty runID selects the latest run of the workflow.
type Fetcher interface {
	Describe(ctx context.Context, workflowID, runID string) (history.Execution, error)
	LoadEvents(ctx context.Context, workflowID, runID string) ([]history.Event, error)
}

// HistoryResponse is the reconstructed view of a workflow run.
type HistoryResponse struct {
	WorkflowStartedTimestamp int64              `json:"workflowStartedTimestamp"`
	WorkflowType             string             `json:"workflowType"`
	Status                   status.Status      `json:"status,omitempty"`
	Input                    history.StartInput `json:"input"`
	HistoryEvents            []trace.Record     `json:"historyEvents"`

	// Dropped lists activity outcomes that matched no record.
	Dropped []trace.DroppedEvent `json:"-"`
}

// Digest returns a stable digest of the response's JSON form.
func Digest(resp *HistoryResponse) (string, error) {
	return canonical.Digest(canonical.DomainHistory, resp)
}

// Service answers history requests.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service reading from fetcher.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History reconstructs the state execution trace of a workflow run.
// All errors are *APIError.
func (s *Service) History(ctx context.Context, workflowID, runID string) (*HistoryResponse, error) {
	logger := s.logger.With("workflow_id", workflowID, "run_id", runID)

	exec, err := s.fetcher.Describe(ctx, workflowID, runID)
	if err != nil {
		logger.Warn("describe failed", "error", err)
		return nil, fetchError(err)
	}

	attrs, err := status.MapAttributes(exec.SearchAttributes)
	if err != nil {
		return nil, &APIError{Status: http.StatusBadRequest, ErrorType: ErrorTypeDecode, Err: err}
	}
	if !attrs.IsStateWorkflow() {
		return nil, &APIError{
			Status:    http.StatusBadRequest,
			ErrorType: ErrorTypeNotStateWorkflow,
			Err:       fmt.Errorf("workflow %s has no %s search attribute", workflowID, status.AttrWorkflowType),
		}
	}

	var st status.Status
	if exec.Status != "" {
		st, err = status.Map(exec.Status)
		if err != nil {
			logger.Warn("status not mapped", "code", exec.Status)
			return nil, &APIError{Status: http.StatusBadRequest, ErrorType: ErrorTypeUnrecognizedStatus, Err: err}
		}
	}

	events, err := s.fetcher.LoadEvents(ctx, workflowID, exec.RunID)
	if err != nil {
		logger.Warn("load events failed", "error", err)
		return nil, fetchError(err)
	}

	result, err := trace.Reconstruct(events, trace.WithLogger(logger))
	if err != nil {
		logger.Warn("reconstruction failed", "error", err)
		return nil, reconstructError(err)
	}

	logger.Debug("history reconstructed",
		"events", len(events),
		"records", len(result.Records),
		"dropped", len(result.Dropped))

	return &HistoryResponse{
		WorkflowStartedTimestamp: result.WorkflowStartedTimestamp,
		WorkflowType:             attrs.WorkflowType,
		Status:                   st,
		Input:                    result.StartInput,
		HistoryEvents:            result.Records,
		Dropped:                  result.Dropped,
	}, nil
}
