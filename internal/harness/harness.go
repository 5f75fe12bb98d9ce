package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/statetrace/internal/canonical"
	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/store"
	"github.com/roach88/statetrace/internal/trace"
)

// Harness is the scenario execution engine. Each harness owns a fresh
// in-memory store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the scenario's history document
// 2. Import it into a fresh in-memory store and read the events back
// 3. Reconstruct the stored events, and the document events directly
// 4. Check that both reconstructions agree
// 5. Check the expected error, or evaluate the assertions
func Run(scenario *Scenario) (*Result, error) {
	doc, err := history.LoadDocument(scenario.History)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return RunDocument(scenario, doc)
}

// RunDocument executes a scenario against an already loaded history,
// ignoring scenario.History.
func RunDocument(scenario *Scenario, doc *history.Document) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	return h.run(context.Background(), scenario, doc)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario, doc *history.Document) (*Result, error) {
	direct, err := doc.Events()
	if err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	runID, err := h.store.ImportHistory(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to import history: %w", err)
	}
	stored, err := h.store.LoadEvents(ctx, doc.WorkflowID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored history: %w", err)
	}

	result := NewResult()
	res, rerr := trace.Reconstruct(stored, trace.WithLogger(h.logger))
	if err := h.compare(direct, res, rerr); err != nil {
		result.AddError(err.Error())
	}

	if rerr != nil {
		result.Err = rerr
		checkExpectedError(scenario.Expect, rerr, result)
		return result, nil
	}
	if scenario.Expect != nil {
		result.AddError(fmt.Sprintf("expected error %s, reconstruction succeeded with %d records",
			scenario.Expect.Error, len(res.Records)))
	}

	result.Records = res.Records
	result.Dropped = res.Dropped
	result.Digest, err = canonical.Digest(canonical.DomainTrace, res.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to digest trace: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// compare reconstructs the document events directly and reports any
// difference from the reconstruction of the stored events.
func (h *Harness) compare(direct []history.Event, stored *trace.Result, storedErr error) error {
	res, err := trace.Reconstruct(direct, trace.WithLogger(h.logger))
	switch {
	case err != nil && storedErr != nil:
		if err.Error() != storedErr.Error() {
			return fmt.Errorf("store round trip changed the error: %q vs %q", err, storedErr)
		}
		return nil
	case err != nil:
		return fmt.Errorf("store round trip hid the error %q", err)
	case storedErr != nil:
		return fmt.Errorf("store round trip introduced the error %q", storedErr)
	}

	want, err := canonical.Digest(canonical.DomainTrace, res.Records)
	if err != nil {
		return err
	}
	got, err := canonical.Digest(canonical.DomainTrace, stored.Records)
	if err != nil {
		return err
	}
	if want != got {
		return fmt.Errorf("store round trip changed the trace digest: %s vs %s", want, got)
	}
	return nil
}

// checkExpectedError records a failure unless err matches expect.
func checkExpectedError(expect *ExpectClause, err error, result *Result) {
	if expect == nil {
		result.AddError(fmt.Sprintf("reconstruction failed: %v", err))
		return
	}
	if expect.Error == ErrorDecode {
		if !history.IsDecodeError(err) {
			result.AddError(fmt.Sprintf("expected a decode error, got %v", err))
		}
		return
	}

	var ce *trace.CorrelationError
	if !errors.As(err, &ce) {
		result.AddError(fmt.Sprintf("expected correlation error %s, got %v", expect.Error, err))
		return
	}
	if string(ce.Code) != expect.Error {
		result.AddError(fmt.Sprintf("expected correlation error %s, got %s", expect.Error, ce.Code))
	}
}
