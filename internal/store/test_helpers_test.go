package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDocument builds a small wait -> execute history for workflowID.
func createTestDocument(workflowID, runID string) *history.Document {
	return testutil.NewHistoryBuilder(workflowID, "A", nil).
		ScheduleWait("2", "A", "A-1").
		Complete("2", nil).
		ScheduleExecute("4", "A", "A-1").
		Decide("4", history.NextState{StateID: "_SYS_GRACEFUL_COMPLETING_WORKFLOW"}).
		CompleteWorkflow().
		Document(runID, "2")
}
