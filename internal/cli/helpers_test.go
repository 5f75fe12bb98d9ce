package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/statetrace/internal/config"
	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/testutil"
)

// cliRun is the captured outcome of one command invocation.
type cliRun struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the root command against dbPath.
func runCLI(t *testing.T, dbPath string, args ...string) cliRun {
	t.Helper()
	cmd := NewRootCommand(config.Config{DBPath: dbPath, Format: "text", LogLevel: slog.LevelWarn})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeDocument stores doc as a JSON history file and returns its path.
func writeDocument(t *testing.T, doc *history.Document) string {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), doc.WorkflowID+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// orderDocument is a wait -> execute -> next state history that completes.
func orderDocument(workflowID, runID string) *history.Document {
	return testutil.NewHistoryBuilder(workflowID, "Charge", testutil.MustJSON(map[string]any{"retries": 3})).
		ScheduleWait("2", "Charge", "Charge-1").
		Complete("2", nil).
		ScheduleExecute("4", "Charge", "Charge-1").
		Decide("4", history.NextState{StateID: "Ship"}).
		ScheduleExecute("6", "Ship", "Ship-1").
		Decide("6", history.NextState{StateID: "_SYS_GRACEFUL_COMPLETING_WORKFLOW"}).
		CompleteWorkflow().
		Document(runID, "2")
}

// brokenDocument schedules a state nothing transitioned into.
func brokenDocument(workflowID string) *history.Document {
	return testutil.NewHistoryBuilder(workflowID, "Charge", nil).
		ScheduleExecute("2", "Refund", "Refund-1").
		Document("run-1", "3")
}
