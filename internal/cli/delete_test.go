package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	db := testDB(t)
	require.NoError(t, runCLI(t, db, "import", "--file", writeDocument(t, orderDocument("order-1", "run-1"))).err)

	run := runCLI(t, db, "delete", "--workflow", "order-1", "--run", "run-1")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, "Deleted order-1/run-1")

	run = runCLI(t, db, "list")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, "No workflows found")
}

func TestDeleteUnknownRun(t *testing.T) {
	run := runCLI(t, testDB(t), "delete", "--workflow", "order-1", "--run", "run-1")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
	assert.Contains(t, run.stdout, "Error ["+ErrCodeNotFound+"]")
}

func TestDeleteRequiresRun(t *testing.T) {
	run := runCLI(t, testDB(t), "delete", "--workflow", "order-1")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "required flag")
}
