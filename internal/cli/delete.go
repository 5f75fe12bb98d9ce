package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteResult identifies a removed run.
type DeleteResult struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

func (r DeleteResult) String() string {
	return fmt.Sprintf("Deleted %s/%s", r.WorkflowID, r.RunID)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var workflowID, runID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove an imported run and its events",
		Long: `Delete one run from the history store.

Examples:
  statetrace delete --workflow order-1 --run 0190f3c2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, workflowID, runID, cmd)
		},
	}

	cmd.Flags().StringVarP(&workflowID, "workflow", "w", "", "workflow id (required)")
	cmd.Flags().StringVarP(&runID, "run", "r", "", "run id (required)")
	_ = cmd.MarkFlagRequired("workflow")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runDelete(opts *RootOptions, workflowID, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	if err := st.DeleteWorkflow(commandContext(cmd), workflowID, runID); err != nil {
		return formatter.Fail(ExitCommandError, "delete failed", err)
	}
	opts.logger().Info("run deleted", "workflow_id", workflowID, "run_id", runID)

	return formatter.Success(DeleteResult{WorkflowID: workflowID, RunID: runID})
}
