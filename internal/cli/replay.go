package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/inspect"
	"github.com/roach88/statetrace/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	WorkflowID string // optional - specific workflow only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	WorkflowID    string `json:"workflow_id"`
	RunID         string `json:"run_id"`
	Records       int    `json:"records"`
	Digest        string `json:"digest,omitempty"`
	Deterministic bool   `json:"deterministic"`
	Error         string `json:"error,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	Failed           int               `json:"failed"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Reconstruct stored runs twice and verify determinism",
		Long: `Reconstruct every stored run twice and compare the digests of the results.

A run whose history cannot be reconstructed is reported with its error type
and counts as a failure.

Exit codes:
  0 - All runs reconstructed and deterministic
  1 - A run failed or differed between reconstructions
  2 - Command error (database not found, etc.)

Examples:
  statetrace replay
  statetrace replay --workflow order-1
  statetrace replay --db ./histories.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.WorkflowID, "workflow", "w", "", "replay runs of this workflow only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	execs, err := st.ListWorkflows(ctx, store.ListOptions{})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list workflows", err)
	}

	svc := inspect.NewService(st, inspect.WithLogger(opts.logger()))
	result := ReplayResult{Runs: []ReplayRunResult{}, AllDeterministic: true}

	for _, exec := range execs {
		if opts.WorkflowID != "" && exec.WorkflowID != opts.WorkflowID {
			continue
		}

		run, err := replayRun(ctx, svc, exec.WorkflowID, exec.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay %s/%s", exec.WorkflowID, exec.RunID), err)
		}
		result.Runs = append(result.Runs, run)
		if run.Error != "" {
			result.Failed++
		}
		if !run.Deterministic {
			result.AllDeterministic = false
		}
	}
	result.TotalRuns = len(result.Runs)

	if opts.jsonOutput() {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRun reconstructs one run twice. Reconstruction failures are part of
// the result; only digest failures are returned.
func replayRun(ctx context.Context, svc *inspect.Service, workflowID, runID string) (ReplayRunResult, error) {
	run := ReplayRunResult{WorkflowID: workflowID, RunID: runID}

	first, err := svc.History(ctx, workflowID, runID)
	if err != nil {
		resp := inspect.AsResponse(err)
		run.Error = resp.Detail
		run.ErrorType = resp.ErrorType

		// A failure must also be reproducible.
		_, again := svc.History(ctx, workflowID, runID)
		run.Deterministic = again != nil && inspect.AsResponse(again) == resp
		return run, nil
	}

	second, err := svc.History(ctx, workflowID, runID)
	if err != nil {
		run.Error = err.Error()
		return run, nil
	}

	d1, err := inspect.Digest(first)
	if err != nil {
		return ReplayRunResult{}, err
	}
	d2, err := inspect.Digest(second)
	if err != nil {
		return ReplayRunResult{}, err
	}

	run.Records = len(first.HistoryEvents)
	run.Digest = d1
	run.Deterministic = d1 == d2
	return run, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	} else if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("%d run(s) could not be reconstructed", result.Failed),
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}
	return replayExit(result)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No workflows found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		mark := "✓"
		if !run.Deterministic || run.Error != "" {
			mark = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s/%s\n", mark, run.WorkflowID, run.RunID)
		if run.Error != "" {
			fmt.Fprintf(w, "  Error [%s]: %s\n", run.ErrorType, run.Error)
		} else {
			fmt.Fprintf(w, "  Records: %d\n", run.Records)
			if verbose {
				fmt.Fprintf(w, "  Digest: %s\n", run.Digest)
			}
		}
		if !run.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	switch {
	case !result.AllDeterministic:
		fmt.Fprintln(w, "✗ Determinism verification failed")
	case result.Failed > 0:
		fmt.Fprintf(w, "✗ %d run(s) could not be reconstructed\n", result.Failed)
	default:
		fmt.Fprintln(w, "✓ All runs verified deterministic")
	}
	return replayExit(result)
}

func replayExit(result ReplayResult) error {
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) could not be reconstructed", result.Failed))
	}
	return nil
}
