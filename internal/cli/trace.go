package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/inspect"
	"github.com/roach88/statetrace/internal/status"
	"github.com/roach88/statetrace/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	WorkflowID string
	RunID      string
	File       string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Reconstruct the state execution trace of a run",
		Long: `Reconstruct the state execution trace of a workflow run.

The history is read from the store, or from a document with --file. Each
record names the state it ran, its state execution id and the record that
caused it (-1 for the workflow start).

JSON output is the history response itself, or the error response when the
history cannot be reconstructed.

Examples:
  statetrace trace --workflow order-1
  statetrace trace --workflow order-1 --run 0190c0de-... --format json
  statetrace trace --file ./histories/order-1.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.WorkflowID, "workflow", "w", "", "workflow id")
	cmd.Flags().StringVarP(&opts.RunID, "run", "r", "", "run id (default: latest run)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the history from a document instead of the store")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.WorkflowID == "" && opts.File == "" {
		return NewExitError(ExitCommandError, "one of --workflow or --file is required")
	}

	var fetcher inspect.Fetcher
	if opts.File != "" {
		doc, err := loadDocument(opts.File, opts.formatter(cmd))
		if err != nil {
			return err
		}
		fetcher = inspect.DocumentFetcher{Doc: doc}
	} else {
		st, err := openStore(opts.RootOptions)
		if err != nil {
			return err
		}
		defer closeStore(opts.RootOptions, st)
		fetcher = st
	}

	svc := inspect.NewService(fetcher, inspect.WithLogger(opts.logger()))
	resp, err := svc.History(commandContext(cmd), opts.WorkflowID, opts.RunID)
	if err != nil {
		if opts.jsonOutput() {
			if encErr := writeJSON(cmd.OutOrStdout(), inspect.AsResponse(err)); encErr != nil {
				return encErr
			}
		} else {
			r := inspect.AsResponse(err)
			fmt.Fprintf(cmd.OutOrStdout(), "Error [%s]: %s\n  %s\n", r.ErrorType, r.Error, r.Detail)
		}
		return WrapExitError(ExitFailure, "reconstruction failed", err)
	}

	if opts.jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return outputTraceText(cmd.OutOrStdout(), resp, opts.Verbose)
}

// outputTraceText renders the trace as a timeline.
func outputTraceText(w io.Writer, resp *inspect.HistoryResponse, verbose bool) error {
	started := time.Unix(resp.WorkflowStartedTimestamp, 0).UTC()
	fmt.Fprintf(w, "Workflow type: %s\n", resp.WorkflowType)
	fmt.Fprintf(w, "Status:        %s\n", orDash(string(resp.Status)))
	fmt.Fprintf(w, "Started:       %s\n", started.Format(time.RFC3339))
	fmt.Fprintf(w, "Start state:   %s\n", resp.Input.StartStateID)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Timeline (%d records):\n", len(resp.HistoryEvents))
	for i, rec := range resp.HistoryEvents {
		phase := rec.Phase()
		if phase == nil {
			fmt.Fprintf(w, "  [%d] %-17s %s\n", i, rec.Type, offset(rec.Marker.Timestamp, resp))
			continue
		}

		fmt.Fprintf(w, "  [%d] %-17s %s (%s) %s origin=%s%s\n",
			i, rec.Type, phase.StateID, phase.StateExecutionID,
			offset(phase.FirstAttemptTime, resp), originLabel(phase.OriginEventIndex), outcome(phase))

		if verbose {
			if len(phase.Input) > 0 {
				fmt.Fprintf(w, "      input:   %s\n", phase.Input)
			}
			if len(phase.Options) > 0 {
				fmt.Fprintf(w, "      options: %s\n", phase.Options)
			}
			if rec.Execute != nil && len(rec.Execute.DecisionOutput) > 0 {
				fmt.Fprintf(w, "      decision: %s\n", rec.Execute.DecisionOutput)
			}
		}
	}

	if len(resp.Dropped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Dropped %d activity outcome(s) with no scheduled record\n", len(resp.Dropped))
		if verbose {
			for _, d := range resp.Dropped {
				fmt.Fprintf(w, "  event %d: %s activity=%s\n", d.EventIndex, d.EventType, d.ActivityID)
			}
		}
	}
	return nil
}

func offset(ts int64, resp *inspect.HistoryResponse) string {
	return fmt.Sprintf("+%ds", ts-resp.WorkflowStartedTimestamp)
}

func originLabel(idx int) string {
	if idx == trace.WorkflowStartIndex {
		return "start"
	}
	return fmt.Sprintf("#%d", idx)
}

func outcome(phase *trace.StatePhase) string {
	switch {
	case phase.Failure != nil:
		return " failed: " + phase.Failure.Message
	case phase.CompletedTime != nil:
		return fmt.Sprintf(" done in %ds", *phase.CompletedTime-phase.FirstAttemptTime)
	default:
		return " pending"
	}
}

// displayStatus maps a backend status code for display. An unrecognized
// code is shown as "?<code>".
func displayStatus(code string) string {
	if code == "" {
		return ""
	}
	s, err := status.Map(code)
	if err != nil {
		return "?" + code
	}
	return string(s)
}

// commandContext returns the command context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
