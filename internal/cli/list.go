package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/status"
	"github.com/roach88/statetrace/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Limit  int
	Type   string
	Status string
	Since  string
}

// ListEntry is one stored run.
type ListEntry struct {
	WorkflowID   string `json:"workflow_id"`
	RunID        string `json:"run_id"`
	WorkflowType string `json:"workflow_type"`
	Status       string `json:"status,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	Events       int    `json:"events"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported workflow runs",
		Long: `List the runs in the history store, most recently started first.

Examples:
  statetrace list
  statetrace list --type OrderWorkflow --limit 10
  statetrace list --status failed --since 2024-01-01T00:00:00Z
  statetrace list --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only runs of this state workflow type")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only runs with this status (e.g. COMPLETED, FAILED)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only runs started at or after this RFC 3339 time")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	filter := store.ListOptions{Limit: opts.Limit, WorkflowType: opts.Type}
	if opts.Status != "" {
		filter.Status = status.Status(strings.ToUpper(strings.TrimSpace(opts.Status)))
		if filter.Status.Code() == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown --status %q", opts.Status))
		}
	}
	if opts.Since != "" {
		since, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since", err)
		}
		filter.StartedAfter = since
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	execs, err := st.ListWorkflows(commandContext(cmd), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list workflows", databaseError(err))
	}

	entries := make([]ListEntry, 0, len(execs))
	for _, exec := range execs {
		entry := ListEntry{
			WorkflowID:   exec.WorkflowID,
			RunID:        exec.RunID,
			WorkflowType: exec.StateWorkflowType,
			Status:       exec.Status,
			Events:       exec.EventCount,
		}
		if !exec.StartTime.IsZero() {
			entry.StartTime = exec.StartTime.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}

	if opts.jsonOutput() {
		return opts.formatter(cmd).Success(entries)
	}
	return outputListText(cmd, entries)
}

func outputListText(cmd *cobra.Command, entries []ListEntry) error {
	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No workflows found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKFLOW\tRUN\tTYPE\tSTATUS\tSTARTED\tEVENTS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.WorkflowID, e.RunID, orDash(e.WorkflowType), orDash(displayStatus(e.Status)), orDash(e.StartTime), e.Events)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
