package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/history"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	File           string
	SkipValidation bool
}

// ImportResult is the outcome of an import.
type ImportResult struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
	Events     int    `json:"events"`
}

func (r ImportResult) String() string {
	return fmt.Sprintf("Imported %s/%s (%d events)", r.WorkflowID, r.RunID, r.Events)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a workflow history into the store",
		Long: `Validate a history document (YAML or JSON) and store it.

Re-importing a run replaces its events. A document without run_id is given a
new UUIDv7 run id, printed on success.

Examples:
  statetrace import --file ./histories/order-1.yaml
  statetrace import --db ./histories.db --file order-1.json --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "history document to import (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().BoolVar(&opts.SkipValidation, "skip-validation", false, "import without schema validation")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	doc, err := loadDocument(opts.File, formatter)
	if err != nil {
		return err
	}

	if !opts.SkipValidation {
		if err := history.ValidateDocument(doc); err != nil {
			return reportInvalid(formatter, err)
		}
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	runID, err := st.ImportHistory(commandContext(cmd), doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, "import failed", databaseError(err))
	}
	logger.Info("history imported", "workflow_id", doc.WorkflowID, "run_id", runID, "events", len(doc.Events))

	return formatter.Success(ImportResult{
		WorkflowID: doc.WorkflowID,
		RunID:      runID,
		Events:     len(doc.Events),
	})
}

// loadDocument reads a history document and reports a failure in the
// configured format.
func loadDocument(path string, formatter *OutputFormatter) (*history.Document, error) {
	doc, err := history.LoadDocument(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, "failed to load history", err)
	}
	return doc, nil
}

// reportInvalid prints schema violations and returns the failure exit error.
func reportInvalid(formatter *OutputFormatter, err error) error {
	return formatter.Fail(ExitFailure, "history document is invalid", err)
}
