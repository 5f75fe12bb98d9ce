package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/history"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Events int    `json:"events"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %s is valid (%d events)", r.File, r.Events)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a history document against the schema",
		Long: `Validate a history document without importing it.

Every schema violation is reported with its document path. Use --verbose to
see them in text output.

Exit codes:
  0 - Document is valid
  1 - Document has violations
  2 - Command error (file not found, parse error)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, file, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "history document to validate (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := loadDocument(file, formatter)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded %d event(s) from %s", len(doc.Events), file)

	if err := history.ValidateDocument(doc); err != nil {
		return reportInvalid(formatter, err)
	}

	return formatter.Success(ValidationResult{File: file, Valid: true, Events: len(doc.Events)})
}
