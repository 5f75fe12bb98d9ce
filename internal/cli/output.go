package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/statetrace/internal/config"
	"github.com/roach88/statetrace/internal/history"
	"github.com/roach88/statetrace/internal/inspect"
	"github.com/roach88/statetrace/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // invalid history, failed reconstruction, non-deterministic replay
	ExitCommandError = 2 // bad flags, unreadable files, database errors
)

// Error codes reported in CLIError.Code. Reconstruction failures carry the
// inspection error type (e.g. NOT_STATE_WORKFLOW) instead.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNotFound    = "E002"
	ErrCodeInvalid     = "E003"
	ErrCodeDatabase    = "E004"
	ErrCodeDeterminism = "E_DETERMINISM"
)

// errDatabase marks store failures for classify.
var errDatabase = errors.New("database error")

// databaseError tags err as a store failure.
func databaseError(err error) error {
	return fmt.Errorf("%w: %w", errDatabase, err)
}

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope of every command except trace, which
// prints the inspection response itself.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command in a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter prints command results to Writer and diagnostics to
// ErrWriter, so JSON on stdout stays parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // defaults to Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool {
	return f.Format == config.FormatJSON
}

// Success prints data. Text output relies on data's String method.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return writeJSON(f.Writer, CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error prints a failure. Text output shows details only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return writeJSON(f.Writer, CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail prints err under the code classify assigns it and returns the exit
// error the command should return. When err has structured details, message
// is printed in place of the raw error text.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	code, details := classify(err)
	printed := err.Error()
	if details != nil {
		printed = message
	}
	_ = f.Error(code, printed, details)
	return WrapExitError(exitCode, message, err)
}

// VerboseLog prints a diagnostic line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// classify maps err to a CLIError code and optional details.
func classify(err error) (string, any) {
	var schemaErr *history.SchemaError
	var apiErr *inspect.APIError
	switch {
	case errors.As(err, &schemaErr):
		return ErrCodeInvalid, schemaErr.Violations
	case errors.As(err, &apiErr):
		return apiErr.ErrorType, nil
	case errors.Is(err, os.ErrNotExist), errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, nil
	case errors.Is(err, errDatabase):
		return ErrCodeDatabase, nil
	default:
		return ErrCodeGeneric, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
