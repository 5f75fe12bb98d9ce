package harness

import "github.com/roach88/statetrace/internal/trace"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Records is the reconstructed trace, empty when reconstruction failed.
	Records []trace.Record `json:"records"`

	// Dropped lists activity outcomes that matched no record.
	Dropped []trace.DroppedEvent `json:"dropped,omitempty"`

	// Digest is the canonical trace digest of Records.
	Digest string `json:"digest,omitempty"`

	// Err is the reconstruction error, if any.
	Err error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []trace.Record{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
