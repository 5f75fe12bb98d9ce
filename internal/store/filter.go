package store

import (
	"fmt"
	"strings"

	"github.com/roach88/statetrace/internal/status"
)

// listFilter is the WHERE clause of a listing query. Every value is bound
// as a parameter, never interpolated.
type listFilter struct {
	conds []string
	args  []any
}

func (f *listFilter) add(cond string, args ...any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// where returns the clause with its leading keyword, or "" without conditions.
func (f *listFilter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// compileListFilter turns ListOptions into a listFilter.
// A status filter matches every backend code that maps to the label.
func compileListFilter(opts ListOptions) (*listFilter, error) {
	f := &listFilter{}

	if opts.WorkflowType != "" {
		f.add("w.state_type = ?", opts.WorkflowType)
	}

	if opts.Status != "" {
		codes := status.Codes(opts.Status)
		if len(codes) == 0 {
			return nil, fmt.Errorf("unknown status filter %q", opts.Status)
		}
		args := make([]any, len(codes))
		for i, code := range codes {
			args[i] = code
		}
		f.add("TRIM(w.status) IN ("+placeholders(len(codes))+")", args...)
	}

	if !opts.StartedAfter.IsZero() {
		f.add("w.start_time >= ?", unixNanos(opts.StartedAfter))
	}
	if !opts.StartedBefore.IsZero() {
		f.add("w.start_time < ?", unixNanos(opts.StartedBefore))
	}

	return f, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
