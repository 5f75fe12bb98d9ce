package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/statetrace/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Records  []trace.Record
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, rec := range e.Records {
		if phase := rec.Phase(); phase != nil {
			fmt.Fprintf(&buf, "  [%d] %s %s (%s) origin=%d\n",
				i, rec.Type, phase.StateID, phase.StateExecutionID, phase.OriginEventIndex)
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %s\n", i, rec.Type)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecordContains:
			err = assertRecordContains(result.Records, a)
		case AssertRecordOrder:
			err = assertRecordOrder(result.Records, a)
		case AssertRecordCount:
			err = assertRecordCount(result.Records, a)
		case AssertDroppedCount:
			err = assertDroppedCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// assertRecordContains checks that some record matches every field the
// assertion sets.
func assertRecordContains(records []trace.Record, a Assertion) error {
	for _, rec := range records {
		if matchRecord(rec, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertRecordContains,
		Expected: describeFilter(a),
		Actual:   "not found in trace",
		Records:  records,
	}
}

// assertRecordOrder checks that the listed records appear in order.
// Other records may appear in between.
func assertRecordOrder(records []trace.Record, a Assertion) error {
	next := 0
	for _, rec := range records {
		if next < len(a.Records) && matchLabel(rec, a.Records[next]) {
			next++
		}
	}
	if next == len(a.Records) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordOrder,
		Expected: fmt.Sprintf("records in order: %v", a.Records),
		Actual:   fmt.Sprintf("missing or out of order: %s", a.Records[next]),
		Records:  records,
	}
}

// assertRecordCount checks that exactly Count records match the filter.
func assertRecordCount(records []trace.Record, a Assertion) error {
	count := 0
	for _, rec := range records {
		if matchRecord(rec, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d records matching %s", a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d records", count),
			Records:  records,
		}
	}
	return nil
}

func assertDroppedCount(result *Result, a Assertion) error {
	if len(result.Dropped) != a.Count {
		return &AssertionError{
			Type:     AssertDroppedCount,
			Expected: fmt.Sprintf("%d dropped activity outcomes", a.Count),
			Actual:   fmt.Sprintf("%d dropped", len(result.Dropped)),
			Records:  result.Records,
		}
	}
	return nil
}

// matchRecord reports whether rec satisfies every field a sets.
// State filters never match marker records.
func matchRecord(rec trace.Record, a Assertion) bool {
	if string(rec.Type) != a.Record {
		return false
	}
	if a.StateID == "" && a.StateExecutionID == "" && a.Origin == nil && a.Completed == nil && a.Failed == nil {
		return true
	}

	phase := rec.Phase()
	if phase == nil {
		return false
	}
	if a.StateID != "" && phase.StateID != a.StateID {
		return false
	}
	if a.StateExecutionID != "" && phase.StateExecutionID != a.StateExecutionID {
		return false
	}
	if a.Origin != nil && phase.OriginEventIndex != *a.Origin {
		return false
	}
	if a.Completed != nil && (phase.CompletedTime != nil) != *a.Completed {
		return false
	}
	if a.Failed != nil && (phase.Failure != nil) != *a.Failed {
		return false
	}
	return true
}

// matchLabel matches "Type" or "Type:StateID".
func matchLabel(rec trace.Record, label string) bool {
	typ, stateID, hasState := strings.Cut(label, ":")
	if string(rec.Type) != typ {
		return false
	}
	if !hasState {
		return true
	}
	phase := rec.Phase()
	return phase != nil && phase.StateID == stateID
}

func describeFilter(a Assertion) string {
	parts := []string{a.Record}
	if a.StateID != "" {
		parts = append(parts, "state_id="+a.StateID)
	}
	if a.StateExecutionID != "" {
		parts = append(parts, "state_execution_id="+a.StateExecutionID)
	}
	if a.Origin != nil {
		parts = append(parts, fmt.Sprintf("origin=%d", *a.Origin))
	}
	if a.Completed != nil {
		parts = append(parts, fmt.Sprintf("completed=%t", *a.Completed))
	}
	if a.Failed != nil {
		parts = append(parts, fmt.Sprintf("failed=%t", *a.Failed))
	}
	return strings.Join(parts, " ")
}
