// Package status maps backend execution metadata onto statetrace's own
// vocabulary: a closed set of status labels and typed search attributes.
//
// Mapping never guesses. An unknown status code is an error the caller must
// surface, because defaulting it would misreport how a workflow ended.
package status

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Status is a workflow execution status label.
type Status string

const (
	Running        Status = "RUNNING"
	Completed      Status = "COMPLETED"
	Failed         Status = "FAILED"
	Canceled       Status = "CANCELED"
	Terminated     Status = "TERMINATED"
	ContinuedAsNew Status = "CONTINUED_AS_NEW"
	Timeout        Status = "TIMEOUT"
)

// All lists every status label in backend code order.
var All = []Status{Running, Completed, Failed, Canceled, Terminated, ContinuedAsNew, Timeout}

// ErrUnrecognizedStatus is matched by errors.Is for every *UnrecognizedStatusError.
var ErrUnrecognizedStatus = errors.New("unrecognized workflow status")

// UnrecognizedStatusError reports a backend status code outside the known set.
type UnrecognizedStatusError struct {
	Code string
}

func (e *UnrecognizedStatusError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnrecognizedStatus, e.Code)
}

func (e *UnrecognizedStatusError) Is(target error) bool {
	return target == ErrUnrecognizedStatus
}

// codes maps backend numeric codes and enum names to labels.
var codes = map[string]Status{
	"1": Running,
	"2": Completed,
	"3": Failed,
	"4": Canceled,
	"5": Terminated,
	"6": ContinuedAsNew,
	"7": Timeout,

	"WORKFLOW_EXECUTION_STATUS_RUNNING":          Running,
	"WORKFLOW_EXECUTION_STATUS_COMPLETED":        Completed,
	"WORKFLOW_EXECUTION_STATUS_FAILED":           Failed,
	"WORKFLOW_EXECUTION_STATUS_CANCELED":         Canceled,
	"WORKFLOW_EXECUTION_STATUS_TERMINATED":       Terminated,
	"WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW": ContinuedAsNew,
	"WORKFLOW_EXECUTION_STATUS_TIMED_OUT":        Timeout,
}

// Map translates a backend status code into a Status label.
// Surrounding whitespace is ignored; anything else must match exactly.
func Map(code string) (Status, error) {
	if s, ok := codes[strings.TrimSpace(code)]; ok {
		return s, nil
	}
	return "", &UnrecognizedStatusError{Code: code}
}

// Codes returns every backend code that maps to s, sorted.
func Codes(s Status) []string {
	var out []string
	for code, known := range codes {
		if known == s {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// Code returns the numeric backend code of s, or "" for an unknown label.
func (s Status) Code() string {
	for i, known := range All {
		if known == s {
			return fmt.Sprintf("%d", i+1)
		}
	}
	return ""
}

// Terminal reports whether the execution has finished.
func (s Status) Terminal() bool {
	return s != Running && s != ""
}
