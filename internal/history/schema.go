package history

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed history.cue
var schemaCUE string

// SchemaError lists every constraint a document violated.
type SchemaError struct {
	Violations []Violation
}

// Violation is a single schema failure, located by its document path.
type Violation struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if len(e.Violations) == 1 {
		return "history schema: " + e.Violations[0].String()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("history schema: %d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidateDocument checks doc against the embedded CUE schema.
// It returns a *SchemaError describing all violations, or nil.
func ValidateDocument(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode history for validation: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("history.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile history schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("load history for validation: %w", err)
	}

	out := &SchemaError{}
	unified := schema.LookupPath(cue.ParsePath("#History")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		out = toSchemaError(err)
	}
	out.Violations = append(out.Violations, orderViolations(doc)...)
	if len(out.Violations) > 0 {
		return out
	}
	return nil
}

// orderViolations reports every event whose id does not exceed the id of
// the event before it.
func orderViolations(doc *Document) []Violation {
	var out []Violation
	for i := 1; i < len(doc.Events); i++ {
		prev, cur := doc.Events[i-1].EventID, doc.Events[i].EventID
		if cur <= prev {
			out = append(out, Violation{
				Path:    fmt.Sprintf("events.%d.event_id", i),
				Message: fmt.Sprintf("must be greater than %d (previous event id)", prev),
			})
		}
	}
	return out
}

func toSchemaError(err error) *SchemaError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Violations: []Violation{{Message: err.Error()}}}
	}

	seen := make(map[string]bool, len(errs))
	out := &SchemaError{}
	for _, e := range errs {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		key := v.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Violations = append(out.Violations, v)
	}
	return out
}
