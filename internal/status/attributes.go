package status

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Search attribute keys written by the state-machine interpreter.
const (
	AttrWorkflowType      = "IwfWorkflowType"
	AttrGlobalVersion     = "IwfGlobalWorkflowVersion"
	AttrExecutingStateIDs = "IwfExecutingStateIds"
)

// Attributes are the typed custom search attributes of an execution.
type Attributes struct {
	// WorkflowType is the state workflow type. It is the attribute that marks
	// an execution as one statetrace understands.
	WorkflowType string

	GlobalVersion     int64
	ExecutingStateIDs []string

	// Custom holds attributes with no dedicated field, keyed by name.
	Custom map[string]json.RawMessage
}

// IsStateWorkflow reports whether the type-indicating attribute is present.
func (a Attributes) IsStateWorkflow() bool {
	return a.WorkflowType != ""
}

// CustomKeys returns the names of the uninterpreted attributes, sorted.
func (a Attributes) CustomKeys() []string {
	keys := make([]string, 0, len(a.Custom))
	for k := range a.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MapAttributes decodes raw search attributes. A known attribute with the
// wrong shape is an error; unknown attributes are kept verbatim in Custom.
func MapAttributes(raw map[string]json.RawMessage) (Attributes, error) {
	attrs := Attributes{Custom: make(map[string]json.RawMessage)}

	for key, value := range raw {
		var err error
		switch key {
		case AttrWorkflowType:
			err = json.Unmarshal(value, &attrs.WorkflowType)
		case AttrGlobalVersion:
			err = json.Unmarshal(value, &attrs.GlobalVersion)
		case AttrExecutingStateIDs:
			err = json.Unmarshal(value, &attrs.ExecutingStateIDs)
		default:
			attrs.Custom[key] = value
		}
		if err != nil {
			return Attributes{}, fmt.Errorf("search attribute %s: %w", key, err)
		}
	}

	return attrs, nil
}
