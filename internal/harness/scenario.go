package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a reconstruction test case.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// History is the path of the history document to reconstruct.
	// Relative paths are resolved against the scenario file location.
	History string `yaml:"history"`

	// Expect, when set, requires the reconstruction to fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the reconstructed trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies an expected reconstruction failure.
type ExpectClause struct {
	// Error is a correlation error code (e.g. "NO_PENDING_ORIGIN") or
	// ErrorDecode for any history decoding failure.
	Error string `yaml:"error"`
}

// ErrorDecode matches any history decoding failure in an ExpectClause.
const ErrorDecode = "DECODE_ERROR"

// Assertion validates the reconstructed trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_contains": a record with the given fields exists
	// - "record_order": records appear in the given order
	// - "record_count": records matching the filter appear exactly Count times
	// - "dropped_count": exactly Count activity outcomes were dropped
	Type string `yaml:"type"`

	// Record is the record type, e.g. "StateExecute".
	Record string `yaml:"record,omitempty"`

	// StateID filters state records by state id.
	StateID string `yaml:"state_id,omitempty"`

	// StateExecutionID filters state records by state execution id.
	StateExecutionID string `yaml:"state_execution_id,omitempty"`

	// Origin is the expected origin record index; -1 is the workflow start.
	Origin *int `yaml:"origin,omitempty"`

	// Completed requires the state phase to have (or lack) a completion time.
	Completed *bool `yaml:"completed,omitempty"`

	// Failed requires the state phase to have (or lack) a failure.
	Failed *bool `yaml:"failed,omitempty"`

	// Records is the expected order for record_order. Entries are
	// "Type" or "Type:StateID".
	Records []string `yaml:"records,omitempty"`

	// Count is the expected number of matches.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordContains = "record_contains"
	AssertRecordOrder    = "record_order"
	AssertRecordCount    = "record_count"
	AssertDroppedCount   = "dropped_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if !filepath.IsAbs(scenario.History) {
		scenario.History = filepath.Join(filepath.Dir(path), scenario.History)
	}
	if _, err := os.Stat(scenario.History); err != nil {
		return nil, fmt.Errorf("invalid scenario: history file not found: %s", scenario.History)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.History == "" {
		return fmt.Errorf("history is required")
	}
	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("either expect or assertions is required")
	}
	if s.Expect != nil && s.Expect.Error == "" {
		return fmt.Errorf("expect: error is required")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRecordContains:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for record_contains", index)
		}
	case AssertRecordOrder:
		if len(a.Records) == 0 {
			return fmt.Errorf("assertions[%d]: records list is required for record_order", index)
		}
	case AssertRecordCount:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for record_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertDroppedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for dropped_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
