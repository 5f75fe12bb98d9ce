package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/statetrace/internal/canonical"
	"github.com/roach88/statetrace/internal/trace"
)

// TraceSnapshot captures the reconstruction outcome of a scenario.
// It is serialized as canonical JSON for byte-exact comparison.
type TraceSnapshot struct {
	ScenarioName string               `json:"scenario_name"`
	Records      []trace.Record       `json:"records"`
	Dropped      []trace.DroppedEvent `json:"dropped,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Snapshot builds the golden snapshot of a result.
func Snapshot(name string, result *Result) TraceSnapshot {
	snap := TraceSnapshot{
		ScenarioName: name,
		Records:      result.Records,
		Dropped:      result.Dropped,
	}
	if snap.Records == nil {
		snap.Records = []trace.Record{}
	}
	if result.Err != nil {
		snap.Error = result.Err.Error()
	}
	return snap
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result already produced by Run against the golden
// file named scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := canonical.Marshal(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
