package trace

import "encoding/json"

// Resolution is where an execute phase's origin came from.
type Resolution struct {
	OriginEventIndex int
	Options          json.RawMessage

	// ViaWait is true when the origin was inherited from a wait phase of the
	// same state execution instead of being taken from the tracker.
	ViaWait bool
}

// Correlator chains a state execution's wait phase to its execute phase.
type Correlator struct {
	tracker *OriginTracker
	trace   *Trace
	waits   map[string]int
}

// NewCorrelator returns a Correlator resolving against tracker and the wait
// records stored in trace.
func NewCorrelator(tracker *OriginTracker, trace *Trace) *Correlator {
	return &Correlator{
		tracker: tracker,
		trace:   trace,
		waits:   make(map[string]int),
	}
}

// RecordWait remembers the wait record of a state execution.
func (c *Correlator) RecordWait(stateExecutionID string, traceIndex int) {
	c.waits[stateExecutionID] = traceIndex
}

// ResolveOriginFor returns the origin of an execute phase. A recorded wait for
// stateExecutionID wins; only without one is an origin taken from the tracker.
func (c *Correlator) ResolveOriginFor(stateExecutionID, stateID string) (Resolution, error) {
	if idx, ok := c.waits[stateExecutionID]; ok {
		if phase := c.trace.At(idx).Phase(); phase != nil {
			return Resolution{
				OriginEventIndex: phase.OriginEventIndex,
				Options:          phase.Options,
				ViaWait:          true,
			}, nil
		}
	}

	o, err := c.tracker.Take(stateID)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		OriginEventIndex: o.SourceEventIndex,
		Options:          o.Options,
	}, nil
}
