package trace

import "encoding/json"

// WorkflowStartIndex is the origin index of a state execution triggered by
// the workflow start rather than by an earlier record.
const WorkflowStartIndex = -1

// Origin is the causal predecessor of a state execution.
type Origin struct {
	// SourceEventIndex is the record index that caused the execution, or
	// WorkflowStartIndex.
	SourceEventIndex int

	// Options are the state options in effect for the execution, if any.
	Options json.RawMessage
}

// OriginTracker holds, per state id, a FIFO queue of origins not yet paired
// with a scheduled state execution.
//
// Queues are removed as soon as they empty, so a missing queue and an empty
// queue are the same thing: no pending origin.
//
// OriginTracker is not safe for concurrent use; each reconstruction owns one.
type OriginTracker struct {
	pending map[string][]Origin
	seeded  bool
	taken   bool
}

// NewOriginTracker returns an empty tracker.
func NewOriginTracker() *OriginTracker {
	return &OriginTracker{pending: make(map[string][]Origin)}
}

// Seed registers the workflow-start origin for the initial state.
// It must be called once, before any Take.
func (t *OriginTracker) Seed(stateID string, o Origin) error {
	if t.seeded {
		return newInvalidSeedError(stateID, "tracker already seeded")
	}
	if t.taken {
		return newInvalidSeedError(stateID, "tracker seeded after an origin was taken")
	}
	t.seeded = true
	t.Offer(stateID, o)
	return nil
}

// Offer appends an origin to the state's queue.
func (t *OriginTracker) Offer(stateID string, o Origin) {
	t.pending[stateID] = append(t.pending[stateID], o)
}

// Take pops the oldest pending origin of the state.
// It fails with a NO_PENDING_ORIGIN *CorrelationError when none is pending.
func (t *OriginTracker) Take(stateID string) (Origin, error) {
	t.taken = true

	queue := t.pending[stateID]
	if len(queue) == 0 {
		delete(t.pending, stateID)
		return Origin{}, newNoPendingOriginError(stateID)
	}

	o := queue[0]
	queue[0] = Origin{}
	if len(queue) == 1 {
		delete(t.pending, stateID)
	} else {
		t.pending[stateID] = queue[1:]
	}
	return o, nil
}

// Pending returns the number of origins queued for the state.
func (t *OriginTracker) Pending(stateID string) int {
	return len(t.pending[stateID])
}

// States returns the number of states with at least one pending origin.
func (t *OriginTracker) States() int {
	return len(t.pending)
}
