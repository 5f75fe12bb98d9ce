// Package trace implements the execution history reconstruction engine.
//
// Reconstruct folds an ordered backend history into a sequence of state
// execution records. The fold is a single forward pass with no I/O:
//
//  1. The first event must be WorkflowExecutionStarted. Its payload names the
//     start state, which seeds the OriginTracker with the workflow-start origin
//     (index -1).
//  2. Each StateApiWaitUntil scheduling takes the oldest pending origin of its
//     state and appends a wait record.
//  3. Each StateApiExecute scheduling is resolved by the Correlator: if a wait
//     record exists for the same state execution id, the execute record
//     inherits that wait's origin and options; otherwise it takes a fresh
//     origin from the tracker.
//  4. Activity completions and failures update the record they belong to in
//     place. A completed execute activity offers one origin per next state of
//     its decision, so later visits of those states are paired with the
//     decision that caused them.
//  5. Signals and workflow completion/failure append marker records.
//
// All correlation state (origin queues, activity index, wait index) belongs to
// one Reconstruct call and is discarded when it returns, so concurrent calls
// share nothing.
//
// Record indices are positions in the output and never change once assigned;
// originEventIndex values refer to them.
package trace
