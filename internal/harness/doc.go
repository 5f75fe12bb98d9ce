// Package harness runs reconstruction scenarios end to end.
//
// A scenario names a history document, the assertions its reconstructed trace
// must satisfy, and optionally the error the reconstruction must fail with.
// Run imports the history into a fresh in-memory store, reads it back and
// reconstructs it, so every scenario also exercises the storage round trip.
//
// Scenario files are YAML and are decoded strictly:
//
//	name: wait_execute_chain
//	description: wait phase hands its origin to the execute phase
//	history: ../histories/wait_execute_chain.yaml
//	assertions:
//	  - type: record_order
//	    records: [StateWaitUntil:Charge, StateExecute:Charge, StateExecute:Ship]
//	  - type: record_contains
//	    record: StateExecute
//	    state_id: Ship
//	    origin: 1
//
// Golden traces live in testdata/golden and are compared byte for byte as
// canonical JSON. To regenerate them:
//
//	go test ./internal/harness -update
package harness
