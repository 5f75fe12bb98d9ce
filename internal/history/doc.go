// Package history models the backend history log that statetrace reconstructs.
//
// A history is an ordered slice of Event values. Each Event is a tagged union:
// Type is the discriminator and exactly one attributes pointer is populated
// for the kinds the reconstruction engine understands. Event kinds the engine
// does not model (workflow task events, timers, markers) are still accepted so
// that a full export can be imported unchanged.
//
// Payloads stay raw (json.RawMessage) on the Event. They are turned into typed
// values by an explicit decode step per kind (DecodeStartInput,
// DecodeStateRequest, DecodeStateDecision). Each decoder validates required
// fields and returns a *DecodeError instead of a partially filled value.
//
// History documents (LoadDocument) are the on-disk export format, in YAML or
// JSON, validated against an embedded CUE schema (ValidateDocument).
package history
