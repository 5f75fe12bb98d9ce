// Package store keeps imported workflow histories in SQLite.
//
// A run is one row in workflows. Its events live in history_events keyed by
// (workflow_id, run_id, event_id) and are always read back in event_id order,
// so an event's position in a loaded slice is its event index.
//
// Connections run in WAL mode with foreign keys on, so deleting a run drops
// its events. Schema changes are numbered migrations tracked in
// PRAGMA user_version.
//
// Attributes and search attributes are stored as canonical JSON: importing
// the same document twice yields byte-identical rows.
package store
