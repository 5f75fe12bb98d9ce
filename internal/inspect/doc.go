// Package inspect serves the debugging view of a single workflow run.
//
// A Service fetches the run summary and its ordered history from a Fetcher,
// maps backend metadata, rebuilds the state execution trace and returns it as
// a HistoryResponse. Every failure is returned as an *APIError carrying the
// error type a transport layer reports to its caller.
package inspect
