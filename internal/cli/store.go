package cli

import (
	"github.com/roach88/statetrace/internal/store"
)

// openStore opens the history store named by --db.
func openStore(opts *RootOptions) (*store.Store, error) {
	if err := opts.requireDatabase(); err != nil {
		return nil, err
	}
	opts.logger().Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database, store.WithLogger(opts.logger()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// closeStore closes st and logs a failure.
func closeStore(opts *RootOptions, st *store.Store) {
	if err := st.Close(); err != nil {
		opts.logger().Error("error closing database", "error", err)
	}
}
