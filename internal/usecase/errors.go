package usecase

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")

	// ErrSourceUnavailable aborts a sync before any write. Retrying later is safe.
	ErrSourceUnavailable = crerr.New("roster source unavailable")
	// ErrEmptySource aborts a sync whose source returned no rows.
	ErrEmptySource = crerr.New("roster source returned no rows")
	// ErrInvalidRow skips one row; the pass continues.
	ErrInvalidRow = crerr.New("invalid roster row")
	// ErrWriteConflict rolls back one row; the pass continues.
	ErrWriteConflict = crerr.New("roster row write failed")
	// ErrCacheInvalidation is logged only; the sync still completes.
	ErrCacheInvalidation = crerr.New("cache invalidation failed")
	// ErrSyncInProgress rejects a background sync while another one runs.
	ErrSyncInProgress = crerr.New("sync already in progress")
)
