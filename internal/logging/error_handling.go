package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes c, logging a failure instead of returning it.
// Used for feed response bodies and the GTFS database.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close resource", err,
			slog.String("operation", operation),
			slog.String("component", "resource_management"))
	}
}

// SafeRollbackWithLogging is meant to be deferred right after BeginTx.
// Rolling back a committed transaction reports sql.ErrTxDone, which is not
// logged.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}
	LogError(logger, "failed to rollback transaction", err,
		slog.String("operation", operation),
		slog.String("component", "database"))
}

// HandleDeferredError runs op and, if it fails while *errp is still nil,
// reports the failure through *errp. The first error always wins.
func HandleDeferredError(errp *error, op func() error, logger *slog.Logger, operation string) {
	if op == nil {
		return
	}
	err := op()
	if err == nil {
		return
	}
	LogError(logger, "deferred operation failed", err,
		slog.String("operation", operation),
		slog.String("component", "deferred_cleanup"))
	if *errp == nil {
		*errp = fmt.Errorf("%s failed: %w", operation, err)
	}
}
