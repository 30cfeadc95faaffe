package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"strings"

	domainerrors "locator/internal/domain/errors"
	"locator/internal/errors"
)

// toStoreError classifies a driver error. Connection, timeout and lock
// failures become ErrStoreUnavailable; everything else is a sanitized
// DatabaseExecuteError. Driver text never reaches the client.
func toStoreError(err error, details string) error {
	if err == nil {
		return nil
	}

	if isUnavailable(err) {
		return errors.Wrap(domainerrors.ErrStoreUnavailable, err.Error())
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func isUnavailable(err error) bool {
	if errors.IsAny(err, context.DeadlineExceeded, context.Canceled, driver.ErrBadConn, sql.ErrConnDone) {
		return true
	}

	if _, ok := errors.AsType[net.Error](err); ok {
		return true
	}

	// SQLite reports contention and a missing file only through its message.
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "sql: database is closed")
}
