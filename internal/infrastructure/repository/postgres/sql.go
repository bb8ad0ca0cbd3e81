package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// nullableDate truncates to a calendar date; contract_end is a DATE column.
func nullableDate(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	v := time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	return &v
}
