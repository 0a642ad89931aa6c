package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is wrapped by every lookup that matches no record
var ErrNotFound = errors.New("record not found")

// timeLayout keeps sub-second precision so stored intervals round-trip exactly
const timeLayout = time.RFC3339Nano

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// parseTime parses a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime formats a timestamp for storage, always in UTC
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullableTime returns nil for the zero time so the column stays NULL
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullTime parses an optional stored timestamp
func parseNullTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return parseTime(s.String)
}

// notFound wraps ErrNotFound with the record kind and key
func notFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

// nextName generates the next document name in format "PREFIX-YEAR-SEQUENCE"
func nextName(ctx context.Context, q querier, table, prefix string, year int) (string, error) {
	query := fmt.Sprintf(`
		SELECT name
		FROM %s
		WHERE name LIKE ?
		ORDER BY name DESC
		LIMIT 1
	`, table)

	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var last string

	err := q.QueryRowContext(ctx, query, pattern).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("%s-%d-%05d", prefix, year, 1), nil
		}
		return "", fmt.Errorf("failed to get last name from %s: %w", table, err)
	}

	var seq int
	if _, err := fmt.Sscanf(last[len(prefix):], "-%d-%d", &year, &seq); err != nil {
		return fmt.Sprintf("%s-%d-%05d", prefix, year, 1), nil
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq+1), nil
}
