package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// RecordQuery carries a compiled collections filter. Where and OrderBy are
// SQL fragments over the column names the repository documents.
type RecordQuery struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// Fixed-width fractional seconds keep stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func parseTimePtr(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// applyRecordQuery appends the filter, ordering and paging of q to a base
// query that already has a WHERE clause.
func applyRecordQuery(base string, args []any, q RecordQuery, defaultOrder string) (string, []any) {
	query := base
	if q.Where != "" {
		query += " AND " + q.Where
		args = append(args, q.Args...)
	}
	order := defaultOrder
	if q.OrderBy != "" {
		order = q.OrderBy + ", " + defaultOrder
	}
	query += " ORDER BY " + order
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}
	return query, args
}

// countRecordQuery counts the rows matched by base plus the filter of q.
func countRecordQuery(ctx context.Context, db dbtx, base string, args []any, q RecordQuery) (int, error) {
	query := "SELECT COUNT(*) FROM (" + base
	countArgs := append([]any{}, args...)
	if q.Where != "" {
		query += " AND " + q.Where
		countArgs = append(countArgs, q.Args...)
	}
	query += ")"
	var total int
	if err := db.QueryRowContext(ctx, query, countArgs...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
