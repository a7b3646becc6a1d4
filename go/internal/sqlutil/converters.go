package sqlutil

import (
	"database/sql"
	"fmt"
	"strings"
)

// Helper functions for converting between Go types and sql.Null* types

// ToNullString converts a Go string to sql.NullString, treating "" as NULL
func ToNullString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}

// BoolToInt stores booleans as 0/1 so the same schema works on sqlite and Postgres
func BoolToInt(val bool) int {
	if val {
		return 1
	}
	return 0
}

// IntToBool converts a 0/1 column back to bool
func IntToBool(val int64) bool {
	return val != 0
}

// Rebind rewrites ? placeholders to $1..$n for Postgres drivers.
// Question marks inside single-quoted literals are left alone.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
