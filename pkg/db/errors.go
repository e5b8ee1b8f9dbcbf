package db

import "strings"

// IsUniqueViolation reports whether err references a Postgres unique
// violation. When constraintName is set, the helper matches on that specific
// constraint instead of the generic duplicate-key text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
