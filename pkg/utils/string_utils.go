package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Tenant scopes use it: an empty gym or branch id means "no scope" and is stored as NULL.
func NewNullString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
