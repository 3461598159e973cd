package helpers

import "strings"

// NilIfEmpty returns nil for blank strings so they are stored as NULL
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
