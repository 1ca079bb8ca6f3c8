// Package normalize holds the canonical forms for user-supplied identifiers.
package normalize

import "strings"

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// ID trims an identifier taken from a path segment or request body.
func ID(s string) string {
	return strings.TrimSpace(s)
}
