// Package inputval holds small input validators shared by the handlers.
package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether s is a bare address (no display name) with
// a well-formed local part and domain. Single-label domains are accepted.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return dotsOK(s[:at]) && dotsOK(s[at+1:])
}

func dotsOK(part string) bool {
	return !strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// PasswordProblem returns a human-readable reason when pw cannot be used,
// or "" when it is acceptable. bcrypt ignores bytes past 72.
func PasswordProblem(pw string) string {
	switch {
	case len(pw) < 8:
		return "password must be at least 8 characters"
	case len(pw) > 72:
		return "password must be at most 72 bytes"
	}
	return ""
}
