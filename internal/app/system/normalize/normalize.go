// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied field values before
// validation and storage. Every store normalizes on the way in so that
// lookups (email, role, status) never depend on caller casing.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Phone trims surrounding whitespace. Formatting characters are kept;
// phone numbers are stored as entered.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role tag.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// List trims every element and drops blanks, preserving order. Used for
// list fields like repair tasks and technician specializations.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
