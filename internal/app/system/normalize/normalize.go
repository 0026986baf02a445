// Package normalize canonicalizes user-supplied strings before storage or
// comparison.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims a display name, collapsing internal runs of whitespace.
func Name(s string) string { return strings.Join(strings.Fields(s), " ") }

// Status trims and lowercases a status value.
func Status(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Role trims and lowercases a role value.
func Role(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// QueryParam trims a query-string value, preserving case.
func QueryParam(s string) string { return strings.TrimSpace(s) }
