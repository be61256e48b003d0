package policyapi

import "strings"

// NormalizeIdentifier upper-cases raw and trims surrounding whitespace.
// An empty result means no lookup should be attempted.
func NormalizeIdentifier(raw string) string {
	return strings.TrimSpace(strings.ToUpper(raw))
}
