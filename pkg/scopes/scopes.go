package scopes

import (
	"slices"
	"sort"
	"strings"
)

const (
	// ScopeSeparator separates scopes inside a scope list string,
	// per RFC 6749 section 3.3.
	ScopeSeparator = " "

	// ScopeWildcard matches everything, either globally ("*") or within
	// a namespace ("admin.*").
	ScopeWildcard = "*"

	// ScopeDelimiter separates hierarchy levels (e.g. "admin.read").
	ScopeDelimiter = "."
)

// ParseScopes converts a space-separated scope string into a slice.
// Surrounding whitespace and empty entries are dropped; empty input
// yields nil.
func ParseScopes(scopesStr string) []string {
	scopesStr = strings.TrimSpace(scopesStr)
	if scopesStr == "" {
		return nil
	}

	parts := strings.Split(scopesStr, ScopeSeparator)
	scopes := make([]string, 0, len(parts))
	for i := range parts {
		if parts[i] = strings.TrimSpace(parts[i]); parts[i] != "" {
			scopes = append(scopes, parts[i])
		}
	}
	return scopes
}

// JoinScopes converts a scope slice back into a space-separated string,
// the form used in token responses and authorize requests.
func JoinScopes(scopes []string) string {
	if len(scopes) == 0 {
		return ""
	}
	return strings.Join(scopes, ScopeSeparator)
}

// ScopeMatches reports whether scope is covered by pattern.
//
// Matching rules:
//   - direct match: "read" matches "read"
//   - global wildcard: "*" matches any scope
//   - namespace wildcard: "admin.*" matches anything under "admin."
func ScopeMatches(scope, pattern string) bool {
	if scope == pattern || pattern == ScopeWildcard {
		return true
	}

	if strings.HasSuffix(pattern, ScopeWildcard) {
		prefix := strings.TrimSuffix(pattern, ScopeWildcard)
		prefix = strings.TrimSuffix(prefix, ScopeDelimiter)
		return strings.HasPrefix(scope, prefix+ScopeDelimiter)
	}

	return false
}

// HasScope reports whether any pattern in scopes covers the given scope.
func HasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if ScopeMatches(scope, s) {
			return true
		}
	}
	return false
}

// HasAllScopes reports whether every scope in required is covered by scopes.
// An empty required slice is always satisfied; a global wildcard in scopes
// satisfies anything. This is the check a client registration performs
// against a requested scope set.
func HasAllScopes(scopes, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(scopes) == 0 {
		return false
	}
	if slices.Contains(scopes, ScopeWildcard) {
		return true
	}

	for _, req := range required {
		if !HasScope(scopes, req) {
			return false
		}
	}
	return true
}

// NormalizeScopes deduplicates and sorts a scope slice so that equivalent
// requests produce identical stored grants. Returns nil for empty input.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}

	unique := make([]string, 0, len(scopes))
	for i := range scopes {
		if !slices.Contains(unique, scopes[i]) {
			unique = append(unique, scopes[i])
		}
	}
	sort.Strings(unique)
	return unique
}
