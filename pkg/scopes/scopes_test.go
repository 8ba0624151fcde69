package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/idkit/pkg/scopes"
)

func TestParseScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"single scope", "read", []string{"read"}},
		{"multiple scopes", "read write admin.users", []string{"read", "write", "admin.users"}},
		{"extra whitespace", "  read   write  ", []string{"read", "write"}},
		{"wildcard scopes", "* admin.*", []string{"*", "admin.*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, scopes.ParseScopes(tt.input))
		})
	}
}

func TestJoinScopes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", scopes.JoinScopes(nil))
	assert.Equal(t, "", scopes.JoinScopes([]string{}))
	assert.Equal(t, "read", scopes.JoinScopes([]string{"read"}))
	assert.Equal(t, "read write", scopes.JoinScopes([]string{"read", "write"}))
}

func TestScopeMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scope   string
		pattern string
		want    bool
	}{
		{"direct match", "read", "read", true},
		{"no match", "read", "write", false},
		{"global wildcard", "anything.at.all", "*", true},
		{"namespace wildcard match", "admin.users", "admin.*", true},
		{"namespace wildcard deep match", "admin.users.read", "admin.*", true},
		{"namespace wildcard non-match", "user.read", "admin.*", false},
		{"wildcard does not match bare namespace", "admin", "admin.*", false},
		{"prefix without delimiter not matched", "администрация", "admin.*", false},
		{"similar prefix not matched", "administrator.read", "admin.*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.ScopeMatches(tt.scope, tt.pattern))
		})
	}
}

func TestHasScope(t *testing.T) {
	t.Parallel()

	granted := []string{"admin.*", "read"}

	assert.True(t, scopes.HasScope(granted, "read"))
	assert.True(t, scopes.HasScope(granted, "admin.users"))
	assert.False(t, scopes.HasScope(granted, "write"))
	assert.False(t, scopes.HasScope(nil, "read"))
}

func TestHasAllScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scopes   []string
		required []string
		want     bool
	}{
		{"empty required always satisfied", []string{"read"}, nil, true},
		{"empty scopes fail non-empty required", nil, []string{"read"}, false},
		{"exact coverage", []string{"read", "write"}, []string{"read", "write"}, true},
		{"partial coverage fails", []string{"read"}, []string{"read", "write"}, false},
		{"global wildcard covers everything", []string{"*"}, []string{"read", "admin.users"}, true},
		{"namespace wildcard coverage", []string{"admin.*", "read"}, []string{"admin.users", "read"}, true},
		{"namespace wildcard does not cover outside", []string{"admin.*"}, []string{"user.read"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.HasAllScopes(tt.scopes, tt.required))
		})
	}
}

func TestNormalizeScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil input", nil, nil},
		{"empty input", []string{}, nil},
		{"single scope", []string{"read"}, []string{"read"}},
		{"sorted output", []string{"write", "read"}, []string{"read", "write"}},
		{"duplicates removed", []string{"read", "write", "read"}, []string{"read", "write"}},
		{"wildcards preserved", []string{"write", "admin.*", "read"}, []string{"admin.*", "read", "write"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, scopes.NormalizeScopes(tt.input))
		})
	}
}
