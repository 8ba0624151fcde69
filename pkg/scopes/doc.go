// Package scopes provides helpers for the OAuth2 scope strings used across
// the authorization flows.
//
// A scope is an opaque permission token such as "read" or "admin.users";
// scope lists are space separated per RFC 6749 ("read write admin.users").
// The package parses and joins such lists and answers coverage questions,
// with two wildcard conventions on top of plain equality:
//
//   - "*" covers every scope
//   - "admin.*" covers everything under the "admin." hierarchy
//
// Typical flow:
//
//	requested := scopes.ParseScopes(r.FormValue("scope"))
//	if !scopes.HasAllScopes(client.Scopes, requested) {
//	    // reject with invalid_scope
//	}
//	grant.Scopes = scopes.NormalizeScopes(requested)
package scopes
