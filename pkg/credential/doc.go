// Package credential implements account credential lifecycles on top of
// signed expiring tokens: account confirmation, password reset, and email
// change. Each operation mints a token with its own payload schema and
// validity window, and redeems it against an external user directory.
//
// The package owns the lifecycle rules only. User rows live behind the
// UserDirectory interface, and notification email is dispatched
// fire-and-forget through an optional mailer; neither is awaited on the
// request path beyond the directory mutation itself.
//
// Tokens are stateless: there is no persisted used-token set, so a redeemed
// token stays redeemable until its expiry. Confirmation guards against
// cross-user redemption by requiring the claiming user id to match the
// token; password reset trusts the token as the sole source of identity.
package credential
