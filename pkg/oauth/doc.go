// Package oauth implements the RFC 6749 authorization-code grant lifecycle:
// short-lived authorization codes bound to client, user, redirect URI and
// scope, exchanged exactly once for an access/refresh token pair.
//
// The package owns the lifecycle rules; rows live behind the ClientStore,
// GrantStore and TokenStore interfaces. Postgres implementations (pgx) and
// a Redis grant store are provided.
//
// Two invariants matter most:
//
//   - Grant consumption is the single-winner serialization point. Both
//     provided stores consume with an atomic delete-and-return (Postgres
//     DELETE ... RETURNING, Redis GETDEL), so two concurrent exchanges for
//     the same code cannot both succeed. Expired grants are still returned
//     by the store; the exchange step maps them to ErrGrantExpired so a
//     late exchange is distinguishable from an unknown code.
//
//   - Issuing a token pair first revokes every prior pair for the same
//     (client, user): a user holds at most one live session per client.
//     Concurrent issuance for the same pair is last-write-wins by design.
//
// Expiry is evaluated lazily against the wall clock at exchange or lookup
// time; there is no background eviction.
package oauth
