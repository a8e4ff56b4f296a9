// Package auth implements a small credential service: account registration
// with bcrypt hashed passwords, login that issues signed HS256 bearer
// tokens, and stateless verification of those tokens for guarded routes.
//
// The package is organized around a few narrow interfaces. Users is the
// persistence boundary, IdentityProvider verifies credentials against it,
// TokenService issues and validates claims, and Authenticator ties them
// together for login. The middleware/jwtware subpackage guards fiber
// routes using a mirror of the claims interface to avoid an import cycle.
//
// Emails are normalized (lower-cased, trimmed) before every comparison and
// before storage, and a unique index on the email column is the final
// arbiter when concurrent registrations race.
package auth
