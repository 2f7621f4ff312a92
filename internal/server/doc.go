// Package server implements an in-memory marketplace API used for local development and end-to-end tests.
//
// # Router Infrastructure
//
// [NewRouter] builds a chi router that mounts every endpoint under /api. [Middleware] values wrap handlers in the
// usual Go pattern: [RequestLogger] records each request, [RequireSession] resolves the bearer token into an account,
// and [RequireRole] gates admin-only routes.
//
// # Payloads
//
// Responses are shaped like an ASP.NET backend: PascalCase keys, numeric job ids and comma-joined photo lists.
// Validation failures are reported as {"errors": {"Field": ["message"]}} and authentication failures as
// {"message": "..."}, matching the error shapes the client knows how to read.
//
// # Marketplace
//
// [Marketplace] owns the accounts, sessions, jobs and notes behind a single mutex. Passwords are stored as bcrypt
// hashes and session tokens are random UUIDs. [DefaultSeed] lists the accounts the `serve` command starts with.
package server
