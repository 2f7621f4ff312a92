// Package services is the network layer of the marketplace client.
//
// # HTTP Cache Client
//
// [Client] is the single choke point for all REST calls. It owns:
//   - a TTL response cache keyed by endpoint (GET only)
//   - in-flight deduplication of identical GETs ([singleflight.Group])
//   - a per-call timeout that abandons, rather than cancels, the fetch
//   - bearer auth read from the persisted token on every call
//   - prefix invalidation of cached GETs after a successful mutation
//
// The client never retries. Callers decide.
//
// # Domain Services
//
// [JobService] and [AuthService] map marketplace endpoints onto the [API]
// interface and pass every payload through the normalize package, so they
// always return canonical models.
//
// # Error Handling
//
// Failures wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx ([HTTPError])
//   - [shared.ErrRequestTimeout] : the timer won the race
//   - [shared.ErrDecodeResponse] : a 2xx body that is not JSON
//
// [HTTPError.Error] returns exactly the message extracted from the response body.
package services
