// Package models defines the canonical entity shapes of the services marketplace client.
//
// Every value in this package is produced by the normalize package from raw server payloads, so callers never branch on payload shape:
//   - [User] : customers, vendors and admins
//   - [Job] : a service request and its lifecycle fields
//   - [Contact], [JobNote] : values embedded in a [Job]
//
// Enumerations ([UserRole], [JobStatus], [Urgency]) carry the exact strings the REST API uses.
package models
