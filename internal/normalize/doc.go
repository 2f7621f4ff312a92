// Package normalize converts heterogeneous server payloads into the canonical shapes of package models.
//
// The REST API is inconsistent about casing ("name" vs "Name") and about container types
// (photos may arrive as a comma-joined string). Each canonical field is described once in a
// field table listing the source keys to try, in order; a generic resolver walks that list.
//
// All functions are pure. [Job] and [User] also accept values that are already canonical,
// so normalizing twice yields the same result as normalizing once.
package normalize
