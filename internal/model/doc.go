// Package model defines the records held by the client-side cache.
//
// This package contains record types, their wire shape and validation only.
// All other internal packages import model; model imports nothing internal.
//
// Key constraints:
//   - Every record is keyed by a non-empty string id
//   - Dates are ISO-8601 strings and order lexically (newest sorts last)
//   - Foreign keys (Post.User, Notification.User) are not enforced at write time
//   - JSON tags follow the server wire format (camelCase)
package model
