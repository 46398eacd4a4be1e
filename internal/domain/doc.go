// Package domain defines the core business types for the bulk email
// dispatch pipeline: Content, Request, Result, and the Request status
// enum.
//
// Types in this package are pure value objects with no behavior beyond
// simple derivations, no database dependencies, and no HTTP concerns.
// They are the shared language between the store, the scheduler, the
// dispatcher, the batcher, and the HTTP handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
package domain
