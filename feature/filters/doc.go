// Package filters implements the declarative filters referenced by metadata rules.
//
// A filter accepts a record when every configured criterion matches:
//   - types: the record type is listed
//   - fields: every listed field carries a non-empty value
//   - equals: every listed field stringifies to the expected value
//   - dirty: at least one listed field or blob path changed in this event
//
// negate inverts the outcome. Checker implements metadata.FilterChecker and
// rejects ids it does not know, logging a warning.
package filters
