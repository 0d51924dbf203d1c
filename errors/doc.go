// Package errors defines the error type returned for outcomes that fall
// outside a document operation's classified failure codes: transport
// failures, cancellation, timeouts and invalid configuration.
//
// Classified failures (not found, precondition failed, ...) are never
// reported through this package; they are part of the operation result.
package errors
