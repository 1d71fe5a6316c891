// Package email extracts signer email addresses from signature payloads.
//
// Extraction is an explicit ordered chain of strategies: structured
// participant fields first, then a recursive scan over every string leaf of
// the payload. Each strategy is auditable and testable in isolation; the
// first non-empty result is used.
package email
