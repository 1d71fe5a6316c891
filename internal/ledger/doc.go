// Package ledger maintains the append-only CSV audit trail of per-document
// download outcomes. The file is never rewritten: re-runs append to it.
package ledger
