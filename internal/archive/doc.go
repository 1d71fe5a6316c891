// Package archive names and persists downloaded artifacts.
//
// Naming is deterministic: sanitize the declared file name, prefix it with
// the signer emails, and resolve collisions with _2, _3, ... suffixes.
// Within one run each document claims exactly one name; across runs the same
// documents claim the same names, which is what makes re-runs idempotent.
//
// Persistence goes through a gocloud blob.Bucket, so tests can run against
// an in-memory bucket while the CLI uses a directory on disk.
package archive
