package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
)

// dumpPrefix is where no-email debug payloads land inside the archive.
const dumpPrefix = "_no_email_samples/"

// Store persists one year's downloaded artifacts through a blob bucket and
// tracks the names claimed during the current run so colliding documents in
// the same run resolve to distinct keys.
type Store struct {
	bucket  *blob.Bucket
	root    string
	claimed map[string]bool
}

// NewStore wraps a bucket rooted at the year's output directory. root is the
// local path artifacts resolve under; it is only used for reporting.
func NewStore(bucket *blob.Bucket, root string) *Store {
	return &Store{
		bucket:  bucket,
		root:    root,
		claimed: make(map[string]bool),
	}
}

// Claim resolves name to its final key for this run. Candidates are tried as
// name, stem_2.ext, stem_3.ext, ... skipping keys already claimed in this
// run; the first unclaimed candidate is final and stays claimed. exists
// reports whether an artifact already occupies the key, in which case the
// caller skips the download. Because claims restart every run, a re-run
// re-derives the same keys and finds them occupied.
func (s *Store) Claim(ctx context.Context, name string) (key string, exists bool, err error) {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		if s.claimed[candidate] {
			continue
		}

		onDisk, err := s.bucket.Exists(ctx, candidate)
		if err != nil {
			return "", false, fmt.Errorf("check %s: %w", candidate, err)
		}
		s.claimed[candidate] = true
		return candidate, onDisk, nil
	}
}

// Put writes artifact bytes at key. Artifacts are written once per run and
// never mutated afterwards.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// PutDump writes a one-time debug dump of a detail payload for a signature
// whose emails could not be extracted. An existing dump is left untouched.
func (s *Store) PutDump(ctx context.Context, signatureID string, payload map[string]any) error {
	key := dumpPrefix + signatureID + ".json"

	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		return nil
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dump for %s: %w", signatureID, err)
	}
	return s.Put(ctx, key, data)
}

// Path reports where a claimed key lands on the local filesystem.
func (s *Store) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
