package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Status is the recorded outcome for one document.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped_exists"
	StatusError      Status = "error"
)

// Row is one append-only ledger record. Every document processed in a run
// produces exactly one row.
type Row struct {
	SignatureID  string
	DocumentID   string
	EmailUsed    string
	OriginalName string
	SavedPath    string
	CreatedAt    string
	Status       Status
	Error        string
}

var header = []string{
	"signature_id", "document_id", "email_used", "original_filename",
	"saved_path", "created_at", "status", "error",
}

// Ledger is the CSV audit trail for a run. Rows are flushed as they are
// appended, so a crash mid-run leaves the file consistent with the artifacts
// actually written.
type Ledger struct {
	f    *os.File
	w    *csv.Writer
	path string
}

// Open opens the ledger at path in append mode, writing the header row only
// when the file did not exist yet.
func Open(path string) (*Ledger, error) {
	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	l := &Ledger{f: f, w: csv.NewWriter(f), path: path}
	if fresh {
		if err := l.write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write ledger header: %w", err)
		}
	}
	return l, nil
}

// Append records one row and flushes it to disk.
func (l *Ledger) Append(r Row) error {
	record := []string{
		r.SignatureID, r.DocumentID, r.EmailUsed, r.OriginalName,
		r.SavedPath, r.CreatedAt, string(r.Status), r.Error,
	}
	if err := l.write(record); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	return nil
}

// Path returns the location of the ledger file.
func (l *Ledger) Path() string { return l.path }

// Close flushes and closes the ledger.
func (l *Ledger) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

func (l *Ledger) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}
