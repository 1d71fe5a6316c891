package fetch

import (
	"context"
	"fmt"
	"strings"

	"sigfetch/internal/api"
	"sigfetch/internal/archive"
	"sigfetch/internal/email"
	"sigfetch/internal/ledger"
	"sigfetch/internal/progress"
)

// API is the slice of the provider client the run needs.
type API interface {
	ListCompleted(ctx context.Context, year int) ([]api.Signature, error)
	Detail(ctx context.Context, signatureID string) (map[string]any, error)
	DownloadSigned(ctx context.Context, signatureID, documentID string) ([]byte, error)
}

// Summary aggregates per-document outcomes for one run. It is accumulated by
// value: each processed document yields the next Summary.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of documents processed.
func (s Summary) Total() int { return s.Downloaded + s.Skipped + s.Failed }

// with returns the summary advanced by one document outcome.
func (s Summary) with(status ledger.Status) Summary {
	switch status {
	case ledger.StatusDownloaded:
		s.Downloaded++
	case ledger.StatusSkipped:
		s.Skipped++
	case ledger.StatusError:
		s.Failed++
	}
	return s
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Year     int
	Store    *archive.Store
	Ledger   *ledger.Ledger
	Reporter *progress.Reporter
}

// Run drives one full pass for one year: list every completed signature,
// fetch each record's detail, extract signer emails, and download every
// referenced document into the archive, appending one ledger row per
// document. Only listing failures (and storage/ledger breakage) abort the
// run; detail and download failures are recorded and the pass continues.
func Run(ctx context.Context, client API, opts Options) (Summary, error) {
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Discard()
	}

	var sum Summary

	signatures, err := client.ListCompleted(ctx, opts.Year)
	if err != nil {
		return sum, fmt.Errorf("list signatures: %w", err)
	}
	rep.Infof("Found %d signature request(s) in %d.", len(signatures), opts.Year)

	for _, sig := range signatures {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		// Detail improves email extraction; its absence is tolerated.
		detail, err := client.Detail(ctx, sig.ID)
		if err != nil {
			detail = nil
			rep.Warnf("could not fetch detail for %s: %v", sig.ID, err)
		}

		emails := email.Extract(sig.Raw, detail)
		if len(emails) == 0 && detail != nil {
			if err := opts.Store.PutDump(ctx, sig.ID, detail); err != nil {
				rep.Warnf("could not write debug dump for %s: %v", sig.ID, err)
			}
		}

		for _, doc := range sig.Documents {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			status, err := processDocument(ctx, client, opts, rep, sig, doc, emails)
			if err != nil {
				return sum, err
			}
			sum = sum.with(status)
		}
	}

	rep.Summary(sum.Downloaded, sum.Skipped, sum.Failed, opts.Ledger.Path())
	return sum, nil
}

// processDocument claims a name for one document and either skips it (an
// artifact already occupies the name), downloads and stores it, or records
// the failure. The returned error is reserved for storage and ledger
// breakage and for run cancellation; download failures come back as a
// StatusError outcome.
func processDocument(ctx context.Context, client API, opts Options, rep *progress.Reporter,
	sig api.Signature, doc api.Document, emails []string) (ledger.Status, error) {

	base := archive.BaseName(emails, doc.FileName)
	key, exists, err := opts.Store.Claim(ctx, base)
	if err != nil {
		return "", fmt.Errorf("claim name for %s/%s: %w", sig.ID, doc.ID, err)
	}

	row := ledger.Row{
		SignatureID:  sig.ID,
		DocumentID:   doc.ID,
		EmailUsed:    strings.Join(emails, "+"),
		OriginalName: doc.FileName,
		SavedPath:    opts.Store.Path(key),
		CreatedAt:    sig.CreatedAt,
	}

	if exists {
		row.Status = ledger.StatusSkipped
		rep.Skipped(key)
		return row.Status, opts.Ledger.Append(row)
	}

	data, err := client.DownloadSigned(ctx, sig.ID, doc.ID)
	if err == nil {
		err = opts.Store.Put(ctx, key, data)
	}
	if err != nil {
		// A cancelled run aborts; the ledger records only real download
		// outcomes.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		row.Status = ledger.StatusError
		row.Error = err.Error()
		rep.Failed(sig.ID, doc.ID, err)
		return row.Status, opts.Ledger.Append(row)
	}

	row.Status = ledger.StatusDownloaded
	rep.Downloaded(key, int64(len(data)))
	return row.Status, opts.Ledger.Append(row)
}
