package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Document is a single document referenced by a signature record.
type Document struct {
	ID       string
	FileName string
}

// Signature is one signing request as returned by the list endpoint.
// Raw holds the full payload so email extraction can fall back to scanning
// fields the typed view does not model.
type Signature struct {
	ID        string
	CreatedAt string
	Documents []Document
	Raw       map[string]any
}

// ListError is returned when the list endpoint answers with a non-200 status.
// Listing failures abort a run, so this surfaces as an error rather than a
// ledger row.
type ListError struct {
	StatusCode int
	Body       string
	Exhausted  bool
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list signatures: status %d: %s", e.StatusCode, e.Body)
}

// DownloadError is returned when the signed-document download endpoint
// answers with a non-200 status.
type DownloadError struct {
	StatusCode int
	Body       string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed (%d): %s", e.StatusCode, e.Body)
}

// DateRange computes the listing window for a year: Jan 1 through Dec 31,
// or through today when the year is still running.
func DateRange(year int, now time.Time) (since, until string) {
	since = fmt.Sprintf("%04d-01-01", year)
	if year == now.Year() {
		until = now.Format("2006-01-02")
	} else {
		until = fmt.Sprintf("%04d-12-31", year)
	}
	return since, until
}

// ListCompleted fetches every completed signature record created in the given
// year. It pages through the list endpoint with a fixed limit and returns the
// fully materialized result; any non-200 page aborts with a *ListError.
func (c *Client) ListCompleted(ctx context.Context, year int) ([]Signature, error) {
	since, until := DateRange(year, time.Now())

	var all []Signature
	for offset := 0; ; offset += c.opts.PageLimit {
		query := url.Values{
			"status": {"completed"},
			"since":  {since},
			"until":  {until},
			"limit":  {strconv.Itoa(c.opts.PageLimit)},
			"offset": {strconv.Itoa(offset)},
		}

		resp, err := c.get(ctx, "/signatures.json", query)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, &ListError{
				StatusCode: resp.StatusCode,
				Body:       snippet(resp.Body),
				Exhausted:  resp.Exhausted,
			}
		}

		var page []map[string]any
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("decode signatures page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			all = append(all, signatureFromPayload(m))
		}
		if len(page) < c.opts.PageLimit {
			break
		}
	}
	return all, nil
}

// Detail fetches the full representation of a signature by ID. The payload is
// kept generic: it is only used for email extraction and debug dumps.
func (c *Client) Detail(ctx context.Context, signatureID string) (map[string]any, error) {
	resp, err := c.get(ctx, "/signatures/"+signatureID+".json", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch signature detail %s: status %d: %s",
			signatureID, resp.StatusCode, snippet(resp.Body))
	}

	var detail map[string]any
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return nil, fmt.Errorf("decode signature detail %s: %w", signatureID, err)
	}
	return detail, nil
}

// DownloadSigned fetches the signed PDF bytes for one document.
func (c *Client) DownloadSigned(ctx context.Context, signatureID, documentID string) ([]byte, error) {
	path := fmt.Sprintf("/signatures/%s/documents/%s/download/signed", signatureID, documentID)
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &DownloadError{StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
	}
	return resp.Body, nil
}

// signatureFromPayload derives the typed view of a signature record while
// keeping the raw payload attached.
func signatureFromPayload(m map[string]any) Signature {
	sig := Signature{
		ID:        stringField(m, "id"),
		CreatedAt: stringField(m, "created_at"),
		Raw:       m,
	}

	docs, _ := m["documents"].([]any)
	for _, d := range docs {
		dm, ok := d.(map[string]any)
		if !ok {
			continue
		}
		doc := Document{ID: stringField(dm, "id")}
		if file, ok := dm["file"].(map[string]any); ok {
			doc.FileName = stringField(file, "name")
		}
		if doc.FileName == "" {
			doc.FileName = doc.ID + ".pdf"
		}
		sig.Documents = append(sig.Documents, doc)
	}
	return sig
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
