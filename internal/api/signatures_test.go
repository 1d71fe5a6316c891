package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	since, until := DateRange(2024, now)
	if since != "2024-01-01" || until != "2024-12-31" {
		t.Errorf("past year: got %s -> %s", since, until)
	}

	since, until = DateRange(2026, now)
	if since != "2026-01-01" || until != "2026-08-23" {
		t.Errorf("current year must end today: got %s -> %s", since, until)
	}
}

func TestListCompletedPaginates(t *testing.T) {
	var offsets []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "completed" {
			t.Errorf("expected status=completed, got %q", q.Get("status"))
		}
		if q.Get("since") != "2024-01-01" || q.Get("until") != "2024-12-31" {
			t.Errorf("unexpected range %s -> %s", q.Get("since"), q.Get("until"))
		}
		if q.Get("limit") != "2" {
			t.Errorf("expected limit=2, got %q", q.Get("limit"))
		}

		offset, _ := strconv.Atoi(q.Get("offset"))
		offsets = append(offsets, offset)

		var page []map[string]any
		switch offset {
		case 0:
			page = []map[string]any{{"id": "sig-1"}, {"id": "sig-2"}}
		case 2:
			page = []map[string]any{{"id": "sig-3"}}
		default:
			t.Errorf("unexpected offset %d", offset)
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.PageLimit = 2
	client := NewClient(opts)

	sigs, err := client.ListCompleted(context.Background(), 2024)
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}

	if len(sigs) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(sigs))
	}
	for i, want := range []string{"sig-1", "sig-2", "sig-3"} {
		if sigs[i].ID != want {
			t.Errorf("signature %d: expected %s, got %s", i, want, sigs[i].ID)
		}
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("expected offsets [0 2], got %v", offsets)
	}
}

func TestListCompletedEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	sigs, err := client.ListCompleted(context.Background(), 2024)
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	if len(sigs) != 0 {
		t.Errorf("expected no signatures, got %d", len(sigs))
	}
}

func TestListCompletedFailsOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	_, err := client.ListCompleted(context.Background(), 2024)

	var listErr *ListError
	if !errors.As(err, &listErr) {
		t.Fatalf("expected *ListError, got %v", err)
	}
	if listErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", listErr.StatusCode)
	}
}

func TestListCompletedFailsAfterRetryExhaustion(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	_, err := client.ListCompleted(context.Background(), 2024)

	var listErr *ListError
	if !errors.As(err, &listErr) {
		t.Fatalf("expected *ListError, got %v", err)
	}
	if !listErr.Exhausted {
		t.Error("expected exhausted listing error")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts before giving up, got %d", attempts)
	}
}

func TestDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signatures/sig-1.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"sig-1","signers":[{"email":"a@x.com"}]}`)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	detail, err := client.Detail(context.Background(), "sig-1")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail["id"] != "sig-1" {
		t.Errorf("unexpected detail payload: %v", detail)
	}
}

func TestDetailFailsOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	if _, err := client.Detail(context.Background(), "sig-1"); err == nil {
		t.Fatal("expected error for 404 detail")
	}
}

func TestDownloadSigned(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signatures/sig-1/documents/doc-1/download/signed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(pdf)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	data, err := client.DownloadSigned(context.Background(), "sig-1", "doc-1")
	if err != nil {
		t.Fatalf("DownloadSigned: %v", err)
	}
	if string(data) != string(pdf) {
		t.Errorf("unexpected bytes %q", data)
	}
}

func TestDownloadSignedFailsOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "document not ready", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testOptions(server.URL))
	_, err := client.DownloadSigned(context.Background(), "sig-1", "doc-1")

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected *DownloadError, got %v", err)
	}
	if dlErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", dlErr.StatusCode)
	}
	if dlErr.Body == "" {
		t.Error("expected response body in download error")
	}
}

func TestSignatureFromPayload(t *testing.T) {
	payload := map[string]any{
		"id":         "sig-1",
		"created_at": "2024-03-01T10:00:00+01:00",
		"documents": []any{
			map[string]any{
				"id":   "doc-1",
				"file": map[string]any{"name": "contract.pdf"},
			},
			map[string]any{"id": "doc-2"},
		},
	}

	sig := signatureFromPayload(payload)

	if sig.ID != "sig-1" || sig.CreatedAt != "2024-03-01T10:00:00+01:00" {
		t.Errorf("unexpected identity fields: %+v", sig)
	}
	if len(sig.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(sig.Documents))
	}
	if sig.Documents[0].FileName != "contract.pdf" {
		t.Errorf("expected declared name, got %s", sig.Documents[0].FileName)
	}
	if sig.Documents[1].FileName != "doc-2.pdf" {
		t.Errorf("expected id fallback name, got %s", sig.Documents[1].FileName)
	}
	if sig.Raw == nil {
		t.Error("raw payload must be kept for email extraction")
	}
}
