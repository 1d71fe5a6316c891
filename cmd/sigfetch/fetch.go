package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"gocloud.dev/blob/fileblob"

	"sigfetch/internal/api"
	"sigfetch/internal/archive"
	"sigfetch/internal/config"
	"sigfetch/internal/fetch"
	"sigfetch/internal/ledger"
	"sigfetch/internal/progress"
)

// ledgerName is the CSV audit file inside each year directory.
const ledgerName = "download_log.csv"

// runFetch downloads every completed signed PDF for one year into the
// archive, appending one ledger row per document. Re-runs are idempotent.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	year := fs.Int("year", 0, "Year to fetch (default: current year)")
	output := fs.String("output", "", "Output root directory")
	configPath := fs.String("config", "", "Path to YAML config file")
	baseURL := fs.String("base-url", "", "API base URL (overrides -sandbox)")
	sandbox := fs.Bool("sandbox", false, "Use the sandbox API endpoint")
	pageLimit := fs.Int("page-limit", 0, "Listing page size")
	timeout := fs.Duration("timeout", 0, "Per-request timeout")
	retryAttempts := fs.Int("retry-attempts", 0, "Max attempts per request")
	retryBackoff := fs.Duration("retry-backoff", 0, "Initial retry backoff")
	retryMaxBackoff := fs.Duration("retry-max-backoff", 0, "Max retry backoff")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: sigfetch fetch [options]

Download all completed signed PDFs for a year from the e-signature provider
into <output>/<year>/, writing a CSV ledger row per document. Files already
present are skipped, so the command can be re-run safely.

The API credential is read from the SIGNATURIT_API_TOKEN environment variable.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	// Layer configuration: defaults, file, environment, then flags.
	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	cfg = cfg.Merge(config.Config{
		Year:       *year,
		OutputRoot: *output,
		BaseURL:    *baseURL,
		Sandbox:    *sandbox,
		PageLimit:  *pageLimit,
		Timeout:    *timeout,
		Retry: config.RetryConfig{
			Attempts:   *retryAttempts,
			Backoff:    *retryBackoff,
			MaxBackoff: *retryMaxBackoff,
		},
	})

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			fmt.Fprintf(os.Stderr,
				"Error: no API token set. Set %s (a value containing %q counts as unset).\n",
				config.TokenEnv, config.TokenPlaceholder)
			return ExitMissingToken
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[sigfetch] Received interrupt, shutting down...")
		cancel()
	}()

	return fetchYear(ctx, cfg)
}

func fetchYear(ctx context.Context, cfg config.Config) int {
	yearDir := filepath.Join(cfg.OutputRoot, strconv.Itoa(cfg.Year))
	if err := os.MkdirAll(yearDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		return ExitStorageError
	}

	// Sidecar metadata files would pollute the archive layout.
	bucket, err := fileblob.OpenBucket(yearDir, &fileblob.Options{
		Metadata: fileblob.MetadataDontWrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	led, err := ledger.Open(filepath.Join(yearDir, ledgerName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return ExitStorageError
	}
	defer led.Close()

	client := api.NewClient(api.Options{
		BaseURL:         cfg.Endpoint(),
		Token:           cfg.Token,
		PageLimit:       cfg.PageLimit,
		Timeout:         cfg.Timeout,
		RetryAttempts:   cfg.Retry.Attempts,
		RetryBackoff:    cfg.Retry.Backoff,
		RetryMaxBackoff: cfg.Retry.MaxBackoff,
	})

	reporter := progress.NewReporter(os.Stderr)
	since, until := api.DateRange(cfg.Year, time.Now())
	reporter.Infof("Year: %d | Range: %s -> %s", cfg.Year, since, until)
	reporter.Infof("Using token: %s | Base URL: %s", config.MaskToken(cfg.Token), cfg.Endpoint())
	reporter.Infof("Fetching signatures...")

	_, err = fetch.Run(ctx, client, fetch.Options{
		Year:     cfg.Year,
		Store:    archive.NewStore(bucket, yearDir),
		Ledger:   led,
		Reporter: reporter,
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "[sigfetch] Interrupted; re-run to resume, existing files will be skipped")
			return ExitGeneralError
		}
		var listErr *api.ListError
		if errors.As(err, &listErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitListFailed
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	return ExitSuccess
}
