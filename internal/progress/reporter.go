package progress

import (
	"fmt"
	"io"
	"os"
)

// Reporter outputs human-readable progress for a run. The pipeline is
// sequential, so reporting is per event rather than on a timer.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out (os.Stderr when nil).
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	return &Reporter{out: out}
}

// Discard returns a reporter that swallows all output.
func Discard() *Reporter {
	return &Reporter{out: io.Discard}
}

// Infof prints a prefixed status line.
func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, "[sigfetch] "+format+"\n", args...)
}

// Warnf prints a prefixed non-fatal problem.
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.out, "[sigfetch] ! "+format+"\n", args...)
}

// Downloaded reports one successfully archived document.
func (r *Reporter) Downloaded(name string, size int64) {
	fmt.Fprintf(r.out, "  + %s (%s)\n", name, formatBytes(size))
}

// Skipped reports a document whose artifact already existed.
func (r *Reporter) Skipped(name string) {
	fmt.Fprintf(r.out, "  = %s (already exists)\n", name)
}

// Failed reports a document whose download failed.
func (r *Reporter) Failed(signatureID, documentID string, err error) {
	fmt.Fprintf(r.out, "  x %s/%s: %v\n", signatureID, documentID, err)
}

// Summary prints the final run counts and the ledger location.
func (r *Reporter) Summary(downloaded, skipped, failed int, ledgerPath string) {
	fmt.Fprintf(r.out, "\n[sigfetch] Done. Downloaded: %d | Skipped (already existed): %d | Failed: %d\n",
		downloaded, skipped, failed)
	fmt.Fprintf(r.out, "[sigfetch] Ledger: %s\n", ledgerPath)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
