package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// reportFileName is the report written next to the downloaded files.
const reportFileName = "download_report.txt"

// Report renders a human-readable summary of one batch download.
func (d *Downloader) Report(stats *Stats, bucket string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Download Report ===\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Bucket: %s\n", bucket)
	fmt.Fprintf(&b, "Destination: %s\n\n", d.dest)

	fmt.Fprintf(&b, "Statistics:\n")
	fmt.Fprintf(&b, "- Total files processed: %d\n", stats.Total)
	fmt.Fprintf(&b, "- Successfully downloaded: %d\n", stats.Downloaded)
	fmt.Fprintf(&b, "- Failed downloads: %d\n", stats.Failed)
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", stats.SuccessRate())

	if len(stats.FailedKeys) > 0 {
		fmt.Fprintf(&b, "\nFailed files:\n")
		for _, key := range stats.FailedKeys {
			fmt.Fprintf(&b, "  - %s\n", key)
		}
	}

	return b.String()
}

// WriteReport persists the rendered report into the destination directory
// and returns its path.
func (d *Downloader) WriteReport(stats *Stats, bucket string) (string, error) {
	if err := os.MkdirAll(d.dest, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}
	path := filepath.Join(d.dest, reportFileName)
	if err := os.WriteFile(path, []byte(d.Report(stats, bucket)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
