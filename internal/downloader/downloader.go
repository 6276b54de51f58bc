// Package downloader implements batch retrieval of objects from the backing
// store to the local filesystem: single files or whole key prefixes, with
// extension filtering, a transfer cap, and a summary report.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pixvault/service/internal/storage"
)

// listCap bounds a single enumeration, mirroring the backend's page size.
const listCap = 1000

// Downloader is an independent client of the object store. It shares no
// state with the gateway.
type Downloader struct {
	store storage.ObjectStore
	dest  string
	log   *log.Logger
}

// Stats summarizes one batch download.
type Stats struct {
	Total      int
	Downloaded int
	Failed     int
	FailedKeys []string
}

// Success reports whether every transfer completed.
func (s *Stats) Success() bool { return s.Failed == 0 }

// SuccessRate returns the fraction of processed files that downloaded, in percent.
func (s *Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Downloaded) / float64(s.Total) * 100
}

// New creates a Downloader writing into dest. The logger receives one line
// per transfer and is expected to also feed the persistent log file.
func New(store storage.ObjectStore, dest string, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.Default()
	}
	return &Downloader{store: store, dest: dest, log: logger}
}

// Dest returns the local destination directory.
func (d *Downloader) Dest() string { return d.dest }

// ListObjects enumerates up to max objects under prefix.
func (d *Downloader) ListObjects(ctx context.Context, prefix string, max int) ([]storage.ObjectInfo, error) {
	if max <= 0 || max > listCap {
		max = listCap
	}
	objects, err := d.store.List(ctx, prefix, max)
	if err != nil {
		return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
	}
	d.log.Printf("found %d objects under prefix %q", len(objects), prefix)
	return objects, nil
}

// DownloadFile transfers one object to localPath. When localPath is empty the
// file lands in the destination directory under the key's base name.
func (d *Downloader) DownloadFile(ctx context.Context, key, localPath string) error {
	if localPath == "" {
		localPath = filepath.Join(d.dest, filepath.Base(key))
	}

	info, err := d.store.Stat(ctx, key)
	if err != nil {
		return fmt.Errorf("stat %q: %w", key, err)
	}
	d.log.Printf("downloading %s (%s) to %s", key, humanize.IBytes(uint64(info.Size)), localPath)

	body, err := d.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", localPath, err)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", localPath, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(localPath) // don't leave a truncated file behind
		return fmt.Errorf("write %q: %w", localPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", localPath, err)
	}

	d.log.Printf("downloaded %s", key)
	return nil
}

// DownloadPrefix transfers every object under prefix, preserving the relative
// path structure beneath the destination directory. Extensions filter the
// candidate set case-insensitively; maxFiles caps the number of transfers.
// Per-file failures are collected in the stats, never fatal.
func (d *Downloader) DownloadPrefix(ctx context.Context, prefix string, extensions []string, maxFiles int) (*Stats, error) {
	objects, err := d.ListObjects(ctx, prefix, 0)
	if err != nil {
		return nil, err
	}

	if len(extensions) > 0 {
		objects = filterByExtension(objects, extensions)
		d.log.Printf("filtered to %d objects with extensions %v", len(objects), extensions)
	}
	if maxFiles > 0 && len(objects) > maxFiles {
		objects = objects[:maxFiles]
		d.log.Printf("limited to %d files", maxFiles)
	}

	stats := &Stats{}
	for _, obj := range objects {
		// Directory markers carry no content.
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		stats.Total++

		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Key, prefix), "/")
		local := filepath.Join(d.dest, filepath.FromSlash(rel))

		if err := d.DownloadFile(ctx, obj.Key, local); err != nil {
			d.log.Printf("failed to download %s: %v", obj.Key, err)
			stats.Failed++
			stats.FailedKeys = append(stats.FailedKeys, obj.Key)
			continue
		}
		stats.Downloaded++
	}

	d.log.Printf("download complete: %d successful, %d failed", stats.Downloaded, stats.Failed)
	return stats, nil
}

// filterByExtension keeps objects whose key ends with one of the given
// extensions. A missing leading dot is tolerated (".jpg" and "jpg" match alike).
func filterByExtension(objects []storage.ObjectInfo, extensions []string) []storage.ObjectInfo {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	kept := objects[:0]
	for _, obj := range objects {
		lower := strings.ToLower(obj.Key)
		for _, ext := range normalized {
			if strings.HasSuffix(lower, ext) {
				kept = append(kept, obj)
				break
			}
		}
	}
	return kept
}
