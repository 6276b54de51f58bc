// Package gallery implements the object access gateway: storing uploaded
// images, enumerating them with fresh time-limited access URLs, and deleting
// them from the backing object store.
package gallery

import (
	"errors"
	"time"
)

// Upload and grant bounds. Grant durations above MaxGrantSeconds are
// rejected, never clamped.
const (
	MaxUploadBytes      = 10 << 20 // 10 MiB
	MaxGrantSeconds     = 86400    // 24 hours
	DefaultGrantSeconds = 3600
	MaxListEntries      = 100
)

// ErrUploadRejected is returned when client input is invalid: no file,
// a non-image content type, or a file above the size limit.
var ErrUploadRejected = errors.New("upload rejected")

// ErrInvalidDuration is returned when a requested grant duration exceeds
// MaxGrantSeconds or is negative. It is raised before any backend call.
var ErrInvalidDuration = errors.New("invalid grant duration")

// allowedExtensions is the fixed allow-list applied to listings,
// matched case-insensitively against the key's extension.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// UploadResult describes a newly stored image.
type UploadResult struct {
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// AccessGrant is a time-limited URL for one stored object. Grants are never
// persisted; every request recomputes them, so two calls for the same key
// may yield different URLs and expiries.
type AccessGrant struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int       `json:"expiresIn"`
}

// ListingEntry pairs an object's identity with a fresh access grant.
type ListingEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Listing is the result of a full enumeration: the surviving entries sorted
// by last-modified descending, plus the number of objects dropped because
// their grant could not be issued.
type Listing struct {
	Entries []ListingEntry `json:"entries"`
	Dropped int            `json:"dropped"`
}

// ObjectDetail carries one object's full metadata plus an access grant.
type ObjectDetail struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"contentType"`
	LastModified time.Time         `json:"lastModified"`
	Metadata     map[string]string `json:"metadata"`
	URL          string            `json:"url"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}
