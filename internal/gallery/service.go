package gallery

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixvault/service/internal/storage"
)

// Service contains the gateway logic over the backing object store. It holds
// no state of its own; the store handle is long-lived and shared.
type Service struct {
	store storage.ObjectStore
}

// NewService creates a gallery Service backed by the given object store.
func NewService(store storage.ObjectStore) *Service {
	return &Service{store: store}
}

// Store validates and uploads one image. The caller-supplied name is kept
// only as metadata; the storage key is a fresh UUID plus the original
// extension, so collisions are negligible and names never clash.
func (s *Service) Store(ctx context.Context, file io.Reader, size int64, originalName, contentType string) (*UploadResult, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file supplied", ErrUploadRejected)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", ErrUploadRejected, contentType)
	}
	if size <= 0 || size > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file size %d exceeds the %d byte limit", ErrUploadRejected, size, MaxUploadBytes)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	uploadedAt := time.Now().UTC()

	err := s.store.Put(ctx, key, file, size, storage.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"original-name": originalName,
			"uploaded-at":   uploadedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		FileName:     key,
		OriginalName: originalName,
		URL:          s.store.PublicURL(key),
		Size:         size,
		UploadedAt:   uploadedAt,
	}, nil
}

// List enumerates up to MaxListEntries image objects and issues each a fresh
// access grant. Grants are issued concurrently; an object whose grant fails
// is dropped from the result (and logged), not surfaced as a top-level error.
// The surviving entries are sorted by last-modified descending.
func (s *Service) List(ctx context.Context, expiresIn int) (*Listing, error) {
	ttl, err := grantTTL(expiresIn)
	if err != nil {
		return nil, err
	}

	objects, err := s.store.List(ctx, "", MaxListEntries)
	if err != nil {
		return nil, err
	}

	candidates := objects[:0]
	for _, obj := range objects {
		if isImageKey(obj.Key) {
			candidates = append(candidates, obj)
		}
	}

	type slot struct {
		entry ListingEntry
		err   error
	}
	slots := make([]slot, len(candidates))

	var wg sync.WaitGroup
	for i, obj := range candidates {
		wg.Add(1)
		go func(i int, obj storage.ObjectInfo) {
			defer wg.Done()
			issuedAt := time.Now().UTC()
			url, err := s.store.PresignGet(ctx, obj.Key, ttl)
			if err != nil {
				slots[i].err = err
				return
			}
			slots[i].entry = ListingEntry{
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				URL:          url,
				ExpiresAt:    issuedAt.Add(ttl),
			}
		}(i, obj)
	}
	wg.Wait()

	listing := &Listing{Entries: make([]ListingEntry, 0, len(slots))}
	for i, sl := range slots {
		if sl.err != nil {
			log.Printf("gallery: dropping %q from listing: %v", candidates[i].Key, sl.err)
			listing.Dropped++
			continue
		}
		listing.Entries = append(listing.Entries, sl.entry)
	}

	sort.Slice(listing.Entries, func(i, j int) bool {
		return listing.Entries[i].LastModified.After(listing.Entries[j].LastModified)
	})
	return listing, nil
}

// Describe returns one object's full metadata plus an access grant.
func (s *Service) Describe(ctx context.Context, key string, expiresIn int) (*ObjectDetail, error) {
	grant, info, err := s.grantWithStat(ctx, key, expiresIn)
	if err != nil {
		return nil, err
	}
	return &ObjectDetail{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Metadata:     info.Metadata,
		URL:          grant.URL,
		ExpiresAt:    grant.ExpiresAt,
	}, nil
}

// GrantAccess issues a time-limited URL for one object. The duration bound is
// checked before any backend call, and existence is probed before the grant
// so a URL is never issued for a nonexistent key.
func (s *Service) GrantAccess(ctx context.Context, key string, expiresIn int) (*AccessGrant, error) {
	grant, _, err := s.grantWithStat(ctx, key, expiresIn)
	return grant, err
}

// Delete removes the object at key. The backend delete does not distinguish
// "was present" from "already absent"; both report success.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.Remove(ctx, key)
}

// Health probes the backing store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) grantWithStat(ctx context.Context, key string, expiresIn int) (*AccessGrant, *storage.ObjectInfo, error) {
	ttl, err := grantTTL(expiresIn)
	if err != nil {
		return nil, nil, err
	}

	info, err := s.store.Stat(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	issuedAt := time.Now().UTC()
	url, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		return nil, nil, err
	}

	return &AccessGrant{
		Key:       key,
		URL:       url,
		ExpiresAt: issuedAt.Add(ttl),
		ExpiresIn: int(ttl / time.Second),
	}, info, nil
}

// grantTTL validates a requested duration in seconds and applies the default.
func grantTTL(expiresIn int) (time.Duration, error) {
	if expiresIn == 0 {
		expiresIn = DefaultGrantSeconds
	}
	if expiresIn < 0 || expiresIn > MaxGrantSeconds {
		return 0, fmt.Errorf("%w: expiresIn must be between 1 and %d seconds", ErrInvalidDuration, MaxGrantSeconds)
	}
	return time.Duration(expiresIn) * time.Second, nil
}

// isImageKey reports whether the key's extension is on the image allow-list.
// Directory markers and extensionless keys are excluded.
func isImageKey(key string) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(key))]
}
