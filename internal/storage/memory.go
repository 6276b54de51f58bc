package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory ObjectStore used in tests and local development.
// It mirrors the backend's observable behavior: deletes of absent keys
// succeed, stats of absent keys return a not-found Error, and presigned URLs
// embed the key and expiry.
type MemStore struct {
	mu      sync.Mutex
	objects map[string]memObject

	// PresignHook, when set, is consulted before issuing a URL and lets
	// tests inject per-key grant failures.
	PresignHook func(key string) error
	// GetHook, when set, is consulted before opening an object and lets
	// tests inject per-key download failures.
	GetHook func(key string) error
	// PutErr, when set, fails every Put.
	PutErr error
}

type memObject struct {
	data []byte
	info ObjectInfo
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]memObject)}
}

// Seed inserts an object directly, bypassing Put. Intended for test setup.
func (s *MemStore) Seed(key string, size int64, lastModified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{
		data: make([]byte, 0),
		info: ObjectInfo{Key: key, Size: size, LastModified: lastModified},
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Put(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return &Error{Kind: KindUnavailable, Summary: "put " + key + ": read body", Detail: err.Error()}
	}

	meta := make(map[string]string, len(opts.Metadata))
	for k, v := range opts.Metadata {
		meta[strings.ToLower(k)] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{
		data: data,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			ContentType:  opts.ContentType,
			LastModified: time.Now().UTC(),
			Metadata:     meta,
		},
	}
	return nil
}

func (s *MemStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.GetHook != nil {
		if err := s.GetHook(key); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, notFound("get " + key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, notFound("stat " + key)
	}
	info := obj.info
	return &info, nil
}

func (s *MemStore) List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys) // S3 enumerates lexicographically

	infos := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		if len(infos) >= max {
			break
		}
		infos = append(infos, s.objects[k].info)
	}
	return infos, nil
}

func (s *MemStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.PresignHook != nil {
		if err := s.PresignHook(key); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", notFound("presign " + key)
	}
	expires := int(ttl / time.Second)
	return fmt.Sprintf("https://mem.local/gallery/%s?X-Amz-Expires=%d", url.PathEscape(key), expires), nil
}

func (s *MemStore) Buckets(ctx context.Context) ([]BucketInfo, error) {
	return []BucketInfo{{Name: "gallery", CreatedAt: time.Now().UTC()}}, nil
}

func (s *MemStore) PublicURL(key string) string {
	return "https://mem.local/gallery/" + url.PathEscape(key)
}

// Len returns the number of stored objects.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func notFound(op string) *Error {
	return &Error{Kind: KindNotFound, Summary: op + ": object not found"}
}
