package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore using a MinIO (or any S3-compatible)
// backend. The client is long-lived and safe for concurrent use; one instance
// is constructed at startup and shared by all requests.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
	timeout    time.Duration
}

// MinioOptions configures a MinioStore.
type MinioOptions struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	Bucket     string
	UseSSL     bool
	PublicBase string
	// Timeout bounds every backend round trip. Zero means no deadline beyond
	// whatever the transport enforces.
	Timeout time.Duration
}

// NewMinioStore creates the MinIO client. It does not touch the network;
// call Ping before serving traffic to verify connectivity.
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
		timeout:    opts.Timeout,
	}, nil
}

// Ping checks the backend is reachable and the configured bucket exists.
func (s *MinioStore) Ping(ctx context.Context) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return translate("ping", err)
	}
	if !exists {
		return &Error{Kind: KindNotFound, Summary: fmt.Sprintf("ping: bucket %q does not exist", s.bucket)}
	}
	return nil
}

// Put streams reader to the bucket under key. size must be the exact byte
// count (pass -1 only if the size is genuinely unknown — MinIO will buffer it).
func (s *MinioStore) Put(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	return translate("put "+key, err)
}

// Get opens a streaming handle to the object at key.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	// No deadline here: the caller streams the body at its own pace.
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("get "+key, err)
	}
	// GetObject is lazy; surface missing keys now rather than on first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, translate("get "+key, err)
	}
	return obj, nil
}

// Stat returns the object's metadata without downloading its content.
func (s *MinioStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate("stat "+key, err)
	}
	return &ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Metadata:     userMetadata(info),
	}, nil
}

// List returns up to max objects under prefix. The enumeration is a full
// restart every call; no cursor state is kept.
func (s *MinioStore) List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	objects := make([]ObjectInfo, 0, max)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   max,
	}) {
		if obj.Err != nil {
			return nil, translate("list", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
		if len(objects) >= max {
			break
		}
	}
	return objects, nil
}

// Remove deletes the object at key. The S3 DeleteObject call does not
// distinguish "was present" from "already absent"; both succeed.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	return translate("remove "+key, s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}))
}

// PresignGet issues a time-limited GET URL for the object at key.
func (s *MinioStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", translate("presign "+key, err)
	}
	return u.String(), nil
}

// Buckets lists all buckets accessible with the configured credentials.
func (s *MinioStore) Buckets(ctx context.Context) ([]BucketInfo, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	raw, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, translate("list buckets", err)
	}
	buckets := make([]BucketInfo, 0, len(raw))
	for _, b := range raw {
		buckets = append(buckets, BucketInfo{Name: b.Name, CreatedAt: b.CreationDate})
	}
	return buckets, nil
}

// PublicURL returns the permanent URL for the given key.
// For local MinIO: "http://localhost:9000/gallery/abc.jpg"
// Behind a CDN: "https://cdn.example.com/abc.jpg"
func (s *MinioStore) PublicURL(key string) string {
	return s.publicBase + "/" + url.PathEscape(key)
}

func (s *MinioStore) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// userMetadata extracts the caller-supplied metadata from a stat result,
// dropping the storage headers MinIO mixes into the same map.
func userMetadata(info minio.ObjectInfo) map[string]string {
	meta := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		meta[strings.ToLower(k)] = v
	}
	return meta
}
