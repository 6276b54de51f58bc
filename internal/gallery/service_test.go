package gallery

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixvault/service/internal/storage"
)

func newTestService() (*Service, *storage.MemStore) {
	store := storage.NewMemStore()
	return NewService(store), store
}

func TestStoreAssignsOpaqueKey(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Store(context.Background(), bytes.NewReader([]byte("fake png bytes")), 14, "cat.png", "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, "cat.png", result.FileName)
	assert.True(t, strings.HasSuffix(result.FileName, ".png"))
	assert.Contains(t, result.URL, result.FileName)
	assert.Equal(t, "cat.png", result.OriginalName)
	assert.Equal(t, int64(14), result.Size)
	assert.WithinDuration(t, time.Now(), result.UploadedAt, 2*time.Second)
}

func TestStoreRejectsNonImageContentType(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Store(context.Background(), bytes.NewReader([]byte("%PDF-")), 5, "doc.pdf", "application/pdf")
	require.ErrorIs(t, err, ErrUploadRejected)
	assert.Equal(t, 0, store.Len(), "rejected upload must not reach the backend")
}

func TestStoreRejectsOversizedFile(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Store(context.Background(), bytes.NewReader(nil), MaxUploadBytes+1, "big.png", "image/png")
	require.ErrorIs(t, err, ErrUploadRejected)
	assert.Equal(t, 0, store.Len())
}

func TestStoreRejectsMissingFile(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Store(context.Background(), nil, 0, "", "image/png")
	require.ErrorIs(t, err, ErrUploadRejected)
	assert.Equal(t, 0, store.Len())
}

func TestStoreSurfacesBackendFailure(t *testing.T) {
	svc, store := newTestService()
	store.PutErr = &storage.Error{Kind: storage.KindUnavailable, Summary: "put: storage backend unavailable"}

	_, err := svc.Store(context.Background(), bytes.NewReader([]byte("x")), 1, "a.png", "image/png")
	require.Error(t, err)
	assert.True(t, storage.IsUnavailable(err))
}

func TestStoreDescribeRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Store(ctx, bytes.NewReader([]byte("png body")), 8, "photo.PNG", "image/png")
	require.NoError(t, err)

	detail, err := svc.Describe(ctx, result.FileName, 0)
	require.NoError(t, err)
	assert.Equal(t, result.FileName, detail.Key)
	assert.Equal(t, int64(8), detail.Size)
	assert.Equal(t, "image/png", detail.ContentType)
	assert.Equal(t, "photo.PNG", detail.Metadata["original-name"])
	assert.NotEmpty(t, detail.URL)
}

func TestGrantAccessRejectsExcessiveDuration(t *testing.T) {
	svc, store := newTestService()
	store.Seed("a.jpg", 10, time.Now())

	presigned := 0
	store.PresignHook = func(string) error { presigned++; return nil }

	_, err := svc.GrantAccess(context.Background(), "a.jpg", 90000)
	require.ErrorIs(t, err, ErrInvalidDuration)
	assert.Equal(t, 0, presigned, "duration must be validated before any backend call")
}

func TestGrantAccessRejectsNegativeDuration(t *testing.T) {
	svc, store := newTestService()
	store.Seed("a.jpg", 10, time.Now())

	_, err := svc.GrantAccess(context.Background(), "a.jpg", -1)
	require.ErrorIs(t, err, ErrInvalidDuration)
}

func TestGrantAccessAbsentKey(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GrantAccess(context.Background(), "nope.jpg", 3600)
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestGrantAccessIssuesGrant(t *testing.T) {
	svc, store := newTestService()
	store.Seed("a.jpg", 10, time.Now())

	grant, err := svc.GrantAccess(context.Background(), "a.jpg", 600)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", grant.Key)
	assert.Contains(t, grant.URL, "a.jpg")
	assert.Equal(t, 600, grant.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(600*time.Second), grant.ExpiresAt, 2*time.Second)
}

func TestGrantAccessDefaultDuration(t *testing.T) {
	svc, store := newTestService()
	store.Seed("a.jpg", 10, time.Now())

	grant, err := svc.GrantAccess(context.Background(), "a.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultGrantSeconds, grant.ExpiresIn)
}

func TestListSortsByLastModifiedDescending(t *testing.T) {
	svc, store := newTestService()
	now := time.Now()
	store.Seed("old.jpg", 1, now.Add(-10*time.Second))
	store.Seed("mid.jpg", 2, now.Add(-5*time.Second))
	store.Seed("new.jpg", 3, now.Add(-1*time.Second))

	listing, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 3)

	assert.Equal(t, "new.jpg", listing.Entries[0].Key)
	assert.Equal(t, "mid.jpg", listing.Entries[1].Key)
	assert.Equal(t, "old.jpg", listing.Entries[2].Key)
}

func TestListFiltersToImageExtensions(t *testing.T) {
	svc, store := newTestService()
	now := time.Now()
	store.Seed("a.JPG", 1, now)
	store.Seed("b.webp", 1, now)
	store.Seed("notes.txt", 1, now)
	store.Seed("archive.tar.gz", 1, now)
	store.Seed("folder/", 0, now)
	store.Seed("noext", 1, now)

	listing, err := svc.List(context.Background(), 0)
	require.NoError(t, err)

	keys := make([]string, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{"a.JPG", "b.webp"}, keys)
}

func TestListDropsEntriesWithFailedGrants(t *testing.T) {
	svc, store := newTestService()
	now := time.Now()
	store.Seed("ok.jpg", 1, now)
	store.Seed("broken.jpg", 1, now.Add(-time.Second))
	store.PresignHook = func(key string) error {
		if key == "broken.jpg" {
			return &storage.Error{Kind: storage.KindUnknown, Summary: "presign broken.jpg: storage request failed"}
		}
		return nil
	}

	listing, err := svc.List(context.Background(), 0)
	require.NoError(t, err, "per-item grant failures must not fail the whole listing")

	require.Len(t, listing.Entries, 1)
	assert.Equal(t, "ok.jpg", listing.Entries[0].Key)
	assert.Equal(t, 1, listing.Dropped)
}

func TestListEntriesCarryGrants(t *testing.T) {
	svc, store := newTestService()
	store.Seed("a.png", 42, time.Now())

	listing, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)

	entry := listing.Entries[0]
	assert.Contains(t, entry.URL, "a.png")
	assert.Equal(t, int64(42), entry.Size)
	assert.WithinDuration(t, time.Now().Add(DefaultGrantSeconds*time.Second), entry.ExpiresAt, 2*time.Second)
}

func TestListRejectsExcessiveDuration(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.List(context.Background(), MaxGrantSeconds+1)
	require.ErrorIs(t, err, ErrInvalidDuration)
}

func TestDeleteAbsentKeySucceeds(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Delete(context.Background(), "never-existed.jpg")
	assert.NoError(t, err)
}

func TestUploadListDeleteLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Store(ctx, bytes.NewReader([]byte("cat bytes")), 9, "cat.png", "image/png")
	require.NoError(t, err)

	listing, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, result.FileName, listing.Entries[0].Key)
	assert.NotEmpty(t, listing.Entries[0].URL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), listing.Entries[0].ExpiresAt, 2*time.Second)

	require.NoError(t, svc.Delete(ctx, result.FileName))

	_, err = svc.Describe(ctx, result.FileName, 0)
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}
