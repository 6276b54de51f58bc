package gallery

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixvault/service/internal/response"
	"github.com/pixvault/service/internal/storage"
)

func newTestRouter(store storage.ObjectStore) http.Handler {
	h := NewHandler(NewService(store))

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Post("/upload", h.Upload)
	r.Route("/images", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{key}", h.Describe)
		r.Get("/{key}/url", h.GrantURL)
		r.Delete("/{key}", h.Delete)
	})
	return r
}

func multipartImage(t *testing.T, field, filename, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf, w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(storage.NewMemStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestUploadEndpoint(t *testing.T) {
	store := storage.NewMemStore()
	router := newTestRouter(store)

	body, contentType := multipartImage(t, "image", "cat.png", "image/png", []byte("png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cat.png", data["originalName"])
	assert.NotEqual(t, "cat.png", data["fileName"])
	assert.Contains(t, data["url"], data["fileName"])
	assert.Equal(t, 1, store.Len())
}

func TestUploadEndpointMissingFile(t *testing.T) {
	router := newTestRouter(storage.NewMemStore())

	body, contentType := multipartImage(t, "wrongfield", "cat.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestUploadEndpointRejectsNonImage(t *testing.T) {
	store := storage.NewMemStore()
	router := newTestRouter(store)

	body, contentType := multipartImage(t, "image", "doc.pdf", "application/pdf", []byte("%PDF-"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestListEndpoint(t *testing.T) {
	store := storage.NewMemStore()
	now := time.Now()
	store.Seed("old.jpg", 1, now.Add(-time.Minute))
	store.Seed("new.jpg", 2, now)
	store.Seed("skip.txt", 3, now)
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images?expiresIn=600", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 0, resp.Dropped)
	assert.Equal(t, 600, resp.ExpiresIn)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "new.jpg", resp.Data[0].Key)
	assert.Equal(t, "old.jpg", resp.Data[1].Key)
}

func TestListEndpointMalformedExpiresIn(t *testing.T) {
	router := newTestRouter(storage.NewMemStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images?expiresIn=soon", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDescribeEndpointNotFound(t *testing.T) {
	router := newTestRouter(storage.NewMemStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/ghost.jpg", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestGrantURLEndpoint(t *testing.T) {
	store := storage.NewMemStore()
	store.Seed("a.jpg", 10, time.Now())
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/a.jpg/url?expiresIn=120", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a.jpg", data["key"])
	assert.Contains(t, data["url"], "a.jpg")
	assert.EqualValues(t, 120, data["expiresIn"])
}

func TestGrantURLEndpointDurationTooLong(t *testing.T) {
	store := storage.NewMemStore()
	store.Seed("a.jpg", 10, time.Now())
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/a.jpg/url?expiresIn=90000", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrantURLEndpointNotFound(t *testing.T) {
	router := newTestRouter(storage.NewMemStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/nope.jpg/url", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	store := storage.NewMemStore()
	store.Seed("a.jpg", 10, time.Now())
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/images/a.jpg", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
	assert.Equal(t, 0, store.Len())
}
