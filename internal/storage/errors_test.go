package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateNil(t *testing.T) {
	assert.NoError(t, translate("stat x", nil))
}

func TestTranslateTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}, KindNotFound},
		{"no such bucket", minio.ErrorResponse{Code: "NoSuchBucket"}, KindNotFound},
		{"head 404 without code", minio.ErrorResponse{StatusCode: http.StatusNotFound}, KindNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, KindAccessDenied},
		{"bad access key", minio.ErrorResponse{Code: "InvalidAccessKeyId"}, KindInvalidCredentials},
		{"bad signature", minio.ErrorResponse{Code: "SignatureDoesNotMatch"}, KindInvalidCredentials},
		{"transport failure", errors.New("dial tcp 127.0.0.1:9000: connect: connection refused"), KindUnavailable},
		{"deadline", context.DeadlineExceeded, KindUnavailable},
		{"wrapped deadline", fmt.Errorf("round trip: %w", context.DeadlineExceeded), KindUnavailable},
		{"other s3 code", minio.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate("op", tt.err)
			require.Error(t, err)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			assert.NotEmpty(t, se.Summary)
		})
	}
}

func TestErrorStringIncludesDetail(t *testing.T) {
	err := &Error{Kind: KindNotFound, Summary: "stat a.jpg: object not found", Detail: "The specified key does not exist."}
	assert.Equal(t, "stat a.jpg: object not found: The specified key does not exist.", err.Error())

	bare := &Error{Kind: KindUnavailable, Summary: "ping: storage backend unavailable"}
	assert.Equal(t, "ping: storage backend unavailable", bare.Error())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsNotFound(&Error{Kind: KindNotFound}))
	assert.True(t, IsAccessDenied(&Error{Kind: KindAccessDenied}))
	assert.True(t, IsInvalidCredentials(&Error{Kind: KindInvalidCredentials}))
	assert.True(t, IsUnavailable(&Error{Kind: KindUnavailable}))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
