package storage

import (
	"context"
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// Kind classifies a backend failure into the uniform taxonomy exposed to
// callers. Every error leaving this package carries exactly one Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAccessDenied
	KindInvalidCredentials
	KindUnavailable
)

// Error is the uniform error shape for all backend failures: a stable kind,
// a human-readable summary, and an optional provider detail string.
type Error struct {
	Kind    Kind
	Summary string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Summary
	}
	return e.Summary + ": " + e.Detail
}

// IsNotFound reports whether err indicates the object or bucket is absent.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsAccessDenied reports whether err indicates the caller lacks permission.
func IsAccessDenied(err error) bool { return kindOf(err) == KindAccessDenied }

// IsInvalidCredentials reports whether err indicates bad backend credentials.
func IsInvalidCredentials(err error) bool { return kindOf(err) == KindInvalidCredentials }

// IsUnavailable reports whether err indicates a transport-level failure.
func IsUnavailable(err error) bool { return kindOf(err) == KindUnavailable }

func kindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// translate maps a raw minio error into a *Error. The summary names the
// failed operation; the provider message is preserved as detail only.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnavailable, Summary: op + ": storage backend timed out", Detail: err.Error()}
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return &Error{Kind: KindNotFound, Summary: op + ": object not found", Detail: resp.Message}
	case "AccessDenied", "AllAccessDisabled":
		return &Error{Kind: KindAccessDenied, Summary: op + ": access denied", Detail: resp.Message}
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "CredentialsNotSupported":
		return &Error{Kind: KindInvalidCredentials, Summary: op + ": invalid storage credentials", Detail: resp.Message}
	}

	// StatObject reports absent keys via the HTTP status when no code is set.
	if resp.StatusCode == http.StatusNotFound {
		return &Error{Kind: KindNotFound, Summary: op + ": object not found", Detail: resp.Message}
	}

	// No S3 error code at all means the request never got a well-formed
	// response: connection refused, DNS failure, broken transport.
	if resp.Code == "" {
		return &Error{Kind: KindUnavailable, Summary: op + ": storage backend unavailable", Detail: err.Error()}
	}

	return &Error{Kind: KindUnknown, Summary: op + ": storage request failed", Detail: resp.Message}
}
