// Package fault is the single error vocabulary of the service. Every facade
// operation returns either a payload or exactly one *Error; the HTTP layer
// maps the kind to a status code and writes the message as plain text.
package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	minio "github.com/minio/minio-go/v7"
	"google.golang.org/api/googleapi"
)

type Kind int

const (
	Internal Kind = iota // anything unanticipated
	BadRequest           // malformed or missing caller input
	NotFound             // referenced resource absent (or empty result treated as absent)
	Conflict             // resource already exists upstream
	Forbidden            // vendor denied access; passed through
	Upstream             // the external service itself reported a failure
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Upstream:
		return "upstream"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) *Error { return New(BadRequest, format, args...) }
func NotFoundf(format string, args ...any) *Error   { return New(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error   { return New(Conflict, format, args...) }
func Upstreamf(format string, args ...any) *Error   { return New(Upstream, format, args...) }
func Internalf(format string, args ...any) *Error   { return New(Internal, format, args...) }

// KindOf reports the kind of err; non-fault errors count as Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// Wrapf keeps the kind of err but prefixes its message, so facades can
// substitute their own operation context without losing the classification.
func Wrapf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindOf(err), Message: fmt.Sprintf(format, args...) + ": " + err.Error()}
}

// Status maps an error to the HTTP status written at the boundary.
func Status(err error) int {
	switch KindOf(err) {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	default:
		// Upstream failures are surfaced as internal errors, matching the
		// plain 500 contract; no retry, no masking of the vendor message.
		return http.StatusInternalServerError
	}
}

// FromObjectStore classifies a minio-go error into the taxonomy.
func FromObjectStore(err error, op string) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code != "" {
		switch {
		case resp.Code == "NoSuchBucket" || resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
			return NotFoundf("%s: %s", op, resp.Message)
		case resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" || resp.StatusCode == http.StatusConflict:
			return Conflictf("%s: %s", op, resp.Message)
		case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
			return New(Forbidden, "%s: %s", op, resp.Message)
		}
		return Upstreamf("%s: %s", op, resp.Message)
	}
	return Upstreamf("%s: %v", op, err)
}

// FromWarehouse classifies a BigQuery client error into the taxonomy.
func FromWarehouse(err error, op string) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		switch ge.Code {
		case http.StatusNotFound:
			return NotFoundf("%s: %s", op, ge.Message)
		case http.StatusConflict:
			return Conflictf("%s: %s", op, ge.Message)
		case http.StatusForbidden:
			return New(Forbidden, "%s: %s", op, ge.Message)
		case http.StatusBadRequest:
			return BadRequestf("%s: %s", op, ge.Message)
		}
		return Upstreamf("%s: %s", op, ge.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Upstreamf("%s: timed out waiting for the warehouse", op)
	}
	return Upstreamf("%s: %v", op, err)
}
