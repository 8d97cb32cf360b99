package transport

import "errors"

var (
	// ErrEmptyMimeTypes is returned when a send needs debug mime types and none were set.
	ErrEmptyMimeTypes = errors.New("debug mime types are not set")
	// ErrMissingContentType is returned when the annotated transport gets no content-type header.
	ErrMissingContentType = errors.New("content-type header is required")
	// ErrNoMatchingEndpoint is returned when no endpoint accepts the requested content type.
	ErrNoMatchingEndpoint = errors.New("endpoint does not support debug transport")
	// ErrMissingBody is returned when an RPC transport is asked to send without a body.
	ErrMissingBody = errors.New("request must have a body")
)
