package transport

import (
	"context"
	"docs-debug/header"
	"docs-debug/specification"
	"fmt"
	"net/http"
	"slices"
)

// AnnotatedHTTPMimeTypes are the candidates of the fixed-list mode, in
// preference order. The first one is the default debug content type.
var AnnotatedHTTPMimeTypes = []string{
	"application/json; charset=utf-8",
	"application/x-www-form-urlencoded",
}

const zeroLengthResponse = "&lt;zero-length response&gt;"

// AnnotatedHTTPTransport invokes REST-style annotated service methods with
// the method's own HTTP verb.
//
// By default it works in explicit-state mode: the caller sets the debug mime
// types and a content-type header, and the endpoint is the one accepting that
// content type. WithFixedAnnotatedMimeTypes switches to the fixed-list mode
// of older debug UIs, which ignores the mime-type state and fills in the
// content type from the resolved endpoint.
type AnnotatedHTTPTransport struct {
	base
	fixed bool
}

func NewAnnotatedHTTPTransport(opts ...Option) *AnnotatedHTTPTransport {
	o := buildOptions(opts)
	return &AnnotatedHTTPTransport{base: base{opts: o}, fixed: o.fixedMimeList}
}

func (t *AnnotatedHTTPTransport) ServiceKind() specification.ServiceKind {
	return specification.KindAnnotatedHTTP
}

func (t *AnnotatedHTTPTransport) Supports(kind specification.ServiceKind) bool {
	return kind == t.ServiceKind()
}

func (t *AnnotatedHTTPTransport) SupportsMimeType(kind specification.ServiceKind, mimeType string) bool {
	return t.Supports(kind) && slices.Contains(AnnotatedHTTPMimeTypes, mimeType)
}

// DebugMimeTypes falls back to the fixed list in fixed-list mode.
func (t *AnnotatedHTTPTransport) DebugMimeTypes() ([]string, error) {
	mimeTypes, err := t.base.DebugMimeTypes()
	if err != nil && t.fixed {
		return slices.Clone(AnnotatedHTTPMimeTypes), nil
	}
	return mimeTypes, err
}

// Fixed reports whether the transport runs in fixed-list mode.
func (t *AnnotatedHTTPTransport) Fixed() bool {
	return t.fixed
}

// DefaultDebugMimeType is the content type a UI should preselect.
func (t *AnnotatedHTTPTransport) DefaultDebugMimeType() string {
	return AnnotatedHTTPMimeTypes[0]
}

func (t *AnnotatedHTTPTransport) Send(ctx context.Context, req *Request) (string, error) {
	return t.send(ctx, req, t.doSend)
}

func (t *AnnotatedHTTPTransport) doSend(ctx context.Context, req *Request, headers *header.Map) (string, error) {
	endpoint, err := t.resolveEndpoint(req.Method, headers)
	if err != nil {
		return "", err
	}

	verb := req.Method.HTTPMethod
	if verb == "" {
		verb = http.MethodGet
	}
	target := RequestURI(endpoint, req.EndpointPath, req.Queries)

	resp, err := t.roundTrip(ctx, verb, target, req, headers, req.Body)
	if err != nil {
		return "", err
	}
	if resp.text == "" {
		return zeroLengthResponse, nil
	}
	return resp.text, nil
}

func (t *AnnotatedHTTPTransport) resolveEndpoint(method *specification.Method, headers *header.Map) (*specification.Endpoint, error) {
	if t.fixed {
		for _, mimeType := range AnnotatedHTTPMimeTypes {
			endpoint, err := FindDebugMimeTypeEndpoint(method, mimeType)
			if err != nil {
				continue
			}
			if !headers.Has("content-type") {
				headers.Set("content-type", endpoint.AvailableMimeTypes[0])
			}
			return endpoint, nil
		}
		return nil, fmt.Errorf("%w: method %s offers none of %v", ErrNoMatchingEndpoint, method.Name, AnnotatedHTTPMimeTypes)
	}

	if _, err := t.DebugMimeTypes(); err != nil {
		return nil, err
	}
	contentType, _ := headers.Get("content-type")
	if contentType == "" {
		return nil, ErrMissingContentType
	}
	return FindDebugMimeTypeEndpoint(method, contentType)
}
