// Package transport sends debug invocations of service methods over the wire
// protocol each service is exported with.
//
// Every transport follows the same send lifecycle:
//
//	Send(req)
//	  → header.Assemble   (debug marker + providers fan-out + caller headers)
//	  → doSend            (protocol specific)
//	      → resolve endpoint from the content type
//	      → build body / URI
//	      → one HTTP request
//	      → decode response into displayable text
//
// Three transports exist: ThriftTransport (framed RPC), GRPCUnframedTransport
// (unframed RPC over HTTP) and AnnotatedHTTPTransport. Transports is the
// registry that picks one for a service kind.
package transport

import (
	"context"
	"docs-debug/header"
	"docs-debug/specification"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Transport is the protocol-specific sender of debug invocations.
type Transport interface {
	// ServiceKind identifies the protocol this transport implements.
	ServiceKind() specification.ServiceKind

	// Supports reports whether kind is this transport's protocol.
	Supports(kind specification.ServiceKind) bool

	// SupportsMimeType is the mime-aware form of Supports used by
	// Transports.DebugTransportForMethod.
	SupportsMimeType(kind specification.ServiceKind, mimeType string) bool

	// SetDebugMimeTypes replaces the candidate mime types for the next send.
	SetDebugMimeTypes(mimeTypes []string)

	// DebugMimeTypes returns the candidate mime types, or ErrEmptyMimeTypes.
	DebugMimeTypes() ([]string, error)

	// CurlBody returns the body a curl reproduction of the call should post.
	CurlBody(endpoint *specification.Endpoint, method *specification.Method, body string) string

	// Send performs one debug invocation and returns the response as text.
	Send(ctx context.Context, req *Request) (string, error)
}

// Request describes one debug invocation.
type Request struct {
	Method       *specification.Method
	Headers      *header.Map // caller headers, override everything else
	Body         string      // empty means no body
	EndpointPath string      // explicit path, bypasses endpoint path mapping
	Queries      string      // query string, with or without the leading '?'
	BaseURL      string      // origin for this call; empty uses the transport default
}

// Doer is the subset of *http.Client the transports need.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type options struct {
	client        Doer
	baseURL       string
	providers     []header.Provider
	logger        *zap.Logger
	fixedMimeList bool
}

// Option configures the transports built by New.
type Option func(*options)

// WithHTTPClient sets the client every transport sends with.
func WithHTTPClient(c Doer) Option {
	return func(o *options) { o.client = c }
}

// WithBaseURL sets the default origin relative endpoint paths resolve against.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithHeaderProviders sets the providers consulted on every send, in order.
func WithHeaderProviders(p ...header.Provider) Option {
	return func(o *options) { o.providers = append(o.providers, p...) }
}

// WithLogger sets the logger for outbound request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFixedAnnotatedMimeTypes switches the annotated HTTP transport to the
// fixed candidate list used by older debug UIs.
func WithFixedAnnotatedMimeTypes() Option {
	return func(o *options) { o.fixedMimeList = true }
}

func buildOptions(opts []Option) *options {
	o := &options{
		client: http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// sendFunc is the protocol-specific half of a send.
type sendFunc func(ctx context.Context, req *Request, headers *header.Map) (string, error)

// base carries what every transport shares: the mime-type state, the header
// pipeline and the HTTP plumbing. Concrete transports embed it.
//
// mimeTypes is set by the caller before each send and read during it; the
// lock only keeps the slice itself consistent, callers must not interleave
// invocations on one transport.
type base struct {
	mu        sync.RWMutex
	mimeTypes []string
	opts      *options
}

func (b *base) SetDebugMimeTypes(mimeTypes []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mimeTypes = append([]string(nil), mimeTypes...)
}

func (b *base) DebugMimeTypes() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.mimeTypes) == 0 {
		return nil, ErrEmptyMimeTypes
	}
	return append([]string(nil), b.mimeTypes...), nil
}

// CurlBody is the identity; framed transports override it.
func (b *base) CurlBody(_ *specification.Endpoint, _ *specification.Method, body string) string {
	return body
}

// send assembles the effective headers and hands over to the protocol.
func (b *base) send(ctx context.Context, req *Request, do sendFunc) (string, error) {
	if req == nil || req.Method == nil {
		return "", fmt.Errorf("transport: request without method")
	}
	headers, err := header.Assemble(ctx, b.opts.providers, req.Headers)
	if err != nil {
		return "", err
	}
	return do(ctx, req, headers)
}

// response is the part of an HTTP response a transport decodes.
type response struct {
	contentType string
	text        string
}

// roundTrip issues the single network request of a send and reads the body.
// target is an already encoded URI reference.
func (b *base) roundTrip(ctx context.Context, verb, target string, req *Request, headers *header.Map, body string) (*response, error) {
	u, err := b.resolve(req.BaseURL, target)
	if err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, verb, u, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	headers.ToHTTP(httpReq.Header)

	b.opts.logger.Debug("sending debug request",
		zap.String("method", verb),
		zap.String("url", u),
		zap.Strings("headers", headers.Keys()),
		zap.Int("bodyLen", len(body)))

	resp, err := b.opts.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &response{
		contentType: resp.Header.Get("Content-Type"),
		text:        string(data),
	}, nil
}

// resolve joins target onto the per-call origin or the default one.
func (b *base) resolve(origin, target string) (string, error) {
	if origin == "" {
		origin = b.opts.baseURL
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid request URI %q: %w", target, err)
	}
	if origin == "" {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", origin, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// FindDebugMimeTypeEndpoint returns the first endpoint, in declaration order,
// that accepts contentType.
func FindDebugMimeTypeEndpoint(method *specification.Method, contentType string) (*specification.Endpoint, error) {
	if contentType == "" {
		return nil, fmt.Errorf("%w: content type is empty", ErrNoMatchingEndpoint)
	}
	for i := range method.Endpoints {
		if method.Endpoints[i].Accepts(contentType) {
			return &method.Endpoints[i], nil
		}
	}
	return nil, fmt.Errorf("%w: mime type %q", ErrNoMatchingEndpoint, contentType)
}

// contentTypeEndpoint resolves the endpoint from the merged content-type header.
func contentTypeEndpoint(method *specification.Method, headers *header.Map) (*specification.Endpoint, error) {
	contentType, _ := headers.Get("content-type")
	return FindDebugMimeTypeEndpoint(method, contentType)
}
