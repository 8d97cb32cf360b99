// Package client runs debug invocations against the services of a catalog.
package client

import (
	"context"
	"docs-debug/catalog"
	"docs-debug/header"
	"docs-debug/loadbalance"
	"docs-debug/middleware"
	"docs-debug/specification"
	"docs-debug/transport"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownMethod = errors.New("client: unknown method")
	ErrNoTransport   = errors.New("client: no transport for service kind")
)

// Invocation is one debug call as a user describes it.
type Invocation struct {
	Service      string
	Method       string
	MimeTypes    []string // empty uses every mime type the method's endpoints accept
	Headers      *header.Map
	Body         string
	EndpointPath string
	Queries      string
}

type Client struct {
	catalog     catalog.Catalog
	balancer    loadbalance.Balancer
	transports  *transport.Transports
	middlewares []middleware.Middleware
	baseURL     string
	logger      *zap.Logger

	// a transport's mime-type state is set then read by one send, so sends on
	// the same transport are serialized
	sendMu map[specification.ServiceKind]*sync.Mutex
}

type Option func(*Client)

func WithMiddlewares(m ...middleware.Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, m...) }
}

// WithBaseURL sets the origin used when the catalog lists no instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cat catalog.Catalog, bal loadbalance.Balancer, transports *transport.Transports, opts ...Option) *Client {
	c := &Client{
		catalog:    cat,
		balancer:   bal,
		transports: transports,
		logger:     zap.NewNop(),
		sendMu: map[specification.ServiceKind]*sync.Mutex{
			specification.KindThrift:        {},
			specification.KindGRPC:          {},
			specification.KindAnnotatedHTTP: {},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// target is everything resolved for an invocation before anything is sent.
type target struct {
	service   *specification.Service
	method    *specification.Method
	transport transport.Transport
	mimeTypes []string
	headers   *header.Map
	origin    string
}

func (c *Client) resolve(ctx context.Context, inv *Invocation) (*target, error) {
	svc, err := c.catalog.Lookup(ctx, inv.Service)
	if err != nil {
		return nil, err
	}
	method, ok := svc.Method(inv.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, inv.Service, inv.Method)
	}
	tr, ok := c.transports.DebugTransport(svc.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoTransport, svc.Kind)
	}

	mimeTypes := inv.MimeTypes
	if len(mimeTypes) == 0 {
		mimeTypes = method.MimeTypes()
	}

	// Without an explicit content type the first candidate is used. The
	// fixed-list annotated mode picks its own.
	headers := inv.Headers.Clone()
	if !headers.Has("content-type") && len(mimeTypes) > 0 && !c.fixedAnnotated(svc.Kind) {
		headers.Set("content-type", mimeTypes[0])
	}

	origin, err := c.pickOrigin(ctx, svc.Name+"."+method.Name)
	if err != nil {
		return nil, err
	}
	return &target{
		service:   svc,
		method:    method,
		transport: tr,
		mimeTypes: mimeTypes,
		headers:   headers,
		origin:    origin,
	}, nil
}

func (c *Client) fixedAnnotated(kind specification.ServiceKind) bool {
	return kind == specification.KindAnnotatedHTTP && c.transports.AnnotatedHTTP.Fixed()
}

// pickOrigin returns the origin of the chosen instance, or "" to fall back
// to the configured base URL.
func (c *Client) pickOrigin(ctx context.Context, key string) (string, error) {
	serviceName, _, _ := strings.Cut(key, ".")
	instances, err := c.catalog.Discover(ctx, serviceName)
	if err != nil {
		return "", err
	}
	if len(instances) == 0 {
		return "", nil
	}
	instance, err := c.balancer.Pick(key, instances)
	if err != nil {
		return "", err
	}
	c.logger.Debug("picked instance",
		zap.String("key", key),
		zap.String("addr", instance.Addr),
		zap.String("balancer", c.balancer.Name()))
	return instance.Addr, nil
}

// Invoke sends inv and returns the displayable response text.
func (c *Client) Invoke(ctx context.Context, inv *Invocation) (string, error) {
	t, err := c.resolve(ctx, inv)
	if err != nil {
		return "", err
	}

	req := &transport.Request{
		Method:       t.method,
		Headers:      t.headers,
		Body:         inv.Body,
		EndpointPath: inv.EndpointPath,
		Queries:      inv.Queries,
		BaseURL:      t.origin,
	}

	mu := c.sendMu[t.service.Kind]
	mu.Lock()
	defer mu.Unlock()

	t.transport.SetDebugMimeTypes(t.mimeTypes)
	handler := middleware.Chain(c.middlewares...)(t.transport.Send)
	return handler(ctx, req)
}

// Curl renders inv as a copy-pasteable curl command. Only the caller's
// headers are shown, header providers are not consulted.
func (c *Client) Curl(ctx context.Context, inv *Invocation) (string, error) {
	t, err := c.resolve(ctx, inv)
	if err != nil {
		return "", err
	}

	contentType, _ := t.headers.Get("content-type")
	var endpoint *specification.Endpoint
	switch {
	case contentType == "" && c.fixedAnnotated(t.service.Kind):
		endpoint, err = c.fixedEndpoint(t.method)
		if err == nil {
			contentType = endpoint.AvailableMimeTypes[0]
			t.headers.Set("content-type", contentType)
		}
	case contentType == "":
		err = transport.ErrMissingContentType
	default:
		endpoint, err = transport.FindDebugMimeTypeEndpoint(t.method, contentType)
	}
	if err != nil {
		return "", err
	}

	verb := http.MethodPost
	path := endpoint.PathMapping
	if t.service.Kind == specification.KindAnnotatedHTTP {
		verb = t.method.HTTPMethod
		if verb == "" {
			verb = http.MethodGet
		}
		path = transport.RequestURI(endpoint, inv.EndpointPath, inv.Queries)
	}

	origin := t.origin
	if origin == "" {
		origin = c.baseURL
	}
	u, err := joinURL(origin, path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("curl -X" + verb)
	t.headers.Each(func(k, v string) {
		sb.WriteString(" -H " + shellQuote(k+": "+v))
	})
	sb.WriteString(" " + shellQuote(u))
	if inv.Body != "" {
		sb.WriteString(" -d " + shellQuote(t.transport.CurlBody(endpoint, t.method, inv.Body)))
	}
	return sb.String(), nil
}

// fixedEndpoint resolves the endpoint the way the fixed-list annotated mode does.
func (c *Client) fixedEndpoint(method *specification.Method) (*specification.Endpoint, error) {
	for _, mimeType := range transport.AnnotatedHTTPMimeTypes {
		if endpoint, err := transport.FindDebugMimeTypeEndpoint(method, mimeType); err == nil {
			return endpoint, nil
		}
	}
	return nil, fmt.Errorf("%w: method %s", transport.ErrNoMatchingEndpoint, method.Name)
}

func joinURL(origin, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if origin == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
