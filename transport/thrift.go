package transport

import (
	"context"
	"docs-debug/codec"
	"docs-debug/header"
	"docs-debug/specification"
	"net/http"
	"strings"
)

const oneWayResponse = "Request sent to one-way function"

// ThriftTransport invokes framed RPC methods. Each call is posted as a TJSON
// envelope naming the method, so the server can dispatch several services
// multiplexed on one path:
//
//	{"method": "<fragment>:<name>", "type": "CALL", "args": <body>}
type ThriftTransport struct {
	base
}

func NewThriftTransport(opts ...Option) *ThriftTransport {
	return &ThriftTransport{base: base{opts: buildOptions(opts)}}
}

func (t *ThriftTransport) ServiceKind() specification.ServiceKind {
	return specification.KindThrift
}

func (t *ThriftTransport) Supports(kind specification.ServiceKind) bool {
	return kind == t.ServiceKind()
}

func (t *ThriftTransport) SupportsMimeType(kind specification.ServiceKind, mimeType string) bool {
	return t.Supports(kind) && strings.HasPrefix(mimeType, "application/x-thrift")
}

// thriftMethod qualifies the method name with the endpoint fragment, if any.
func thriftMethod(endpoint *specification.Endpoint, method *specification.Method) string {
	if endpoint.Fragment != "" {
		return endpoint.Fragment + ":" + method.Name
	}
	return method.Name
}

func (t *ThriftTransport) CurlBody(endpoint *specification.Endpoint, method *specification.Method, body string) string {
	return codec.ThriftCall(thriftMethod(endpoint, method), body)
}

func (t *ThriftTransport) Send(ctx context.Context, req *Request) (string, error) {
	return t.send(ctx, req, t.doSend)
}

func (t *ThriftTransport) doSend(ctx context.Context, req *Request, headers *header.Map) (string, error) {
	if req.Body == "" {
		return "", ErrMissingBody
	}
	if _, err := t.DebugMimeTypes(); err != nil {
		return "", err
	}
	endpoint, err := contentTypeEndpoint(req.Method, headers)
	if err != nil {
		return "", err
	}

	body := codec.ThriftCall(thriftMethod(endpoint, req.Method), req.Body)
	resp, err := t.roundTrip(ctx, http.MethodPost, endpoint.PathMapping, req, headers, body)
	if err != nil {
		return "", err
	}
	if resp.text == "" {
		return oneWayResponse, nil
	}
	return resp.text, nil
}
