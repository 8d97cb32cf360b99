package transport

import (
	"context"
	"docs-debug/codec"
	"docs-debug/header"
	"docs-debug/specification"
	"net/http"
	"slices"
	"strings"
)

// GRPCUnframedMimeTypes are the JSON flavours a gRPC service accepts without
// length-prefixed framing.
var GRPCUnframedMimeTypes = []string{
	"application/json; charset=utf-8; protocol=gRPC",
	"application/grpc+json",
}

// GRPCUnframedTransport posts the caller's JSON body as-is to a gRPC method
// path and pretty prints JSON replies.
type GRPCUnframedTransport struct {
	base
}

func NewGRPCUnframedTransport(opts ...Option) *GRPCUnframedTransport {
	return &GRPCUnframedTransport{base: base{opts: buildOptions(opts)}}
}

func (t *GRPCUnframedTransport) ServiceKind() specification.ServiceKind {
	return specification.KindGRPC
}

func (t *GRPCUnframedTransport) Supports(kind specification.ServiceKind) bool {
	return kind == t.ServiceKind()
}

func (t *GRPCUnframedTransport) SupportsMimeType(kind specification.ServiceKind, mimeType string) bool {
	return t.Supports(kind) && slices.Contains(GRPCUnframedMimeTypes, mimeType)
}

func (t *GRPCUnframedTransport) Send(ctx context.Context, req *Request) (string, error) {
	return t.send(ctx, req, t.doSend)
}

func (t *GRPCUnframedTransport) doSend(ctx context.Context, req *Request, headers *header.Map) (string, error) {
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

	resp, err := t.roundTrip(ctx, http.MethodPost, endpoint.PathMapping, req, headers, req.Body)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(resp.contentType, "application/json") {
		return codec.PrettyJSON(resp.text), nil
	}
	return resp.text, nil
}
