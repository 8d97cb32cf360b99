package transport

import (
	"docs-debug/specification"
)

// Transports holds one instance of every transport, built once at startup.
type Transports struct {
	Thrift        *ThriftTransport
	GRPC          *GRPCUnframedTransport
	AnnotatedHTTP *AnnotatedHTTPTransport

	ordered []Transport // probe order: thrift, gRPC, annotated HTTP
}

// New builds the three transports with the same options.
func New(opts ...Option) *Transports {
	t := &Transports{
		Thrift:        NewThriftTransport(opts...),
		GRPC:          NewGRPCUnframedTransport(opts...),
		AnnotatedHTTP: NewAnnotatedHTTPTransport(opts...),
	}
	t.ordered = []Transport{t.Thrift, t.GRPC, t.AnnotatedHTTP}
	return t
}

// DebugTransport returns the transport implementing kind.
func (t *Transports) DebugTransport(kind specification.ServiceKind) (Transport, bool) {
	for _, tr := range t.ordered {
		if tr.Supports(kind) {
			return tr, true
		}
	}
	return nil, false
}

// DebugTransportForMethod is the selection used by older debug UIs: the
// method's endpoint mime types are pooled and each is offered, in order, to
// the transports' mime-aware support check.
func (t *Transports) DebugTransportForMethod(kind specification.ServiceKind, method *specification.Method) (Transport, bool) {
	for _, mimeType := range method.MimeTypes() {
		for _, tr := range t.ordered {
			if tr.SupportsMimeType(kind, mimeType) {
				return tr, true
			}
		}
	}
	return nil, false
}
