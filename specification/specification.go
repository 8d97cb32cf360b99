// Package specification defines the read-only service description the debug
// transports work from.
//
// A Specification lists services; each service is served over one protocol
// (its ServiceKind) and exposes methods. A method is reachable through one or
// more endpoints, and each endpoint advertises the mime types it accepts:
//
//	Service "HelloService" (THRIFT)
//	  └─ Method "hello"
//	       ├─ Endpoint /thrift    fragment="" mimeTypes=[application/x-thrift; protocol=TJSON]
//	       └─ Endpoint /thrift/v2 fragment="hello2" mimeTypes=[...]
package specification

import (
	"fmt"
	"strings"
)

// ExactPrefix marks a path mapping that matches one literal path.
const ExactPrefix = "exact:"

// ServiceKind identifies the wire protocol a service is exported with.
type ServiceKind int

const (
	KindUnknown       ServiceKind = iota
	KindThrift                    // framed RPC, every call wrapped in a method/type/args envelope
	KindGRPC                      // unframed RPC carried directly as an HTTP POST body
	KindAnnotatedHTTP             // REST-style mapping derived from method annotations
)

func (k ServiceKind) String() string {
	switch k {
	case KindThrift:
		return "THRIFT"
	case KindGRPC:
		return "GRPC"
	case KindAnnotatedHTTP:
		return "HTTP"
	default:
		return "UNKNOWN"
	}
}

// ParseServiceKind accepts both the short names and the long protocol names.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "THRIFT", "FRAMED_RPC":
		return KindThrift, nil
	case "GRPC", "UNFRAMED_RPC_HTTP":
		return KindGRPC, nil
	case "HTTP", "ANNOTATED", "ANNOTATED_HTTP":
		return KindAnnotatedHTTP, nil
	}
	return KindUnknown, fmt.Errorf("unknown service kind: %q", s)
}

func (k ServiceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ServiceKind) UnmarshalText(text []byte) error {
	kind, err := ParseServiceKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Endpoint is one place a method can be invoked at.
type Endpoint struct {
	PathMapping        string   `json:"pathMapping" toml:"path_mapping"`             // e.g. "exact:/api/hello"
	Fragment           string   `json:"fragment,omitempty" toml:"fragment,omitempty"` // qualifies thrift method names
	AvailableMimeTypes []string `json:"availableMimeTypes" toml:"available_mime_types"`
}

// Path returns the path mapping without the exact marker.
func (e *Endpoint) Path() string {
	return strings.TrimPrefix(e.PathMapping, ExactPrefix)
}

// Accepts reports whether the endpoint lists mimeType.
func (e *Endpoint) Accepts(mimeType string) bool {
	for _, m := range e.AvailableMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// Method is a single invokable operation of a service.
type Method struct {
	Name       string     `json:"name" toml:"name"`
	HTTPMethod string     `json:"httpMethod,omitempty" toml:"http_method,omitempty"`
	Endpoints  []Endpoint `json:"endpoints" toml:"endpoints"`
}

// MimeTypes returns every mime type offered by the method's endpoints,
// deduplicated, in declaration order.
func (m *Method) MimeTypes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ep := range m.Endpoints {
		for _, mt := range ep.AvailableMimeTypes {
			if _, ok := seen[mt]; ok {
				continue
			}
			seen[mt] = struct{}{}
			out = append(out, mt)
		}
	}
	return out
}

// Service groups the methods exported over one protocol.
type Service struct {
	Name    string      `json:"name" toml:"name"`
	Kind    ServiceKind `json:"kind" toml:"kind"`
	Methods []Method    `json:"methods" toml:"methods"`
}

// Method looks up a method by name.
func (s *Service) Method(name string) (*Method, bool) {
	for i := range s.Methods {
		if s.Methods[i].Name == name {
			return &s.Methods[i], true
		}
	}
	return nil, false
}

// Specification is the document describing every debuggable service.
type Specification struct {
	Services []Service `json:"services" toml:"services"`
}

// Service looks up a service by name.
func (s *Specification) Service(name string) (*Service, bool) {
	for i := range s.Services {
		if s.Services[i].Name == name {
			return &s.Services[i], true
		}
	}
	return nil, false
}
