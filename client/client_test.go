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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const grpcJSON = "application/json; charset=utf-8; protocol=gRPC"

type recorded struct {
	method      string
	uri         string
	contentType string
	body        string
}

// recorder is a fake server answering every request with a fixed response.
type recorder struct {
	mu       sync.Mutex
	requests []recorded
	srv      *httptest.Server
}

func newRecorder(t *testing.T, contentType, reply string) *recorder {
	t.Helper()
	r := &recorder{}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.requests = append(r.requests, recorded{
			method:      req.Method,
			uri:         req.URL.RequestURI(),
			contentType: req.Header.Get("Content-Type"),
			body:        string(body),
		})
		r.mu.Unlock()
		w.Header().Set("Content-Type", contentType)
		io.WriteString(w, reply)
	}))
	t.Cleanup(r.srv.Close)
	return r
}

func (r *recorder) last(t *testing.T) recorded {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("server received no request")
	}
	return r.requests[len(r.requests)-1]
}

func testSpecification() *specification.Specification {
	return &specification.Specification{Services: []specification.Service{
		{
			Name: "HelloService",
			Kind: specification.KindGRPC,
			Methods: []specification.Method{{
				Name: "Hello",
				Endpoints: []specification.Endpoint{{
					PathMapping:        "/armeria.grpc.HelloService/Hello",
					AvailableMimeTypes: []string{grpcJSON},
				}},
			}},
		},
		{
			Name: "ThriftHello",
			Kind: specification.KindThrift,
			Methods: []specification.Method{{
				Name: "hello",
				Endpoints: []specification.Endpoint{{
					PathMapping:        "/thrift",
					Fragment:           "v1",
					AvailableMimeTypes: []string{"application/x-thrift; protocol=TTEXT"},
				}},
			}},
		},
		{
			Name: "UserService",
			Kind: specification.KindAnnotatedHTTP,
			Methods: []specification.Method{{
				Name:       "getUser",
				HTTPMethod: http.MethodGet,
				Endpoints: []specification.Endpoint{{
					PathMapping:        "exact:/users/me",
					AvailableMimeTypes: []string{"application/json; charset=utf-8"},
				}},
			}},
		},
	}}
}

func newTestClient(t *testing.T, instances []catalog.ServiceInstance, opts ...Option) *Client {
	t.Helper()
	cat := catalog.NewStaticCatalog(testSpecification(), instances)
	return NewClient(cat, &loadbalance.RoundRobinBalancer{}, transport.New(), opts...)
}

func TestInvokeGRPC(t *testing.T) {
	srv := newRecorder(t, "application/json", `{"message":"hi"}`)
	c := newTestClient(t, []catalog.ServiceInstance{{Addr: srv.srv.URL, Weight: 1}})

	got, err := c.Invoke(context.Background(), &Invocation{
		Service: "HelloService",
		Method:  "Hello",
		Body:    `{"name":"armeria"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"message\": \"hi\"\n}"; got != want {
		t.Errorf("Invoke = %q, want %q", got, want)
	}

	want := recorded{
		method:      http.MethodPost,
		uri:         "/armeria.grpc.HelloService/Hello",
		contentType: grpcJSON,
		body:        `{"name":"armeria"}`,
	}
	if diff := cmp.Diff(want, srv.last(t), cmp.AllowUnexported(recorded{})); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeAnnotatedFallsBackToBaseURL(t *testing.T) {
	srv := newRecorder(t, "text/plain", "")
	cat := catalog.NewStaticCatalog(testSpecification(), nil)
	c := NewClient(cat, &loadbalance.RoundRobinBalancer{}, transport.New(transport.WithBaseURL(srv.srv.URL)))

	got, err := c.Invoke(context.Background(), &Invocation{
		Service: "UserService",
		Method:  "getUser",
		Queries: "verbose=true",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "&lt;zero-length response&gt;" {
		t.Errorf("expect zero-length placeholder, got %q", got)
	}
	req := srv.last(t)
	if req.method != http.MethodGet || req.uri != "/users/me?verbose=true" {
		t.Errorf("unexpected request %s %s", req.method, req.uri)
	}
}

func TestInvokeSpreadsAcrossInstances(t *testing.T) {
	a := newRecorder(t, "text/plain", "a")
	b := newRecorder(t, "text/plain", "b")
	c := newTestClient(t, []catalog.ServiceInstance{{Addr: a.srv.URL}, {Addr: b.srv.URL}})

	var got []string
	for range 4 {
		resp, err := c.Invoke(context.Background(), &Invocation{
			Service: "ThriftHello",
			Method:  "hello",
			Body:    `{"name":"x"}`,
		})
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, resp)
	}
	if diff := cmp.Diff([]string{"a", "b", "a", "b"}, got); diff != "" {
		t.Errorf("round robin mismatch (-want +got):\n%s", diff)
	}
	if body := a.last(t).body; body != `{"method": "v1:hello", "type": "CALL", "args": {"name":"x"}}` {
		t.Errorf("unexpected thrift body %s", body)
	}
}

func TestInvokeRunsMiddlewares(t *testing.T) {
	srv := newRecorder(t, "text/plain", "ok")
	var seen []string
	tag := func(name string) middleware.Middleware {
		return func(next middleware.HandlerFunc) middleware.HandlerFunc {
			return func(ctx context.Context, req *transport.Request) (string, error) {
				seen = append(seen, name)
				return next(ctx, req)
			}
		}
	}
	c := newTestClient(t, []catalog.ServiceInstance{{Addr: srv.srv.URL}},
		WithMiddlewares(tag("outer"), tag("inner")))

	if _, err := c.Invoke(context.Background(), &Invocation{Service: "HelloService", Method: "Hello", Body: "{}"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"outer", "inner"}, seen); diff != "" {
		t.Errorf("middleware order mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeErrors(t *testing.T) {
	c := newTestClient(t, nil)
	ctx := context.Background()

	if _, err := c.Invoke(ctx, &Invocation{Service: "Nope", Method: "x"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expect ErrNotFound, got %v", err)
	}
	if _, err := c.Invoke(ctx, &Invocation{Service: "HelloService", Method: "Bye"}); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expect ErrUnknownMethod, got %v", err)
	}
	if _, err := c.Invoke(ctx, &Invocation{Service: "HelloService", Method: "Hello"}); !errors.Is(err, transport.ErrMissingBody) {
		t.Errorf("expect ErrMissingBody, got %v", err)
	}
	_, err := c.Invoke(ctx, &Invocation{
		Service: "HelloService",
		Method:  "Hello",
		Body:    "{}",
		Headers: header.FromPairs("content-type", "application/protobuf"),
	})
	if !errors.Is(err, transport.ErrNoMatchingEndpoint) {
		t.Errorf("expect ErrNoMatchingEndpoint, got %v", err)
	}
}

func TestCurl(t *testing.T) {
	c := newTestClient(t, []catalog.ServiceInstance{{Addr: "http://10.0.0.1:8080"}})

	got, err := c.Curl(context.Background(), &Invocation{
		Service: "ThriftHello",
		Method:  "hello",
		Body:    `{"name":"it's me"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `curl -XPOST -H 'content-type: application/x-thrift; protocol=TTEXT' 'http://10.0.0.1:8080/thrift'` +
		` -d '{"method": "v1:hello", "type": "CALL", "args": {"name":"it'\''s me"}}'`
	if got != want {
		t.Errorf("Curl =\n%s\nwant\n%s", got, want)
	}
}

func TestCurlAnnotatedFixedMode(t *testing.T) {
	cat := catalog.NewStaticCatalog(testSpecification(), nil)
	c := NewClient(cat, &loadbalance.RoundRobinBalancer{},
		transport.New(transport.WithFixedAnnotatedMimeTypes()),
		WithBaseURL("http://docs.local"))

	got, err := c.Curl(context.Background(), &Invocation{
		Service:      "UserService",
		Method:       "getUser",
		EndpointPath: "/users/a b",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "curl -XGET -H 'content-type: application/json; charset=utf-8' 'http://docs.local/users/a%20b'") {
		t.Errorf("unexpected curl command %s", got)
	}
}
