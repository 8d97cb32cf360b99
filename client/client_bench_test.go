package client

import (
	"context"
	"docs-debug/catalog"
	"docs-debug/codec"
	"docs-debug/loadbalance"
	"docs-debug/specification"
	"docs-debug/transport"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func setupBenchClient(b *testing.B) *Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"hi","count":3}`)
	}))
	b.Cleanup(srv.Close)

	cat := catalog.NewStaticCatalog(testSpecification(), []catalog.ServiceInstance{{Addr: srv.URL}})
	return NewClient(cat, &loadbalance.RoundRobinBalancer{}, transport.New())
}

// Serial invocations from one goroutine.
func BenchmarkSerialInvoke(b *testing.B) {
	c := setupBenchClient(b)
	inv := &Invocation{Service: "HelloService", Method: "Hello", Body: `{"name":"a"}`}
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := c.Invoke(ctx, inv); err != nil {
			b.Fatal(err)
		}
	}
}

// Concurrent invocations of the same transport, which the client serializes.
func BenchmarkConcurrentInvoke(b *testing.B) {
	c := setupBenchClient(b)
	ctx := context.Background()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		inv := &Invocation{Service: "HelloService", Method: "Hello", Body: `{"name":"a"}`}
		for pb.Next() {
			if _, err := c.Invoke(ctx, inv); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// Specification document decoding, no network.
func BenchmarkDecodeSpecification(b *testing.B) {
	for name, ct := range map[string]codec.CodecType{"json": codec.CodecTypeJSON, "toml": codec.CodecTypeTOML} {
		cdc := codec.GetCodec(ct)
		data, err := cdc.Encode(testSpecification())
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var out specification.Specification
				if err := cdc.Decode(data, &out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
