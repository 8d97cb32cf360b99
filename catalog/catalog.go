// Package catalog supplies the specification documents the debug client
// works from, and the server instances that can answer debug invocations.
//
// Two implementations exist:
//   - FileCatalog: one JSON or TOML document on disk plus a static instance list.
//   - EtcdCatalog: documents and instances shared through etcd, so every
//     debug client sees what servers published and which of them are alive.
package catalog

import (
	"context"
	"docs-debug/specification"
	"errors"
)

var ErrNotFound = errors.New("catalog: service not found")

// ServiceInstance is one server able to answer debug invocations.
type ServiceInstance struct {
	Addr    string `json:"addr" toml:"addr"` // origin, e.g. "http://10.0.0.5:8080"
	Weight  int    `json:"weight" toml:"weight"`
	Version string `json:"version,omitempty" toml:"version,omitempty"`
}

// Catalog is the read side used by the client.
type Catalog interface {
	Services(ctx context.Context) ([]specification.Service, error)
	Lookup(ctx context.Context, serviceName string) (*specification.Service, error)
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)
}

// Registry is the write side used by servers and tooling.
type Registry interface {
	Publish(ctx context.Context, service specification.Service) error
	Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(ctx context.Context, serviceName string, addr string) error
}
