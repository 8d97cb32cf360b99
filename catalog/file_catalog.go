package catalog

import (
	"context"
	"docs-debug/codec"
	"docs-debug/specification"
	"fmt"
	"os"
)

// FileCatalog serves a specification loaded once at startup.
// Every service is reachable through the same instance list.
type FileCatalog struct {
	spec      *specification.Specification
	instances []ServiceInstance
}

// NewStaticCatalog wraps an in-memory specification.
func NewStaticCatalog(spec *specification.Specification, instances []ServiceInstance) *FileCatalog {
	return &FileCatalog{spec: spec, instances: instances}
}

// LoadFile reads a .json or .toml specification document.
func LoadFile(path string, instances []ServiceInstance) (*FileCatalog, error) {
	cdc, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec specification.Specification
	if err := cdc.Decode(data, &spec); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return NewStaticCatalog(&spec, instances), nil
}

func (c *FileCatalog) Services(ctx context.Context) ([]specification.Service, error) {
	return c.spec.Services, nil
}

func (c *FileCatalog) Lookup(ctx context.Context, serviceName string) (*specification.Service, error) {
	svc, ok := c.spec.Service(serviceName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serviceName)
	}
	return svc, nil
}

func (c *FileCatalog) Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error) {
	return c.instances, nil
}
