package header

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DocServiceDebug is the marker header injected by docsdebug builds.
const DocServiceDebug = "x-doc-service-debug"

// RequestIDHeader carries the correlation id set by the RequestID provider.
const RequestIDHeader = "x-request-id"

// Provider contributes headers to every debug invocation.
// Providers may block (fetching a token, reading a file); Collect runs them
// concurrently.
type Provider func(ctx context.Context) (*Map, error)

// Static returns a provider that always yields the same headers.
func Static(h *Map) Provider {
	return func(context.Context) (*Map, error) {
		return h.Clone(), nil
	}
}

// RequestID returns a provider that stamps each invocation with a fresh UUID.
func RequestID() Provider {
	return func(context.Context) (*Map, error) {
		return FromPairs(RequestIDHeader, uuid.NewString()), nil
	}
}

// Collect runs every provider concurrently and waits for all of them.
// The results are returned in provider order, not completion order.
func Collect(ctx context.Context, providers []Provider) ([]*Map, error) {
	results := make([]*Map, len(providers))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			h, err := p(ctx)
			if err != nil {
				return fmt.Errorf("header provider %d: %w", i, err)
			}
			results[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge builds the effective header set: the debug marker (when debug is
// set), then each provided map in order, then the caller headers.
func Merge(debug bool, provided []*Map, caller *Map) *Map {
	h := NewMap()
	if debug {
		h.Set(DocServiceDebug, "true")
	}
	for _, p := range provided {
		h.Merge(p)
	}
	h.Merge(caller)
	return h
}

// Assemble collects the providers and merges the result with the caller
// headers. It is the whole header pipeline of a send.
func Assemble(ctx context.Context, providers []Provider, caller *Map) (*Map, error) {
	provided, err := Collect(ctx, providers)
	if err != nil {
		return nil, err
	}
	return Merge(DebugBuild, provided, caller), nil
}
