// Package loadbalance picks which server instance answers a debug invocation
// when the catalog lists several.
//
// Three strategies are implemented:
//   - RoundRobin:      spread invocations evenly across equal instances
//   - WeightedRandom:  favour instances with a higher weight
//   - ConsistentHash:  send every invocation of one method to the same
//     instance, so a debugging session keeps hitting one server's logs
package loadbalance

import (
	"docs-debug/catalog"
	"errors"
	"fmt"
)

var ErrNoInstances = errors.New("no instances available")

// Balancer is the interface for load balancing strategies.
// The client calls Pick() before each invocation to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list. key identifies the
	// invocation ("Service.method"); strategies without affinity ignore it.
	// Called on every invocation, must be goroutine-safe.
	Pick(key string, instances []catalog.ServiceInstance) (*catalog.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// New returns the strategy registered under name.
func New(name string) (Balancer, error) {
	switch name {
	case "", "round_robin":
		return &RoundRobinBalancer{}, nil
	case "weighted_random":
		return &WeightedRandomBalancer{}, nil
	case "consistent_hash":
		return NewConsistentHashBalancer(), nil
	}
	return nil, fmt.Errorf("unknown balancer %q", name)
}
