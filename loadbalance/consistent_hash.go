package loadbalance

import (
	"docs-debug/catalog"
	"fmt"
	"hash/crc32"
	"sort"
	"strings"
	"sync"
)

// ConsistentHashBalancer maps invocation keys to instances on a hash ring.
// The same key lands on the same instance as long as the instance set is
// unchanged, and only about 1/n of the keys move when it changes.
//
// Each instance is placed on the ring as replicas virtual nodes so that a
// handful of instances still split the ring evenly.
type ConsistentHashBalancer struct {
	replicas int

	mu    sync.Mutex
	ident string   // joined addresses the ring was built from
	ring  []uint32 // sorted virtual node hashes
	nodes map[uint32]string
}

func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{replicas: 100}
}

func (b *ConsistentHashBalancer) Pick(key string, instances []catalog.ServiceInstance) (*catalog.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}

	b.mu.Lock()
	b.rebuild(instances)
	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	// Past the last node: wrap around to the first.
	if idx == len(b.ring) {
		idx = 0
	}
	addr := b.nodes[b.ring[idx]]
	b.mu.Unlock()

	for i := range instances {
		if instances[i].Addr == addr {
			return &instances[i], nil
		}
	}
	return nil, fmt.Errorf("consistent hash: instance %s disappeared", addr)
}

// rebuild recomputes the ring when the instance set changed. Caller holds mu.
func (b *ConsistentHashBalancer) rebuild(instances []catalog.ServiceInstance) {
	addrs := make([]string, len(instances))
	for i, inst := range instances {
		addrs[i] = inst.Addr
	}
	sort.Strings(addrs)
	ident := strings.Join(addrs, ",")
	if ident == b.ident && b.ring != nil {
		return
	}

	b.ident = ident
	b.ring = b.ring[:0]
	b.nodes = make(map[uint32]string, len(addrs)*b.replicas)
	for _, addr := range addrs {
		for i := 0; i < b.replicas; i++ {
			hash := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s#%d", addr, i)))
			b.ring = append(b.ring, hash)
			b.nodes[hash] = addr
		}
	}
	sort.Slice(b.ring, func(i, j int) bool {
		return b.ring[i] < b.ring[j]
	})
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
