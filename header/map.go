// Package header assembles the header set attached to a debug invocation.
//
// Headers come from three sources, merged in this order (later wins on a
// key collision):
//
//	debug marker (docsdebug builds only)
//	  → header providers, in list order
//	    → caller headers
package header

import (
	"net/http"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// Map is an ordered, case-insensitive header map. Keys are stored lower-cased
// and keep the position of their first insertion.
type Map struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewMap() *Map {
	return &Map{m: orderedmap.NewOrderedMap[string, string]()}
}

// FromPairs builds a Map from alternating name/value strings.
// A trailing name without a value is ignored.
func FromPairs(kv ...string) *Map {
	h := NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func (h *Map) Set(name, value string) {
	h.m.Set(strings.ToLower(name), value)
}

func (h *Map) Get(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	return h.m.Get(strings.ToLower(name))
}

func (h *Map) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

func (h *Map) Delete(name string) {
	h.m.Delete(strings.ToLower(name))
}

func (h *Map) Len() int {
	if h == nil {
		return 0
	}
	return h.m.Len()
}

// Each calls fn for every header in insertion order.
func (h *Map) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for k, v := range h.m.AllFromFront() {
		fn(k, v)
	}
}

// Keys returns the header names in insertion order.
func (h *Map) Keys() []string {
	keys := make([]string, 0, h.Len())
	h.Each(func(name, _ string) {
		keys = append(keys, name)
	})
	return keys
}

// Merge copies every header of other into h, overriding existing values.
func (h *Map) Merge(other *Map) {
	other.Each(h.Set)
}

// Clone returns an independent copy.
func (h *Map) Clone() *Map {
	c := NewMap()
	c.Merge(h)
	return c
}

// ToHTTP copies the headers onto an outgoing request header.
func (h *Map) ToHTTP(dst http.Header) {
	h.Each(dst.Set)
}
