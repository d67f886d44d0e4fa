// file: internals/features/payment/gateway/registry.go
package gateway

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

/* =========================================================
   Registry: resolve adapter by identifier
   Dibangun sekali saat bootstrap; aman dipakai konkuren.
========================================================= */

type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[strings.ToLower(g.Identifier())] = g
}

// Resolve mengembalikan adapter by identifier (case-insensitive).
func (r *Registry) Resolve(identifier string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return nil, fmt.Errorf("unknown payment gateway: %s", identifier)
	}
	return g, nil
}

// Available: daftar adapter yang kredensialnya lengkap, urut by identifier.
func (r *Registry) Available() []Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Gateway, 0, len(r.gateways))
	for _, g := range r.gateways {
		if g.IsAvailable() {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}
