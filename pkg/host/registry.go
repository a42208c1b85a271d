package host

import "sync"

// Registry hands out exactly one *Host per address so that all callers
// share one session pool and one attribute cache per machine. Hosts
// are never evicted; the registry lives for the process.
type Registry struct {
	mu    sync.Mutex
	hosts map[string]*Host
	dial  DialFunc
}

func NewRegistry(dial DialFunc) *Registry {
	return &Registry{
		hosts: make(map[string]*Host),
		dial:  dial,
	}
}

// Resolve returns the Host for addr, creating it on first reference.
// Repeated calls with the same address return the identical instance.
func (r *Registry) Resolve(addr string) *Host {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hosts[addr]; ok {
		return h
	}
	h := newHost(addr, r.dial)
	r.hosts[addr] = h
	return h
}

// CloseAll discards every pooled session. Call before process exit.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hosts {
		h.mu.Lock()
		for _, s := range h.idle {
			s.Close()
		}
		h.idle = nil
		h.mu.Unlock()
	}
}
