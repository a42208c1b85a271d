// Package host is the remote-execution substrate: every operation
// against an administered machine goes through a *Host, which owns a
// pool of validated SSH sessions and the retry semantics around them.
package host

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Availability is the cached reachability state of a machine.
type Availability int

const (
	AvailUnknown Availability = iota
	AvailReachable
	AvailUnreachable
)

// Session is one live authenticated remote-shell connection. It is
// owned by the pool while idle and by exactly one caller while
// borrowed; it is never shared concurrently.
type Session interface {
	Run(ctx context.Context, cmd string) (string, error)
	Close() error
}

// DialFunc opens a new authenticated session to the given address.
type DialFunc func(ctx context.Context, addr string) (Session, error)

// Host represents one administered machine. Obtain instances through a
// Registry so every caller shares the same pool per address.
type Host struct {
	Addr string

	dial DialFunc

	mu    sync.Mutex // guards idle and avail
	idle  []Session
	avail Availability

	// lazily cached machine attributes, fetched at most once even
	// under concurrent callers
	attrs    singleflight.Group
	attrMu   sync.Mutex
	hostname string
	cores    int

	sleep func(ctx context.Context, d time.Duration) error
}

func newHost(addr string, dial DialFunc) *Host {
	return &Host{
		Addr:  addr,
		dial:  dial,
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Availability returns the cached reachability flag without touching
// the network.
func (h *Host) Availability() Availability {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.avail
}

func (h *Host) setAvailability(a Availability) {
	h.mu.Lock()
	h.avail = a
	h.mu.Unlock()
}

// Reachable probes the machine with a trivial command on first call
// and reuses the cached flag afterwards. The probe is best effort:
// failures only flip the flag, they are not surfaced.
func (h *Host) Reachable(ctx context.Context) bool {
	switch h.Availability() {
	case AvailReachable:
		return true
	case AvailUnreachable:
		return false
	}
	_, err := h.Execute(ctx, []string{probeCommand}, 1)
	return err == nil
}

// Hostname returns the machine's hostname, fetched once and cached.
func (h *Host) Hostname(ctx context.Context) (string, error) {
	h.attrMu.Lock()
	cached := h.hostname
	h.attrMu.Unlock()
	if cached != "" {
		return cached, nil
	}
	v, err, _ := h.attrs.Do("hostname", func() (any, error) {
		out, err := h.Execute(ctx, []string{"hostname"}, DefaultAttempts)
		if err != nil {
			return "", err
		}
		name := strings.TrimSpace(out)
		h.attrMu.Lock()
		h.hostname = name
		h.attrMu.Unlock()
		return name, nil
	})
	if err != nil {
		return "", fmt.Errorf("hostname of %s: %w", h.Addr, err)
	}
	return v.(string), nil
}

// Cores returns the machine's logical core count, fetched once and
// cached.
func (h *Host) Cores(ctx context.Context) (int, error) {
	h.attrMu.Lock()
	cached := h.cores
	h.attrMu.Unlock()
	if cached > 0 {
		return cached, nil
	}
	v, err, _ := h.attrs.Do("cores", func() (any, error) {
		out, err := h.Execute(ctx, []string{"grep -c processor /proc/cpuinfo"}, DefaultAttempts)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(out))
		if err != nil || n < 1 {
			return 0, fmt.Errorf("unexpected core count %q", strings.TrimSpace(out))
		}
		h.attrMu.Lock()
		h.cores = n
		h.attrMu.Unlock()
		return n, nil
	})
	if err != nil {
		return 0, fmt.Errorf("core count of %s: %w", h.Addr, err)
	}
	return v.(int), nil
}
