package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vdt/jetpants/pkg/host"
)

func testHosts(n int) []*host.Host {
	reg := host.NewRegistry(func(ctx context.Context, addr string) (host.Session, error) {
		return nil, fmt.Errorf("no dialing in this test")
	})
	hosts := make([]*host.Host, n)
	for i := range hosts {
		hosts[i] = reg.Resolve(fmt.Sprintf("10.0.0.%d", i+1))
	}
	return hosts
}

func TestRunParallelCollectsEveryResult(t *testing.T) {
	hosts := testHosts(8)
	results := RunParallel(context.Background(), hosts, 4,
		func(ctx context.Context, h *host.Host) (string, error) {
			return "ran on " + h.Addr, nil
		})

	seen := map[string]bool{}
	for r := range results {
		if r.Error != nil {
			t.Fatalf("unexpected error from %s: %v", r.Host.Addr, r.Error)
		}
		if r.Output != "ran on "+r.Host.Addr {
			t.Fatalf("output/host pairing broken: %+v", r)
		}
		seen[r.Host.Addr] = true
	}
	if len(seen) != len(hosts) {
		t.Fatalf("expected %d results, got %d", len(hosts), len(seen))
	}
}

func TestRunParallelHonorsConcurrencyLimit(t *testing.T) {
	hosts := testHosts(16)
	const limit = 3

	var inFlight, peak int64
	var mu sync.Mutex
	results := RunParallel(context.Background(), hosts, limit,
		func(ctx context.Context, h *host.Host) (string, error) {
			n := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			defer atomic.AddInt64(&inFlight, -1)
			return "", nil
		})

	for range results {
	}
	mu.Lock()
	defer mu.Unlock()
	if peak > limit {
		t.Fatalf("concurrency limit exceeded: peak %d > limit %d", peak, limit)
	}
}

func TestRunParallelReportsPerHostErrors(t *testing.T) {
	hosts := testHosts(4)
	results := RunParallel(context.Background(), hosts, 2,
		func(ctx context.Context, h *host.Host) (string, error) {
			if h.Addr == "10.0.0.2" {
				return "", fmt.Errorf("exec failed")
			}
			return "ok", nil
		})

	var failed, ok int
	for r := range results {
		if r.Error != nil {
			failed++
			continue
		}
		ok++
	}
	if failed != 1 || ok != 3 {
		t.Fatalf("one failure must not suppress other results: failed=%d ok=%d", failed, ok)
	}
}
