package host

import (
	"context"
	"sync"
	"testing"
)

func TestResolveReturnsIdenticalInstance(t *testing.T) {
	r := NewRegistry(func(ctx context.Context, addr string) (Session, error) {
		return &scriptSession{addr: addr, handler: func(string) (string, error) { return "", nil }}, nil
	})

	a := r.Resolve("10.0.0.1")
	b := r.Resolve("10.0.0.1")
	if a != b {
		t.Fatalf("expected the same *Host for one address, got %p and %p", a, b)
	}
	if r.Resolve("10.0.0.2") == a {
		t.Fatalf("distinct addresses must not share a handle")
	}
}

func TestResolveConcurrentSingleInstance(t *testing.T) {
	r := NewRegistry(func(ctx context.Context, addr string) (Session, error) {
		return &scriptSession{addr: addr, handler: func(string) (string, error) { return "", nil }}, nil
	})

	const workers = 32
	hosts := make([]*Host, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hosts[i] = r.Resolve("10.0.0.1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if hosts[i] != hosts[0] {
			t.Fatalf("concurrent Resolve created a second handle (worker %d)", i)
		}
	}
}
