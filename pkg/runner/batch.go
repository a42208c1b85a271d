package runner

import (
	"context"

	"github.com/vdt/jetpants/pkg/host"
	"golang.org/x/sync/errgroup"
)

type TaskFunc func(ctx context.Context, h *host.Host) (string, error)

type Result struct {
	Host   *host.Host
	Output string
	Error  error
}

// RunParallel runs task against every host with at most concurrency
// tasks in flight. The result channel is buffered to len(hosts) so
// slow consumers never block a worker; it is closed once every task
// has finished.
func RunParallel(ctx context.Context, hosts []*host.Host, concurrency int, task TaskFunc) <-chan Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make(chan Result, len(hosts))
	g := &errgroup.Group{}
	g.SetLimit(concurrency)
	go func() {
		for _, h := range hosts {
			g.Go(func() error {
				out, err := task(ctx, h)
				results <- Result{Host: h, Output: out, Error: err}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()
	return results
}
