package host

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vdt/jetpants/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// CopyOptions tunes a chained copy.
type CopyOptions struct {
	// Files restricts the transfer to these top-level entries of the
	// base path. Empty means the whole tree.
	Files []string
	// Overwrite permits copying onto destinations that already hold
	// nonzero-size content for the requested entries.
	Overwrite bool
	// Port is the relay port; 0 uses DefaultChainPort.
	Port int
}

const (
	DefaultChainPort = 7000

	// readyTimeout bounds each listener/pipe readiness wait.
	readyTimeout = 10 * time.Second

	// compressTool must be installed on every chain participant.
	compressTool = "pigz"
)

// CopyChain streams the tree under base to every target through a
// linear relay chain: the source sends once to the first target, and
// each mid-chain target re-emits the stream onward while extracting
// its own copy. Success means the transfer verified identical on every
// target, not merely that the stream finished.
//
// The operation is at most once: a readiness timeout aborts the whole
// chain with no cleanup and no retry, and callers must not blindly
// retry after the send has begun.
func (h *Host) CopyChain(ctx context.Context, base string, targets []Target, opts CopyOptions) error {
	if len(targets) == 0 {
		return fmt.Errorf("copy chain from %s: no destinations", h.Addr)
	}
	targets = normalizeTargets(base, targets)
	port := opts.Port
	if port == 0 {
		port = DefaultChainPort
	}

	for _, t := range targets {
		if err := validateDestDir(t.Dir); err != nil {
			return fmt.Errorf("%s: %w", t.Host.Addr, err)
		}
	}
	participants := append([]*Host{h}, hostsOf(targets)...)
	for _, p := range participants {
		installed, err := p.HasInstalled(ctx, compressTool)
		if err != nil {
			return err
		}
		if !installed {
			return fmt.Errorf("%w: %s on %s", ErrMissingTool, compressTool, p.Addr)
		}
	}

	files, err := h.requestedEntries(ctx, base, opts.Files)
	if err != nil {
		return err
	}
	if !opts.Overwrite {
		for _, t := range targets {
			if err := confirmEmpty(ctx, t, files); err != nil {
				return err
			}
		}
	}

	// Chain construction runs tail first: every downstream hop must
	// already be accepting before anything upstream starts writing,
	// otherwise a connect-before-listen race drops data silently.
	g, gctx := errgroup.WithContext(ctx)
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if i == len(targets)-1 {
			recv := fmt.Sprintf("cd %s && nc -l -p %d | %s -d | tar xv",
				shellQuote(t.Dir), port, compressTool)
			g.Go(chainTask(gctx, t.Host, recv))
		} else {
			next := targets[i+1]
			pipe := fmt.Sprintf("/tmp/jetpants_chain_%d", port)
			recv := fmt.Sprintf("cd %s && mkfifo %s && nc -l -p %d | tee %s | %s -d | tar xv",
				shellQuote(t.Dir), pipe, port, pipe, compressTool)
			g.Go(chainTask(gctx, t.Host, recv))
			if err := t.Host.confirmPipe(ctx, pipe, readyTimeout); err != nil {
				return err
			}
			fwd := fmt.Sprintf("nc %s %d < %s && rm -f %s",
				next.Host.Addr, port, pipe, pipe)
			g.Go(chainTask(gctx, t.Host, fwd))
		}
		if err := t.Host.ConfirmListening(ctx, port, readyTimeout); err != nil {
			return err
		}
		logger.Logger.Info("chain hop ready", "addr", t.Host.Addr, "dir", t.Dir, "port", port)
	}

	send := fmt.Sprintf("cd %s && tar c %s | %s | nc %s %d",
		shellQuote(base), quoteAll(files), compressTool, targets[0].Host.Addr, port)
	logger.Logger.Info("chain send starting", "src", h.Addr, "base", base, "targets", len(targets))
	if _, err := h.Execute(ctx, []string{send}, 1); err != nil {
		return fmt.Errorf("chain send from %s: %w", h.Addr, err)
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return h.CompareTrees(ctx, base, targets, CompareOptions{Files: opts.Files})
}

// chainTask runs one listener/relay command on a hop. Chain commands
// are non-idempotent, so the attempt budget is forced to 1.
func chainTask(ctx context.Context, h *Host, cmd string) func() error {
	return func() error {
		if _, err := h.Execute(ctx, []string{cmd}, 1); err != nil {
			return fmt.Errorf("chain hop %s: %w", h.Addr, err)
		}
		return nil
	}
}

// requestedEntries resolves the explicit subset, or the base path's
// top-level entry set when no subset was given. Names come back sorted
// so the generated commands are deterministic.
func (h *Host) requestedEntries(ctx context.Context, base string, subset []string) ([]string, error) {
	if len(subset) > 0 {
		out := append([]string(nil), subset...)
		sort.Strings(out)
		return out, nil
	}
	listing, err := h.ListDirectory(ctx, base)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("copy chain: nothing to copy under %s:%s", h.Addr, base)
	}
	return names, nil
}

// confirmEmpty fails when the target already holds nonzero-size
// content for any requested entry. A listing failure is treated as an
// empty destination (the directory may not exist yet).
func confirmEmpty(ctx context.Context, t Target, files []string) error {
	listing, err := t.Host.ListDirectory(ctx, t.Dir)
	if err != nil {
		return nil
	}
	for _, name := range files {
		if size, ok := listing[name]; ok && size != 0 {
			return fmt.Errorf("%w: %s:%s entry %q has size %s (pass overwrite to permit)",
				ErrNotEmpty, t.Host.Addr, t.Dir, name, sizeString(size))
		}
	}
	return nil
}

// validateDestDir rejects destination paths that indicate a
// configuration error too dangerous to execute blindly.
func validateDestDir(dir string) error {
	switch {
	case dir == "", dir == "/":
		return fmt.Errorf("%w: %q", ErrUnsafePath, dir)
	case strings.Contains(dir, ".."), strings.Contains(dir, "./"):
		return fmt.Errorf("%w: %q", ErrUnsafePath, dir)
	}
	return nil
}

func hostsOf(targets []Target) []*Host {
	out := make([]*Host, len(targets))
	for i, t := range targets {
		out[i] = t.Host
	}
	return out
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = shellQuote(n)
	}
	return strings.Join(quoted, " ")
}
