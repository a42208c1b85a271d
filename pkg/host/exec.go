package host

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vdt/jetpants/pkg/logger"
)

// DefaultAttempts is the per-command attempt budget. Callers force 1
// for non-idempotent commands.
const DefaultAttempts = 3

// backoffUnit is the linear retry delay: the first retry waits one
// unit, the second two, and so on.
var backoffUnit = time.Second

// Execute runs the commands in order on one acquired session and
// returns the output of the last command. A failing command is retried
// in place with linear backoff until the attempt budget is exhausted;
// commands are never reordered or skipped.
func (h *Host) Execute(ctx context.Context, commands []string, attempts int) (string, error) {
	if attempts < 1 {
		attempts = 1
	}
	s, err := h.acquire(ctx)
	if err != nil {
		return "", err
	}

	var out string
	for _, cmd := range commands {
		fails := 0
		for {
			out, err = s.Run(ctx, cmd)
			if err == nil {
				break
			}
			fails++
			if fails >= attempts {
				// Session state is unknown after a failed
				// command, do not pool it.
				s.Close()
				return out, fmt.Errorf("%s: command failed after %d attempts: %w", h.Addr, fails, err)
			}
			logger.Logger.Debug("command failed, retrying", "addr", h.Addr, "fails", fails, "err", err)
			if serr := h.sleep(ctx, time.Duration(fails)*backoffUnit); serr != nil {
				s.Close()
				return out, serr
			}
		}
	}

	h.release(ctx, s)
	return out, nil
}

// Run executes a single command with the default attempt budget.
func (h *Host) Run(ctx context.Context, cmd string) (string, error) {
	return h.Execute(ctx, []string{cmd}, DefaultAttempts)
}

// ConfirmListening polls on the remote side until something is bound
// to port, bounded by timeout. The poll loop runs remotely so one
// round-trip covers the whole wait.
func (h *Host) ConfirmListening(ctx context.Context, port int, timeout time.Duration) error {
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	cmd := fmt.Sprintf(
		"for i in $(seq 1 %d); do if netstat -ln | grep -q ':%d '; then echo listening; break; fi; sleep 1; done",
		secs, port)
	out, err := h.Execute(ctx, []string{cmd}, 1)
	if err != nil {
		return err
	}
	if !strings.Contains(out, "listening") {
		return fmt.Errorf("%w: %s port %d after %s", ErrNotListening, h.Addr, port, timeout)
	}
	return nil
}

// confirmPipe polls on the remote side until the named pipe exists,
// bounded by timeout.
func (h *Host) confirmPipe(ctx context.Context, path string, timeout time.Duration) error {
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	cmd := fmt.Sprintf(
		"for i in $(seq 1 %d); do if [ -p %s ]; then echo ready; break; fi; sleep 1; done",
		secs, shellQuote(path))
	out, err := h.Execute(ctx, []string{cmd}, 1)
	if err != nil {
		return err
	}
	if !strings.Contains(out, "ready") {
		return fmt.Errorf("%w: %s:%s after %s", ErrPipeMissing, h.Addr, path, timeout)
	}
	return nil
}

// shellQuote wraps s in single quotes for safe interpolation into a
// remote command line.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
