package host

import (
	"context"
	"fmt"
	"strings"
)

// Thin one-shot command wrappers. These are pure pass-through callers
// of Execute; anything interesting lives in the executor itself.

func (h *Host) ServiceStart(ctx context.Context, name string) (string, error) {
	return h.Execute(ctx, []string{fmt.Sprintf("service %s start", name)}, 1)
}

func (h *Host) ServiceStop(ctx context.Context, name string) (string, error) {
	return h.Execute(ctx, []string{fmt.Sprintf("service %s stop", name)}, 1)
}

func (h *Host) ServiceRestart(ctx context.Context, name string) (string, error) {
	return h.Execute(ctx, []string{fmt.Sprintf("service %s restart", name)}, 1)
}

// SetIOScheduler sets the I/O scheduler for a block device.
func (h *Host) SetIOScheduler(ctx context.Context, device, scheduler string) error {
	cmd := fmt.Sprintf("echo %s > /sys/block/%s/queue/scheduler", scheduler, device)
	_, err := h.Execute(ctx, []string{cmd}, 1)
	return err
}

// IOScheduler reports the active I/O scheduler for a block device.
func (h *Host) IOScheduler(ctx context.Context, device string) (string, error) {
	out, err := h.Run(ctx, fmt.Sprintf("cat /sys/block/%s/queue/scheduler", device))
	if err != nil {
		return "", err
	}
	// The active scheduler is bracketed: "noop deadline [cfq]"
	if start := strings.Index(out, "["); start != -1 {
		if end := strings.Index(out[start:], "]"); end != -1 {
			return out[start+1 : start+end], nil
		}
	}
	return strings.TrimSpace(out), nil
}

// HasInstalled reports whether the named tool is on the machine's
// PATH.
func (h *Host) HasInstalled(ctx context.Context, tool string) (bool, error) {
	out, err := h.Run(ctx, fmt.Sprintf("which %s 2>/dev/null | wc -l", tool))
	if err != nil {
		return false, fmt.Errorf("install check for %s on %s: %w", tool, h.Addr, err)
	}
	return strings.TrimSpace(out) != "0", nil
}

// CommentOut prefixes matching lines of a config file with the comment
// marker.
func (h *Host) CommentOut(ctx context.Context, file, pattern string) error {
	cmd := fmt.Sprintf("sed -i 's/^\\(%s\\)/#\\1/' %s", pattern, shellQuote(file))
	_, err := h.Execute(ctx, []string{cmd}, 1)
	return err
}

// UncommentOut strips the comment marker from matching lines of a
// config file.
func (h *Host) UncommentOut(ctx context.Context, file, pattern string) error {
	cmd := fmt.Sprintf("sed -i 's/^#\\(%s\\)/\\1/' %s", pattern, shellQuote(file))
	_, err := h.Execute(ctx, []string{cmd}, 1)
	return err
}
