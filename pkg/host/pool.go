package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/vdt/jetpants/pkg/logger"
)

const (
	// acquireAttempts bounds one acquisition, counting both dial
	// failures and validation failures.
	acquireAttempts = 5

	probeCommand = "echo ping"
	probeReply   = "ping"

	// resetCommand normalizes a session's state before it goes back
	// into the pool.
	resetCommand = "cd /"
)

// acquire returns a validated session, reusing an idle one when
// possible. A session that fails its round-trip is discarded, never
// pooled again.
func (h *Host) acquire(ctx context.Context) (Session, error) {
	for attempt := 1; attempt <= acquireAttempts; attempt++ {
		s := h.popIdle()
		if s == nil {
			var err error
			s, err = h.dial(ctx, h.Addr)
			if err != nil {
				logger.Logger.Debug("dial failed", "addr", h.Addr, "attempt", attempt, "err", err)
				continue
			}
		}
		out, err := s.Run(ctx, probeCommand)
		if err != nil || strings.TrimSpace(out) != probeReply {
			s.Close()
			logger.Logger.Debug("session validation failed", "addr", h.Addr, "attempt", attempt, "err", err)
			continue
		}
		h.setAvailability(AvailReachable)
		return s, nil
	}
	h.setAvailability(AvailUnreachable)
	return nil, fmt.Errorf("%w: %s: no validated session after %d attempts", ErrUnreachable, h.Addr, acquireAttempts)
}

// release resets the session and returns it to the pool. If the reset
// fails the session's state is unknown, so it is discarded instead.
func (h *Host) release(ctx context.Context, s Session) {
	if _, err := s.Run(ctx, resetCommand); err != nil {
		s.Close()
		return
	}
	h.mu.Lock()
	h.idle = append(h.idle, s)
	h.mu.Unlock()
}

func (h *Host) popIdle() Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.idle)
	if n == 0 {
		return nil
	}
	s := h.idle[n-1]
	h.idle = h.idle[:n-1]
	return s
}
