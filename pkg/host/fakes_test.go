package host

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// scriptSession answers the pool's probe and reset commands itself and
// hands everything else to a per-host handler, recording the command
// in a shared event log.
type scriptSession struct {
	addr    string
	log     *eventLog
	handler func(cmd string) (string, error)
	closed  bool
}

func (s *scriptSession) Run(ctx context.Context, cmd string) (string, error) {
	switch cmd {
	case probeCommand:
		return probeReply + "\n", nil
	case resetCommand:
		return "", nil
	}
	if s.log != nil {
		s.log.add(s.addr + "|" + cmd)
	}
	return s.handler(cmd)
}

func (s *scriptSession) Close() error {
	s.closed = true
	return nil
}

// scriptedHost builds a Host whose sessions run against handler, with
// backoff sleeps disabled.
func scriptedHost(log *eventLog, addr string, handler func(cmd string) (string, error)) *Host {
	h := newHost(addr, func(ctx context.Context, a string) (Session, error) {
		return &scriptSession{addr: addr, log: log, handler: handler}, nil
	})
	h.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return h
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

// indexOf returns the position of the first event containing every
// given substring, or -1.
func (l *eventLog) indexOf(substrs ...string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
outer:
	for i, e := range l.events {
		for _, s := range substrs {
			if !strings.Contains(e, s) {
				continue outer
			}
		}
		return i
	}
	return -1
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Listing fixtures in the exact shape of "ls --color=never -1AgGF".

func lsFile(name string, size int64) string {
	return fmt.Sprintf("-rw-r--r-- 1 %d May  3 10:15 %s", size, name)
}

func lsDir(name string) string {
	return fmt.Sprintf("drwxr-xr-x 2 4096 May  3 10:15 %s/", name)
}

func lsFixture(lines ...string) string {
	return "total 12\n" + strings.Join(lines, "\n") + "\n"
}
