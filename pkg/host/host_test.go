package host

import (
	"context"
	"strings"
	"testing"
)

func TestHostnameCachedAfterFirstFetch(t *testing.T) {
	log := &eventLog{}
	h := scriptedHost(log, "10.3.3.3", func(cmd string) (string, error) {
		if cmd != "hostname" {
			t.Fatalf("unexpected command %q", cmd)
		}
		return "db101.example.com\n", nil
	})

	for i := 0; i < 3; i++ {
		name, err := h.Hostname(context.Background())
		if err != nil {
			t.Fatalf("hostname: %v", err)
		}
		if name != "db101.example.com" {
			t.Fatalf("unexpected hostname %q", name)
		}
	}
	if log.count() != 1 {
		t.Fatalf("hostname fetched %d times, want 1", log.count())
	}
}

func TestCoresParsesCpuinfoCount(t *testing.T) {
	h := scriptedHost(nil, "10.3.3.3", func(cmd string) (string, error) {
		if !strings.Contains(cmd, "/proc/cpuinfo") {
			t.Fatalf("unexpected command %q", cmd)
		}
		return "16\n", nil
	})
	n, err := h.Cores(context.Background())
	if err != nil {
		t.Fatalf("cores: %v", err)
	}
	if n != 16 {
		t.Fatalf("expected 16 cores, got %d", n)
	}
}

func TestCoresRejectsGarbageOutput(t *testing.T) {
	h := scriptedHost(nil, "10.3.3.3", func(cmd string) (string, error) {
		return "cat: /proc/cpuinfo: No such file\n", nil
	})
	if _, err := h.Cores(context.Background()); err == nil {
		t.Fatalf("expected an error for unparseable output")
	}
}

func TestReachableUsesCachedFlag(t *testing.T) {
	d := &rawDialer{}
	d.runFn = func(s *rawSession, cmd string) (string, error) {
		if cmd == probeCommand {
			return probeReply, nil
		}
		return "", nil
	}
	h := rawHost(d)

	if !h.Reachable(context.Background()) {
		t.Fatalf("probe succeeded, machine must be reachable")
	}
	dialsAfterProbe := d.dialed
	if !h.Reachable(context.Background()) {
		t.Fatalf("cached flag flipped")
	}
	if d.dialed != dialsAfterProbe {
		t.Fatalf("second Reachable call must not touch the network")
	}
}
