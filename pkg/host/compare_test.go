package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fsHost serves listings for a virtual tree keyed by absolute path.
// Paths absent from the tree list as empty directories.
func fsHost(log *eventLog, addr string, tree map[string]string) *Host {
	return scriptedHost(log, addr, func(cmd string) (string, error) {
		if !strings.HasPrefix(cmd, listCommand+" ") {
			return "", fmt.Errorf("unexpected command %q", cmd)
		}
		p := strings.Trim(strings.TrimPrefix(cmd, listCommand+" "), "'")
		return tree[p], nil
	})
}

func TestCompareTreesIdentical(t *testing.T) {
	tree := map[string]string{
		"/data":   lsFixture(lsFile("a", 10), lsDir("c")),
		"/data/c": lsFixture(lsFile("d", 5), lsFile("e", 5)),
	}
	src := fsHost(nil, "10.0.0.1", tree)
	dst := fsHost(nil, "10.0.0.2", tree)

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}}, CompareOptions{})
	if err != nil {
		t.Fatalf("identical trees must compare clean: %v", err)
	}
}

func TestCompareTreesMissingNestedEntry(t *testing.T) {
	src := fsHost(nil, "10.0.0.1", map[string]string{
		"/data":   lsFixture(lsFile("a", 10), lsDir("c")),
		"/data/c": lsFixture(lsFile("d", 5)),
	})
	dst := fsHost(nil, "10.0.0.2", map[string]string{
		"/data":   lsFixture(lsFile("a", 10), lsDir("c")),
		"/data/c": lsFixture(),
	})

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}}, CompareOptions{})
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "/data/c/d") || !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("error must name the missing path as MISSING: %v", err)
	}
}

func TestCompareTreesToleratesExtraDestEntries(t *testing.T) {
	src := fsHost(nil, "10.0.0.1", map[string]string{
		"/data": lsFixture(lsFile("a", 10)),
	})
	dst := fsHost(nil, "10.0.0.2", map[string]string{
		"/data": lsFixture(lsFile("a", 10), lsFile("stray", 99)),
	})

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}}, CompareOptions{})
	if err != nil {
		t.Fatalf("extra destination entries must be tolerated: %v", err)
	}
}

func TestCompareTreesSizeMismatchNamesBothSides(t *testing.T) {
	src := fsHost(nil, "10.0.0.1", map[string]string{
		"/data": lsFixture(lsFile("a", 10)),
	})
	dst := fsHost(nil, "10.0.0.2", map[string]string{
		"/data": lsFixture(lsFile("a", 7)),
	})

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}}, CompareOptions{})
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	for _, want := range []string{"10.0.0.1:/data/a", "10", "10.0.0.2:/data/a", "7"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error missing %q: %v", want, err)
		}
	}
}

func TestCompareTreesFileVersusDirectory(t *testing.T) {
	src := fsHost(nil, "10.0.0.1", map[string]string{
		"/data": lsFixture(lsDir("c")),
	})
	dst := fsHost(nil, "10.0.0.2", map[string]string{
		"/data": lsFixture(lsFile("c", 4096)),
	})

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}}, CompareOptions{})
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "DIR") {
		t.Fatalf("error must render the directory side as DIR: %v", err)
	}
}

func TestCompareTreesFileSubset(t *testing.T) {
	src := fsHost(nil, "10.0.0.1", map[string]string{
		"/data": lsFixture(lsFile("a", 10), lsFile("b", 20)),
	})
	dst := fsHost(nil, "10.0.0.2", map[string]string{
		"/data": lsFixture(lsFile("a", 10)),
	})

	err := src.CompareTrees(context.Background(), "/data", []Target{{Host: dst}},
		CompareOptions{Files: []string{"a"}})
	if err != nil {
		t.Fatalf("entries outside the subset must not be compared: %v", err)
	}
}

func TestCompareTreesTargetDirDefaultsToBase(t *testing.T) {
	log := &eventLog{}
	src := fsHost(log, "10.0.0.1", map[string]string{
		"/data": lsFixture(lsFile("a", 1)),
	})
	dst := fsHost(log, "10.0.0.2", map[string]string{
		"/data": lsFixture(lsFile("a", 1)),
		"/alt":  lsFixture(lsFile("a", 1)),
	})

	err := src.CompareTrees(context.Background(), "/data",
		[]Target{{Host: dst, Dir: "/alt"}}, CompareOptions{})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if log.indexOf("10.0.0.2|", "'/alt'") < 0 {
		t.Fatalf("explicit target dir not used: %v", log.events)
	}
}

func TestTotalSizeRecurses(t *testing.T) {
	h := fsHost(nil, "10.0.0.1", map[string]string{
		"/data":   lsFixture(lsFile("a", 10), lsDir("c")),
		"/data/c": lsFixture(lsFile("d", 5), lsFile("e", 5)),
	})
	total, err := h.TotalSize(context.Background(), "/data")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 20 {
		t.Fatalf("expected 20 bytes, got %d", total)
	}
}
