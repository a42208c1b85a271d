package host

import (
	"context"
	"fmt"
	"path"
)

// Target is one destination machine with its effective base directory.
type Target struct {
	Host *Host
	Dir  string // defaults to the source base path when empty
}

// CompareOptions restricts a comparison to a subset of the top-level
// entries. An empty Files slice compares the whole tree.
type CompareOptions struct {
	Files []string
}

// CompareTrees walks the source tree breadth first and requires every
// entry present at the source to exist with the identical size at
// every target. Only the source side is explored; extra entries on a
// target are tolerated. Any missing entry or size difference is a
// fatal error naming both sides.
func (h *Host) CompareTrees(ctx context.Context, base string, targets []Target, opts CompareOptions) error {
	targets = normalizeTargets(base, targets)

	// queue of subdirectory paths relative to the base
	queue := []string{""}
	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		srcListing, err := h.ListDirectory(ctx, path.Join(base, rel))
		if err != nil {
			return err
		}
		if rel == "" && len(opts.Files) > 0 {
			srcListing = filterListing(srcListing, opts.Files)
		}

		for _, t := range targets {
			dstListing, err := t.Host.ListDirectory(ctx, path.Join(t.Dir, rel))
			if err != nil {
				return err
			}
			for name, srcSize := range srcListing {
				dstSize, ok := dstListing[name]
				if !ok {
					dstSize = SizeMissing
				}
				if dstSize != srcSize {
					return fmt.Errorf("%w: %s:%s is %s but %s:%s is %s",
						ErrMismatch,
						h.Addr, path.Join(base, rel, name), sizeString(srcSize),
						t.Host.Addr, path.Join(t.Dir, rel, name), sizeString(dstSize))
				}
			}
		}

		for name, size := range srcListing {
			if size == SizeDir {
				queue = append(queue, path.Join(rel, name))
			}
		}
	}
	return nil
}

// TotalSize recursively sums file sizes under path. The remote
// filesystem is assumed acyclic.
func (h *Host) TotalSize(ctx context.Context, dir string) (int64, error) {
	listing, err := h.ListDirectory(ctx, dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for name, size := range listing {
		if size == SizeDir {
			sub, err := h.TotalSize(ctx, path.Join(dir, name))
			if err != nil {
				return 0, err
			}
			total += sub
			continue
		}
		total += size
	}
	return total, nil
}

// normalizeTargets fills in the default destination directory.
func normalizeTargets(base string, targets []Target) []Target {
	out := make([]Target, len(targets))
	for i, t := range targets {
		if t.Dir == "" {
			t.Dir = base
		}
		out[i] = t
	}
	return out
}

func filterListing(listing DirectoryListing, names []string) DirectoryListing {
	filtered := make(DirectoryListing, len(names))
	for _, name := range names {
		if size, ok := listing[name]; ok {
			filtered[name] = size
		}
	}
	return filtered
}
