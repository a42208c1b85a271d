package host

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Size descriptor sentinels. Real file sizes are never negative.
const (
	// SizeDir marks an entry that is itself a directory.
	SizeDir int64 = -1
	// SizeMissing marks an entry absent from a listing; it only
	// appears in comparison errors, never in a DirectoryListing.
	SizeMissing int64 = -2
)

// DirectoryListing maps entry name to byte size, or SizeDir for
// subdirectories.
type DirectoryListing map[string]int64

// listCommand enumerates one entry per line with color disabled,
// owner/group suppressed, and a type suffix on directories, symlinks
// and executables.
const listCommand = "ls --color=never -1AgGF"

// listLine captures the trailing size and name fields: mode, link
// count, size, then anything up to the HH:MM or year timestamp, then
// the name. Lines that do not match (the "total" banner, summaries)
// are skipped.
var listLine = regexp.MustCompile(`^[\w.+-]+\s+\d+\s+(\d+)\s+.*?(?:\d{2}:\d{2}|\d{4})\s+(.+)$`)

// ListDirectory enumerates path on the remote machine into a size map.
func (h *Host) ListDirectory(ctx context.Context, path string) (DirectoryListing, error) {
	out, err := h.Execute(ctx, []string{listCommand + " " + shellQuote(path)}, DefaultAttempts)
	if err != nil {
		return nil, fmt.Errorf("list %s:%s: %w", h.Addr, path, err)
	}
	return parseListing(out), nil
}

func parseListing(out string) DirectoryListing {
	listing := make(DirectoryListing)
	for _, line := range strings.Split(out, "\n") {
		m := listLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		size, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		name := m[2]
		switch {
		case strings.HasSuffix(name, "/"):
			listing[name[:len(name)-1]] = SizeDir
		case strings.HasSuffix(name, "@"), strings.HasSuffix(name, "*"),
			strings.HasSuffix(name, "="), strings.HasSuffix(name, "|"):
			listing[name[:len(name)-1]] = size
		default:
			listing[name] = size
		}
	}
	return listing
}

// sizeString renders a size descriptor for error messages.
func sizeString(size int64) string {
	switch size {
	case SizeDir:
		return "DIR"
	case SizeMissing:
		return "MISSING"
	default:
		return strconv.FormatInt(size, 10)
	}
}
