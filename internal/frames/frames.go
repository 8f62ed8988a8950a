// Package frames determines the contiguous frame range and any gaps for a
// concrete version of a templated file-sequence path.
package frames

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/vernav/internal/template"
)

// Range is an inclusive frame range with the set of frames absent within
// it. The zero Range means "not a sequence" and is a valid result, not an
// error.
type Range struct {
	First   int
	Last    int
	Missing []int
}

// IsZero reports whether the range is empty (single still file or nothing
// found on disk).
func (r Range) IsZero() bool {
	return r.First == 0 && r.Last == 0 && len(r.Missing) == 0
}

// String compacts the range for display: "1001-1010", or
// "1001-1010 missing 1005-1006" when frames are absent.
func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	s := fmt.Sprintf("%d-%d", r.First, r.Last)
	if len(r.Missing) > 0 {
		s += " missing " + FormatFrames(r.Missing, ", ")
	}
	return s
}

// Scanner computes frame ranges from directory listings.
type Scanner struct {
	log logr.Logger
}

// NewScanner returns a Scanner logging recovered I/O warnings through log.
func NewScanner(log logr.Logger) *Scanner {
	return &Scanner{log: log}
}

// Scan lists the sequence directory of version n and computes the range.
// A template without a frame field yields the zero Range. An unlistable
// directory yields the zero Range plus a recorded warning.
func (s *Scanner) Scan(t *template.Template, n int) Range {
	pattern := t.FramePattern(n)
	if pattern == nil {
		return Range{}
	}
	dir := t.FrameDir(n)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.V(1).Info("frame scan failed", "dir", dir, "reason", err.Error())
		return Range{}
	}

	present := make(map[int]bool)
	var found []int
	for _, e := range entries {
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		f, err := strconv.Atoi(m[1])
		if err != nil || present[f] {
			continue
		}
		present[f] = true
		found = append(found, f)
	}
	if len(found) == 0 {
		return Range{}
	}
	sort.Ints(found)

	first, last := found[0], found[len(found)-1]
	var missing []int
	for f := first; f <= last; f++ {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return Range{First: first, Last: last, Missing: missing}
}

// FormatFrames compacts a sorted frame list into sub-ranges:
// [1, 2, 3, 7, 9, 10] -> "1-3, 7, 9-10".
func FormatFrames(frames []int, sep string) string {
	var parts []string
	flush := func(start, end int) {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
	}
	started := false
	var start, end int
	for _, f := range frames {
		if started && f == end+1 {
			end = f
			continue
		}
		if started {
			flush(start, end)
		}
		start, end = f, f
		started = true
	}
	if started {
		flush(start, end)
	}
	return strings.Join(parts, sep)
}

// SequenceDisplay renders a padded path with its range appended, the form
// hosts show for sequences: "shot.%04d.exr 1001-1010".
func SequenceDisplay(path string, r Range) string {
	if r.IsZero() {
		return path
	}
	return fmt.Sprintf("%s %d-%d", path, r.First, r.Last)
}
