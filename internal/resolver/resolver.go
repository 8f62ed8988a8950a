// Package resolver enumerates sibling versions of a templated path on disk
// and supports directional navigation over the resulting ordered set.
package resolver

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/vernav/internal/template"
)

// Entry is one discovered version of a templated path.
type Entry struct {
	// Version is the integer extracted from the version field.
	Version int
	// Path is the source-form path with the version substituted.
	Path string
	// Exists reports whether the path resolves to real files on disk.
	Exists bool
}

// Direction selects how Navigate moves through an ordered version set.
type Direction int

const (
	Next Direction = iota
	Prev
	Min
	Max
)

// Resolver lists directories and derives version sets from templates.
// Directory listings are cached for the lifetime of the Resolver so rapid
// navigation does not rescan; discard the Resolver to invalidate.
type Resolver struct {
	mu    sync.Mutex
	dirs  map[string][]string
	log   logr.Logger
	statf func(string) bool
}

// New returns a Resolver logging recovered I/O warnings through log.
func New(log logr.Logger) *Resolver {
	return &Resolver{
		dirs: make(map[string][]string),
		log:  log,
		statf: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// list returns the entry names of dir, caching the result. An unlistable
// directory yields an empty slice and a recorded warning, never an error.
func (r *Resolver) list(dir string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if names, ok := r.dirs[dir]; ok {
		return names
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.V(1).Info("directory listing failed", "dir", dir, "reason", err.Error())
		r.dirs[dir] = nil
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	r.dirs[dir] = names
	return names
}

// Resolve enumerates the sibling versions of t present on disk, ascending
// and unique by version number.
func (r *Resolver) Resolve(t *template.Template) []Entry {
	dir, _ := t.VersionDir()
	pattern := t.VersionSegmentPattern()

	seen := make(map[int]bool)
	var versions []int
	for _, name := range r.list(dir) {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		// Repeated markers in the segment move together; an entry whose
		// captures disagree belongs to no version of this path.
		if !allEqual(m[1:]) {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		// Re-padding must reproduce the matched digits; a v001 sibling of
		// a v01 template is a different version set, not a match.
		if fmt.Sprintf("%0*d", t.Width(), n) != m[1] {
			continue
		}
		seen[n] = true
		versions = append(versions, n)
	}
	sort.Ints(versions)

	entries := make([]Entry, 0, len(versions))
	for _, n := range versions {
		entries = append(entries, Entry{
			Version: n,
			Path:    t.WithVersion(n),
			Exists:  r.exists(t, n),
		})
	}
	return entries
}

func allEqual(groups []string) bool {
	for _, g := range groups[1:] {
		if g != groups[0] {
			return false
		}
	}
	return true
}

// exists checks that version n of t resolves to at least one real file.
func (r *Resolver) exists(t *template.Template, n int) bool {
	if !t.HasFrameField() {
		return r.statf(t.AbsWithVersion(n))
	}
	pattern := t.FramePattern(n)
	for _, name := range r.list(t.FrameDir(n)) {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Current builds the Entry describing the version t was parsed with,
// whether or not it exists on disk.
func (r *Resolver) Current(t *template.Template) Entry {
	return Entry{
		Version: t.Version(),
		Path:    t.Source(),
		Exists:  r.exists(t, t.Version()),
	}
}

// Navigate steps through entries from current. Next and Prev clamp at the
// boundaries; Min and Max jump to the first and last entry. An empty set is
// a no-op returning current unchanged.
func Navigate(entries []Entry, current Entry, dir Direction) Entry {
	if len(entries) == 0 {
		return current
	}
	switch dir {
	case Min:
		return entries[0]
	case Max:
		return entries[len(entries)-1]
	case Next:
		for _, e := range entries {
			if e.Version > current.Version {
				return e
			}
		}
		return entries[len(entries)-1]
	case Prev:
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Version < current.Version {
				return entries[i]
			}
		}
		return entries[0]
	}
	return current
}
