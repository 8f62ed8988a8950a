// Package template extracts version and frame fields from file-sequence
// paths and produces reusable templates for substitution and disk scanning.
package template

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoVersionToken is returned when a path contains no version marker.
// Callers selecting a display candidate treat this as a soft failure and
// fall through to the next candidate.
var ErrNoVersionToken = errors.New("no version token in path")

var (
	// versRe captures version markers: v1, V01, v003, ...
	versRe = regexp.MustCompile(`[vV](\d+)`)
	// hashRe captures hash frame padding. A minimum of two hashes limits
	// conflicts with literal '#' characters: ##, ####, ...
	hashRe = regexp.MustCompile(`#{2,}`)
	// strfRe captures printf-style frame padding: %02d, %04d, ...
	strfRe = regexp.MustCompile(`%0(\d)d`)
)

// span is a byte range within the source path string.
type span struct {
	start, end int
}

// frameField describes a frame-padding field found in the filename portion
// of a path.
type frameField struct {
	span  span
	width int
	hash  bool
}

// Template is a path with its version field (and optionally a frame field)
// abstracted for substitution. The original source form of the path is
// preserved so relative inputs substitute back to relative outputs.
type Template struct {
	source  string
	baseDir string
	version int
	width   int
	upper   bool
	// spans are the marker ranges substituted together, ascending. The
	// last one is the designated version field; earlier ones are byte
	// identical repetitions of it (a path like shot_v003/plate_v003.exr
	// carries its version twice and both fields must move together).
	spans []span
	frame *frameField
}

// Parse builds a Template from a path. The last version marker in the path
// wins; earlier markers identical to it are substituted along with it.
func Parse(path string) (*Template, error) {
	return ParseIn(path, "")
}

// ParseIn is Parse with a base directory used to resolve relative paths for
// disk access. The original relative form is preserved for substitution.
func ParseIn(path, baseDir string) (*Template, error) {
	if path == "" {
		return nil, fmt.Errorf("parse %q: %w", path, ErrNoVersionToken)
	}
	locs := versRe.FindAllStringSubmatchIndex(path, -1)
	if len(locs) == 0 {
		return nil, fmt.Errorf("parse %q: %w", path, ErrNoVersionToken)
	}

	last := locs[len(locs)-1]
	lastText := path[last[0]:last[1]]
	var spans []span
	for _, loc := range locs {
		if path[loc[0]:loc[1]] == lastText {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	digits := path[last[2]:last[3]]
	version, err := strconv.Atoi(digits)
	if err != nil {
		return nil, fmt.Errorf("parse %q: version digits: %w", path, err)
	}

	t := &Template{
		source:  path,
		baseDir: baseDir,
		version: version,
		width:   len(digits),
		upper:   path[last[0]] == 'V',
		spans:   spans,
		frame:   findFrameField(path),
	}
	return t, nil
}

// findFrameField locates the last frame-padding field in the filename
// portion of the path. Printf padding takes precedence over hash padding,
// matching the order sequences are most commonly written.
func findFrameField(path string) *frameField {
	nameStart := lastSeparator(path) + 1
	if loc := lastMatchFrom(strfRe, path, nameStart); loc != nil {
		w, _ := strconv.Atoi(path[loc[2]:loc[3]])
		return &frameField{span: span{loc[0], loc[1]}, width: w}
	}
	if loc := lastMatchFrom(hashRe, path, nameStart); loc != nil {
		return &frameField{span: span{loc[0], loc[1]}, width: loc[1] - loc[0], hash: true}
	}
	return nil
}

// lastMatchFrom returns the last match of re in s that starts at or after
// the byte offset from, or nil.
func lastMatchFrom(re *regexp.Regexp, s string, from int) []int {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		if locs[i][0] >= from {
			return locs[i]
		}
	}
	return nil
}

// lastSeparator returns the index of the last path separator in s, treating
// both slash variants as separators, or -1.
func lastSeparator(s string) int {
	return max(strings.LastIndexByte(s, '/'), strings.LastIndexByte(s, '\\'))
}

// firstSeparatorFrom returns the index of the first path separator at or
// after the byte offset from, or -1.
func firstSeparatorFrom(s string, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == '/' || s[i] == '\\' {
			return i
		}
	}
	return -1
}

// Source returns the path exactly as it was given to Parse.
func (t *Template) Source() string { return t.source }

// Version returns the version number captured from the path.
func (t *Template) Version() int { return t.version }

// Width returns the digit count of the version field, used for re-padding.
func (t *Template) Width() int { return t.width }

// HasFrameField reports whether the path carries a frame-padding field.
func (t *Template) HasFrameField() bool { return t.frame != nil }

// FrameWidth returns the declared width of the frame field, or 0.
func (t *Template) FrameWidth() int {
	if t.frame == nil {
		return 0
	}
	return t.frame.width
}

// marker formats a full version marker string for n, preserving the case
// of the original marker and re-padding to the captured width. Numbers
// wider than the field are allowed to grow.
func (t *Template) marker(n int) string {
	v := 'v'
	if t.upper {
		v = 'V'
	}
	return fmt.Sprintf("%c%0*d", v, t.width, n)
}

// WithVersion substitutes version n into every version span of the source
// path. Parse(p).WithVersion(Parse(p).Version()) round-trips to p.
func (t *Template) WithVersion(n int) string {
	return t.substitute(t.marker(n), "")
}

// WithVersionFrame substitutes both the version and a concrete zero-padded
// frame number. It is only meaningful when HasFrameField is true.
func (t *Template) WithVersionFrame(n, frame int) string {
	if t.frame == nil {
		return t.WithVersion(n)
	}
	return t.substitute(t.marker(n), fmt.Sprintf("%0*d", t.frame.width, frame))
}

// WithFrame substitutes a concrete frame number at the parsed version.
func (t *Template) WithFrame(frame int) string {
	return t.WithVersionFrame(t.version, frame)
}

// substitute rewrites the source back to front so earlier spans keep their
// byte offsets valid while later ones change length.
func (t *Template) substitute(markerText, frameText string) string {
	type repl struct {
		span span
		text string
	}
	var repls []repl
	for _, sp := range t.spans {
		repls = append(repls, repl{sp, markerText})
	}
	if frameText != "" && t.frame != nil {
		repls = append(repls, repl{t.frame.span, frameText})
	}
	// Spans never overlap; order by start descending.
	for i := 0; i < len(repls); i++ {
		for j := i + 1; j < len(repls); j++ {
			if repls[j].span.start > repls[i].span.start {
				repls[i], repls[j] = repls[j], repls[i]
			}
		}
	}
	out := t.source
	for _, r := range repls {
		out = out[:r.span.start] + r.text + out[r.span.end:]
	}
	return out
}

// Abs resolves a source-form path against the template's base directory.
// Absolute inputs are returned unchanged.
func (t *Template) Abs(sourceForm string) string {
	if t.baseDir == "" || filepath.IsAbs(sourceForm) {
		return sourceForm
	}
	return filepath.Join(t.baseDir, sourceForm)
}

// AbsWithVersion is WithVersion resolved against the base directory.
func (t *Template) AbsWithVersion(n int) string {
	return t.Abs(t.WithVersion(n))
}

// scanSpan returns the outermost version span. Scanning starts there
// because the directory prefix ahead of it is the only part of the path
// guaranteed to be version free; every later segment may itself carry a
// co-substituted marker and so differ between versions.
func (t *Template) scanSpan() span { return t.spans[0] }

// VersionDir returns the absolute directory whose entries carry the
// outermost version field, and whether that field sits in a directory
// segment rather than the filename. For ".../render_v003/shot.%04d.exr"
// that is the directory containing render_v003.
func (t *Template) VersionDir() (dir string, isDirSegment bool) {
	sp := t.scanSpan()
	segStart := lastSeparator(t.source[:sp.start]) + 1
	isDirSegment = firstSeparatorFrom(t.source, sp.end) >= 0
	dir = t.source[:segStart]
	if dir == "" {
		dir = "."
	} else {
		dir = strings.TrimRight(dir, `/\`)
		if dir == "" {
			dir = string(filepath.Separator)
		}
	}
	return t.Abs(dir), isDirSegment
}

// VersionSegmentPattern returns an anchored regexp matching the outermost
// version bearing path segment with the version digits wildcarded. Every
// marker falling inside the segment is wildcarded and captured in its own
// submatch; a sibling entry belongs to one version only when all captures
// agree, which the caller must check.
func (t *Template) VersionSegmentPattern() *regexp.Regexp {
	sp := t.scanSpan()
	segStart := lastSeparator(t.source[:sp.start]) + 1
	segEnd := len(t.source)
	if i := firstSeparatorFrom(t.source, sp.end); i >= 0 {
		segEnd = i
	}
	v := "v"
	if t.upper {
		v = "V"
	}
	// Wildcard any frame padding that happens to share the segment so
	// sequence filenames still match sibling entries.
	var b strings.Builder
	b.WriteString("^")
	pos := segStart
	for _, s := range t.spans {
		if s.start >= segEnd {
			break
		}
		b.WriteString(quoteWithFramePadding(t.source[pos:s.start]))
		b.WriteString(v + `(\d+)`)
		pos = s.end
	}
	b.WriteString(quoteWithFramePadding(t.source[pos:segEnd]))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// FramePattern returns an anchored regexp matching concrete filenames of
// the sequence at version n, with submatch 1 capturing the frame digits.
// The numeric field accepts the declared width or wider. Returns nil when
// the template has no frame field.
func (t *Template) FramePattern(n int) *regexp.Regexp {
	if t.frame == nil {
		return nil
	}
	concrete := t.WithVersion(n)
	// Version substitution can shift the frame span; relocate it.
	ff := findFrameField(concrete)
	if ff == nil {
		return nil
	}
	nameStart := lastSeparator(concrete) + 1
	prefix := concrete[nameStart:ff.span.start]
	suffix := concrete[ff.span.end:]
	expr := "^" + regexp.QuoteMeta(prefix) + fmt.Sprintf(`(\d{%d,})`, ff.width) + regexp.QuoteMeta(suffix) + "$"
	return regexp.MustCompile(expr)
}

// FrameDir returns the absolute directory containing the sequence files at
// version n.
func (t *Template) FrameDir(n int) string {
	concrete := t.WithVersion(n)
	i := lastSeparator(concrete)
	if i < 0 {
		return t.Abs(".")
	}
	dir := strings.TrimRight(concrete[:i+1], `/\`)
	if dir == "" {
		dir = string(filepath.Separator)
	}
	return t.Abs(dir)
}

// quoteWithFramePadding regex-quotes a literal but leaves frame padding
// fields as digit wildcards.
func quoteWithFramePadding(literal string) string {
	var b strings.Builder
	rest := literal
	for rest != "" {
		loc := strfRe.FindStringSubmatchIndex(rest)
		hloc := hashRe.FindStringIndex(rest)
		if loc == nil && hloc == nil {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if loc != nil && (hloc == nil || loc[0] <= hloc[0]) {
			w, _ := strconv.Atoi(rest[loc[2]:loc[3]])
			b.WriteString(regexp.QuoteMeta(rest[:loc[0]]))
			b.WriteString(fmt.Sprintf(`\d{%d,}`, w))
			rest = rest[loc[1]:]
			continue
		}
		b.WriteString(regexp.QuoteMeta(rest[:hloc[0]]))
		b.WriteString(fmt.Sprintf(`\d{%d,}`, hloc[1]-hloc[0]))
		rest = rest[hloc[1]:]
	}
	return b.String()
}
