// Package session owns the interactive navigation state for a version
// switch: which version is displayed, whether live preview is pushing
// provisional values to nodes, and how the change is committed or rolled
// back. It drives the resolver, frame scanner, and thumbnail cache in
// response to discrete commands and touches host state only through
// NodeAdapter.
package session

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/vernav/internal/frames"
	"github.com/oakwood-commons/vernav/internal/resolver"
	"github.com/oakwood-commons/vernav/internal/sortkey"
	"github.com/oakwood-commons/vernav/internal/template"
	"github.com/oakwood-commons/vernav/internal/thumb"
)

var (
	// ErrNoDisplayableNode means no selected node yielded a non-empty,
	// parseable path. The session never opens.
	ErrNoDisplayableNode = errors.New("no selected node has a versioned path")
	// ErrSessionClosed is returned for commands after confirm or cancel.
	ErrSessionClosed = errors.New("session is closed")
)

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Previewing
	Confirmed
	Cancelled
)

// FrameMode selects which frame of a scanned range feeds the thumbnail.
type FrameMode string

const (
	FrameFirst  FrameMode = "first"
	FrameMiddle FrameMode = "middle"
	FrameLast   FrameMode = "last"
	FrameCustom FrameMode = "custom"
)

// Options configures a Session.
type Options struct {
	// BaseDir resolves relative node paths for disk access.
	BaseDir string
	// LivePreview pushes provisional values to nodes on every navigation.
	LivePreview bool
	// ThumbEnabled requests preview images while navigating.
	ThumbEnabled bool
	// ThumbReformat is the geometric mapping for generated previews.
	ThumbReformat thumb.Mode
	// ThumbFrameMode picks the frame used for sequence previews.
	ThumbFrameMode FrameMode
	// ThumbCustomFrame is the frame used with FrameCustom.
	ThumbCustomFrame int
	// ChangeRange also pushes each node's freshly scanned frame range.
	ChangeRange bool
	// SetMissing applies a version name textually to nodes for which that
	// version does not exist on disk, instead of restoring them.
	SetMissing bool
	// SortKey overrides the default selection-order node sort.
	SortKey sortkey.Key
}

// nodeState tracks one selected node: its pre-session values, its own
// template, and its own precomputed version set.
type nodeState struct {
	node      NodeAdapter
	origPath  string
	origFirst int
	origLast  int
	origRange bool
	tmpl      *template.Template
	versions  []resolver.Entry
}

// Session is the navigation state machine for one dialog lifetime.
type Session struct {
	opts    Options
	log     logr.Logger
	res     *resolver.Resolver
	scanner *frames.Scanner
	cache   *thumb.Cache

	nodes   []nodeState
	display int
	entries []resolver.Entry
	current resolver.Entry
	state   State
}

// New snapshots the selection, picks the display candidate, and resolves
// its version set. Every node's own version set is precomputed up front so
// live preview stays cheap while navigating.
//
// cache may be nil when thumbnails are disabled.
func New(selected []Selected, opts Options, cache *thumb.Cache, log logr.Logger) (*Session, error) {
	if opts.ThumbReformat == "" {
		opts.ThumbReformat = thumb.DefaultMode
	}
	if opts.ThumbFrameMode == "" {
		opts.ThumbFrameMode = FrameMiddle
	}

	s := &Session{
		opts:    opts,
		log:     log,
		res:     resolver.New(log),
		scanner: frames.NewScanner(log),
		cache:   cache,
		display: -1,
	}

	items := make([]sortkey.Item, len(selected))
	for i, sel := range selected {
		items[i] = sortkey.Item{Name: sel.Node.Name(), Index: i, Depth: sel.Depth}
	}
	for _, i := range sortkey.Order(items, opts.SortKey) {
		node := selected[i].Node
		ns := nodeState{node: node, origPath: node.PathValue()}
		ns.origFirst, ns.origLast, ns.origRange = node.FrameRange()
		if ns.origPath != "" {
			tmpl, err := template.ParseIn(ns.origPath, opts.BaseDir)
			if err == nil {
				ns.tmpl = tmpl
				ns.versions = s.res.Resolve(tmpl)
			} else if !errors.Is(err, template.ErrNoVersionToken) {
				return nil, fmt.Errorf("node %s: %w", node.Name(), err)
			}
		}
		if s.display < 0 && ns.tmpl != nil {
			s.display = len(s.nodes)
		}
		s.nodes = append(s.nodes, ns)
	}
	if s.display < 0 {
		return nil, ErrNoDisplayableNode
	}

	dn := s.nodes[s.display]
	s.entries = dn.versions
	s.current = s.res.Current(dn.tmpl)
	return s, nil
}

// State returns the session lifecycle state.
func (s *Session) State() State { return s.state }

// Current returns the displayed version entry.
func (s *Session) Current() resolver.Entry { return s.current }

// Entries returns the display candidate's ordered version set.
func (s *Session) Entries() []resolver.Entry { return s.entries }

// DisplayNode returns the display candidate's adapter.
func (s *Session) DisplayNode() NodeAdapter { return s.nodes[s.display].node }

// CurrentRange scans the display candidate's frame range at the displayed
// version.
func (s *Session) CurrentRange() frames.Range {
	return s.scanner.Scan(s.nodes[s.display].tmpl, s.current.Version)
}

// Do applies one navigation command. Terminal states reject all commands.
func (s *Session) Do(cmd Command) error {
	if s.state == Confirmed || s.state == Cancelled {
		return ErrSessionClosed
	}
	switch cmd {
	case CmdNextVersion:
		s.navigate(resolver.Next)
	case CmdPrevVersion:
		s.navigate(resolver.Prev)
	case CmdMinVersion:
		s.navigate(resolver.Min)
	case CmdMaxVersion:
		s.navigate(resolver.Max)
	case CmdConfirm:
		s.applyAll()
		s.state = Confirmed
	case CmdCancel:
		s.restoreAll()
		s.state = Cancelled
	case CmdOpenFolder:
		return s.openFolder()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// navigate recomputes the active entry and, under live preview, pushes
// provisional values to every node. The first navigation command moves an
// idle session into preview.
func (s *Session) navigate(dir resolver.Direction) {
	s.current = resolver.Navigate(s.entries, s.current, dir)
	if s.state == Idle {
		s.state = Previewing
	}
	if s.opts.LivePreview {
		s.applyAll()
	}
}

// applyAll applies the target version to every node independently.
func (s *Session) applyAll() {
	for i := range s.nodes {
		s.applyNode(&s.nodes[i], s.current.Version)
	}
}

// applyNode re-resolves the target version against one node's own version
// set. A node missing the target version is restored to its original
// values (or, under SetMissing, rewritten textually) — never forced to a
// path that belongs to another node's sequence.
func (s *Session) applyNode(ns *nodeState, version int) {
	if ns.tmpl == nil {
		s.restoreNode(ns)
		return
	}
	for _, e := range ns.versions {
		if e.Version == version {
			ns.node.SetPathValue(e.Path)
			s.pushRange(ns, version)
			return
		}
	}
	if s.opts.SetMissing {
		ns.node.SetPathValue(ns.tmpl.WithVersion(version))
		return
	}
	s.restoreNode(ns)
}

// pushRange scans and pushes the node's own frame range when configured.
func (s *Session) pushRange(ns *nodeState, version int) {
	if !s.opts.ChangeRange {
		return
	}
	r := s.scanner.Scan(ns.tmpl, version)
	if r.IsZero() {
		return
	}
	ns.node.SetFrameRange(r.First, r.Last)
}

// restoreAll puts every node back to its pre-session values.
func (s *Session) restoreAll() {
	for i := range s.nodes {
		s.restoreNode(&s.nodes[i])
	}
}

func (s *Session) restoreNode(ns *nodeState) {
	ns.node.SetPathValue(ns.origPath)
	if ns.origRange {
		ns.node.SetFrameRange(ns.origFirst, ns.origLast)
	}
}

// openFolder reveals the displayed version's directory through the host.
// It does not change session state.
func (s *Session) openFolder() error {
	dn := s.nodes[s.display]
	dir := filepath.Dir(dn.tmpl.Abs(s.current.Path))
	return dn.node.RevealInFileBrowser(dir)
}

// ThumbKey returns the cache key for the displayed version's preview, or
// false when thumbnails are disabled.
func (s *Session) ThumbKey() (thumb.Key, bool) {
	if !s.opts.ThumbEnabled {
		return thumb.Key{}, false
	}
	dn := s.nodes[s.display]
	v := s.current.Version
	if !dn.tmpl.HasFrameField() {
		return thumb.Key{Path: dn.tmpl.AbsWithVersion(v), Mode: s.opts.ThumbReformat}, true
	}
	r := s.scanner.Scan(dn.tmpl, v)
	frame := s.chooseFrame(r)
	return thumb.Key{
		Path:  dn.tmpl.Abs(dn.tmpl.WithVersionFrame(v, frame)),
		Frame: frame,
		Mode:  s.opts.ThumbReformat,
	}, true
}

// RequestThumbnail requests the displayed version's preview from the
// cache. The returned handle's key must be compared against the session's
// current key before its image is shown; a stale fulfillment is discarded
// by the caller, not cancelled here.
func (s *Session) RequestThumbnail() (*thumb.Handle, bool) {
	if s.cache == nil {
		return nil, false
	}
	key, ok := s.ThumbKey()
	if !ok {
		return nil, false
	}
	return s.cache.Request(key), true
}

// chooseFrame picks the preview frame within a scanned range.
func (s *Session) chooseFrame(r frames.Range) int {
	switch s.opts.ThumbFrameMode {
	case FrameCustom:
		return s.opts.ThumbCustomFrame
	case FrameFirst:
		return r.First
	case FrameLast:
		return r.Last
	default:
		return r.First + (r.Last-r.First)/2
	}
}
