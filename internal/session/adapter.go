package session

// NodeAdapter is the capability set a host node exposes to the session.
// The session never touches host state except through this interface.
type NodeAdapter interface {
	// Name returns the node's display name, available to sort keys.
	Name() string
	// PathValue returns the node's path attribute, possibly empty.
	PathValue() string
	// SetPathValue writes the node's path attribute.
	SetPathValue(path string)
	// FrameRange returns the node's frame range when it has one.
	FrameRange() (first, last int, ok bool)
	// SetFrameRange writes the node's frame range.
	SetFrameRange(first, last int)
	// RevealInFileBrowser asks the host to show path in its file browser.
	RevealInFileBrowser(path string) error
}

// Selected pairs a node with its nesting depth in the host selection.
// Selection order is implied by slice position.
type Selected struct {
	Node  NodeAdapter
	Depth int
}

// MemoryNode is a self-contained NodeAdapter holding its values directly.
// The CLI wraps ad-hoc paths in MemoryNodes; tests use them as fakes.
type MemoryNode struct {
	NodeName string
	Path     string
	First    int
	Last     int
	HasRange bool
	// Reveal overrides RevealInFileBrowser, which is otherwise a no-op.
	Reveal func(path string) error

	revealed []string
}

func (m *MemoryNode) Name() string      { return m.NodeName }
func (m *MemoryNode) PathValue() string { return m.Path }

func (m *MemoryNode) SetPathValue(path string) { m.Path = path }

func (m *MemoryNode) FrameRange() (int, int, bool) {
	return m.First, m.Last, m.HasRange
}

func (m *MemoryNode) SetFrameRange(first, last int) {
	m.First, m.Last, m.HasRange = first, last, true
}

func (m *MemoryNode) RevealInFileBrowser(path string) error {
	m.revealed = append(m.revealed, path)
	if m.Reveal != nil {
		return m.Reveal(path)
	}
	return nil
}

// Revealed returns the paths passed to RevealInFileBrowser, oldest first.
func (m *MemoryNode) Revealed() []string { return m.revealed }
