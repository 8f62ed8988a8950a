// Package ui is the terminal front end for version navigation: a table of
// discovered versions, a status line with the scanned frame range and
// thumbnail state, and a footer with the live key bindings.
package ui

import (
	"fmt"
	"regexp"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/vernav/internal/frames"
	"github.com/oakwood-commons/vernav/internal/resolver"
	"github.com/oakwood-commons/vernav/internal/session"
	"github.com/oakwood-commons/vernav/internal/thumb"
)

// thumbMsg reports a finished thumbnail generation. The handle may be
// stale by the time it arrives; Update drops it unless its key still
// matches the session's current thumbnail key.
type thumbMsg struct {
	handle *thumb.Handle
}

// waitThumb blocks on the handle and delivers it as a message. Completed
// handles deliver immediately because their done channel is closed.
func waitThumb(h *thumb.Handle) tea.Cmd {
	return func() tea.Msg {
		<-h.Done()
		return thumbMsg{handle: h}
	}
}

// Model is the Bubble Tea model for the version picker.
type Model struct {
	Session *session.Session
	Tbl     table.Model
	Status  StatusModel
	Footer  FooterModel
	NoColor bool

	WinWidth  int
	WinHeight int
}

var versionLabelRe = regexp.MustCompile(`[vV]\d+`)

// versionLabel extracts the padded version marker from an entry path.
func versionLabel(e resolver.Entry) string {
	ms := versionLabelRe.FindAllString(e.Path, -1)
	if len(ms) == 0 {
		return fmt.Sprintf("v%d", e.Version)
	}
	return ms[len(ms)-1]
}

// InitialModel builds the picker model over an open session.
func InitialModel(sess *session.Session, noColor bool) Model {
	columns := []table.Column{
		{Title: "VERSION", Width: 10},
		{Title: "ON DISK", Width: 8},
		{Title: "PATH", Width: 60},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	t.SetStyles(s)

	m := Model{
		Session: sess,
		Tbl:     t,
		Status:  NewStatusModel(),
		Footer:  NewFooterModel(),
		NoColor: noColor,
	}
	m.Status.NoColor = noColor
	m.Footer.NoColor = noColor
	m.syncTable()
	m.syncStatus()
	return m
}

// syncTable rebuilds the rows and places the cursor on the displayed
// version.
func (m *Model) syncTable() {
	entries := m.Session.Entries()
	rows := make([]table.Row, len(entries))
	cursor := 0
	pathWidth := 60
	if m.WinWidth > 22 {
		pathWidth = m.WinWidth - 22
	}
	for i, e := range entries {
		onDisk := "yes"
		if !e.Exists {
			onDisk = "missing"
		}
		rows[i] = table.Row{versionLabel(e), onDisk, ElideMiddle(e.Path, pathWidth)}
		if e.Version == m.Session.Current().Version {
			cursor = i
		}
	}
	m.Tbl.SetRows(rows)
	m.Tbl.SetCursor(cursor)
}

// syncStatus refreshes the sequence display and frame range for the
// displayed version.
func (m *Model) syncStatus() {
	r := m.Session.CurrentRange()
	m.Status.Range = r
	m.Status.SeqDisplay = frames.SequenceDisplay(m.Session.Current().Path, r)
}

// refreshThumb requests the displayed version's thumbnail and returns a
// command waiting for it, or nil when thumbnails are off.
func (m *Model) refreshThumb() tea.Cmd {
	h, ok := m.Session.RequestThumbnail()
	if !ok {
		m.Status.Thumb = ""
		return nil
	}
	m.applyThumb(h)
	if h.State() == thumb.Pending {
		return waitThumb(h)
	}
	return nil
}

// applyThumb reflects a handle's state in the status bar.
func (m *Model) applyThumb(h *thumb.Handle) {
	switch h.State() {
	case thumb.Ready:
		b := h.Image().Bounds()
		m.Status.Thumb = fmt.Sprintf("ready %dx%d", b.Dx(), b.Dy())
	case thumb.Failed:
		m.Status.Thumb = "failed: " + h.Err().Error()
	default:
		m.Status.Thumb = "loading"
	}
}

func (m *Model) Init() tea.Cmd {
	return m.refreshThumb()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.applyLayout()
		return m, nil

	case thumbMsg:
		// A slow generation may complete after further navigation; only
		// the handle matching the current key may touch the status bar.
		if key, ok := m.Session.ThumbKey(); ok && msg.handle.Key() == key {
			m.applyThumb(msg.handle)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		_ = m.Session.Do(session.CmdCancel)
		return m, tea.Quit
	}
	cmd, ok := session.CommandForKey(key)
	if !ok {
		return m, nil
	}
	m.Status.ErrMsg = ""
	switch cmd {
	case session.CmdConfirm, session.CmdCancel:
		if err := m.Session.Do(cmd); err != nil {
			m.Status.ErrMsg = err.Error()
			return m, nil
		}
		return m, tea.Quit
	case session.CmdOpenFolder:
		if err := m.Session.Do(cmd); err != nil {
			m.Status.ErrMsg = err.Error()
		}
		return m, nil
	default:
		if err := m.Session.Do(cmd); err != nil {
			m.Status.ErrMsg = err.Error()
			return m, nil
		}
		m.syncTable()
		m.syncStatus()
		return m, m.refreshThumb()
	}
}

// applyLayout distributes the window among table, status and footer.
func (m *Model) applyLayout() {
	if m.WinWidth > 0 {
		m.Status.SetWidth(m.WinWidth)
		m.Footer.SetWidth(m.WinWidth)
		pathWidth := m.WinWidth - 22
		if pathWidth < 20 {
			pathWidth = 20
		}
		m.Tbl.SetColumns([]table.Column{
			{Title: "VERSION", Width: 10},
			{Title: "ON DISK", Width: 8},
			{Title: "PATH", Width: pathWidth},
		})
	}
	if m.WinHeight > 5 {
		m.Tbl.SetHeight(m.WinHeight - 4)
	}
	m.syncTable()
}

func (m *Model) View() tea.View {
	title := m.Session.DisplayNode().Name()
	body := title + "\n" + m.Tbl.View() + "\n" + m.Status.View() + "\n" + m.Footer.View()
	v := tea.NewView(body)
	v.AltScreen = true
	return v
}
