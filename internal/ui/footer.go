package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/vernav/internal/session"
)

// FooterModel renders the key binding hints. The hints follow the live
// binding table, so config overrides show their actual keys.
type FooterModel struct {
	NoColor bool
	Width   int
}

// NewFooterModel returns a footer with the default width.
func NewFooterModel() FooterModel {
	return FooterModel{Width: 92}
}

// SetWidth sets the render width of the footer.
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}

// footerActions is the display order of hinted commands.
var footerActions = []struct {
	cmd   session.Command
	label string
}{
	{session.CmdNextVersion, "next"},
	{session.CmdPrevVersion, "prev"},
	{session.CmdMaxVersion, "latest"},
	{session.CmdMinVersion, "earliest"},
	{session.CmdConfirm, "apply"},
	{session.CmdCancel, "cancel"},
	{session.CmdOpenFolder, "folder"},
}

// View renders the footer line.
func (m FooterModel) View() string {
	keyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		keyStyle = keyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
	}

	parts := []string{}
	for _, a := range footerActions {
		key := firstKeyFor(a.cmd)
		if key == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(key), a.label)
	}
	line := strings.Join(parts, " ")
	if m.Width > 0 {
		line = ElideMiddle(line, m.Width)
	}
	return line
}

// firstKeyFor picks a stable representative key for a command. Arrow keys
// win over their ctrl variants and over letters so the hint stays short.
func firstKeyFor(cmd session.Command) string {
	best := ""
	for key, c := range session.KeyBindings {
		if c != cmd {
			continue
		}
		if best == "" || keyRank(key) < keyRank(best) || (keyRank(key) == keyRank(best) && key < best) {
			best = key
		}
	}
	return best
}

func keyRank(key string) int {
	switch key {
	case "up", "down", "enter", "esc":
		return 0
	case "right", "left":
		return 1
	}
	if strings.HasPrefix(key, "ctrl+up") || strings.HasPrefix(key, "ctrl+down") {
		return 2
	}
	return 3
}
