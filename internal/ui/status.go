package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/vernav/internal/frames"
)

// StatusModel is the passive status bar under the version table. It shows
// the displayed sequence, its frame range, the thumbnail state and any
// transient error.
type StatusModel struct {
	SeqDisplay string // "path first-last" of the displayed version
	Range      frames.Range
	Thumb      string // "", "loading", "ready WxH", "failed: ..."
	ErrMsg     string
	NoColor    bool
	Width      int
}

// NewStatusModel returns a status model with the default width.
func NewStatusModel() StatusModel {
	return StatusModel{Width: 92}
}

// SetWidth sets the render width of the status bar.
func (m *StatusModel) SetWidth(width int) {
	m.Width = width
}

// View renders the status bar.
func (m StatusModel) View() string {
	style := lipgloss.NewStyle()
	message := m.message(&style)

	target := 92
	if m.Width > 0 {
		target = m.Width
	}
	message = ElideMiddle(message, target)
	return style.Width(target).Render(message)
}

func (m StatusModel) message(style *lipgloss.Style) string {
	if m.ErrMsg != "" {
		if !m.NoColor {
			*style = style.Foreground(lipgloss.Color("9"))
		}
		return m.ErrMsg
	}
	if !m.NoColor {
		*style = style.Foreground(lipgloss.Color("245"))
	}
	var parts []string
	if m.SeqDisplay != "" {
		parts = append(parts, m.SeqDisplay)
	}
	if len(m.Range.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", len(m.Range.Missing)))
	}
	if m.Thumb != "" {
		parts = append(parts, "thumb: "+m.Thumb)
	}
	return strings.Join(parts, "  ")
}
