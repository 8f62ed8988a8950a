package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/vernav/internal/session"
)

// Run starts the picker over an open session and blocks until it is
// confirmed or cancelled. Width and height of 0 auto-detect the terminal
// size. Extra ProgramOptions (e.g. custom IO for tests) mirror
// tea.NewProgram.
func Run(sess *session.Session, noColor bool, width, height int, opts ...tea.ProgramOption) error {
	m := InitialModel(sess, noColor)

	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	m.WinWidth = width
	m.WinHeight = height
	m.applyLayout()
	opts = append(opts, tea.WithWindowSize(width, height))

	prog := tea.NewProgram(&m, opts...)
	_, err := prog.Run()
	return err
}
