package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/vernav/internal/resolver"
	"github.com/oakwood-commons/vernav/internal/session"
)

func fixtureSession(t *testing.T, versions []int, current int) (*session.Session, *session.MemoryNode) {
	t.Helper()
	dir := t.TempDir()
	for _, v := range versions {
		path := filepath.Join(dir, fmt.Sprintf("plate_v%d.png", v))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	node := &session.MemoryNode{
		NodeName: "read1",
		Path:     filepath.Join(dir, fmt.Sprintf("plate_v%d.png", current)),
	}
	s, err := session.New([]session.Selected{{Node: node}}, session.Options{}, nil, logr.Discard())
	require.NoError(t, err)
	return s, node
}

func TestNavigationKeysMoveSelection(t *testing.T) {
	sess, _ := fixtureSession(t, []int{1, 2, 5}, 1)
	m := InitialModel(sess, true)
	require.Equal(t, 0, m.Tbl.Cursor())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	require.Nil(t, cmd)
	require.Equal(t, 2, sess.Current().Version)
	require.Equal(t, 1, m.Tbl.Cursor())

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModCtrl})
	require.Equal(t, 5, sess.Current().Version)
	require.Equal(t, 2, m.Tbl.Cursor())

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModCtrl})
	require.Equal(t, 1, sess.Current().Version)
	require.Equal(t, 0, m.Tbl.Cursor())
}

func TestEnterConfirms(t *testing.T) {
	sess, node := fixtureSession(t, []int{1, 2}, 1)
	m := InitialModel(sess, true)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, session.Confirmed, sess.State())
	require.Contains(t, node.Path, "plate_v2.png")
}

func TestEscCancelsAndRestores(t *testing.T) {
	sess, node := fixtureSession(t, []int{1, 2}, 1)
	orig := node.Path
	m := InitialModel(sess, true)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	require.Equal(t, session.Cancelled, sess.State())
	require.Equal(t, orig, node.Path)
}

func TestCtrlCCancels(t *testing.T) {
	sess, _ := fixtureSession(t, []int{1, 2}, 1)
	m := InitialModel(sess, true)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	require.Equal(t, session.Cancelled, sess.State())
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	sess, _ := fixtureSession(t, []int{1, 2}, 1)
	m := InitialModel(sess, true)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'x'})
	require.Nil(t, cmd)
	require.Equal(t, session.Idle, sess.State())
	require.Equal(t, 1, sess.Current().Version)
}

func TestWindowSizeWidensPathColumn(t *testing.T) {
	sess, _ := fixtureSession(t, []int{1, 2}, 1)
	m := InitialModel(sess, true)

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Nil(t, cmd)
	require.Equal(t, 120, m.WinWidth)
	require.Equal(t, 120, m.Status.Width)
}

func TestVersionLabelKeepsPadding(t *testing.T) {
	require.Equal(t, "v007", versionLabel(resolver.Entry{Version: 7, Path: "/shots/plate_v007.exr"}))
	require.Equal(t, "V3", versionLabel(resolver.Entry{Version: 3, Path: "/shots/V3/plate.exr"}))
	require.Equal(t, "v2", versionLabel(resolver.Entry{Version: 2, Path: "no marker here"}))
	// Two markers move together; the label shows the later one.
	require.Equal(t, "v012", versionLabel(resolver.Entry{Version: 12, Path: "/v012/plate_v012.exr"}))
}

func TestStatusViewShowsSequenceAndMissing(t *testing.T) {
	s := NewStatusModel()
	s.NoColor = true
	s.SeqDisplay = "/shots/plate_v2.%04d.exr 1001-1010"
	s.Range.First = 1001
	s.Range.Last = 1010
	s.Range.Missing = []int{1005}
	s.Thumb = "loading"

	out := s.View()
	require.Contains(t, out, "1001-1010")
	require.Contains(t, out, "1 missing")
	require.Contains(t, out, "thumb: loading")
}

func TestStatusViewPrefersError(t *testing.T) {
	s := NewStatusModel()
	s.NoColor = true
	s.SeqDisplay = "/shots/plate_v2.exr"
	s.ErrMsg = "open folder failed"

	out := s.View()
	require.Contains(t, out, "open folder failed")
	require.NotContains(t, out, "plate_v2")
}

func TestFooterShowsDefaultBindings(t *testing.T) {
	f := NewFooterModel()
	f.NoColor = true
	f.Width = 200

	out := f.View()
	require.Contains(t, out, "up next")
	require.Contains(t, out, "enter apply")
	require.Contains(t, out, "esc cancel")
	require.Contains(t, out, "ctrl+o folder")
}
