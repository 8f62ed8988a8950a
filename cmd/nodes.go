package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/vernav/internal/session"
)

// openFolderFn is the active file-browser implementation. Tests replace it
// via StubOpenFolder to prevent side effects.
var openFolderFn = openFolderImpl

// StubOpenFolder replaces the file-browser launcher with a recorder and
// returns a restore function.
func StubOpenFolder(fn func(string) error) (restore func()) {
	orig := openFolderFn
	openFolderFn = fn
	return func() { openFolderFn = orig }
}

func openFolderImpl(dir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", dir)
	case "windows":
		cmd = exec.CommandContext(ctx, "explorer", dir)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open folder %s: %w", dir, err)
	}
	// Release the child; file browsers outlive the CLI.
	return cmd.Process.Release()
}

// ManifestNode is one entry of a node manifest. It satisfies
// session.NodeAdapter so a manifest can stand in for a host selection.
type ManifestNode struct {
	NodeName string `yaml:"name"`
	File     string `yaml:"file"`
	First    int    `yaml:"first"`
	Last     int    `yaml:"last"`
	HasRange bool   `yaml:"has_range"`
	Depth    int    `yaml:"depth"`
}

func (n *ManifestNode) Name() string             { return n.NodeName }
func (n *ManifestNode) PathValue() string        { return n.File }
func (n *ManifestNode) SetPathValue(path string) { n.File = path }

func (n *ManifestNode) FrameRange() (int, int, bool) {
	return n.First, n.Last, n.HasRange
}

func (n *ManifestNode) SetFrameRange(first, last int) {
	n.First, n.Last, n.HasRange = first, last, true
}

func (n *ManifestNode) RevealInFileBrowser(path string) error {
	return openFolderFn(path)
}

// manifest is the on-disk node list.
type manifest struct {
	Nodes []*ManifestNode `yaml:"nodes"`
}

// loadManifest reads a node manifest and returns the selection in file
// order.
func loadManifest(path string) ([]*ManifestNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("manifest %s lists no nodes", path)
	}
	for i, n := range m.Nodes {
		if n.NodeName == "" {
			n.NodeName = fmt.Sprintf("node%d", i+1)
		}
	}
	return m.Nodes, nil
}

// writeManifest writes the (possibly updated) node list back to path.
func writeManifest(path string, nodes []*ManifestNode) error {
	data, err := yaml.Marshal(manifest{Nodes: nodes})
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// selectedFromManifest wraps manifest nodes for the session.
func selectedFromManifest(nodes []*ManifestNode) []session.Selected {
	sel := make([]session.Selected, len(nodes))
	for i, n := range nodes {
		sel[i] = session.Selected{Node: n, Depth: n.Depth}
	}
	return sel
}
