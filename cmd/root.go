// Package cmd wires the vernav CLI: flag and config handling, node
// selection, and the interactive or scripted version switch.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/vernav/internal/session"
	"github.com/oakwood-commons/vernav/internal/sortkey"
	"github.com/oakwood-commons/vernav/internal/thumb"
	"github.com/oakwood-commons/vernav/internal/ui"
	"github.com/oakwood-commons/vernav/pkg/logger"
	"github.com/oakwood-commons/vernav/pkg/settings"
)

var (
	configFile  string
	baseDir     string
	nodesFile   string
	listOnly    bool
	pick        string
	writeBack   bool
	noThumbs    bool
	reformat    string
	frameMode   string
	customFrame int
	changeRange bool
	setMissing  bool
	livePreview bool
	sortKeyExpr string
	debug       bool
	noColor     bool
	winWidth    int
	winHeight   int

	rootCtx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [path]",
	Short: "Browse and switch versions of file-sequence paths",
	Long: `vernav discovers the sibling versions of a versioned file path
(e.g. plate_v012.%04d.exr), lets you step through them with preview of
frame ranges and thumbnails, and applies or rolls back the change.

A single path argument drives one node; --nodes loads a YAML manifest of
several nodes that move together, each re-resolved against its own
version set.`,
	Example: `
  vernav /shots/010/plate_v012.%04d.exr
  vernav --nodes reads.yaml --pick latest --write
  vernav /shots/010/plate_v012.%04d.exr --list`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		var level int8 = 0
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)

		params := settings.NewCliParams()
		params.MinLogLevel = level
		params.BaseDir = baseDir
		params.NoColor = noColor
		rootCtx = settings.IntoContext(rootCtx, params)
	},
	RunE: run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print vernav version",
	RunE: func(_ *cobra.Command, _ []string) error {
		v := settings.VersionInformation
		fmt.Printf("%s %s (commit %s, built %s)\n", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime) //nolint:forbidigo
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config-file", "c", "", "Path to config file (default: XDG config dir)")
	f.StringVarP(&baseDir, "base-dir", "C", "", "Directory relative node paths resolve against")
	f.StringVarP(&nodesFile, "nodes", "n", "", "YAML manifest of nodes to switch together")
	f.BoolVarP(&listOnly, "list", "l", false, "Print the discovered versions and exit")
	f.StringVarP(&pick, "pick", "p", "", "Non-interactive switch: next, prev, latest or earliest")
	f.BoolVarP(&writeBack, "write", "w", false, "Write applied paths back to the manifest")
	f.BoolVar(&noThumbs, "no-thumbs", false, "Disable thumbnail generation")
	f.StringVar(&reformat, "reformat", "", "Thumbnail geometry: fit, fill, distort or expanding")
	f.StringVar(&frameMode, "frame-mode", "", "Thumbnail frame: first, middle, last or custom")
	f.IntVar(&customFrame, "custom-frame", 0, "Frame used with --frame-mode=custom")
	f.BoolVar(&changeRange, "change-range", false, "Push each node's scanned frame range on apply")
	f.BoolVar(&setMissing, "set-missing", false, "Apply versions textually to nodes missing them on disk")
	f.BoolVar(&livePreview, "live-preview", false, "Push provisional values to nodes while navigating")
	f.StringVarP(&sortKeyExpr, "sort-key", "s", "", "CEL expression ordering nodes (variables: name, index, depth)")
	f.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	f.BoolVar(&noColor, "no-color", false, "Disable color output")
	f.IntVar(&winWidth, "width", 0, "Force terminal width (0 = auto)")
	f.IntVar(&winHeight, "height", 0, "Force terminal height (0 = auto)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	lgr := logger.FromContext(rootCtx)

	configFile = resolveConfigPath(configFile)
	cfg, err := loadMergedConfig(configFile)
	if err != nil {
		return err
	}
	session.UpdateKeyBindings(cfg.Keys)

	opts, err := sessionOptions(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	var nodes []*ManifestNode
	var selected []session.Selected
	switch {
	case nodesFile != "":
		nodes, err = loadManifest(nodesFile)
		if err != nil {
			return err
		}
		selected = selectedFromManifest(nodes)
	case len(args) == 1:
		selected = []session.Selected{{Node: &session.MemoryNode{
			NodeName: "path",
			Path:     args[0],
			Reveal:   openFolderFn,
		}}}
	default:
		return cmd.Help()
	}

	var cache *thumb.Cache
	if opts.ThumbEnabled {
		cache = thumb.New(thumb.Options{
			Width:    uint(cfg.Thumbnails.Width),
			Height:   uint(cfg.Thumbnails.Height),
			Workers:  cfg.Thumbnails.Workers,
			Capacity: cfg.Thumbnails.Capacity,
		}, *lgr)
		defer cache.Close()
	}

	sess, err := session.New(selected, opts, cache, *lgr)
	if err != nil {
		return err
	}

	if listOnly {
		printVersionList(cmd, sess)
		return nil
	}

	if pick != "" {
		if err := runPick(sess, pick); err != nil {
			return err
		}
	} else {
		if err := ui.Run(sess, noColor, winWidth, winHeight); err != nil {
			return err
		}
	}

	if sess.State() != session.Confirmed {
		lgr.V(1).Info("no change applied", "state", int(sess.State()))
		return nil
	}
	printApplied(cmd, selected)
	if writeBack && nodesFile != "" {
		return writeManifest(nodesFile, nodes)
	}
	return nil
}

// sessionOptions merges config defaults with explicitly set flags.
func sessionOptions(flags *pflag.FlagSet, cfg Config) (session.Options, error) {
	opts := session.Options{
		BaseDir:          cfg.App.BaseDir,
		LivePreview:      boolOr(cfg.App.LivePreview, true),
		ThumbEnabled:     boolOr(cfg.Thumbnails.Enabled, true),
		ThumbFrameMode:   session.FrameMode(cfg.Thumbnails.FrameMode),
		ThumbCustomFrame: cfg.Thumbnails.CustomFrame,
		ChangeRange:      boolOr(cfg.Apply.ChangeRange, true),
		SetMissing:       boolOr(cfg.Apply.SetMissing, false),
	}

	mode, err := thumb.ParseMode(cfg.Thumbnails.Reformat)
	if err != nil {
		return opts, err
	}
	opts.ThumbReformat = mode

	if flags.Changed("base-dir") {
		opts.BaseDir = baseDir
	}
	if flags.Changed("live-preview") {
		opts.LivePreview = livePreview
	}
	if flags.Changed("no-thumbs") {
		opts.ThumbEnabled = !noThumbs
	}
	if flags.Changed("reformat") {
		mode, err := thumb.ParseMode(reformat)
		if err != nil {
			return opts, err
		}
		opts.ThumbReformat = mode
	}
	if flags.Changed("frame-mode") {
		opts.ThumbFrameMode = session.FrameMode(frameMode)
	}
	if flags.Changed("custom-frame") {
		opts.ThumbCustomFrame = customFrame
		opts.ThumbFrameMode = session.FrameCustom
	}
	if flags.Changed("change-range") {
		opts.ChangeRange = changeRange
	}
	if flags.Changed("set-missing") {
		opts.SetMissing = setMissing
	}

	expr := cfg.Sort.Key
	if flags.Changed("sort-key") {
		expr = sortKeyExpr
	}
	if expr != "" {
		key, err := sortkey.CompileCEL(expr)
		if err != nil {
			return opts, err
		}
		opts.SortKey = key
	}
	return opts, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// runPick applies one scripted navigation step and confirms.
func runPick(sess *session.Session, pick string) error {
	var cmd session.Command
	switch strings.ToLower(pick) {
	case "next":
		cmd = session.CmdNextVersion
	case "prev":
		cmd = session.CmdPrevVersion
	case "latest", "max":
		cmd = session.CmdMaxVersion
	case "earliest", "min":
		cmd = session.CmdMinVersion
	default:
		return fmt.Errorf("invalid --pick value %q (expected next, prev, latest or earliest)", pick)
	}
	if err := sess.Do(cmd); err != nil {
		return err
	}
	return sess.Do(session.CmdConfirm)
}

// printVersionList prints the discovered version set, marking the
// displayed version.
func printVersionList(cmd *cobra.Command, sess *session.Session) {
	out := cmd.OutOrStdout()
	current := sess.Current().Version
	for _, e := range sess.Entries() {
		marker := " "
		if e.Version == current {
			marker = "*"
		}
		onDisk := ""
		if !e.Exists {
			onDisk = "  (missing)"
		}
		fmt.Fprintf(out, "%s v%d  %s%s\n", marker, e.Version, e.Path, onDisk)
	}
	if len(sess.Entries()) == 0 {
		fmt.Fprintln(out, "no versions found")
	}
}

// printApplied prints the post-apply value of every node.
func printApplied(cmd *cobra.Command, selected []session.Selected) {
	out := cmd.OutOrStdout()
	for _, sel := range selected {
		n := sel.Node
		if first, last, ok := n.FrameRange(); ok {
			fmt.Fprintf(out, "%s: %s %d-%d\n", n.Name(), n.PathValue(), first, last)
		} else {
			fmt.Fprintf(out, "%s: %s\n", n.Name(), n.PathValue())
		}
	}
}

// Logger returns the logger bound during PersistentPreRun, for tests and
// embedders.
func Logger() *logr.Logger {
	return logger.FromContext(rootCtx)
}
