package session

// Command is a discrete navigation command the state machine accepts.
type Command string

const (
	CmdNone        Command = ""
	CmdNextVersion Command = "next_version"
	CmdPrevVersion Command = "prev_version"
	CmdMinVersion  Command = "min_version"
	CmdMaxVersion  Command = "max_version"
	CmdConfirm     Command = "confirm"
	CmdCancel      Command = "cancel"
	CmdOpenFolder  Command = "open_folder"
)

// commandNames maps config action names to commands, for keybinding
// overrides.
var commandNames = map[string]Command{
	"next_version": CmdNextVersion,
	"prev_version": CmdPrevVersion,
	"min_version":  CmdMinVersion,
	"max_version":  CmdMaxVersion,
	"confirm":      CmdConfirm,
	"cancel":       CmdCancel,
	"open_folder":  CmdOpenFolder,
}

// KeyBindings maps key names (bubbletea key strings) to commands. This is
// the default mapping; it can be overridden by config.
var KeyBindings = map[string]Command{
	"up":         CmdNextVersion,
	"right":      CmdNextVersion,
	"down":       CmdPrevVersion,
	"left":       CmdPrevVersion,
	"ctrl+up":    CmdMaxVersion,
	"ctrl+right": CmdMaxVersion,
	"ctrl+down":  CmdMinVersion,
	"ctrl+left":  CmdMinVersion,
	"enter":      CmdConfirm,
	"esc":        CmdCancel,
	"ctrl+o":     CmdOpenFolder,
}

// CommandForKey resolves a pressed key to its command.
func CommandForKey(key string) (Command, bool) {
	cmd, ok := KeyBindings[key]
	return cmd, ok
}

// UpdateKeyBindings rebinds commands from a config map of action name to
// key. The action's previous keys are removed before the new key is bound,
// so an override fully replaces the default.
func UpdateKeyBindings(overrides map[string]string) {
	for action, key := range overrides {
		cmd, ok := commandNames[action]
		if !ok || key == "" {
			continue
		}
		for k, v := range KeyBindings {
			if v == cmd {
				delete(KeyBindings, k)
			}
		}
		KeyBindings[key] = cmd
	}
}
