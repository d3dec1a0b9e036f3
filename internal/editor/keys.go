package editor

import "strings"

// Command is an action the page performs in response to a key.
type Command int

const (
	CommandNone Command = iota
	CommandSave
	CommandDownload
	CommandClear
	CommandToggleHelp
	CommandCloseHelp
	// CommandHandled means the editor consumed the key itself.
	CommandHandled
)

func (c Command) String() string {
	switch c {
	case CommandSave:
		return "save"
	case CommandDownload:
		return "download"
	case CommandClear:
		return "clear"
	case CommandToggleHelp:
		return "toggle-help"
	case CommandCloseHelp:
		return "close-help"
	case CommandHandled:
		return "handled"
	}
	return "none"
}

// Key names as delivered by the UI layer.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "BackSpace"
	KeyEscape    = "Escape"
	KeyHelp      = "?"
)

// Binding describes one row of the help panel.
type Binding struct {
	Keys        string
	Description string
}

// Bindings lists the editor shortcuts in display order.
func Bindings() []Binding {
	return []Binding{
		{"V", "Select tool"},
		{"R", "Rectangle tool"},
		{"C", "Circle tool"},
		{"T", "Text tool"},
		{"P", "Pen tool"},
		{"Ctrl/Cmd+S", "Save canvas"},
		{"Ctrl/Cmd+D", "Download PNG"},
		{"Ctrl/Cmd+K", "Clear canvas"},
		{"Delete / Backspace", "Delete selected object"},
		{"?", "Toggle this help"},
		{"Esc", "Close help"},
	}
}

// HandleKey maps a key press to an editor change or a page command.
// shortcut is true when the platform shortcut modifier (Ctrl or Cmd) is held.
func (e *Editor) HandleKey(key string, shortcut bool) Command {
	if shortcut {
		switch strings.ToUpper(key) {
		case "S":
			return CommandSave
		case "D":
			return CommandDownload
		case "K":
			return CommandClear
		}
		return CommandNone
	}

	switch key {
	case KeyDelete, KeyBackspace:
		if e.DeleteSelected() {
			return CommandHandled
		}
		return CommandNone
	case KeyHelp:
		return CommandToggleHelp
	case KeyEscape:
		return CommandCloseHelp
	}

	for _, t := range Tools() {
		if strings.EqualFold(key, t.Shortcut()) {
			e.SetTool(t)
			return CommandHandled
		}
	}
	return CommandNone
}
