package editor

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTool = errors.New("unknown tool")

// Tool is the current input-interpretation mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRectangle
	ToolCircle
	ToolText
	ToolPen
)

var toolNames = [...]string{"select", "rectangle", "circle", "text", "pen"}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{ToolSelect, ToolRectangle, ToolCircle, ToolText, ToolPen}
}

func (t Tool) Valid() bool {
	return t >= ToolSelect && t <= ToolPen
}

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool maps a tool name to its Tool.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if strings.EqualFold(n, name) {
			return Tool(i), nil
		}
	}
	return ToolSelect, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Shortcut returns the single-letter key bound to t.
func (t Tool) Shortcut() string {
	switch t {
	case ToolSelect:
		return "V"
	case ToolRectangle:
		return "R"
	case ToolCircle:
		return "C"
	case ToolText:
		return "T"
	case ToolPen:
		return "P"
	}
	return ""
}
