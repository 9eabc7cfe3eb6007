package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/ui/theme"
)

// Picker chooses one of a fixed set of answers with arrows, letters or
// digits.
type Picker struct {
	Options  []string
	Selected int
}

// NewPicker creates a picker with the first option highlighted.
func NewPicker(options []string) Picker {
	return Picker{Options: options}
}

// Update moves the highlight. It returns true when the user committed a
// choice, either with Enter or with a direct letter/digit shortcut.
func (p Picker) Update(msg tea.Msg) (Picker, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(p.Options) == 0 {
		return p, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
		return p, false
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
		return p, false
	case "enter":
		return p, true
	}

	if i, ok := shortcut(key); ok && i < len(p.Options) {
		p.Selected = i
		return p, true
	}
	return p, false
}

// shortcut maps "1".."9" and "a".."i" to an option index.
func shortcut(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'i':
		return int(c - 'a'), true
	}
	return 0, false
}

// Value returns the highlighted option.
func (p Picker) Value() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected]
}

// View renders the options. When answered is non-empty the correct option
// is shown in green and a wrong pick in red.
func (p Picker) View(answered, correct string) string {
	var b strings.Builder
	for i, opt := range p.Options {
		prefix := "  "
		if answered == "" && i == p.Selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+i, opt)

		var style lipgloss.Style
		switch {
		case answered != "" && strings.EqualFold(opt, correct):
			style = theme.Correct
		case answered != "" && strings.EqualFold(opt, answered):
			style = theme.Incorrect
		case answered != "":
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == p.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
