package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyquiz/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header and footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider lets a screen supply its own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen show a status, such as the running score,
// at the right of the header.
type StatusProvider interface {
	Status() string
}

// Busy is implemented by screens that are waiting on a remote call and
// must not be dismissed with Esc until it returns.
type Busy interface {
	Busy() bool
}
