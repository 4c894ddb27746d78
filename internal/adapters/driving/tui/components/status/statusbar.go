// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateQuerying State = "querying"
	StateError    State = "error"
	StateMatches  State = "matches"
)

// Bar displays the query state, the collection and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	collection string
	count      int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// The bar style pads one cell on each side.
	padding := max(b.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	prefix := ""
	if b.collection != "" {
		prefix = "[" + b.collection + "] "
	}

	switch b.state {
	case StateQuerying:
		return b.styles.Muted.Render(prefix + "Querying...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(prefix + "Error: " + b.message)
		}
		return b.styles.Error.Render(prefix + "Error")
	case StateMatches:
		return b.styles.Normal.Render(fmt.Sprintf("%s%d matches", prefix, b.count))
	default:
		return b.styles.Muted.Render(prefix + "Ready")
	}
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateMatches && b.count > 0 {
		bindings = b.keymap.MatchesHelp()
	}
	return b.styles.Muted.Render(hints(bindings))
}

func hints(bindings []key.Binding) string {
	out := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		out = append(out, h.Key+": "+h.Desc)
	}
	return strings.Join(out, " | ")
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetCollection sets the collection shown on the left.
func (b *Bar) SetCollection(name string) {
	b.collection = name
}

// SetCount sets the match count.
func (b *Bar) SetCount(count int) {
	b.count = count
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the status bar to the ready state, keeping the collection.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.count = 0
}
