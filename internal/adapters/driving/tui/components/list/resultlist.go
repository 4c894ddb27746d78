// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// linesPerMatch is the height of one rendered match.
const linesPerMatch = 2

// MatchList displays query matches in a navigable list.
type MatchList struct {
	matches  []domain.Match
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates a new match list component.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the match list.
func (l *MatchList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list, scrolled so the selection stays visible.
func (l *MatchList) View() string {
	if len(l.matches) == 0 {
		return l.styles.Muted.Render("No matches")
	}

	lines := make([]string, 0, len(l.matches)*linesPerMatch+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Matches (%d)", len(l.matches))), "")

	visible := max((l.height-2)/linesPerMatch, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.matches))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderMatch(i, l.matches[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *MatchList) renderMatch(index int, m domain.Match) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	idWidth := max(l.width-12, 10)
	id := truncate(m.ID, idWidth)
	distance := fmt.Sprintf("%.4f", m.Distance)

	var head string
	if index == l.selected {
		head = l.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, idWidth, id, distance))
	} else {
		head = l.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, idWidth, id)) +
			l.styles.Distance.Render(distance)
	}

	preview := truncate(strings.Join(strings.Fields(m.Document), " "), max(l.width-6, 20))
	return head + "\n" + l.styles.Muted.Render("    "+preview)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetMatches replaces the list contents and resets the selection.
func (l *MatchList) SetMatches(matches []domain.Match) {
	l.matches = matches
	l.selected = 0
}

// Matches returns the current matches.
func (l *MatchList) Matches() []domain.Match {
	return l.matches
}

// Selected returns the index of the selected match.
func (l *MatchList) Selected() int {
	return l.selected
}

// SelectedMatch returns the selected match, or nil if the list is empty.
func (l *MatchList) SelectedMatch() *domain.Match {
	if l.selected < 0 || l.selected >= len(l.matches) {
		return nil
	}
	return &l.matches[l.selected]
}

// MoveUp moves selection up.
func (l *MatchList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *MatchList) MoveDown() {
	if l.selected < len(l.matches)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *MatchList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of matches.
func (l *MatchList) Count() int {
	return len(l.matches)
}
