// Package page provides the page text view for the TUI.
package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// chromeLines is the height taken by the title, separator and footer.
const chromeLines = 6

// View shows the full text of the page a match belongs to.
type View struct {
	styles   *styles.Styles
	pages    driving.ContextService
	ctx      context.Context
	viewport viewport.Model

	match   domain.Match
	content string
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a page view. A nil pages service shows only the matched chunk.
func NewView(s *styles.Styles, pages driving.ContextService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		pages:    pages,
		ctx:      context.Background(),
		viewport: viewport.New(80, 24-chromeLines),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used to load pages.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetMatch switches to the page of m and returns the command that loads it.
func (v *View) SetMatch(m domain.Match) tea.Cmd {
	v.match = m
	v.content = ""
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")

	id := m.DocumentID()
	pages, ctx := v.pages, v.ctx
	return func() tea.Msg {
		if pages == nil {
			return messages.PageLoaded{DocumentID: id, Content: m.Document}
		}
		content, err := pages.GetDocument(ctx, id)
		return messages.PageLoaded{DocumentID: id, Content: content, Err: err}
	}
}

// Update handles messages for the page view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.PageLoaded:
		// A late load for a page we already left.
		if msg.DocumentID != v.match.DocumentID() {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.content = msg.Content
		v.render()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewQuery} }
		case "home", "g":
			v.viewport.GotoTop()
			return v, nil
		case "end", "G":
			v.viewport.GotoBottom()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render wraps the content to the current width and resets the scroll.
func (v *View) render() {
	width := max(v.width-4, 20)
	v.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(v.content))
	v.viewport.GotoTop()
}

// View renders the page view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(string(v.match.DocumentID())))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("matched %s (%.4f)", v.match.ID, v.match.Distance)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading page..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case strings.TrimSpace(v.content) == "":
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%3.f%% of %d lines",
			v.viewport.ScrollPercent()*100, v.viewport.TotalLineCount())))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeLines, 1)
	if v.content != "" {
		v.render()
	}
}

// Match returns the match being shown.
func (v *View) Match() domain.Match {
	return v.match
}

// Content returns the loaded page text.
func (v *View) Content() string {
	return v.content
}

// Loading reports whether the page is still loading.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// AtTop reports whether the page is scrolled to the top.
func (v *View) AtTop() bool {
	return v.viewport.AtTop()
}
