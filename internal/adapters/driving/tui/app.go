package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/views/page"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/views/query"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	queryView *query.View
	pageView  *page.View

	// currentView tracks which view is active; previousView is restored
	// when help is closed.
	currentView  messages.ViewType
	previousView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		queryView:   query.NewView(s, km, ports.Collection, ports.CollectionName, ports.limit()),
		pageView:    page.NewView(s, ports.Context),
		currentView: messages.ViewQuery,
	}, nil
}

// WithContext sets the context used by service calls and the program.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.queryView.WithContext(ctx)
	a.pageView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.queryView.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.queryView.SetDimensions(msg.Width, msg.Height)
		a.pageView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QueryCompleted:
		a.err = msg.Err
		a.queryView, cmd = a.queryView.Update(msg)
		return a, cmd

	case messages.MatchSelected:
		a.currentView = messages.ViewPage
		return a, a.pageView.SetMatch(msg.Match)

	case messages.PageLoaded:
		a.pageView, cmd = a.pageView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewPage {
			a.pageView, cmd = a.pageView.Update(msg)
		} else {
			a.queryView, cmd = a.queryView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		switch msg.String() {
		case "esc", "?", "q":
			a.currentView = a.previousView
		}
		return a, nil
	}

	// While typing, "?" is part of the query.
	typing := a.currentView == messages.ViewQuery && a.queryView.InputFocused()
	if !typing && keymap.Matches(msg.String(), a.keymap.Help) {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	return a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewQuery:
		a.queryView, cmd = a.queryView.Update(msg)
	case messages.ViewPage:
		a.pageView, cmd = a.pageView.Update(msg)
	case messages.ViewHelp:
		// Help is static.
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewPage:
		return a.pageView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.queryView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Query:
  (type)      Enter query text
  enter       Run the query against ` + a.ports.CollectionName + `
  esc         Browse matches, or quit when there are none

Matches:
  j/k, ↑/↓    Navigate matches
  enter       Open the page of the selected match
  n, /        New query
  esc         Edit the current query
  q           Quit

Page:
  j/k, ↑/↓    Scroll
  pgup/pgdn   Scroll a page
  g/G         Top/bottom
  esc         Back to matches

` + a.styles.Help.Render("[esc] close help  [ctrl+c] quit")
}

// Run starts the TUI and blocks until it exits. Cancelling the context
// passed to WithContext ends the program without an error.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}
