// Package query provides the similarity query view for the TUI.
package query

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// View is the query input, match list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.MatchList
	statusbar *status.Bar

	collections driving.CollectionService
	collection  string
	limit       int
	ctx         context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing matches
}

// NewView creates a query view over the named collection.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	collections driving.CollectionService,
	collection string,
	limit int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetCollection(collection)

	return &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQueryInput(s),
		list:        list.NewMatchList(s),
		statusbar:   bar,
		collections: collections,
		collection:  collection,
		limit:       limit,
		ctx:         context.Background(),
		width:       80,
		height:      24,
		focusInput:  true,
	}
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the query view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QueryCompleted:
		v.handleQueryCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	// Cursor blink and other ticks.
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Open):
		m := v.list.SelectedMatch()
		if m == nil {
			return v, nil
		}
		selected := *m
		return v, func() tea.Msg { return messages.MatchSelected{Match: selected} }

	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()

	case keymap.Matches(msg.String(), v.keymap.Back):
		// Edit the current query.
		v.focusInput = true
		return v, v.input.Focus()

	case keymap.Matches(msg.String(), v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			return v, nil
		}
		v.err = nil
		v.statusbar.SetState(status.StateQuerying)
		return v, v.runQuery(text)

	case tea.KeyEsc:
		if v.list.Count() > 0 {
			v.focusInput = false
			v.input.Blur()
			return v, nil
		}
		return v, func() tea.Msg { return messages.Quit{} }

	case tea.KeyCtrlC:
		return v, func() tea.Msg { return messages.Quit{} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// runQuery returns a command that queries the collection.
func (v *View) runQuery(text string) tea.Cmd {
	collections, collection, limit, ctx := v.collections, v.collection, v.limit, v.ctx
	return func() tea.Msg {
		if collections == nil {
			return messages.QueryCompleted{Text: text, Err: ErrNoCollectionService}
		}
		res, err := collections.Query(ctx, collection, text, limit)
		if err != nil {
			return messages.QueryCompleted{Text: text, Err: err}
		}
		return messages.QueryCompleted{Text: text, Matches: res.Matches()}
	}
}

func (v *View) handleQueryCompleted(msg messages.QueryCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetMatches(msg.Matches)
	v.statusbar.SetState(status.StateMatches)
	v.statusbar.SetCount(len(msg.Matches))

	if len(msg.Matches) > 0 {
		v.focusInput = false
		v.input.Blur()
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the query view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("wikiassist") + v.styles.Muted.Render("  "+v.collection),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Header, input box and status bar take ten lines.
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(text string) {
	v.input.SetValue(text)
}

// Matches returns the current matches.
func (v *View) Matches() []domain.Match {
	return v.list.Matches()
}

// SelectedMatch returns the selected match, or nil.
func (v *View) SelectedMatch() *domain.Match {
	return v.list.SelectedMatch()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}
