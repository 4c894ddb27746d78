// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// QueryRequested is a command to run a similarity query.
type QueryRequested struct {
	Text string
}

// QueryCompleted carries query matches back to the model.
type QueryCompleted struct {
	Text    string
	Matches []domain.Match
	Err     error
}

// MatchSelected is sent when a match is opened.
type MatchSelected struct {
	Match domain.Match
}

// PageLoaded carries the text of a page.
type PageLoaded struct {
	DocumentID domain.DocumentID
	Content    string
	Err        error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewQuery is the query input and matches view.
	ViewQuery ViewType = iota
	// ViewPage shows the text of one page.
	ViewPage
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewQuery:
		return "query"
	case ViewPage:
		return "page"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
