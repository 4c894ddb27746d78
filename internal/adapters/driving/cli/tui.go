package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a collection interactively",
	Long: `Launch the interactive terminal browser. Type a query to list the
closest paragraphs of the collection, then open a match to read its page.

Controls:
  Enter    - Query / open page
  ↑/k, ↓/j - Navigate matches, scroll pages
  n        - New query
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

// runProgram runs the TUI; tests replace it to stay off the terminal.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{
		Collection:     collectionService,
		Context:        contextService,
		CollectionName: collectionName(),
		Limit:          limitOr(tui.DefaultLimit),
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := runProgram(app.WithContext(cmd.Context())); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
