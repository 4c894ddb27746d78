package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

func stubProgram(t *testing.T, run func(app *tui.App) error) {
	t.Helper()
	saved := runProgram
	runProgram = run
	t.Cleanup(func() { runProgram = saved })
}

func TestTUICmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"tui"})
	require.NoError(t, err)
	assert.Equal(t, "tui", cmd.Name())
}

func TestTUICmd_QueriesSelectedCollection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCollectionService{queryRes: &domain.QueryResult{IDs: [][]string{{"reports:a@1"}}}}
	collectionService = mock

	stubProgram(t, func(app *tui.App) error {
		// Drive one query through the model instead of a terminal.
		_, _ = app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		_, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("knee")})
		_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		done, ok := cmd().(messages.QueryCompleted)
		require.True(t, ok)
		assert.Len(t, done.Matches, 1)
		return nil
	})

	_, err := execute("tui", "-c", "reports", "-n", "3")
	require.NoError(t, err)

	assert.Equal(t, "reports", mock.lastCollection)
	assert.Equal(t, "knee", mock.lastText)
	assert.Equal(t, 3, mock.lastLimit)
}

func TestTUICmd_ProgramError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stubProgram(t, func(*tui.App) error { return errors.New("no tty") })

	_, err := execute("tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: no tty")
}

func TestTUICmd_NoCollectionService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	collectionService = nil

	stubProgram(t, func(*tui.App) error {
		t.Fatal("program must not start")
		return nil
	})

	_, err := execute("tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection service not configured")
}
