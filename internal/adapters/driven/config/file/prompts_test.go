package file

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

func writePrompt(t *testing.T, dir, profile, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, profile), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, profile, name+".txt"), []byte(content), 0600))
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".wikiassist", "prompts"), store.Dir())
}

func TestPromptStore_Get_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Get(domain.DefaultProfile, driven.PromptSystem)
	require.NoError(t, err)
	require.NoError(t, store.InitErr())

	for _, f := range []string{"default/system.txt", "default/write.txt", "default/continue.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Get_ReturnsDefaultContent(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Get(domain.DefaultProfile, "write")

	require.NoError(t, err)
	assert.Contains(t, prompt, "{template}")
	assert.Contains(t, prompt, "{text}")
}

func TestPromptStore_Get_ProfileFile(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "mri", "write", "\n  MRI prompt {text}  \n")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Get("mri", "write")

	require.NoError(t, err)
	assert.Equal(t, "MRI prompt {text}", prompt)
}

func TestPromptStore_Get_NoCrossProfileFallback(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("mri", "write")

	assert.True(t, errors.Is(err, domain.ErrPromptNotFound))
}

func TestPromptStore_Get_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(domain.DefaultProfile, "nonexistent_prompt")

	assert.True(t, errors.Is(err, domain.ErrPromptNotFound))
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Get_RejectsPathTraversal(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, tc := range []struct{ profile, name string }{
		{"..", "system"},
		{"default", "../README"},
		{"", "system"},
		{"default", ""},
	} {
		_, err := store.Get(tc.profile, tc.name)
		assert.True(t, errors.Is(err, domain.ErrPromptNotFound), "%q/%q", tc.profile, tc.name)
	}
}

func TestPromptStore_Get_FallsBackToEmbedded(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Get(domain.DefaultProfile, driven.PromptSystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "default", "system.txt")))
	store.Reload()

	prompt, err := store.Get(domain.DefaultProfile, driven.PromptSystem)

	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSystem], prompt)
}

func TestPromptStore_Get_CachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "ct", "write", "first")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Get("ct", "write")
	require.NoError(t, err)
	assert.Equal(t, "first", prompt)

	writePrompt(t, dir, "ct", "write", "second")

	prompt, err = store.Get("ct", "write")
	require.NoError(t, err)
	assert.Equal(t, "first", prompt)

	store.Reload()

	prompt, err = store.Get("ct", "write")
	require.NoError(t, err)
	assert.Equal(t, "second", prompt)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, domain.DefaultProfile, driven.PromptSystem, "pre-existing system prompt")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Get(domain.DefaultProfile, driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing system prompt", prompt)

	data, err := os.ReadFile(filepath.Join(dir, domain.DefaultProfile, "system.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pre-existing system prompt", string(data))
}

func TestPromptStore_InitFailureUsesEmbedded(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Get(domain.DefaultProfile, driven.PromptSystem)

	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSystem], prompt)
	assert.Error(t, store.InitErr())
}

func TestPromptStore_Get_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	results := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			prompt, err := store.Get(domain.DefaultProfile, "summarize")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- prompt
		}()
	}

	wg.Wait()
	close(results)

	for prompt := range results {
		assert.Equal(t, defaultPrompts["summarize"], prompt)
	}
}
