package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompts from user-editable files laid out as
// <dir>/<profile>/<name>.txt. The default profile falls back to embedded
// prompts when its files are missing.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded prompts of the default profile.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a writing assistant for structured clinical reports kept in a wiki.
Follow the layout of any template you are given. Keep the style of the example reports.
Only state findings that are supported by the user's text. Answer with the report text only.

You may call tools to read wiki pages (get_document), find the template for a report type (get_template) or fetch example reports (get_examples).`,

	"system_continue": `When continuing a report, do not repeat text the user has already written.`,

	"write": `Write a complete report from the notes below.

Template:
{template}

Relevant passages from earlier reports:
{snippets}

Notes:
{text}`,

	"continue": `Continue the report below. Today is {current_date}.

{text}`,

	"summarize": `Summarise the following report in a few sentences.

{text}`,

	"compare": `Compare the current findings ({current_date}) with the previous report ({previous_date}) and describe what changed.

Previous report:
{previous}

Current findings:
{text}`,

	"rewrite": `Rewrite the text below so that it follows the structure and tone of these examples.

{examples}

Text:
{text}`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.wikiassist/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Get() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".wikiassist", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Get returns the prompt named name within profile.
// It does not fall back to another profile; it returns domain.ErrPromptNotFound
// when profile holds no such prompt.
func (s *PromptStore) Get(profile, name string) (string, error) {
	if !validSegment(profile) || !validSegment(name) {
		return "", fmt.Errorf("prompt %q in profile %q: %w", name, profile, domain.ErrPromptNotFound)
	}

	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)

	key := profile + "/" + name

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(profile, name)
	if err != nil {
		if profile == domain.DefaultProfile {
			if embedded, ok := defaultPrompts[name]; ok {
				return embedded, nil
			}
		}
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("prompt %q in profile %q: %w", name, profile, domain.ErrPromptNotFound)
		}
		return "", fmt.Errorf("load prompt %q: %w", key, err)
	}

	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		prompt = cached
	} else {
		s.cache[key] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// InitErr reports why the default prompt files could not be written, if they
// could not. Get keeps working from the embedded prompts in that case.
func (s *PromptStore) InitErr() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

// initialise creates the default profile directory and its prompt files.
// Called once via sync.Once on first Get().
func (s *PromptStore) initialise() {
	dir := filepath.Join(s.promptDir, domain.DefaultProfile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(dir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(profile, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, profile, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// validSegment rejects names that would escape the prompt directory.
func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Prompts

Each subdirectory is a profile. A prompt named <action> lives in
<profile>/<action>.txt. Prompts missing from a profile are taken from
the default profile.

## Special prompts

- ` + "`system.txt`" + ` - Base system prompt
- ` + "`system_<action>.txt`" + ` - Appended to the system prompt for one action

## Placeholders

Placeholders are written as {name} and replaced once, literally:

- ` + "`{text}`" + ` - The text sent by the editor
- ` + "`{template}`" + ` - Content of the page template
- ` + "`{examples}`" + ` - Example reports
- ` + "`{snippets}`" + ` - Passages retrieved from the vector store
- ` + "`{previous}`" + ` - The previous report
- ` + "`{current_date}`" + `, ` + "`{previous_date}`" + ` - Dates of the current and previous report
`
	return os.WriteFile(path, []byte(content), 0600)
}
