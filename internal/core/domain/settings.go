package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultProfile is the prompt profile consulted when a profile lacks a prompt.
const DefaultProfile = "default"

// VectorStoreSettings holds the vector store connection.
type VectorStoreSettings struct {
	Host     string
	Port     int
	Tenant   string
	Database string

	// Collection is the default collection for empty and playground namespaces.
	Collection string

	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables limiting.
	RateLimit float64
}

// BaseURL returns the vector store root URL.
func (v VectorStoreSettings) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", v.Host, v.Port)
}

// EmbeddingSettings holds the Ollama embedding provider configuration.
type EmbeddingSettings struct {
	Host      string
	Port      int
	Model     string
	KeepAlive string
	Timeout   time.Duration
}

// BaseURL returns the embedding service root URL.
func (e EmbeddingSettings) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Host != "" && e.Model != ""
}

// CompletionSettings holds the chat completion endpoint configuration.
type CompletionSettings struct {
	// Endpoint is the full URL requests are posted to.
	Endpoint string
	Model    string

	// APIKey is sent as a bearer token when set.
	APIKey  string
	Timeout time.Duration
	Params  ModelParams
}

// IsConfigured returns true if a completion endpoint is set.
func (c CompletionSettings) IsConfigured() bool {
	return c.Endpoint != "" && c.Model != ""
}

// IndexerSettings controls which files are indexed and how paths map to ids.
type IndexerSettings struct {
	// BasePrefix is stripped from paths before they become identifiers.
	BasePrefix string

	// Extensions lists recognised content extensions, including the dot.
	Extensions []string
}

// Recognised reports whether a file name carries a recognised extension.
func (i IndexerSettings) Recognised(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range i.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// AssistantSettings controls the tool-calling completion loop.
type AssistantSettings struct {
	Profile             string
	Think               bool
	ToolsEnabled        bool
	MaxToolCallsPerTool int
	MaxToolCallsTotal   int
	SnippetCount        int
	ExampleCount        int
}

// StorageSettings locates local state.
type StorageSettings struct {
	// PagesDir is the root of the page store.
	PagesDir string

	// PromptsDir holds prompt profiles. Empty uses ~/.wikiassist/prompts.
	PromptsDir string

	// JournalPath is the sqlite run journal. Empty uses ~/.wikiassist/data/runs.db.
	JournalPath string
}

// PipelineConfig holds post-processor pipeline configuration.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// paragraph chunking followed by metadata tagging.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "metadata"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"min_tag_length": 4,
			},
		},
	}
}

// AppSettings holds all application settings.
type AppSettings struct {
	VectorStore VectorStoreSettings
	Embedding   EmbeddingSettings
	Completion  CompletionSettings
	Indexer     IndexerSettings
	Assistant   AssistantSettings
	Storage     StorageSettings
	Pipeline    PipelineConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// The completion endpoint is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		VectorStore: VectorStoreSettings{
			Host:       "localhost",
			Port:       8000,
			Tenant:     "default_tenant",
			Database:   "default_database",
			Collection: "documents",
			Timeout:    30 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Host:      "localhost",
			Port:      11434,
			Model:     "nomic-embed-text",
			KeepAlive: "5m",
			Timeout:   60 * time.Second,
		},
		Completion: CompletionSettings{
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
			Params:  ModelParams{MaxTokens: 1024},
		},
		Indexer: IndexerSettings{
			BasePrefix: "data/pages",
			Extensions: []string{".txt"},
		},
		Assistant: AssistantSettings{
			Profile:             DefaultProfile,
			ToolsEnabled:        true,
			MaxToolCallsPerTool: 3,
			MaxToolCallsTotal:   10,
			SnippetCount:        5,
			ExampleCount:        5,
		},
		Storage: StorageSettings{
			PagesDir: "data/pages",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}
