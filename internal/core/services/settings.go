package services

import (
	"time"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyVSHost       = "vectorstore.host"
	keyVSPort       = "vectorstore.port"
	keyVSTenant     = "vectorstore.tenant"
	keyVSDatabase   = "vectorstore.database"
	keyVSCollection = "vectorstore.collection"
	keyVSTimeout    = "vectorstore.timeout_seconds"
	keyVSRateLimit  = "vectorstore.rate_limit"

	keyEmbedHost      = "embedding.host"
	keyEmbedPort      = "embedding.port"
	keyEmbedModel     = "embedding.model"
	keyEmbedKeepAlive = "embedding.keep_alive"
	keyEmbedTimeout   = "embedding.timeout_seconds"

	keyCompEndpoint    = "completion.endpoint"
	keyCompModel       = "completion.model"
	keyCompAPIKey      = "completion.api_key"
	keyCompTimeout     = "completion.timeout_seconds"
	keyCompMaxTokens   = "completion.max_tokens"
	keyCompTemperature = "completion.temperature"
	keyCompTopP        = "completion.top_p"
	keyCompTopK        = "completion.top_k"
	keyCompMinP        = "completion.min_p"

	keyIdxBasePrefix = "indexer.base_prefix"
	keyIdxExtensions = "indexer.extensions"

	keyAsstProfile      = "assistant.profile"
	keyAsstThink        = "assistant.think"
	keyAsstTools        = "assistant.tools"
	keyAsstPerTool      = "assistant.max_tool_calls_per_tool"
	keyAsstTotal        = "assistant.max_tool_calls_total"
	keyAsstSnippetCount = "assistant.snippet_count"
	keyAsstExampleCount = "assistant.example_count"

	keyPagesDir    = "pages.dir"
	keyPromptsDir  = "prompts.dir"
	keyJournalPath = "journal.path"

	keyPipelineProcessors = "pipeline.processors"
)

// processorConfigKeys lists the per-processor keys read from pipeline.<name>.<key>.
var processorConfigKeys = []string{"min_tag_length"}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		VectorStore: domain.VectorStoreSettings{
			Host:       s.getString(keyVSHost, d.VectorStore.Host),
			Port:       s.getInt(keyVSPort, d.VectorStore.Port),
			Tenant:     s.getString(keyVSTenant, d.VectorStore.Tenant),
			Database:   s.getString(keyVSDatabase, d.VectorStore.Database),
			Collection: s.getString(keyVSCollection, d.VectorStore.Collection),
			Timeout:    s.getSeconds(keyVSTimeout, d.VectorStore.Timeout),
			RateLimit:  s.getFloat(keyVSRateLimit, d.VectorStore.RateLimit),
		},
		Embedding: domain.EmbeddingSettings{
			Host:      s.getString(keyEmbedHost, d.Embedding.Host),
			Port:      s.getInt(keyEmbedPort, d.Embedding.Port),
			Model:     s.getString(keyEmbedModel, d.Embedding.Model),
			KeepAlive: s.getString(keyEmbedKeepAlive, d.Embedding.KeepAlive),
			Timeout:   s.getSeconds(keyEmbedTimeout, d.Embedding.Timeout),
		},
		Completion: domain.CompletionSettings{
			Endpoint: s.configStore.GetString(keyCompEndpoint), // No default - unset disables completions
			Model:    s.getString(keyCompModel, d.Completion.Model),
			APIKey:   s.configStore.GetString(keyCompAPIKey),
			Timeout:  s.getSeconds(keyCompTimeout, d.Completion.Timeout),
			Params: domain.ModelParams{
				MaxTokens:   s.getInt(keyCompMaxTokens, d.Completion.Params.MaxTokens),
				Temperature: s.getFloatPtr(keyCompTemperature),
				TopP:        s.getFloatPtr(keyCompTopP),
				TopK:        s.getIntPtr(keyCompTopK),
				MinP:        s.getFloatPtr(keyCompMinP),
			},
		},
		Indexer: domain.IndexerSettings{
			BasePrefix: s.getString(keyIdxBasePrefix, d.Indexer.BasePrefix),
			Extensions: s.getStringSlice(keyIdxExtensions, d.Indexer.Extensions),
		},
		Assistant: domain.AssistantSettings{
			Profile:             s.getString(keyAsstProfile, d.Assistant.Profile),
			Think:               s.getBool(keyAsstThink, d.Assistant.Think),
			ToolsEnabled:        s.getBool(keyAsstTools, d.Assistant.ToolsEnabled),
			MaxToolCallsPerTool: s.getInt(keyAsstPerTool, d.Assistant.MaxToolCallsPerTool),
			MaxToolCallsTotal:   s.getInt(keyAsstTotal, d.Assistant.MaxToolCallsTotal),
			SnippetCount:        s.getInt(keyAsstSnippetCount, d.Assistant.SnippetCount),
			ExampleCount:        s.getInt(keyAsstExampleCount, d.Assistant.ExampleCount),
		},
		Storage: domain.StorageSettings{
			PagesDir:    s.getString(keyPagesDir, d.Storage.PagesDir),
			PromptsDir:  s.configStore.GetString(keyPromptsDir),
			JournalPath: s.configStore.GetString(keyJournalPath),
		},
		Pipeline: s.GetPipelineConfig(),
	}

	return settings, nil
}

// Save persists application settings. Unset optional model parameters are
// left untouched in the store.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyVSHost, settings.VectorStore.Host},
		{keyVSPort, settings.VectorStore.Port},
		{keyVSTenant, settings.VectorStore.Tenant},
		{keyVSDatabase, settings.VectorStore.Database},
		{keyVSCollection, settings.VectorStore.Collection},
		{keyVSTimeout, int(settings.VectorStore.Timeout / time.Second)},
		{keyVSRateLimit, settings.VectorStore.RateLimit},
		{keyEmbedHost, settings.Embedding.Host},
		{keyEmbedPort, settings.Embedding.Port},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedKeepAlive, settings.Embedding.KeepAlive},
		{keyEmbedTimeout, int(settings.Embedding.Timeout / time.Second)},
		{keyCompEndpoint, settings.Completion.Endpoint},
		{keyCompModel, settings.Completion.Model},
		{keyCompTimeout, int(settings.Completion.Timeout / time.Second)},
		{keyCompMaxTokens, settings.Completion.Params.MaxTokens},
		{keyIdxBasePrefix, settings.Indexer.BasePrefix},
		{keyIdxExtensions, settings.Indexer.Extensions},
		{keyAsstProfile, settings.Assistant.Profile},
		{keyAsstThink, settings.Assistant.Think},
		{keyAsstTools, settings.Assistant.ToolsEnabled},
		{keyAsstPerTool, settings.Assistant.MaxToolCallsPerTool},
		{keyAsstTotal, settings.Assistant.MaxToolCallsTotal},
		{keyAsstSnippetCount, settings.Assistant.SnippetCount},
		{keyAsstExampleCount, settings.Assistant.ExampleCount},
		{keyPagesDir, settings.Storage.PagesDir},
	}

	// The API key is only persisted when set, so keys supplied through the
	// environment are not written to disk.
	if settings.Completion.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyCompAPIKey, settings.Completion.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return err
		}
	}

	p := settings.Completion.Params
	if p.Temperature != nil {
		if err := s.configStore.Set(keyCompTemperature, *p.Temperature); err != nil {
			return err
		}
	}
	if p.TopP != nil {
		if err := s.configStore.Set(keyCompTopP, *p.TopP); err != nil {
			return err
		}
	}
	if p.TopK != nil {
		if err := s.configStore.Set(keyCompTopK, *p.TopK); err != nil {
			return err
		}
	}
	if p.MinP != nil {
		if err := s.configStore.Set(keyCompMinP, *p.MinP); err != nil {
			return err
		}
	}

	return s.configStore.Save()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		cfg := s.loadProcessorConfig("pipeline." + name + ".")
		if len(cfg) == 0 {
			continue
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range processorConfigKeys {
		if _, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = s.configStore.GetInt(prefix + key)
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.configStore.GetFloat(key); ok {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if v := s.configStore.GetStringSlice(key); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getFloatPtr returns nil when the key is unset, so the parameter is not sent.
func (s *SettingsService) getFloatPtr(key string) *float64 {
	v, ok := s.configStore.GetFloat(key)
	if !ok {
		return nil
	}
	return &v
}

func (s *SettingsService) getIntPtr(key string) *int {
	v, ok := s.configStore.GetFloat(key)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
