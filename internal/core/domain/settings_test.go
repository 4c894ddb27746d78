package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "http://localhost:8000", s.VectorStore.BaseURL())
	assert.Equal(t, "documents", s.VectorStore.Collection)
	assert.Equal(t, "http://localhost:11434", s.Embedding.BaseURL())
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.Completion.IsConfigured())
	assert.Equal(t, 3, s.Assistant.MaxToolCallsPerTool)
	assert.Equal(t, 10, s.Assistant.MaxToolCallsTotal)
	assert.Equal(t, 5, s.Assistant.ExampleCount)
	assert.Equal(t, DefaultProfile, s.Assistant.Profile)
	assert.Nil(t, s.Completion.Params.Temperature)
}

func TestIndexerSettings_Recognised(t *testing.T) {
	s := IndexerSettings{Extensions: []string{".txt"}}

	assert.True(t, s.Recognised("a.txt"))
	assert.True(t, s.Recognised("A.TXT"))
	assert.False(t, s.Recognised("a.md"))
	assert.False(t, s.Recognised("txt"))
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, []string{"chunker", "metadata"}, cfg.Processors)
	assert.Equal(t, 4, cfg.GetProcessorConfig("chunker")["min_tag_length"])
	assert.Nil(t, cfg.GetProcessorConfig("metadata"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
