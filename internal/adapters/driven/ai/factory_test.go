package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// hostPort splits a test server URL into settings fields.
func hostPort(t *testing.T, raw string) (string, int) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	assert.Nil(t, CreateEmbeddingService(nil))
	assert.Nil(t, CreateEmbeddingService(&domain.EmbeddingSettings{}))

	svc := CreateEmbeddingService(&domain.EmbeddingSettings{Host: "localhost", Port: 11434, Model: "nomic-embed-text"})
	require.NotNil(t, svc)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{})
		assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		host, port := hostPort(t, srv.URL)

		_, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{Host: host, Port: port, Model: "m"})
		assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	})
}

func TestCreateCompletionGateway(t *testing.T) {
	assert.Nil(t, CreateCompletionGateway(nil))
	assert.Nil(t, CreateCompletionGateway(&domain.CompletionSettings{Model: "m"}))

	gw := CreateCompletionGateway(&domain.CompletionSettings{Endpoint: "http://localhost/v1/chat/completions", Model: "m"})
	require.NotNil(t, gw)
	assert.Equal(t, "m", gw.ModelName())
}

func TestInit_VectorStoreUnreachable(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.VectorStore.Host = "127.0.0.1"
	settings.VectorStore.Port = 1

	_, err := Init(context.Background(), &settings)

	var te *domain.TransportError
	assert.True(t, errors.As(err, &te))
}

func TestInit_WarnsForMissingGateways(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	host, port := hostPort(t, srv.URL)

	settings := domain.DefaultAppSettings()
	settings.VectorStore.Host, settings.VectorStore.Port = host, port
	settings.Embedding.Model = ""

	res, err := Init(context.Background(), &settings)
	require.NoError(t, err)
	defer res.Close()

	assert.NotNil(t, res.VectorStore)
	assert.Nil(t, res.EmbeddingService)
	assert.Nil(t, res.Completion)
	assert.Len(t, res.Warnings, 2)
}
