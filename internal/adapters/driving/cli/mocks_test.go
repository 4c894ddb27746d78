package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/wikiassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikiassist/internal/adapters/driving/watcher"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/core/services"
	"github.com/custodia-labs/wikiassist/internal/metrics"
)

// mockIndexService records calls and returns canned results.
type mockIndexService struct {
	mu        sync.Mutex
	fileRes   domain.IndexResult
	dirRes    domain.IndexResult
	files     []string
	dirs      []string
	collNames []string
}

func (m *mockIndexService) ProcessSingleFile(_ context.Context, path, collection string, _ bool) domain.IndexResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, path)
	m.collNames = append(m.collNames, collection)
	res := m.fileRes
	res.Path = path
	return res
}

func (m *mockIndexService) ProcessDirectory(_ context.Context, root string) domain.IndexResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, root)
	return m.dirRes
}

func (m *mockIndexService) Eligible(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".txt"
}

func (m *mockIndexService) indexedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	heartbeat   int64
	identity    *domain.Identity
	collections []domain.Collection
	getRes      *domain.GetResult
	queryRes    *domain.QueryResult
	err         error

	lastCollection string
	lastIDs        []string
	lastText       string
	lastLimit      int
	deleted        []string
}

func (m *mockCollectionService) Heartbeat(_ context.Context) (int64, error) {
	return m.heartbeat, m.err
}

func (m *mockCollectionService) Identity(_ context.Context) (*domain.Identity, error) {
	return m.identity, m.err
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionService) Delete(_ context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	return m.err
}

func (m *mockCollectionService) Get(_ context.Context, collection string, ids []string) (*domain.GetResult, error) {
	m.lastCollection = collection
	m.lastIDs = ids
	if m.getRes == nil {
		return &domain.GetResult{}, m.err
	}
	return m.getRes, m.err
}

func (m *mockCollectionService) Query(_ context.Context, collection, text string, limit int) (*domain.QueryResult, error) {
	m.lastCollection = collection
	m.lastText = text
	m.lastLimit = limit
	if m.queryRes == nil {
		return &domain.QueryResult{}, m.err
	}
	return m.queryRes, m.err
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct{}

func (m *mockContextService) BuildStaticContext(_ context.Context, _ driving.ContextRequest) string {
	return ""
}

func (m *mockContextService) GetDocument(_ context.Context, _ domain.DocumentID) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockContextService) QueryTemplate(_ context.Context, _ domain.DocumentID, _ string) []domain.DocumentID {
	return nil
}

func (m *mockContextService) QuerySnippets(_ context.Context, _ domain.DocumentID, _ string, _ int) []string {
	return nil
}

func (m *mockContextService) QueryExamples(_ context.Context, _ domain.DocumentID, _ string, _ int) []domain.DocumentID {
	return nil
}

// mockAssistantService records the last request.
type mockAssistantService struct {
	output string
	err    error

	action   string
	text     string
	metadata map[string]string
}

func (m *mockAssistantService) Process(_ context.Context, action, text string, metadata map[string]string) (string, error) {
	m.action = action
	m.text = text
	m.metadata = metadata
	return m.output, m.err
}

// mockRunService returns canned runs.
type mockRunService struct {
	runs      []domain.IndexRun
	err       error
	lastLimit int
}

func (m *mockRunService) Recent(_ context.Context, limit int) ([]domain.IndexRun, error) {
	m.lastLimit = limit
	return m.runs, m.err
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous services and resetting command flags.
func setupTestServices() func() {
	saved := Services{
		Settings:   settingsService,
		Index:      indexService,
		Collection: collectionService,
		Context:    contextService,
		Assistant:  assistantService,
		Runs:       runService,
		Config:     configStore,
		AppConfig:  appSettings,
		Metrics:    appMetrics,
		Close:      closeServices,
	}
	savedReady := servicesReady

	cfg := memory.NewConfigStore()
	defaults := domain.DefaultAppSettings()
	useServices(&Services{
		Settings:   services.NewSettingsService(cfg),
		Index:      &mockIndexService{fileRes: domain.IndexResult{Status: domain.IndexSuccess}},
		Collection: &mockCollectionService{},
		Context:    &mockContextService{},
		Assistant:  &mockAssistantService{},
		Runs:       &mockRunService{},
		Config:     cfg,
		AppConfig:  &defaults,
		Metrics:    metrics.New(),
	})

	return func() {
		useServices(&saved)
		servicesReady = savedReady

		collection = ""
		resultsLimit = 0
		queryJSON = false
		deleteYes = false
		askPage, askTemplate, askPrevious, askProfile = "", "", "", ""
		askExamples = nil
		askSnippets = 0
		askThink = false
		watchDebounce = watcher.DefaultDebounce
		watchRescan = 0
		watchInitial = true
		watchMetricsAddr = ""
		_ = mcpServeCmd.Flags().Set("http-port", "0")
	}
}
