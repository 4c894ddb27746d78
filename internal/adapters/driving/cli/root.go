// Package cli implements the wikiassist command line.
//
// Commands reach the core through package-level driving ports. They are
// populated before each command by the ServiceBuilder registered from main,
// and tests replace them directly.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driven"
	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
	"github.com/custodia-labs/wikiassist/internal/logger"
	"github.com/custodia-labs/wikiassist/internal/metrics"
)

// annotationNoServices marks commands that run without wired services.
const annotationNoServices = "wikiassist/no-services"

var version = "dev"

// Global flags.
var (
	configDir string
	envFile   string
	verbose   bool

	vsHost       string
	vsPort       int
	vsTenant     string
	vsDatabase   string
	ollamaHost   string
	ollamaPort   int
	ollamaModel  string
	collection   string
	resultsLimit int
)

// Driving ports used by the commands.
var (
	settingsService   driving.SettingsService
	indexService      driving.IndexService
	collectionService driving.CollectionService
	contextService    driving.ContextService
	assistantService  driving.AssistantService
	runService        driving.RunService
	configStore       driven.ConfigStore
	appSettings       *domain.AppSettings
	appMetrics        *metrics.Metrics

	servicesReady bool
	closeServices func()
	builder       ServiceBuilder
)

// Services is what a ServiceBuilder hands to the commands.
// Nil ports are reported by the commands that need them.
type Services struct {
	Settings   driving.SettingsService
	Index      driving.IndexService
	Collection driving.CollectionService
	Context    driving.ContextService
	Assistant  driving.AssistantService
	Runs       driving.RunService
	Config     driven.ConfigStore
	AppConfig  *domain.AppSettings
	Metrics    *metrics.Metrics

	// Warnings are printed in verbose mode.
	Warnings []string

	// Close releases adapters. May be nil.
	Close func()
}

// BuildOptions are passed to the ServiceBuilder.
type BuildOptions struct {
	// ConfigDir holds config.toml. Empty uses ~/.wikiassist.
	ConfigDir string

	// Override applies command line flags on top of loaded settings.
	Override func(*domain.AppSettings)
}

// ServiceBuilder wires adapters into services.
type ServiceBuilder func(ctx context.Context, opts BuildOptions) (*Services, error)

// SetServiceBuilder registers the composition root.
func SetServiceBuilder(b ServiceBuilder) {
	builder = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "wikiassist",
	Short: "Index wiki pages and draft them with a language model",
	Long: `wikiassist indexes plain-text wiki pages into a Chroma vector store
and assists with writing reports using retrieved templates, examples and
snippets as context for a chat completion model.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardownServices()
	},
}

func init() {
	rootCmd.SetFlagErrorFunc(usageError)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config", "", "configuration directory (default ~/.wikiassist)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	pf.StringVar(&vsHost, "host", "", "vector store host")
	pf.IntVar(&vsPort, "port", 0, "vector store port")
	pf.StringVar(&vsTenant, "tenant", "", "vector store tenant")
	pf.StringVar(&vsDatabase, "database", "", "vector store database")
	pf.StringVar(&ollamaHost, "ollama-host", "", "embedding service host")
	pf.IntVar(&ollamaPort, "ollama-port", 0, "embedding service port")
	pf.StringVar(&ollamaModel, "ollama-model", "", "embedding model")
	pf.StringVarP(&collection, "collection", "c", "", "collection name (default from settings)")
	pf.IntVarP(&resultsLimit, "limit", "n", 0, "maximum number of results")
}

// usageError prints the command's usage before returning err.
// Runtime errors stay silent about usage; only argument and flag
// errors go through here.
func usageError(cmd *cobra.Command, err error) error {
	_ = cmd.Usage()
	return err
}

// usageArgs wraps an argument validator so a rejection prints usage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if servicesReady || cmd.Annotations[annotationNoServices] != "" {
		return nil
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}
	if builder == nil {
		return nil
	}

	svc, err := builder(cmd.Context(), BuildOptions{
		ConfigDir: configDir,
		Override:  applyFlags(cmd),
	})
	if err != nil {
		return err
	}
	for _, w := range svc.Warnings {
		logger.Warn("%s", w)
	}
	useServices(svc)
	return nil
}

func useServices(svc *Services) {
	settingsService = svc.Settings
	indexService = svc.Index
	collectionService = svc.Collection
	contextService = svc.Context
	assistantService = svc.Assistant
	runService = svc.Runs
	configStore = svc.Config
	appSettings = svc.AppConfig
	appMetrics = svc.Metrics
	closeServices = svc.Close
	servicesReady = true
}

func teardownServices() {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
}

// loadEnvFile loads a dotenv file if present. Existing variables win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	logger.Debug("loaded environment from %s", path)
	return nil
}

// applyFlags returns an override for the connection flags that were set.
func applyFlags(cmd *cobra.Command) func(*domain.AppSettings) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	return func(s *domain.AppSettings) {
		if changed("host") {
			s.VectorStore.Host = vsHost
		}
		if changed("port") {
			s.VectorStore.Port = vsPort
		}
		if changed("tenant") {
			s.VectorStore.Tenant = vsTenant
		}
		if changed("database") {
			s.VectorStore.Database = vsDatabase
		}
		if changed("ollama-host") {
			s.Embedding.Host = ollamaHost
		}
		if changed("ollama-port") {
			s.Embedding.Port = ollamaPort
		}
		if changed("ollama-model") {
			s.Embedding.Model = ollamaModel
		}
		if changed("collection") {
			s.VectorStore.Collection = collection
		}
	}
}

// collectionName is the --collection flag or the configured default.
func collectionName() string {
	if collection != "" {
		return collection
	}
	if appSettings != nil && appSettings.VectorStore.Collection != "" {
		return appSettings.VectorStore.Collection
	}
	return domain.DefaultAppSettings().VectorStore.Collection
}

// limitOr is the --limit flag or def.
func limitOr(def int) int {
	if resultsLimit > 0 {
		return resultsLimit
	}
	return def
}
