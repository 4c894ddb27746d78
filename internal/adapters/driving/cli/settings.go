package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

// settingSections are the top-level config tables accepted by settings set.
var settingSections = []string{
	"vectorstore", "embedding", "completion", "indexer",
	"assistant", "pages", "prompts", "journal", "pipeline",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the settings stored in config.toml.

Every setting can also be overridden by an environment variable named
WIKIASSIST_<SECTION>_<KEY>, for example WIKIASSIST_VECTORSTORE_HOST.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Stores a setting in config.toml. Keys use dot notation:

  wikiassist settings set vectorstore.host chroma.internal
  wikiassist settings set completion.endpoint http://localhost:8080/v1/chat/completions
  wikiassist settings set assistant.max_tool_calls_total 6

When the value is omitted or "-" it is read from stdin, without echo on a
terminal. Use this for API keys:

  wikiassist settings set completion.api_key`,
	Args: usageArgs(cobra.RangeArgs(1, 2)),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  URL: %s\n", settings.VectorStore.BaseURL())
	cmd.Printf("  Tenant: %s\n", settings.VectorStore.Tenant)
	cmd.Printf("  Database: %s\n", settings.VectorStore.Database)
	cmd.Printf("  Default collection: %s\n", settings.VectorStore.Collection)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  URL: %s\n", settings.Embedding.BaseURL())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Completion]")
	cmd.Printf("  Endpoint: %s\n", valueOrUnset(settings.Completion.Endpoint))
	cmd.Printf("  Model: %s\n", settings.Completion.Model)
	if settings.Completion.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Completion.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Completion.IsConfigured()))
	cmd.Println()

	cmd.Println("[Indexer]")
	cmd.Printf("  Base prefix: %s\n", settings.Indexer.BasePrefix)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Indexer.Extensions, ", "))
	cmd.Printf("  Pipeline: %s\n", strings.Join(settings.Pipeline.Processors, " -> "))
	cmd.Println()

	cmd.Println("[Assistant]")
	printAssistantSettings(cmd, settings.Assistant)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Pages: %s\n", settings.Storage.PagesDir)
	cmd.Printf("  Prompts: %s\n", valueOrDefault(settings.Storage.PromptsDir))
	cmd.Printf("  Journal: %s\n", valueOrDefault(settings.Storage.JournalPath))

	return nil
}

func printAssistantSettings(cmd *cobra.Command, a domain.AssistantSettings) {
	cmd.Printf("  Profile: %s\n", a.Profile)
	cmd.Printf("  Tools: %t (per tool %d, total %d)\n", a.ToolsEnabled, a.MaxToolCallsPerTool, a.MaxToolCallsTotal)
	cmd.Printf("  Snippets: %d\n", a.SnippetCount)
	cmd.Printf("  Examples: %d\n", a.ExampleCount)
	cmd.Printf("  Think: %t\n", a.Think)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if !knownSettingKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}

	raw := "-"
	if len(args) == 2 {
		raw = args[1]
	}
	if raw == "-" {
		cmd.PrintErrf("Value for %s: ", key)
		v, err := readSecret(cmd.InOrStdin())
		cmd.PrintErrln()
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		if v == "" {
			return errors.New("empty value")
		}
		raw = v
	}

	if err := configStore.Set(key, parseSettingValue(raw)); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	if isSecretKey(key) {
		raw = maskAPIKey(raw)
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

// readSecret reads one line, without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "token")
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

// knownSettingKey reports whether key is a dotted key in a known section.
func knownSettingKey(key string) bool {
	section, rest, ok := strings.Cut(key, ".")
	if !ok || rest == "" {
		return false
	}
	for _, s := range settingSections {
		if s == section {
			return true
		}
	}
	return false
}

// parseSettingValue stores numbers and booleans with their TOML types.
// Comma-separated values become arrays.
func parseSettingValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if strings.Contains(raw, ",") {
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts
	}
	return raw
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func valueOrDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// maskAPIKey masks an API key for display, showing only first and last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
