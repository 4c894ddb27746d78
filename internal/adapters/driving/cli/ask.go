package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/core/ports/driving"
)

var (
	askPage     string
	askTemplate string
	askExamples []string
	askPrevious string
	askProfile  string
	askSnippets int
	askThink    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [action] [text]",
	Short: "Run a prompt action through the completion model",
	Long: `Runs a named prompt action over the given text. The prompt is read
from the selected profile, falling back to the default profile, and its
placeholders are filled from the page store and the vector store.

When no text is given, or the text is "-", it is read from stdin.

Examples:
  wikiassist ask summarize --page reports:mri:2024:g287-jane-doe "..."
  cat draft.txt | wikiassist ask complete --template templates:mri --example reports:mri:a`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runAsk,
}

func init() {
	f := askCmd.Flags()
	f.StringVar(&askPage, "page", "", "identifier of the page being written")
	f.StringVar(&askTemplate, "template", "", "template page identifier")
	f.StringSliceVar(&askExamples, "example", nil, "example page identifier (repeatable)")
	f.StringVar(&askPrevious, "previous", "", "previous report identifier")
	f.StringVar(&askProfile, "profile", "", "prompt profile")
	f.IntVar(&askSnippets, "snippets", 0, "number of similar paragraphs to add as context")
	f.BoolVar(&askThink, "think", false, "keep the model's reasoning in the output")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	action := args[0]
	text, err := askText(cmd, args[1:])
	if err != nil {
		return err
	}

	out, err := assistantService.Process(cmd.Context(), action, text, askMetadata())
	if err != nil {
		return fmt.Errorf("ask %s: %w", action, err)
	}
	cmd.Println(out)
	return nil
}

// askText joins the remaining arguments, or reads stdin.
func askText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func askMetadata() map[string]string {
	md := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			md[key] = value
		}
	}
	set(driving.MetaDocumentID, askPage)
	set(driving.MetaTemplate, askTemplate)
	set(driving.MetaExamples, strings.Join(askExamples, ","))
	set(driving.MetaPrevious, askPrevious)
	set(driving.MetaProfile, askProfile)
	if askSnippets > 0 {
		md[driving.MetaSnippets] = strconv.Itoa(askSnippets)
	}
	if askThink {
		md[driving.MetaThink] = "true"
	}
	return md
}
