package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/core/services"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query a collection by similarity",
	Long: `Embeds the query text and returns the closest paragraphs of a
collection, nearest first.`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	text := strings.Join(args, " ")
	res, err := collectionService.Query(cmd.Context(), collectionName(), text, limitOr(services.DefaultQueryLimit))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	matches := res.Matches()
	if queryJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, m := range matches {
		cmd.Printf("[%d] %s (%.4f)\n", i+1, m.ID, m.Distance)
		cmd.Printf("    %s\n", snippet(m.Document, 200))
	}
	return nil
}

// snippet collapses whitespace and truncates to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
