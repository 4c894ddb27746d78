package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

var sendCmd = &cobra.Command{
	Use:   "send [path]",
	Short: "Index a page or a directory of pages",
	Long: `Splits pages into paragraphs, embeds them and upserts them into the
vector store. Pages that have not changed since they were last indexed are
skipped.

A directory is indexed file by file; a failing file is reported and the
remaining files are still processed.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("send %s: %w", path, err)
	}

	if info.IsDir() {
		res := indexService.ProcessDirectory(cmd.Context(), path)
		for _, f := range res.Files {
			printIndexResult(cmd, f)
		}
		cmd.Printf("%s: %d indexed, %d skipped, %d failed (%d chunks)\n",
			path, res.Processed, res.Skipped, res.Failed, res.Chunks)
		if res.Status == domain.IndexError {
			return fmt.Errorf("send %s: %s", path, failureMessage(res))
		}
		return nil
	}

	res := indexService.ProcessSingleFile(cmd.Context(), path, collection, false)
	printIndexResult(cmd, res)
	if res.Status == domain.IndexError {
		return fmt.Errorf("send %s: %s", path, res.Message)
	}
	return nil
}

func printIndexResult(cmd *cobra.Command, res domain.IndexResult) {
	switch res.Status {
	case domain.IndexSuccess:
		cmd.Printf("[indexed] %s -> %s (%d chunks)\n", res.DocumentID, res.Collection, res.Chunks)
	case domain.IndexSkipped:
		cmd.Printf("[skipped] %s: %s\n", res.Path, res.Message)
	default:
		cmd.Printf("[failed]  %s: %s\n", res.Path, res.Message)
	}
}

func failureMessage(res domain.IndexResult) string {
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("all %d files failed", res.Failed)
}
