package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Check that the vector store is reachable",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runHeartbeat,
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show the vector store identity",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runIdentity,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get [id...]",
	Short: "Fetch records by id",
	Long: `Fetches records from a collection. A page identifier without a
paragraph ordinal fetches its first three paragraphs.`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [collection]",
	Short: "Delete a collection",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "confirm the deletion")
	rootCmd.AddCommand(heartbeatCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runHeartbeat(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	ns, err := collectionService.Heartbeat(cmd.Context())
	if err != nil {
		return fmt.Errorf("heartbeat failed: %w", err)
	}
	cmd.Printf("Heartbeat: %d\n", ns)
	return nil
}

func runIdentity(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	id, err := collectionService.Identity(cmd.Context())
	if err != nil {
		return fmt.Errorf("identity failed: %w", err)
	}
	cmd.Printf("User:      %s\n", id.UserID)
	cmd.Printf("Tenant:    %s\n", id.Tenant)
	cmd.Printf("Databases: %s\n", strings.Join(id.Databases, ", "))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	cols, err := collectionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	if len(cols) == 0 {
		cmd.Println("No collections.")
		return nil
	}
	for _, c := range cols {
		cmd.Printf("%-30s %s\n", c.Name, c.ID)
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	res, err := collectionService.Get(cmd.Context(), collectionName(), args)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	if len(res.IDs) == 0 {
		cmd.Println("No records found.")
		return nil
	}
	for i, id := range res.IDs {
		cmd.Printf("[%s]\n", id)
		if i < len(res.Metadatas) {
			if at, ok := res.Metadatas[i]["processed_at"]; ok {
				cmd.Printf("  processed_at: %v\n", at)
			}
		}
		if i < len(res.Documents) {
			cmd.Printf("  %s\n", res.Documents[i])
		}
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	if !deleteYes {
		return fmt.Errorf("refusing to delete collection %q without --yes", args[0])
	}
	if err := collectionService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted collection %s\n", args[0])
	return nil
}
