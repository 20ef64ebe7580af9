package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	documentsJSON bool
	statsJSON     bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage stored documents",
	Long:    `List or delete stored documents. A document is every chunk sharing a title.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List document titles",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [title]",
	Short: "Delete a document",
	Long:  `Removes every chunk stored under the exact title. Titles are case-sensitive.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// deleteOutput is the JSON shape of documents delete.
type deleteOutput struct {
	Title   string `json:"title"`
	Deleted int    `json:"deleted"`
}

func init() {
	documentsCmd.PersistentFlags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		if documentsJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		return writeJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored. Use 'docqa upload' to add some.")
		return nil
	}

	cmd.Println(headingStyle.Render("Documents:"))
	cmd.Println()
	total := 0
	for _, doc := range docs {
		cmd.Printf("  %s %s\n", doc.Title, dimStyle.Render(fmt.Sprintf("(%d chunks)", doc.ChunkCount)))
		total += doc.ChunkCount
	}
	cmd.Println()
	cmd.Printf("Total: %d documents, %d chunks\n", len(docs), total)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	title := args[0]
	deleted, err := documentService.Delete(cmd.Context(), title)
	if err != nil {
		if documentsJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if documentsJSON {
		return writeJSON(cmd, deleteOutput{Title: title, Deleted: deleted})
	}

	if deleted == 0 {
		cmd.Printf("No document titled %q.\n", title)
		return nil
	}
	cmd.Printf("%s %s (%d chunks)\n", successStyle.Render("Deleted"), title, deleted)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		if statsJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		return writeJSON(cmd, stats)
	}

	cmd.Println(headingStyle.Render("Store"))
	cmd.Printf("  Documents:  %d\n", stats.TitleCount)
	cmd.Printf("  Chunks:     %d\n", stats.ChunkCount)
	if stats.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	} else {
		cmd.Println("  Dimensions: (empty store)")
	}
	if len(stats.Tables) > 0 {
		cmd.Printf("  Tables:     %v\n", stats.Tables)
	}
	return nil
}
