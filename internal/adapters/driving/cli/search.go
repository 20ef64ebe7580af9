package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

// searchResult is the JSON shape of one search hit.
type searchResult struct {
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunkIndex"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored passages",
	Long: `Ranks stored passages by cosine similarity to the query.

Only passages scoring at least --threshold are shown, best first. No
language model is involved.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", domain.DefaultSearchThreshold,
		"minimum similarity score in [-1, 1] (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("search service not configured")
	}

	threshold := retrievalSettings.SearchThreshold
	if cmd.Flags().Changed("threshold") {
		threshold = searchThreshold
	}

	hits, err := retrievalService.Retrieve(cmd.Context(), args[0], searchLimit, threshold)
	if err != nil {
		if searchJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	outputSearchTable(cmd, hits)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.ScoredChunk) error {
	results := make([]searchResult, len(hits))
	for i, hit := range hits {
		results[i] = searchResult{
			Title:      hit.Chunk.Title,
			ChunkIndex: hit.Chunk.ChunkIndex,
			Score:      hit.Score,
			Content:    hit.Chunk.Content,
		}
	}
	return writeJSON(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, hits []domain.ScoredChunk) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(headingStyle.Render("Results:"))
	cmd.Println()
	for i, hit := range hits {
		// Format: [N] Title #chunk (Score)
		cmd.Printf("  [%d] %s #%d %s\n", i+1, hit.Chunk.Title, hit.Chunk.ChunkIndex,
			scoreStyle.Render(fmt.Sprintf("(%.2f)", hit.Score)))
		cmd.Printf("      %s\n", dimStyle.Render(domain.Snippet(hit.Chunk.Content)))
		cmd.Println()
	}
}
