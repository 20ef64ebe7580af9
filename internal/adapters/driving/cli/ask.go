package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using only the stored documents.

The most similar passages are retrieved and handed to the language model,
which is told to answer from them alone. The passages are listed as sources.
When no passage is similar enough, no model call is made and docqa reports
that nothing relevant was found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := askService.Ask(cmd.Context(), question)
	if err != nil {
		if askJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return writeJSON(cmd, answer)
	}

	cmd.Println(answer.Message)
	if !answer.Grounded() {
		return nil
	}

	cmd.Println()
	cmd.Println(headingStyle.Render("Sources:"))
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s %s\n", i+1, src.Title, scoreStyle.Render(fmt.Sprintf("(%.2f)", src.Score)))
		cmd.Printf("      %s\n", dimStyle.Render(src.Snippet))
	}
	return nil
}
