package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/filesource/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	uploadReplace bool
	uploadJSON    bool

	addFile    string
	addReplace bool

	importWatch   bool
	importReplace bool
	importJSON    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload text files",
	Long: `Chunks, embeds and stores each file under its base name.

Only .txt files are accepted; other files are skipped. A file that fails
does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add text under a title",
	Long: `Stores a single text under the given title.

The text is read from --file, or from stdin when no file is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import every .txt file in a directory",
	Long: `Imports the .txt files directly inside a directory (default: current directory).

With --watch, files created or modified afterwards are re-ingested, replacing
their previous chunks, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadReplace, "replace", false, "replace existing chunks with the same title")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "output result as JSON")

	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "read text from file instead of stdin")
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "replace existing chunks with the same title")

	importCmd.Flags().BoolVarP(&importWatch, "watch", "w", false, "keep watching for changed files")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace existing chunks with the same title")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "output result as JSON")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	files := make([]domain.SourceFile, 0, len(args))
	var unreadable []domain.FileOutcome
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			unreadable = append(unreadable, domain.FileOutcome{
				Name:   filepath.Base(path),
				Status: domain.FileFailed,
				Error:  err.Error(),
			})
			continue
		}
		files = append(files, domain.SourceFile{Name: filepath.Base(path), Content: content})
	}

	result := &domain.UploadResult{Files: []domain.FileOutcome{}}
	if len(files) > 0 {
		var err error
		result, err = ingestService.Upload(cmd.Context(), files, domain.IngestOptions{Replace: uploadReplace})
		if err != nil {
			if uploadJSON {
				return failJSON(cmd, err)
			}
			return fmt.Errorf("upload failed: %w", err)
		}
	}
	// Unreadable files are reported after the files that were read.
	for _, outcome := range unreadable {
		result.Record(outcome)
	}

	if uploadJSON {
		return writeJSON(cmd, result)
	}
	printUploadResult(cmd, result)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var (
		data []byte
		err  error
	)
	if addFile != "" {
		data, err = os.ReadFile(addFile)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}

	title := args[0]
	chunks, err := ingestService.AddText(cmd.Context(), title, string(data), domain.IngestOptions{Replace: addReplace})
	if err != nil {
		return fmt.Errorf("failed to add text: %w", err)
	}

	cmd.Printf("%s %s (%d chunks)\n", successStyle.Render("Added"), title, chunks)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	source := filesystem.New(dir)

	result, err := ingestService.Import(cmd.Context(), source, domain.IngestOptions{Replace: importReplace || importWatch})
	if err != nil {
		if importJSON {
			return failJSON(cmd, err)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if importJSON {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printUploadResult(cmd, result)
	}

	if !importWatch {
		return nil
	}

	cmd.Println(dimStyle.Render(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", dir)))
	return ingestService.Watch(cmd.Context(), source, func(outcome domain.FileOutcome) {
		printOutcome(cmd, outcome)
	})
}

func printUploadResult(cmd *cobra.Command, result *domain.UploadResult) {
	for _, outcome := range result.Files {
		printOutcome(cmd, outcome)
	}
	cmd.Println()

	summary := fmt.Sprintf("Processed %d file(s), %d chunk(s) stored", result.FilesProcessed, result.TotalChunks)
	if skipped := len(result.Skipped()); skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	if failed := len(result.Failed()); failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	cmd.Println(headingStyle.Render(summary))
}

func printOutcome(cmd *cobra.Command, outcome domain.FileOutcome) {
	switch outcome.Status {
	case domain.FileIngested:
		cmd.Printf("  %s %s (%d chunks)\n", successStyle.Render("ingested"), outcome.Name, outcome.Chunks)
	case domain.FileSkipped:
		cmd.Printf("  %s %s: %s\n", warnStyle.Render("skipped "), outcome.Name, outcome.Error)
	default:
		cmd.Printf("  %s %s: %s\n", errorStyle.Render("failed  "), outcome.Name, strings.TrimSpace(outcome.Error))
	}
}
