package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// errorOutput is the JSON shape of a failed --json command.
type errorOutput struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

// reportedError has already been written to stdout as JSON.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// failJSON writes err as {"error","class"} and marks it reported.
func failJSON(cmd *cobra.Command, err error) error {
	if writeErr := writeJSON(cmd, errorOutput{
		Error: err.Error(),
		Class: string(domain.ClassifyError(err)),
	}); writeErr != nil {
		return writeErr
	}
	return &reportedError{err: err}
}

func printError(cmd *cobra.Command, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	cmd.PrintErrln(errorStyle.Render("Error:") + " " + err.Error())
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		cmd.PrintErrln("Run 'docqa settings embedding' to configure an embedding provider.")
	case errors.Is(err, domain.ErrLLMUnavailable):
		cmd.PrintErrln("Run 'docqa settings llm' to configure a language model.")
	}
}
