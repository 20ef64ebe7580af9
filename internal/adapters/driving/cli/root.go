// Package cli provides the docqa command line interface built on cobra.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// annotationNoServices marks commands that run without building services.
const annotationNoServices = "docqa/no-services"

// Global flags.
var (
	verbose   bool
	dataDir   string
	configDir string
	ephemeral bool
)

// Services used by the commands. Set by the builder or directly in tests.
var (
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	askService        driving.AskService
	documentService   driving.DocumentService
	settingsService   driving.SettingsService
	retrievalSettings = domain.DefaultAppSettings().Retrieval
)

// Options are the global flag values handed to the service builder.
type Options struct {
	DataDir   string
	ConfigDir string
	Ephemeral bool
	Verbose   bool
}

// Services holds the driving ports the commands use.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Ask       driving.AskService
	Document  driving.DocumentService
	Settings  driving.SettingsService

	// RetrievalSettings supply the search defaults.
	RetrievalSettings domain.RetrievalSettings

	// Close releases the store and AI clients. May be nil.
	Close func()
}

// Builder creates the services once the global flags are parsed.
type Builder func(Options) (*Services, error)

var (
	builder       Builder
	closeServices func()
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your text documents",
	Long: `docqa stores plain-text documents as embedded chunks and answers
questions using only what those documents say.

Upload .txt files, then ask questions. Answers cite the passages they are
grounded in; when nothing relevant is stored, docqa says so instead of
guessing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the document database (default ~/.docqa/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.toml and prompts (default ~/.docqa)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep documents in memory for this run only")
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute(build Builder) error {
	builder = build
	// cmd.Print* default to stderr; results belong on stdout.
	rootCmd.SetOut(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
	if err != nil {
		printError(rootCmd, err)
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if builder == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	svcs, err := builder(Options{
		DataDir:   dataDir,
		ConfigDir: configDir,
		Ephemeral: ephemeral,
		Verbose:   verbose,
	})
	if err != nil {
		return err
	}

	ingestService = svcs.Ingest
	retrievalService = svcs.Retrieval
	askService = svcs.Ask
	documentService = svcs.Document
	settingsService = svcs.Settings
	retrievalSettings = svcs.RetrievalSettings
	closeServices = svcs.Close
	return nil
}
