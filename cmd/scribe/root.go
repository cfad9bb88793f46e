package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger = logging.NewNop()
	debug  bool
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Scribe turns documents into posts, markdown and DOCX",
	Long: `Scribe runs document workflows as step graphs: PDFs and text files become
markdown, LinkedIn posts or DOCX files with the help of language models and
local tools such as pdftotext and pandoc.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		levelFlag, _ := cmd.Flags().GetString("log-level")
		formatFlag, _ := cmd.Flags().GetString("log-format")

		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		logger = logging.New(level, format)
		slog.SetDefault(logger)
		debug = level <= slog.LevelDebug

		// An explicit --config must exist; the default file is optional.
		if cmd.Flags().Changed("config") {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("config file not found: %s", path)
			}
		}
		cfg, err = config.Load(path)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the flow catalog for one command.
func newApp(hooks ...domain.LifecycleHooks) (*cli.App, error) {
	if debug {
		hooks = append(hooks, cli.DebugHooks(logger))
	}
	return cli.NewApp(cfg, logger, hooks...)
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")
}
