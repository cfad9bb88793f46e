package main

import (
	"os"

	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/internal/presentation/tui"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post <file...>",
	Short: "Generate a LinkedIn post from PDF, text or markdown files",
	Long: `Converts each file to markdown, extracts its title and authors, drafts a
LinkedIn post with the writing model and formats it with the cleaning model.
Intermediate artifacts (.extracted.md, .draft.md) are written next to the input
or into --output-dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.PostOptions{
			Files:             args,
			Copy:              cfg.Post.Copy,
			Save:              cfg.Post.Save,
			MaxCharacterCount: cfg.Post.MaxCharacterCount,
		}
		opts.Models.TextExtraction, _ = flags.GetString("text-extraction-model")
		opts.Models.Cleaning, _ = flags.GetString("cleaning-model")
		opts.Models.Writing, _ = flags.GetString("writing-model")
		opts.OutputDir, _ = flags.GetString("output-dir")
		opts.Parallel, _ = flags.GetInt("parallel")
		opts.Quiet, _ = flags.GetBool("quiet")
		if flags.Changed("copy") {
			opts.Copy, _ = flags.GetBool("copy")
		}
		if flags.Changed("save") {
			opts.Save, _ = flags.GetBool("save")
		}
		if flags.Changed("max-character-count") {
			opts.MaxCharacterCount, _ = flags.GetInt("max-character-count")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if !opts.Quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunPost(sigCtx, app, opts, os.Stdout, tui.NewRenderer(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().String("text-extraction-model", "", "Model for PDF text extraction (default "+flows.DefaultTextExtractionModel+")")
	postCmd.Flags().String("cleaning-model", "", "Model for structured extraction and formatting (default "+flows.DefaultCleaningModel+")")
	postCmd.Flags().String("writing-model", "", "Model that drafts the post (default "+flows.DefaultWritingModel+")")
	postCmd.Flags().String("output-dir", "", "Directory for generated files (default: next to each input)")
	postCmd.Flags().Bool("save", true, "Save the final post as a markdown file (--save=false to skip)")
	postCmd.Flags().Bool("copy", true, "Copy the final post to the clipboard (single file only)")
	postCmd.Flags().Int("max-character-count", flows.DefaultMaxCharacterCount, "Maximum length of the post")
	postCmd.Flags().Int("parallel", 2, "Number of files processed at the same time")
	postCmd.Flags().BoolP("quiet", "q", false, "Print only the cleaned post")
}
