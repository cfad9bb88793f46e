package main

import (
	"os"

	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/spf13/cobra"
)

var pdf2mdCmd = &cobra.Command{
	Use:   "pdf2md <in.pdf> [out.md]",
	Short: "Convert a PDF to markdown",
	Long: `Extracts the text of a PDF with pdftotext and rewrites every page as clean
markdown with a language model. The output defaults to the input path with a
.md extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := flows.PDF2MDRequest{Input: args[0]}
		if len(args) > 1 {
			req.Output = args[1]
		}
		req.Model, _ = cmd.Flags().GetString("model")
		req.SystemPrompt, _ = cmd.Flags().GetString("system-prompt")
		req.Pages, _ = cmd.Flags().GetString("pages")

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunPDF2MD(sigCtx, app, req, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(pdf2mdCmd)

	pdf2mdCmd.Flags().String("model", "", "Model used to rewrite each page (default: models.text_extraction)")
	pdf2mdCmd.Flags().String("system-prompt", "", "Custom system prompt for the page rewrite")
	pdf2mdCmd.Flags().String("pages", "", "Pages to convert, e.g. 1,3-5 (default: all)")
}
