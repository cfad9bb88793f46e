package main

import (
	"os"

	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/spf13/cobra"
)

var md2docxCmd = &cobra.Command{
	Use:   "md2docx <in.md> <out.docx>",
	Short: "Convert markdown to DOCX with pandoc",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := flows.MD2DOCXRequest{Input: args[0], Output: args[1]}
		req.Title, _ = cmd.Flags().GetString("title")
		req.ReferenceDoc, _ = cmd.Flags().GetString("reference-doc")
		req.ResourceDir, _ = cmd.Flags().GetString("resource-dir")

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunMD2DOCX(sigCtx, app, req, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(md2docxCmd)

	md2docxCmd.Flags().String("title", "", "Document title (default \"Document\")")
	md2docxCmd.Flags().String("reference-doc", "", "DOCX whose styles pandoc should reuse")
	md2docxCmd.Flags().String("resource-dir", "", "Directory pandoc searches for images")
}
