package main

import (
	"os"

	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of a flow: post, pdf2md or md2docx.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow := flows.FlowPost
		if len(args) > 0 {
			flow = args[0]
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.PrintGraph(app, flow, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
