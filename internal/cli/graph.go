package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/scribe/internal/presentation/graph"
)

// PrintGraph writes the Mermaid diagram of a flow.
func PrintGraph(app *App, flow string, out io.Writer) error {
	eng, err := app.Engine(flow)
	if err != nil {
		return err
	}
	fmt.Fprint(out, graph.GenerateMermaid(eng.Graph(), eng.Steps(), nil))
	return nil
}
