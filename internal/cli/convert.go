package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/google/uuid"
)

// RunPDF2MD converts a PDF into a markdown file and prints its path.
func RunPDF2MD(ctx context.Context, app *App, req flows.PDF2MDRequest, out io.Writer) error {
	if req.Model == "" {
		req.Model = app.Config.Models.TextExtraction
	}
	path, err := runForPath(ctx, app, flows.FlowPDF2MD, req.Context(), "output_path")
	if err != nil {
		return handleExecutionError(err)
	}
	printSystemMessage(out, "Markdown saved to %s", path)
	return nil
}

// RunMD2DOCX exports a markdown file to DOCX and prints its path.
func RunMD2DOCX(ctx context.Context, app *App, req flows.MD2DOCXRequest, out io.Writer) error {
	path, err := runForPath(ctx, app, flows.FlowMD2DOCX, req.Context(), "docx_file_path")
	if err != nil {
		return handleExecutionError(err)
	}
	printSystemMessage(out, "DOCX saved to %s", path)
	return nil
}

func runForPath(ctx context.Context, app *App, flow string, initial map[string]any, key string) (string, error) {
	eng, err := app.Engine(flow)
	if err != nil {
		return "", err
	}
	final, err := eng.RunWithID(ctx, uuid.NewString(), initial)
	if err != nil {
		return "", err
	}
	v, err := scribe.Result(final, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}
