package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/flows"
)

// PostOptions are the inputs of the post command.
type PostOptions struct {
	Files             []string
	Models            flows.Models
	OutputDir         string
	Copy              bool
	Save              bool
	MaxCharacterCount int
	Parallel          int
	Quiet             bool
}

// RunPost turns every file into a LinkedIn post. Files run concurrently up to
// opts.Parallel; one failing file does not stop the others.
func RunPost(ctx context.Context, app *App, opts PostOptions, out io.Writer, render func(string) (string, error)) error {
	if len(opts.Files) == 0 {
		return errors.New("at least one file is required")
	}
	eng, err := app.Engine(flows.FlowPost)
	if err != nil {
		return err
	}

	// Clipboard holds one value; only a single file may be copied.
	doCopy := opts.Copy && len(opts.Files) == 1
	if opts.Copy && !doCopy {
		app.Logger.Warn("Clipboard copy disabled for multiple files", "files", len(opts.Files))
	}

	jobs := make([]scribe.Job, len(opts.Files))
	for i, file := range opts.Files {
		jobs[i] = scribe.Job{
			Name: file,
			Context: flows.PostRequest{
				FilePath:          file,
				Models:            opts.Models.Or(app.Config.Models),
				OutputDir:         opts.OutputDir,
				Copy:              doCopy,
				Save:              opts.Save,
				MaxCharacterCount: opts.MaxCharacterCount,
			}.Context(),
		}
	}

	outcomes, _ := eng.Batch(ctx, jobs, opts.Parallel)

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			if isInterrupted(o.Err) {
				continue
			}
			app.Logger.Error("Post failed", "file", o.Job.Name, "run_id", o.RunID, "step", domain.FailedStep(o.Err), "error", o.Err)
			errs = append(errs, fmt.Errorf("%s: %w", o.Job.Name, o.Err))
			continue
		}
		res, err := flows.DecodePostResult(o.Context)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Job.Name, err))
			continue
		}
		printPost(out, o.Job.Name, res, render, opts.Quiet)
	}
	return errors.Join(errs...)
}

func printPost(out io.Writer, file string, res flows.PostResult, render func(string) (string, error), quiet bool) {
	if quiet {
		fmt.Fprintln(out, res.CleanedPostContent)
		return
	}

	printSystemMessage(out, "%s", filepath.Base(file))
	body := res.PostContent
	if render != nil {
		if rendered, err := render(body); err == nil {
			body = rendered
		}
	}
	fmt.Fprintln(out, body)

	if res.MarkdownFilePath != "" {
		printSystemMessage(out, "Markdown: %s", res.MarkdownFilePath)
	}
	if res.DraftPostFilePath != "" {
		printSystemMessage(out, "Draft: %s", res.DraftPostFilePath)
	}
	if res.PostFilePath != "" {
		printSystemMessage(out, "Post: %s", res.PostFilePath)
	}
	if res.ClipboardStatus != "" {
		printSystemMessage(out, "%s", res.ClipboardStatus)
	}
}
