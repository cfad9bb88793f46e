package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/scribe/pkg/registry"
)

// File types recognized by CheckFileType.
const (
	FileTypePDF      = "pdf"
	FileTypeText     = "text"
	FileTypeMarkdown = "markdown"
)

var extensions = map[string]string{
	".pdf": FileTypePDF,
	".txt": FileTypeText,
	".md":  FileTypeMarkdown,
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ArtifactPath derives an output path from source by replacing its
// extension with suffix. With a non-empty dir the file is placed there.
func ArtifactPath(source, suffix, dir string) string {
	source = ExpandPath(source)
	base := strings.TrimSuffix(source, filepath.Ext(source)) + suffix
	if dir == "" {
		return base
	}
	return filepath.Join(ExpandPath(dir), filepath.Base(base))
}

// DetectFileType classifies path by extension. The file must exist.
func DetectFileType(path string) (string, error) {
	path = ExpandPath(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a file: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	fileType, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
	return fileType, nil
}

// WriteArtifact writes content to path, creating parent directories and
// overwriting any existing file.
func WriteArtifact(path, content string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// CheckFileType reads file_path and writes file_type.
func (l *Library) CheckFileType() registry.Step {
	return registry.Step{
		Name:        "check_file_type",
		Description: "Determine the file type from its extension",
		Inputs:      []registry.Input{registry.In("file_path")},
		Output:      "file_type",
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			path, err := in.String("file_path")
			if err != nil {
				return nil, err
			}
			fileType, err := DetectFileType(path)
			if err != nil {
				return nil, err
			}
			l.logger.DebugContext(ctx, "detected file type", "path", path, "type", fileType)
			return fileType, nil
		},
	}
}

// ReadText reads a text or markdown file into markdown_content.
func (l *Library) ReadText() registry.Step {
	return registry.Step{
		Name:        "read_text_or_markdown",
		Description: "Read a text or markdown file",
		Inputs:      []registry.Input{registry.In("file_path"), registry.In("file_type")},
		Output:      "markdown_content",
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			fileType, err := in.String("file_type")
			if err != nil {
				return nil, err
			}
			if fileType != FileTypeText && fileType != FileTypeMarkdown {
				return nil, fmt.Errorf("expected 'text' or 'markdown', got %q", fileType)
			}
			path, err := in.String("file_path")
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(ExpandPath(path))
			if err != nil {
				return nil, fmt.Errorf("failed to read %s file: %w", fileType, err)
			}
			l.logger.InfoContext(ctx, "read document", "path", path, "type", fileType, "chars", len(data))
			return string(data), nil
		},
	}
}

// Artifact describes a step that saves a context value next to a source file.
type Artifact struct {
	Name    string
	Content string // context key holding the text
	Source  string // context key holding the source path
	Suffix  string // replaces the source extension, e.g. ".draft.md"
	Output  string // context key receiving the written path

	// Fallback replaces Suffix when the derived path would overwrite the
	// source itself, e.g. a final ".md" for a markdown input.
	Fallback string
}

// SaveArtifact writes the content to the derived artifact path. The
// optional output_dir input redirects it to another directory.
func (l *Library) SaveArtifact(a Artifact) registry.Step {
	return registry.Step{
		Name:        a.Name,
		Description: fmt.Sprintf("Save %s as %s", a.Content, a.Suffix),
		Inputs: []registry.Input{
			registry.In("content").FromKey(a.Content),
			registry.In("source").FromKey(a.Source),
			registry.Opt("output_dir"),
		},
		Output: a.Output,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			content, err := in.String("content")
			if err != nil {
				return nil, err
			}
			source, err := in.String("source")
			if err != nil {
				return nil, err
			}
			dir, err := in.StringOr("output_dir", "")
			if err != nil {
				return nil, err
			}

			path := ArtifactPath(source, a.Suffix, dir)
			if a.Fallback != "" && filepath.Clean(path) == filepath.Clean(ExpandPath(source)) {
				path = ArtifactPath(source, a.Fallback, dir)
			}
			if err := WriteArtifact(path, content); err != nil {
				return nil, err
			}
			l.logger.InfoContext(ctx, "saved artifact", "path", path, "chars", len(content))
			return path, nil
		},
	}
}

// SaveFile writes the content key to the path held by the target key.
func (l *Library) SaveFile(name, content, target, output string) registry.Step {
	return registry.Step{
		Name:        name,
		Description: fmt.Sprintf("Save %s to the path in %s", content, target),
		Inputs:      []registry.Input{registry.In("content").FromKey(content), registry.In("target").FromKey(target)},
		Output:      output,
		Logic: func(ctx context.Context, in registry.Inputs) (any, error) {
			content, err := in.String("content")
			if err != nil {
				return nil, err
			}
			target, err := in.String("target")
			if err != nil {
				return nil, err
			}
			path := ExpandPath(target)
			if err := WriteArtifact(path, content); err != nil {
				return nil, err
			}
			l.logger.InfoContext(ctx, "saved file", "path", path, "chars", len(content))
			return path, nil
		},
	}
}
