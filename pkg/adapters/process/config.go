package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProcessConfig represents the configuration for an external tool execution.
// Args may contain {placeholders} filled from the call arguments.
type ProcessConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	Timeout     string            `yaml:"timeout" json:"timeout"`
}

// ConfigFile represents the structure of tools.yaml.
type ConfigFile struct {
	Tools []ProcessConfig `yaml:"tools" json:"tools"`
}

// LoadTools reads a configuration file (YAML or JSON) and returns a map of
// tool names to configs. A missing file yields an empty map.
func LoadTools(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	toolMap := make(map[string]ProcessConfig)
	for _, tool := range cfg.Tools {
		if tool.Name == "" {
			continue
		}
		if tool.Command == "" {
			return nil, fmt.Errorf("tool %q: command is required", tool.Name)
		}
		if _, err := tool.timeout(); err != nil {
			return nil, fmt.Errorf("tool %q: %w", tool.Name, err)
		}
		toolMap[tool.Name] = tool
	}
	return toolMap, nil
}

func (p ProcessConfig) timeout() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	return d, nil
}

// Names of the tools the document steps rely on.
const (
	ToolPDFToText = "pdftotext"
	ToolPandoc    = "pandoc_docx"
	ToolClipboard = "clipboard"
)

// DefaultTools returns the built-in tool set. Entries loaded from a tools
// file with the same name take precedence.
func DefaultTools() map[string]ProcessConfig {
	tools := map[string]ProcessConfig{
		ToolPDFToText: {
			Name:        ToolPDFToText,
			Command:     "pdftotext",
			Args:        []string{"-layout", "-enc", "UTF-8", "{input}", "-"},
			Description: "Extract the text layer of a PDF to stdout",
			Timeout:     "2m",
		},
		ToolPandoc: {
			Name:    ToolPandoc,
			Command: "pandoc",
			Args: []string{
				"-s", "--mathml", "--columns=80", "--toc",
				"--metadata", "title={title}",
				"-f", "markdown+emoji+smart",
				"{input}", "-o", "{output}",
			},
			Description: "Convert markdown to DOCX",
			Timeout:     "2m",
		},
	}

	clip := ProcessConfig{Name: ToolClipboard, Description: "Copy stdin to the system clipboard", Timeout: "10s"}
	switch runtime.GOOS {
	case "darwin":
		clip.Command = "pbcopy"
	case "windows":
		clip.Command = "clip"
	default:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			clip.Command = "wl-copy"
		} else {
			clip.Command = "xclip"
			clip.Args = []string{"-selection", "clipboard"}
		}
	}
	tools[ToolClipboard] = clip
	return tools
}

// Merge overlays custom on top of base.
func Merge(base, custom map[string]ProcessConfig) map[string]ProcessConfig {
	out := make(map[string]ProcessConfig, len(base)+len(custom))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range custom {
		out[k] = v
	}
	return out
}
