package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/scribe/pkg/ports"
)

// ErrNotRegistered is returned for tools outside the allow-list.
var ErrNotRegistered = errors.New("process tool not registered")

// ExecError reports a failed process execution.
type ExecError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("tool '%s' failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("tool '%s' failed: %v: %s", e.Tool, e.Err, stderr)
}

func (e *ExecError) Unwrap() error { return e.Err }

var placeholder = regexp.MustCompile(`\{([a-z_][a-z0-9_]*)\}`)

// Runner implements ports.ToolRunner by executing local processes.
// Only registered commands run (allow-listing). Arguments never pass
// through a shell: placeholders are substituted inside argv elements.
type Runner struct {
	mu       sync.RWMutex
	registry map[string]RegisteredProcess
	baseDir  string
	logger   *slog.Logger
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
	Timeout time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			timeout, _ := tool.timeout()
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
				Timeout: timeout,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[name] = RegisteredProcess{Command: command, Args: args}
}

// Tools lists the registered tool names, sorted.
func (r *Runner) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available reports whether the tool is registered and its command can be
// found on PATH.
func (r *Runner) Available(name string) bool {
	r.mu.RLock()
	proc, ok := r.registry[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	_, err := exec.LookPath(proc.Command)
	return err == nil
}

// Execute runs a registered tool. Call arguments fill {placeholders} in the
// configured args and are exported as SCRIBE_ARG_<NAME> variables.
func (r *Runner) Execute(ctx context.Context, call ports.ToolCall) (ports.ToolResult, error) {
	r.mu.RLock()
	proc, ok := r.registry[call.Name]
	r.mu.RUnlock()
	if !ok {
		return ports.ToolResult{}, fmt.Errorf("%w: %s", ErrNotRegistered, call.Name)
	}

	values := make(map[string]string, len(call.Args))
	env := make([]string, 0, len(call.Args)+len(proc.Env))
	for k, v := range call.Args {
		s := stringify(v)
		values[k] = s
		env = append(env, fmt.Sprintf("SCRIBE_ARG_%s=%s", strings.ToUpper(k), s))
	}
	for k, v := range proc.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	args, err := expand(call.Name, proc.Args, values)
	if err != nil {
		return ports.ToolResult{}, err
	}
	args = append(args, call.Extra...)

	if proc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, proc.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, proc.Command, args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), env...)
	if call.Stdin != "" {
		cmd.Stdin = strings.NewReader(call.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	r.logger.DebugContext(ctx, "executing tool", "tool", call.Name, "command", proc.Command)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return ports.ToolResult{}, &ExecError{Tool: call.Name, Stderr: stderr.String(), Err: err}
	}
	r.logger.DebugContext(ctx, "tool finished", "tool", call.Name, "took", time.Since(started), "bytes", stdout.Len())

	output := strings.TrimSpace(stdout.String())
	return ports.ToolResult{Output: output, Value: decode(output)}, nil
}

func expand(tool string, templates []string, values map[string]string) ([]string, error) {
	args := make([]string, len(templates))
	for i, tmpl := range templates {
		var missing string
		args[i] = placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
			name := m[1 : len(m)-1]
			v, ok := values[name]
			if !ok && missing == "" {
				missing = name
			}
			return v
		})
		if missing != "" {
			return nil, fmt.Errorf("tool '%s': argument %q needs unset placeholder {%s}", tool, tmpl, missing)
		}
	}
	return args, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", t)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

// decode parses output as JSON when it looks like an object or array.
func decode(output string) any {
	if (strings.HasPrefix(output, "{") && strings.HasSuffix(output, "}")) ||
		(strings.HasPrefix(output, "[") && strings.HasSuffix(output, "]")) {
		var v any
		if err := json.Unmarshal([]byte(output), &v); err == nil {
			return v
		}
	}
	return output
}
