package inference

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/errors"
)

// Executor runs a process to completion and returns what it printed.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecFunc adapts a function to Executor.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

// Run calls f.
func (f ExecFunc) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct{}

// Run executes name with args, killing it when ctx is done.
func (OSExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Runner answers prompts using assets installed under Root.
type Runner struct {
	Root     string
	Settings Settings
	Exec     Executor
	// GOOS selects the runtime binary layout; empty means the host OS.
	GOOS string
}

// NewRunner creates a Runner that executes real processes.
func NewRunner(root string, settings Settings) *Runner {
	return &Runner{Root: root, Settings: settings, Exec: OSExecutor{}}
}

// ModelPath returns models/<model>/<model>.gguf with dots in the directory
// name replaced by underscores.
func ModelPath(root, model string) string {
	dir := asset.Resolve(root, asset.CategoryModel, strings.ReplaceAll(model, ".", "_"))
	return filepath.Join(dir, model+".gguf")
}

// RuntimePath returns the llama-cli binary inside an installed runtime.
func RuntimePath(root, name, goos string) string {
	dir := asset.Resolve(root, asset.CategoryRuntime, name)
	if goos == "windows" {
		return filepath.Join(dir, "llama-cli.exe")
	}
	return filepath.Join(dir, "build", "bin", "llama-cli")
}

// Prompt runs text through model on the named runtime and returns the answer.
func (r *Runner) Prompt(ctx context.Context, model, runtimeName, text string) (string, error) {
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	bin := RuntimePath(r.Root, runtimeName, goos)
	if _, err := os.Stat(bin); err != nil {
		return "", fmt.Errorf("%w at %s", errors.ErrRuntimeNotFound, bin)
	}

	args := BuildArgs(ModelPath(r.Root, model), text, runtimeName, r.Settings)
	logger.Debug("Running inference", logger.Fields{
		"runtime": runtimeName,
		"model":   model,
		"args":    strings.Join(args, " "),
	})

	stdout, stderr, err := r.Exec.Run(ctx, bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: LLM process exited with error: %s", errors.ErrInference, msg)
	}

	return ExtractAnswer(string(stdout)), nil
}
