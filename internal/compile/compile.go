// Package compile adapts a native compiler into the trial pipeline. The
// compiler itself is opaque: one invocation per candidate, bounded by a
// timeout, and ordinary rejection of a flag set is data (Compiled=false),
// never an error. Errors are reserved for environment failures such as a
// missing toolchain or an unwritable destination.
package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"obforge/internal/logging"
	"obforge/internal/runner"
)

// Artifact is the outcome of one compilation trial.
type Artifact struct {
	// Flags are the full command-line tokens the candidate was built with.
	Flags []string `json:"flags"`

	// BinaryPath is where the binary was (or would have been) written.
	BinaryPath string `json:"binary_path"`

	// Compiled reports whether the compiler accepted the flag set and
	// produced a binary.
	Compiled bool `json:"compiled"`

	// Diagnostic carries the compiler's stderr on rejection, or the kill
	// reason when the invocation was cut short (timeout, cancellation).
	Diagnostic string `json:"diagnostic,omitempty"`

	// Duration is how long the compiler ran.
	Duration time.Duration `json:"duration"`
}

// Compiler builds a fixed source file with varying flag sets.
type Compiler interface {
	// Compile builds the source with the given flags into destination.
	// A rejected flag set returns Compiled=false with a diagnostic and a
	// nil error; only environment failures return a non-nil error.
	Compile(ctx context.Context, flags []string, destination string) (*Artifact, error)

	// Binary returns the underlying compiler executable name.
	Binary() string
}

// ClangCompiler drives clang/clang++ through the process runner.
type ClangCompiler struct {
	runner  runner.Runner
	binary  string
	source  string
	timeout time.Duration
}

// Option customizes a ClangCompiler.
type Option func(*ClangCompiler)

// WithTimeout overrides the per-compile timeout (default 60s).
func WithTimeout(d time.Duration) Option {
	return func(c *ClangCompiler) { c.timeout = d }
}

// WithBinary overrides compiler auto-detection.
func WithBinary(binary string) Option {
	return func(c *ClangCompiler) { c.binary = binary }
}

// New creates a compiler adapter for the given source file. The compiler
// binary is chosen from the source extension unless overridden, and must
// be resolvable on PATH; a missing toolchain is an environment error.
func New(r runner.Runner, source string, opts ...Option) (*ClangCompiler, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("source file not found: %s", source)
	}

	c := &ClangCompiler{
		runner:  r,
		source:  source,
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.binary == "" {
		binary, err := DetectCompiler(source)
		if err != nil {
			return nil, err
		}
		c.binary = binary
	}

	if _, ok := r.LookPath(c.binary); !ok {
		return nil, fmt.Errorf("compiler %q not found on PATH", c.binary)
	}

	logging.Boot("Compiler adapter ready: %s for %s", c.binary, source)
	return c, nil
}

// Binary returns the compiler executable name.
func (c *ClangCompiler) Binary() string {
	return c.binary
}

// Compile builds the source with the given flags into destination.
func (c *ClangCompiler) Compile(ctx context.Context, flags []string, destination string) (*Artifact, error) {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	artifact := &Artifact{
		Flags:      append([]string(nil), flags...),
		BinaryPath: destination,
	}

	args := make([]string, 0, len(flags)+3)
	args = append(args, flags...)
	args = append(args, c.source, "-o", destination)

	res, err := c.runner.Run(ctx, runner.Command{
		Binary:    c.binary,
		Arguments: args,
		Timeout:   c.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("compiler invocation failed: %w", err)
	}

	artifact.Duration = res.Duration

	switch {
	case res.Killed:
		artifact.Diagnostic = res.KillReason
		if artifact.Diagnostic == "" {
			artifact.Diagnostic = "killed"
		}
		logging.CompileWarn("Compile killed (%s): %s", artifact.Diagnostic, strings.Join(flags, " "))
	case res.ExitCode != 0:
		artifact.Diagnostic = strings.TrimSpace(res.Stderr)
		if artifact.Diagnostic == "" {
			artifact.Diagnostic = fmt.Sprintf("compiler exited with code %d", res.ExitCode)
		}
		logging.CompileDebug("Compile rejected (%d): %s", res.ExitCode, strings.Join(flags, " "))
	default:
		if _, statErr := os.Stat(destination); statErr != nil {
			artifact.Diagnostic = "compiler reported success but produced no binary"
			logging.CompileWarn("%s: %s", artifact.Diagnostic, destination)
		} else {
			artifact.Compiled = true
			logging.CompileDebug("Compiled in %s: %s", res.Duration, strings.Join(flags, " "))
		}
	}

	return artifact, nil
}

// DetectCompiler picks clang or clang++ based on the source extension.
func DetectCompiler(source string) (string, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".c":
		return "clang", nil
	case ".cpp", ".cc", ".cxx", ".cp", ".c++":
		return "clang++", nil
	default:
		return "", fmt.Errorf("unsupported source extension: %s", filepath.Ext(source))
	}
}
