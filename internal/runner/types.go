// Package runner is the process layer of the flag search engine. It provides
// the lowest-level execution primitive that physically interacts with the
// toolchain - compiler invocations, binary inspection tools, and candidate
// binaries under verification.
//
// Design principles:
//   - Minimal logic: what to run is decided by the callers, not here
//   - Bounded execution: every call carries a timeout; a timed-out process
//     is killed and reported, never left running
//   - Structured output: exit code, stdout and stderr are captured
//     separately so callers can compare them byte for byte
package runner

import (
	"time"
)

// Command represents an external process to be executed.
type Command struct {
	// Binary is the executable to run (e.g., "clang", "r2", "objdump").
	Binary string `json:"binary"`

	// Arguments are the command-line arguments.
	Arguments []string `json:"arguments"`

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the runner's default working directory.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Environment variables to set (in KEY=VALUE format).
	// These are merged with the runner's allowed environment.
	Environment []string `json:"environment,omitempty"`

	// Stdin provides input to the command's standard input.
	Stdin string `json:"stdin,omitempty"`

	// Timeout bounds wall-clock execution time.
	// Zero means use the runner's default timeout.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxOutputBytes limits captured stdout/stderr size per stream.
	// Zero means use the runner's default (typically 10MB).
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	result := c.Binary
	for _, arg := range c.Arguments {
		result += " " + arg
	}
	return result
}

// Result is the comprehensive output of a process execution.
type Result struct {
	// Success indicates whether the process was started and reaped.
	// Note: a command that runs but returns non-zero exit code has
	// Success=true. Success=false means the execution infrastructure
	// failed (binary missing, fork failure).
	Success bool `json:"success"`

	// ExitCode is the command's exit code (-1 if not available).
	ExitCode int `json:"exit_code"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// Duration is how long the command ran.
	Duration time.Duration `json:"duration"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when execution completed.
	FinishedAt time.Time `json:"finished_at"`

	// Killed indicates the command was forcibly terminated.
	Killed bool `json:"killed"`

	// KillReason explains why the command was killed ("timeout after 60s").
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates output was cut off due to size limits.
	Truncated bool `json:"truncated"`

	// Error contains any infrastructure-level error message.
	Error string `json:"error,omitempty"`
}

// IsError returns true if the execution infrastructure failed.
func (r *Result) IsError() bool {
	return !r.Success || r.Error != ""
}

// Output returns stdout and stderr joined for diagnostics.
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Config is the configuration for creating runners.
type Config struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string `json:"default_working_dir"`

	// DefaultTimeout is used when no timeout is specified.
	DefaultTimeout time.Duration `json:"default_timeout"`

	// MaxTimeout caps all timeout values.
	MaxTimeout time.Duration `json:"max_timeout"`

	// AllowedEnvironment lists environment variables to pass through.
	AllowedEnvironment []string `json:"allowed_environment"`

	// MaxOutputBytes caps output capture per stream (default 10MB).
	MaxOutputBytes int64 `json:"max_output_bytes"`
}

// DefaultConfig returns sensible defaults for toolchain work.
func DefaultConfig() Config {
	return Config{
		DefaultWorkingDir:  ".",
		DefaultTimeout:     60 * time.Second,
		MaxTimeout:         10 * time.Minute,
		MaxOutputBytes:     10 * 1024 * 1024, // 10MB
		AllowedEnvironment: []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR"},
	}
}

// Merge combines this config with command-specific settings.
// Command settings override config defaults.
func (c Config) Merge(cmd Command) Command {
	result := cmd

	if result.WorkingDirectory == "" {
		result.WorkingDirectory = c.DefaultWorkingDir
	}
	if result.Timeout == 0 {
		result.Timeout = c.DefaultTimeout
	}
	if c.MaxTimeout > 0 && result.Timeout > c.MaxTimeout {
		result.Timeout = c.MaxTimeout
	}
	if result.MaxOutputBytes == 0 {
		result.MaxOutputBytes = c.MaxOutputBytes
	}

	return result
}
