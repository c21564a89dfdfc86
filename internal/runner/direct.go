package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"obforge/internal/logging"
)

// Runner executes external processes with bounded time and output.
type Runner interface {
	// Run executes a command and returns its result. An error is returned
	// only for infrastructure failures (binary missing, fork failure);
	// non-zero exits and timeouts are reported inside the Result.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// LookPath reports whether a binary is resolvable on this host.
	LookPath(binary string) (string, bool)
}

// DirectRunner executes commands directly on the host using os/exec.
type DirectRunner struct {
	config Config
}

// NewDirectRunner creates a runner with default config.
func NewDirectRunner() *DirectRunner {
	return NewDirectRunnerWithConfig(DefaultConfig())
}

// NewDirectRunnerWithConfig creates a runner with custom config.
func NewDirectRunnerWithConfig(config Config) *DirectRunner {
	logging.RunnerDebug("Creating DirectRunner: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &DirectRunner{config: config}
}

// LookPath resolves a binary through PATH.
func (r *DirectRunner) LookPath(binary string) (string, bool) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// Run executes a command directly on the host.
func (r *DirectRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("binary is required")
	}

	cmd = r.config.Merge(cmd)

	logging.RunnerDebug("Executing: %s (dir=%s, timeout=%s)",
		cmd.CommandString(), cmd.WorkingDirectory, cmd.Timeout)

	result := &Result{ExitCode: -1}

	execCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = r.buildEnvironment(cmd.Environment)

	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()
	result.Truncated = stdoutLimited.truncated || stderrLimited.truncated
	if result.Truncated {
		logging.RunnerWarn("Output truncated for %s", cmd.Binary)
	}

	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0
	case execCtx.Err() == context.DeadlineExceeded:
		result.Success = true
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", cmd.Timeout)
		logging.RunnerWarn("Command killed (timeout): %s after %s", cmd.Binary, cmd.Timeout)
	case execCtx.Err() == context.Canceled:
		result.Success = true
		result.Killed = true
		result.KillReason = "context canceled"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The command ran, it just returned non-zero.
			result.Success = true
			result.ExitCode = exitErr.ExitCode()
			logging.RunnerDebug("Command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
		} else {
			result.Success = false
			result.Error = err.Error()
			logging.RunnerError("Command failed to start: %s - %v", cmd.Binary, err)
			return result, fmt.Errorf("run %s: %w", cmd.Binary, err)
		}
	}

	logging.RunnerDebug("Command completed: %s -> exit=%d, duration=%s, stdout=%d bytes",
		cmd.Binary, result.ExitCode, result.Duration, len(result.Stdout))

	return result, nil
}

// buildEnvironment creates the environment variable list.
func (r *DirectRunner) buildEnvironment(cmdEnv []string) []string {
	env := make([]string, 0, len(r.config.AllowedEnvironment)+len(cmdEnv))
	for _, key := range r.config.AllowedEnvironment {
		if val := os.Getenv(key); val != "" {
			env = append(env, fmt.Sprintf("%s=%s", key, val))
		}
	}
	env = append(env, cmdEnv...)
	return env
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
