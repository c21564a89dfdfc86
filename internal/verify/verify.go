// Package verify checks functional equivalence between the baseline binary
// and a hardened candidate. Both are executed over caller-supplied argument
// vectors and compared on the exact (exit code, stdout, stderr) triple.
// The verdict is advisory: the search engine never auto-rejects a best
// candidate on mismatch, callers decide what a failed vector means.
package verify

import (
	"context"
	"fmt"

	"obforge/internal/logging"
	"obforge/internal/runner"
)

// Execution records one binary's observable behavior for one vector.
type Execution struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// VectorResult is the comparison outcome for one argument vector.
type VectorResult struct {
	// Args is the argument vector both binaries ran with.
	Args []string `json:"args"`

	// Matched is true only when exit code, stdout bytes and stderr bytes
	// are all identical.
	Matched bool `json:"matched"`

	// Baseline and Candidate are the observed executions.
	Baseline  Execution `json:"baseline"`
	Candidate Execution `json:"candidate"`

	// Error notes an infrastructure failure running either binary.
	Error string `json:"error,omitempty"`
}

// Report is the full verification outcome.
type Report struct {
	// Confirmed is true only when every vector matched.
	Confirmed bool `json:"confirmed"`

	// Vectors holds one result per argument vector, in input order.
	Vectors []VectorResult `json:"vectors"`
}

// Verifier runs baseline/candidate comparisons.
type Verifier struct {
	runner runner.Runner
}

// New creates a verifier on top of the given process runner.
func New(r runner.Runner) *Verifier {
	return &Verifier{runner: r}
}

// Verify executes both binaries across all argument vectors. With no
// vectors the report is trivially confirmed. Infrastructure failures mark
// the affected vector unmatched rather than aborting the remaining ones.
func (v *Verifier) Verify(ctx context.Context, baselineBinary, candidateBinary string, vectors [][]string) (*Report, error) {
	report := &Report{Confirmed: true}

	for _, args := range vectors {
		result := VectorResult{Args: append([]string(nil), args...)}

		base, err := v.execute(ctx, baselineBinary, args)
		if err != nil {
			result.Error = fmt.Sprintf("baseline run failed: %v", err)
		} else {
			result.Baseline = base
			cand, err := v.execute(ctx, candidateBinary, args)
			if err != nil {
				result.Error = fmt.Sprintf("candidate run failed: %v", err)
			} else {
				result.Candidate = cand
				result.Matched = base.ExitCode == cand.ExitCode &&
					base.Stdout == cand.Stdout &&
					base.Stderr == cand.Stderr
			}
		}

		if !result.Matched {
			report.Confirmed = false
			logging.Verify("Vector %v mismatch (baseline exit=%d, candidate exit=%d)",
				args, result.Baseline.ExitCode, result.Candidate.ExitCode)
		} else {
			logging.VerifyDebug("Vector %v matched", args)
		}

		report.Vectors = append(report.Vectors, result)
	}

	return report, nil
}

func (v *Verifier) execute(ctx context.Context, binary string, args []string) (Execution, error) {
	res, err := v.runner.Run(ctx, runner.Command{Binary: binary, Arguments: args})
	if err != nil {
		return Execution{}, err
	}
	if res.Killed {
		return Execution{}, fmt.Errorf("killed: %s", res.KillReason)
	}
	return Execution{ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}, nil
}
