package inspect

import (
	"context"
	"fmt"

	"obforge/internal/logging"
	"obforge/internal/runner"
)

// Provider turns a binary into a canonical Metrics record.
type Provider interface {
	// Inspect analyzes the binary at path. Sensitive strings are matched
	// case-insensitively against the extracted string table.
	Inspect(ctx context.Context, path string, sensitive []string) (*Metrics, error)

	// Name identifies the backend ("radare2" or "objdump").
	Name() string
}

// Options control provider selection.
type Options struct {
	// PreferRich selects the radare2 backend when available.
	PreferRich bool

	// RequireRich makes a missing or failing radare2 backend fatal
	// instead of falling back.
	RequireRich bool
}

// NewProvider selects a backend once, based on tool availability.
// The fallback toolchain (objdump, nm, strings) must always be present;
// its absence is an environment error.
func NewProvider(r runner.Runner, opts Options) (Provider, error) {
	fallback, err := newFallbackBackend(r)
	if err != nil {
		if !opts.PreferRich && !opts.RequireRich {
			return nil, err
		}
		// A rich-only setup may still work without the fallback tools.
		fallback = nil
	}

	if opts.PreferRich || opts.RequireRich {
		if binary, ok := lookRadare2(r); ok {
			logging.Boot("Metrics provider: radare2 (%s)", binary)
			return &richBackend{
				runner:   r,
				binary:   binary,
				fallback: fallback,
				require:  opts.RequireRich,
			}, nil
		}
		if opts.RequireRich {
			return nil, fmt.Errorf("radare2 analysis required but no r2/radare2 executable found")
		}
		logging.Boot("radare2 unavailable, using objdump fallback")
	}

	if fallback == nil {
		return nil, err
	}
	logging.Boot("Metrics provider: objdump fallback")
	return fallback, nil
}

func lookRadare2(r runner.Runner) (string, bool) {
	for _, name := range []string{"r2", "radare2"} {
		if _, ok := r.LookPath(name); ok {
			return name, true
		}
	}
	return "", false
}
