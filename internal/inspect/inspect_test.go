package inspect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"obforge/internal/runner"
)

// fakeRunner maps command lines to canned results. Keys are the binary
// followed by its arguments, space-joined.
type fakeRunner struct {
	missing   map[string]bool
	responses map[string]*runner.Result
}

func (f *fakeRunner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	key := cmd.Binary
	if len(cmd.Arguments) > 0 {
		key += " " + strings.Join(cmd.Arguments, " ")
	}
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return &runner.Result{Success: true, ExitCode: 1}, nil
}

func (f *fakeRunner) LookPath(binary string) (string, bool) {
	if f.missing[binary] {
		return "", false
	}
	return "/usr/bin/" + binary, true
}

func ok(stdout string) *runner.Result {
	return &runner.Result{Success: true, ExitCode: 0, Stdout: stdout}
}

func writeBinary(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, make([]byte, size), 0755); err != nil {
		t.Fatalf("Failed to write binary: %v", err)
	}
	return path
}

func TestFallbackInspect(t *testing.T) {
	path := writeBinary(t, 2048)

	nmOut := strings.Join([]string{
		"0000000000001130 T main",
		"0000000000001180 T helper",
		"0000000000004010 D counter",
		"                 U printf",
	}, "\n") + "\n"

	objdumpOut := strings.Join([]string{
		"bin:     file format elf64-x86-64",
		"",
		"Disassembly of section .text:",
		"",
		"0000000000001130 <main>:",
		"    1130:\t55                   \tpush   %rbp",
		"    1131:\t48 89 e5             \tmov    %rsp,%rbp",
		"    1134:\tc3                   \tret",
	}, "\n") + "\n"

	f := &fakeRunner{responses: map[string]*runner.Result{
		"strings " + path:    ok("hello\nSecret_Key\nworld\n"),
		"nm " + path:         ok(nmOut),
		"objdump -d " + path: ok(objdumpOut),
	}}

	b, err := newFallbackBackend(f)
	if err != nil {
		t.Fatalf("newFallbackBackend failed: %v", err)
	}

	m, err := b.Inspect(context.Background(), path, []string{"secret_key"})
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if m.Size != 2048 {
		t.Errorf("Size = %d, want 2048", m.Size)
	}
	if m.StringCount != 3 {
		t.Errorf("StringCount = %d, want 3", m.StringCount)
	}
	if m.SymbolCount != 4 {
		t.Errorf("SymbolCount = %d, want 4", m.SymbolCount)
	}
	if m.FunctionCount != 2 {
		t.Errorf("FunctionCount = %d, want 2", m.FunctionCount)
	}
	// Four lines start with an address digit: the <main> label plus three
	// instruction lines.
	if m.InstructionCount != 4 {
		t.Errorf("InstructionCount = %d, want 4", m.InstructionCount)
	}
	if !m.LowFidelity {
		t.Error("Fallback metrics must be flagged low fidelity")
	}
	if m.Provider != ProviderFallback {
		t.Errorf("Provider = %q, want %q", m.Provider, ProviderFallback)
	}
	if diff := cmp.Diff([]string{"secret_key"}, m.FoundStrings); diff != "" {
		t.Errorf("FoundStrings mismatch (-want +got):\n%s", diff)
	}
	if m.AvgBasicBlocks <= 0 || m.AvgComplexity < 1 {
		t.Errorf("Estimates not populated: blocks=%v complexity=%v", m.AvgBasicBlocks, m.AvgComplexity)
	}
}

func TestFallbackInspect_ToolFailureDegradesToZero(t *testing.T) {
	path := writeBinary(t, 128)

	// Every tool fails; metrics degrade to zero instead of aborting.
	f := &fakeRunner{responses: map[string]*runner.Result{}}
	b, err := newFallbackBackend(f)
	if err != nil {
		t.Fatalf("newFallbackBackend failed: %v", err)
	}

	m, err := b.Inspect(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if m.StringCount != 0 || m.SymbolCount != 0 || m.FunctionCount != 0 || m.InstructionCount != 0 {
		t.Errorf("Expected zeroed metrics, got %+v", m)
	}
	if m.Size != 128 {
		t.Errorf("Size should still come from stat, got %d", m.Size)
	}
}

func TestFallbackInspect_BinaryMissing(t *testing.T) {
	f := &fakeRunner{}
	b, err := newFallbackBackend(f)
	if err != nil {
		t.Fatalf("newFallbackBackend failed: %v", err)
	}
	if _, err := b.Inspect(context.Background(), filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("Expected error for missing binary")
	}
}

func TestRichInspect(t *testing.T) {
	path := writeBinary(t, 4096)

	aflj := `[
		{"name":"main","ninstrs":40,"nbbs":6,"cc":4},
		{"name":"sym.helper","ninstrs":20,"nbbs":2,"cc":2}
	]`
	izj := `[
		{"string":"hello"},
		{"string":"API_TOKEN"},
		{"name":"str.fallbackname"}
	]`

	f := &fakeRunner{responses: map[string]*runner.Result{
		"r2 -A -qq -c aflj " + path: ok(aflj),
		"r2 -A -qq -c izj " + path:  ok(izj),
		"nm " + path:                ok("0000000000001130 T main\n0000000000001180 T helper\n"),
	}}

	p, err := NewProvider(f, Options{PreferRich: true})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != ProviderRadare2 {
		t.Fatalf("Expected radare2 backend, got %s", p.Name())
	}

	m, err := p.Inspect(context.Background(), path, []string{"api_token", "missing"})
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if m.FunctionCount != 2 {
		t.Errorf("FunctionCount = %d, want 2", m.FunctionCount)
	}
	if m.InstructionCount != 60 {
		t.Errorf("InstructionCount = %d, want 60", m.InstructionCount)
	}
	if m.AvgBasicBlocks != 4 {
		t.Errorf("AvgBasicBlocks = %v, want 4", m.AvgBasicBlocks)
	}
	if m.AvgComplexity != 3 {
		t.Errorf("AvgComplexity = %v, want 3", m.AvgComplexity)
	}
	if m.StringCount != 3 {
		t.Errorf("StringCount = %d, want 3", m.StringCount)
	}
	// Symbols come from nm in both backends
	if m.SymbolCount != 2 {
		t.Errorf("SymbolCount = %d, want 2", m.SymbolCount)
	}
	if m.LowFidelity {
		t.Error("Rich metrics must not be flagged low fidelity")
	}
	if diff := cmp.Diff([]string{"api_token"}, m.FoundStrings); diff != "" {
		t.Errorf("FoundStrings mismatch (-want +got):\n%s", diff)
	}
}

func TestRichInspect_FallsBackOnBadOutput(t *testing.T) {
	path := writeBinary(t, 512)

	f := &fakeRunner{responses: map[string]*runner.Result{
		// Unparseable r2 output, healthy binutils
		"r2 -A -qq -c aflj " + path: ok("not json"),
		"strings " + path:           ok("a\nb\n"),
		"nm " + path:                ok("0000000000001130 T main\n"),
		"objdump -d " + path:        ok("    1130:\tc3\tret\n"),
	}}

	p, err := NewProvider(f, Options{PreferRich: true})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	m, err := p.Inspect(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if m.Provider != ProviderFallback {
		t.Errorf("Expected transparent fallback, got provider %q", m.Provider)
	}
}

func TestRichInspect_RequireRichFailsHard(t *testing.T) {
	path := writeBinary(t, 512)

	f := &fakeRunner{responses: map[string]*runner.Result{
		"r2 -A -qq -c aflj " + path: ok("not json"),
	}}

	p, err := NewProvider(f, Options{RequireRich: true})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, err := p.Inspect(context.Background(), path, nil); err == nil {
		t.Fatal("Expected hard failure with RequireRich")
	}
}

func TestNewProvider_Selection(t *testing.T) {
	// radare2 missing, PreferRich: silently uses fallback
	f := &fakeRunner{missing: map[string]bool{"r2": true, "radare2": true}}
	p, err := NewProvider(f, Options{PreferRich: true})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != ProviderFallback {
		t.Errorf("Expected fallback backend, got %s", p.Name())
	}

	// radare2 missing, RequireRich: environment error
	if _, err := NewProvider(f, Options{RequireRich: true}); err == nil {
		t.Error("Expected error with RequireRich and no radare2")
	}

	// binutils missing without rich preference: environment error
	f = &fakeRunner{missing: map[string]bool{"objdump": true}}
	if _, err := NewProvider(f, Options{}); err == nil {
		t.Error("Expected error with missing binutils")
	}
}

func TestMatchSensitive(t *testing.T) {
	extracted := []string{"Hello", "SECRET_key", "other"}

	found := matchSensitive(extracted, []string{"secret_KEY", "hello", "absent"})
	want := []string{"secret_KEY", "hello"}
	if diff := cmp.Diff(want, found); diff != "" {
		t.Errorf("matchSensitive mismatch (-want +got):\n%s", diff)
	}

	if got := matchSensitive(nil, []string{"x"}); got != nil {
		t.Errorf("Expected nil for empty extraction, got %v", got)
	}
	if got := matchSensitive(extracted, nil); got != nil {
		t.Errorf("Expected nil for no needles, got %v", got)
	}
}
