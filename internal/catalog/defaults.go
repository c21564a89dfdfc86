package catalog

// Default returns the built-in flag catalog. Entries carry heuristic base
// scores from hardening research; order is the canonical enumeration order.
func Default() *Catalog {
	return &Catalog{
		Entries:   defaultEntries(),
		Conflicts: DefaultConflicts(),
	}
}

// DefaultConflicts returns the built-in conflict-exclusion groups:
// mutually incompatible tokens that must never co-occur in one candidate.
func DefaultConflicts() []ConflictGroup {
	return []ConflictGroup{
		// Optimization levels conflict with each other
		{"-O0", "-O1", "-O2", "-O3", "-Os", "-Oz", "-Ofast", "-Og"},
		// LTO modes conflict
		{"-flto", "-flto=thin", "-flto=full"},
		// Inlining conflicts
		{"-finline-functions", "-fno-inline", "-fno-inline-functions"},
		{"-finline-limit=1000", "-finline-limit=10000", "-finline-limit=999999"},
		// Frame pointer conflicts
		{"-fomit-frame-pointer", "-fno-omit-frame-pointer"},
		// Loop unrolling conflicts
		{"-funroll-loops", "-funroll-all-loops", "-fno-unroll-loops"},
		// Vectorization conflicts
		{"-fvectorize", "-fno-vectorize"},
		{"-fslp-vectorize", "-fno-slp-vectorize"},
		// Math contraction conflicts
		{"-ffp-contract=fast", "-ffp-contract=off"},
		// Control flow protection conflicts
		{"-fcf-protection=none", "-fcf-protection=branch", "-fcf-protection=return", "-fcf-protection=full"},
		// Register allocator conflicts (second token of "-mllvm -regalloc=X")
		{"-regalloc=greedy", "-regalloc=basic", "-regalloc=fast", "-regalloc=pbqp"},
		// Constant merging conflicts
		{"-fmerge-constants", "-fmerge-all-constants", "-fno-merge-constants"},
		// Aliasing conflicts
		{"-fstrict-aliasing", "-fno-strict-aliasing"},
		// Sibling call conflicts
		{"-foptimize-sibling-calls", "-fno-optimize-sibling-calls"},
	}
}

// DefaultOptions returns the flag bundles used by progressive tuning when
// no explicit option list is supplied.
func DefaultOptions() []Option {
	return []Option{
		{Identifier: "O3", Flags: []string{"-O3"}, Description: "High optimisation level"},
		{Identifier: "NoUnwind", Flags: []string{"-fno-asynchronous-unwind-tables"}, Description: "Remove unwind tables"},
		{Identifier: "NoIdent", Flags: []string{"-fno-ident"}, Description: "Strip compiler identification"},
		{Identifier: "OmitFramePtr", Flags: []string{"-fomit-frame-pointer"}, Description: "Omit frame pointer"},
		{Identifier: "HiddenVis", Flags: []string{"-fvisibility=hidden"}, Description: "Hide symbols by default"},
		{Identifier: "MergeConsts", Flags: []string{"-fmerge-all-constants"}, Description: "Aggressively merge constants"},
		{Identifier: "UnrollLoops", Flags: []string{"-funroll-loops"}, Description: "Unroll loops"},
		{Identifier: "StripAll", Flags: []string{"-Wl,--strip-all"}, Description: "Strip all symbols at link time"},
		{Identifier: "GCSections", Flags: []string{"-ffunction-sections", "-fdata-sections", "-Wl,--gc-sections"}, Description: "Section GC bundle"},
		{Identifier: "NoJumpTables", Flags: []string{"-fno-jump-tables"}, Description: "Disable jump tables"},
	}
}

func defaultEntries() []Entry {
	return []Entry{
		// Optimization levels
		{Flag: "-O0", Category: "optimization_level", Score: 1, Priority: "baseline", Description: "No optimization - baseline"},
		{Flag: "-O1", Category: "optimization_level", Score: 3, Priority: "low", Description: "Basic optimization"},
		{Flag: "-O2", Category: "optimization_level", Score: 6, Priority: "medium", Description: "Standard optimization"},
		{Flag: "-O3", Category: "optimization_level", Score: 8, Priority: "high", Description: "Aggressive optimization"},
		{Flag: "-Os", Category: "optimization_level", Score: 5, Priority: "medium", Description: "Optimize for size"},
		{Flag: "-Oz", Category: "optimization_level", Score: 6, Priority: "medium", Description: "Aggressive size optimization"},
		{Flag: "-Ofast", Category: "optimization_level", Score: 9, Priority: "high", Description: "Fast math optimization"},

		// Obfuscator-LLVM passes (require a plugin-enabled toolchain)
		{Flag: "-mllvm -fla", Category: "obfuscation_pass", Score: 9, Priority: "highest", Description: "Control flow flattening"},
		{Flag: "-mllvm -bcf", Category: "obfuscation_pass", Score: 8, Priority: "highest", Description: "Bogus control flow"},
		{Flag: "-mllvm -sub", Category: "obfuscation_pass", Score: 7, Priority: "high", Description: "Instruction substitution"},
		{Flag: "-mllvm -split", Category: "obfuscation_pass", Score: 6, Priority: "high", Description: "Basic block splitting"},

		// Inlining
		{Flag: "-finline-functions", Category: "inlining", Score: 7, Priority: "high", Description: "Inline functions aggressively"},
		{Flag: "-finline-hint-functions", Category: "inlining", Score: 6, Priority: "medium", Description: "Inline hint functions"},
		{Flag: "-finline-limit=1000", Category: "inlining", Score: 7, Priority: "high", Description: "Set inline limit to 1000"},
		{Flag: "-finline-limit=10000", Category: "inlining", Score: 8, Priority: "high", Description: "Set inline limit to 10000"},
		{Flag: "-finline-limit=999999", Category: "inlining", Score: 9, Priority: "highest", Description: "Remove practical inline limits"},
		{Flag: "-fno-inline", Category: "inlining", Score: 1, Priority: "baseline", Description: "Disable all inlining - negative"},

		// Loop optimization
		{Flag: "-funroll-loops", Category: "loop_optimization", Score: 7, Priority: "high", Description: "Unroll loops"},
		{Flag: "-funroll-all-loops", Category: "loop_optimization", Score: 8, Priority: "high", Description: "Unroll all loops aggressively"},
		{Flag: "-floop-unroll-and-jam", Category: "loop_optimization", Score: 7, Priority: "high", Description: "Unroll and jam loops"},
		{Flag: "-fno-unroll-loops", Category: "loop_optimization", Score: 1, Priority: "baseline", Description: "Disable loop unrolling"},

		// Math optimization
		{Flag: "-ffast-math", Category: "math_optimization", Score: 8, Priority: "high", Description: "Fast math optimizations"},
		{Flag: "-freciprocal-math", Category: "math_optimization", Score: 7, Priority: "high", Description: "Use reciprocal multiplication"},
		{Flag: "-funsafe-math-optimizations", Category: "math_optimization", Score: 7, Priority: "high", Description: "Unsafe math transforms"},
		{Flag: "-ffp-contract=fast", Category: "math_optimization", Score: 5, Priority: "medium", Description: "Fast FP contraction"},
		{Flag: "-ffp-contract=off", Category: "math_optimization", Score: 2, Priority: "baseline", Description: "Disable FP contraction"},

		// LTO
		{Flag: "-flto", Category: "lto", Score: 8, Priority: "high", Description: "Link-time optimization"},
		{Flag: "-flto=thin", Category: "lto", Score: 7, Priority: "high", Description: "Thin LTO"},
		{Flag: "-flto=full", Category: "lto", Score: 8, Priority: "high", Description: "Full LTO"},
		{Flag: "-fwhole-program-vtables", Category: "lto", Score: 6, Priority: "medium", Description: "Whole-program vtable optimization"},

		// Control flow
		{Flag: "-fomit-frame-pointer", Category: "control_flow", Score: 4, Priority: "medium", Description: "Omit frame pointers"},
		{Flag: "-fno-omit-frame-pointer", Category: "control_flow", Score: 1, Priority: "baseline", Description: "Keep frame pointers"},
		{Flag: "-fno-unwind-tables", Category: "control_flow", Score: 5, Priority: "medium", Description: "Remove unwind tables"},
		{Flag: "-fno-asynchronous-unwind-tables", Category: "control_flow", Score: 4, Priority: "medium", Description: "Remove async unwind tables"},
		{Flag: "-ffunction-sections", Category: "control_flow", Score: 3, Priority: "low", Description: "Separate function sections"},
		{Flag: "-fdata-sections", Category: "control_flow", Score: 3, Priority: "low", Description: "Separate data sections"},
		{Flag: "-fno-jump-tables", Category: "control_flow", Score: 6, Priority: "medium", Description: "Disable jump tables"},
		{Flag: "-fcf-protection=none", Category: "control_flow", Score: 2, Priority: "baseline", Description: "Disable control flow protection"},
		{Flag: "-fcf-protection=full", Category: "control_flow", Score: 6, Priority: "medium", Description: "Full control flow protection"},

		// Data layout
		{Flag: "-fmerge-constants", Category: "data_layout", Score: 5, Priority: "medium", Description: "Merge identical constants"},
		{Flag: "-fmerge-all-constants", Category: "data_layout", Score: 6, Priority: "medium", Description: "Aggressively merge constants"},
		{Flag: "-fno-merge-constants", Category: "data_layout", Score: 2, Priority: "baseline", Description: "Don't merge constants"},
		{Flag: "-fstrict-aliasing", Category: "data_layout", Score: 4, Priority: "low", Description: "Strict aliasing optimization"},
		{Flag: "-fno-strict-aliasing", Category: "data_layout", Score: 2, Priority: "baseline", Description: "Disable strict aliasing"},

		// Symbol visibility
		{Flag: "-fvisibility=hidden", Category: "symbol_visibility", Score: 6, Priority: "medium", Description: "Hide symbols by default"},
		{Flag: "-fvisibility=internal", Category: "symbol_visibility", Score: 5, Priority: "medium", Description: "Internal symbol visibility"},
		{Flag: "-fvisibility-inlines-hidden", Category: "symbol_visibility", Score: 4, Priority: "low", Description: "Hide inline functions"},
		{Flag: "-fno-ident", Category: "symbol_visibility", Score: 2, Priority: "low", Description: "Remove compiler identification"},
		{Flag: "-fno-plt", Category: "symbol_visibility", Score: 4, Priority: "low", Description: "Disable PLT"},
		{Flag: "-fno-semantic-interposition", Category: "symbol_visibility", Score: 5, Priority: "medium", Description: "Disable semantic interposition"},

		// Vectorization
		{Flag: "-fvectorize", Category: "vectorization", Score: 5, Priority: "medium", Description: "Enable vectorization"},
		{Flag: "-fno-vectorize", Category: "vectorization", Score: 1, Priority: "baseline", Description: "Disable vectorization"},
		{Flag: "-fslp-vectorize", Category: "vectorization", Score: 5, Priority: "medium", Description: "SLP vectorization"},
		{Flag: "-fno-slp-vectorize", Category: "vectorization", Score: 1, Priority: "baseline", Description: "Disable SLP vectorization"},

		// Dead code elimination
		{Flag: "-Wl,--gc-sections", Category: "dead_code_elimination", Score: 4, Priority: "medium", Description: "Linker garbage collection"},
		{Flag: "-Wl,--strip-debug", Category: "dead_code_elimination", Score: 3, Priority: "low", Description: "Strip debug info"},
		{Flag: "-Wl,--strip-all", Category: "dead_code_elimination", Score: 4, Priority: "medium", Description: "Strip all symbols"},

		// Register allocation
		{Flag: "-mllvm -regalloc=greedy", Category: "register_allocation", Score: 3, Priority: "low", Description: "Greedy register allocator"},
		{Flag: "-mllvm -regalloc=basic", Category: "register_allocation", Score: 4, Priority: "low", Description: "Basic register allocator"},
		{Flag: "-mllvm -regalloc=pbqp", Category: "register_allocation", Score: 5, Priority: "medium", Description: "PBQP register allocator"},

		// Machine-level experiments
		{Flag: "-mllvm -disable-block-placement", Category: "experimental", Score: 4, Priority: "low", Description: "Disable block placement"},
		{Flag: "-mllvm -disable-machine-cse", Category: "experimental", Score: 4, Priority: "low", Description: "Disable machine CSE"},
		{Flag: "-mllvm -disable-machine-licm", Category: "experimental", Score: 4, Priority: "low", Description: "Disable machine LICM"},
		{Flag: "-mllvm -disable-peephole", Category: "experimental", Score: 4, Priority: "low", Description: "Disable peephole optimization"},
		{Flag: "-mllvm -disable-if-conversion", Category: "experimental", Score: 4, Priority: "low", Description: "Disable if-conversion"},
		{Flag: "-mllvm -disable-branch-fold", Category: "experimental", Score: 4, Priority: "low", Description: "Disable branch folding"},

		// Branch optimization
		{Flag: "-fno-tree-switch-conversion", Category: "branch_optimization", Score: 5, Priority: "medium", Description: "Disable switch conversion"},
		{Flag: "-fno-crossjumping", Category: "branch_optimization", Score: 4, Priority: "low", Description: "Disable crossjumping"},

		// Security hardening
		{Flag: "-fstack-protector-all", Category: "security_hardening", Score: 4, Priority: "medium", Description: "Stack protection for all functions"},
		{Flag: "-fstack-protector-strong", Category: "security_hardening", Score: 4, Priority: "medium", Description: "Strong stack protection"},
		{Flag: "-fPIE", Category: "security_hardening", Score: 4, Priority: "medium", Description: "Position independent executable"},
		{Flag: "-fPIC", Category: "security_hardening", Score: 4, Priority: "medium", Description: "Position independent code"},
	}
}
