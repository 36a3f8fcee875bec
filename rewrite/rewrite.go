// Package rewrite implements the streaming multi-pattern matcher that
// migrates Handmade Math 1.x identifiers to their 2.x names.
//
// The engine scans its input once, tracking the match progress of every
// table entry at the same time. Identifiers are only rewritten after a
// recognised prefix marker (hmm_ for types, HMM_ for functions), and a
// prefix context ends at the first byte that cannot belong to an
// identifier. Every committed rewrite splices replacement text into an
// append-only span sequence and restarts the scan right after the consumed
// input, with all progress counters reset.
//
// Example usage:
//
//	engine := rewrite.New()
//	result := engine.Rewrite(ctx, src)
//	os.WriteFile(path, result.Output, 0o644)
package rewrite

import (
	"bytes"
	"context"

	"github.com/charmbracelet/log"

	"github.com/HandmadeMath/HandmadeMath-sub000/table"
	"github.com/HandmadeMath/HandmadeMath-sub000/telemetry"
)

const (
	// DefaultAngleHelper converts a degree argument to the 2.x angle unit.
	DefaultAngleHelper = "HMM_AngleDeg"

	// DefaultHandedSuffix is appended to legacy functions that gained an
	// explicit handedness. 1.x was right-handed throughout.
	DefaultHandedSuffix = "_RH"
)

// Engine rewrites source text using a pattern table. An Engine holds no
// per-input state and may be used from several goroutines at once.
type Engine struct {
	table        *table.Table
	angleHelper  string
	handedSuffix string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTable replaces the built-in table.
func WithTable(t *table.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithAngleHelper sets the function wrapped around degree arguments.
func WithAngleHelper(name string) Option {
	return func(e *Engine) {
		e.angleHelper = name
	}
}

// WithHandedSuffix sets the suffix appended to handedness markers.
func WithHandedSuffix(suffix string) Option {
	return func(e *Engine) {
		e.handedSuffix = suffix
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		table:        table.Default(),
		angleHelper:  DefaultAngleHelper,
		handedSuffix: DefaultHandedSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the table the engine matches against.
func (e *Engine) Table() *table.Table {
	return e.table
}

// Rewrite is a single committed rewrite.
type Rewrite struct {
	Line    int    // 1-indexed line where the consumed input starts
	Offset  int    // Byte offset of the consumed input
	Find    string // Input bytes consumed
	Replace string // Bytes emitted in their place
	Entry   table.Entry

	// Nested is set for rewrites inside a wrapped angle argument; their
	// bytes are already part of the enclosing rewrite's Find and Replace.
	Nested bool
}

// Warning returns the semantic-change note of the matched entry, if any.
func (r Rewrite) Warning() string {
	return r.Entry.Warning
}

// Result is the outcome of rewriting one input.
type Result struct {
	Input    []byte
	Output   []byte
	Spans    Spans
	Rewrites []Rewrite
}

// Changed reports whether the output differs from the input.
func (r *Result) Changed() bool {
	return !bytes.Equal(r.Input, r.Output)
}

// Rewrite scans src and returns the rewritten text. src is never modified;
// unreplaced output spans alias it.
func (e *Engine) Rewrite(ctx context.Context, src []byte) *Result {
	timer := telemetry.StartTimer(ctx, "rewrite.scan")
	defer timer.End()

	m := newMatcher(e, src, 0, 1, false)
	m.run()

	logger := log.FromContext(ctx)
	for _, rw := range m.rewrites {
		logger.Debug("rewrite", "line", rw.Line, "find", rw.Find, "replace", rw.Replace)
	}
	telemetry.Count(ctx, "rewrites", len(m.rewrites))

	return &Result{
		Input:    src,
		Output:   m.spans.Join(),
		Spans:    m.spans,
		Rewrites: m.rewrites,
	}
}

// Bytes is a convenience wrapper returning only the rewritten text.
func (e *Engine) Bytes(src []byte) []byte {
	return e.Rewrite(context.Background(), src).Output
}
