// Package hmmupdate migrates C and C++ source text from the Handmade Math
// 1.x naming convention to 2.x.
//
// Update covers the common case of rewriting a buffer with the built-in
// table:
//
//	out := hmmupdate.Update(src)
//
// The rewrite package exposes the engine itself, with per-rewrite
// diagnostics and custom tables.
package hmmupdate

import (
	"context"

	"github.com/HandmadeMath/HandmadeMath-sub000/rewrite"
)

var engine = rewrite.New()

// Update returns src rewritten to the 2.x names. src is not modified;
// when nothing matches the result is src itself.
func Update(src []byte) []byte {
	return engine.Bytes(src)
}

// UpdateString is Update for strings.
func UpdateString(src string) string {
	return string(Update([]byte(src)))
}

// Inspect rewrites src and returns the full result, including every
// rewrite made. The context carries an optional logger and telemetry
// collector.
func Inspect(ctx context.Context, src []byte) *rewrite.Result {
	return engine.Rewrite(ctx, src)
}
