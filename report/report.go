// Package report renders the outcome of a migration run. It separates
// presentation from the rewrite engine so the same results can be printed
// for a terminal or emitted as JSON for scripts and editors.
//
// The package defines a Formatter interface with two implementations:
//   - TextFormatter: one line per rewrite, "path:line  find → replace"
//   - JSONFormatter: a structured array of file reports
package report

import (
	"github.com/HandmadeMath/HandmadeMath-sub000/rewrite"
)

// File is the outcome of migrating a single file.
type File struct {
	Path     string
	Rewrites []rewrite.Rewrite
	Changed  bool  // output differs from input
	Written  bool  // output was saved back to Path
	Err      error // load or save failure; Rewrites may still be set
}

// NewFile builds a report from a rewrite result.
func NewFile(path string, result *rewrite.Result) File {
	return File{
		Path:     path,
		Rewrites: result.Rewrites,
		Changed:  result.Changed(),
	}
}

// Failed builds a report for a file that could not be processed.
func Failed(path string, err error) File {
	return File{Path: path, Err: err}
}

// Count returns the number of top-level rewrites, leaving out the ones
// nested inside a wrapped angle argument.
func (f File) Count() int {
	n := 0
	for _, rw := range f.Rewrites {
		if !rw.Nested {
			n++
		}
	}
	return n
}

// Warnings returns the distinct warnings raised, in first-seen order.
func (f File) Warnings() []string {
	var out []string
	seen := make(map[string]bool)
	for _, rw := range f.Rewrites {
		if w := rw.Warning(); w != "" && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// Formatter formats file reports for output.
type Formatter interface {
	// Format formats a single file.
	Format(f File) string

	// FormatAll formats a whole run.
	FormatAll(files []File) string
}
