// Package loader reads and writes the source files a migration touches.
//
// Files are always read whole and written back whole: a file is either
// replaced with its complete new contents or reported as failed. Directory
// arguments can optionally be expanded into the C and C++ sources below
// them.
//
// Example usage:
//
//	ldr := loader.New(loader.WithRecursive())
//	paths, err := ldr.Expand(ctx, os.Args[1:])
//	for _, path := range paths {
//		src, err := ldr.Load(ctx, path)
//		...
//		err = ldr.Save(ctx, path, out)
//	}
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// ErrEmptyFile is returned by Load for a file with no bytes.
var ErrEmptyFile = errors.New("file is empty")

// DefaultExtensions are the file extensions picked up when expanding a
// directory.
var DefaultExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".hxx", ".inl"}

// FileError describes a failed operation on one file.
type FileError struct {
	Path string
	Op   string // "read", "write" or "expand"
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Loader reads and writes files. Configure it with options passed to New:
//
//	ldr := New(WithRecursive(), WithExtensions(".c", ".h"))
type Loader struct {
	// Recursive expands directory arguments into matching files below them.
	// When false, directories are passed through and fail to load.
	Recursive bool

	// Extensions selects files during directory expansion.
	Extensions []string

	// AllowEmpty makes Load return empty files instead of ErrEmptyFile.
	AllowEmpty bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithRecursive enables directory expansion.
func WithRecursive() Option {
	return func(l *Loader) {
		l.Recursive = true
	}
}

// WithExtensions replaces the extensions used for directory expansion.
func WithExtensions(exts ...string) Option {
	return func(l *Loader) {
		l.Extensions = exts
	}
}

// WithAllowEmpty accepts empty files.
func WithAllowEmpty() Option {
	return func(l *Loader) {
		l.AllowEmpty = true
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		Extensions: DefaultExtensions,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the whole file.
func (l *Loader) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}
	if len(data) == 0 && !l.AllowEmpty {
		return nil, &FileError{Path: path, Op: "read", Err: ErrEmptyFile}
	}

	log.FromContext(ctx).Debug("loaded", "path", path, "bytes", len(data))
	return data, nil
}

// Save replaces the contents of an existing file. The file keeps its
// permissions. A short write is reported as an error.
func (l *Loader) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}

	n, err := f.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}

	log.FromContext(ctx).Debug("saved", "path", path, "bytes", len(data))
	return nil
}

// Expand turns command-line arguments into a list of files. Arguments are
// kept in order and each file appears once, at its first position.
// Directories are walked when the loader is recursive; only a failed walk
// is an error.
func (l *Loader) Expand(ctx context.Context, args []string) ([]string, error) {
	var (
		paths   []string
		visited = make(map[string]bool)
	)

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if visited[abs] {
			return
		}
		visited[abs] = true
		paths = append(paths, path)
	}

	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Missing files and unexpanded directories are reported by Load,
		// in argument order.
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() || !l.Recursive {
			add(arg)
			continue
		}

		found, err := l.walk(ctx, arg)
		if err != nil {
			return nil, &FileError{Path: arg, Op: "expand", Err: err}
		}
		for _, path := range found {
			add(path)
		}
	}

	return paths, nil
}

// walk lists the matching files below dir in lexical order, skipping
// hidden directories.
func (l *Loader) walk(ctx context.Context, dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if l.matches(path) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

func (l *Loader) matches(path string) bool {
	return slices.Contains(l.Extensions, strings.ToLower(filepath.Ext(path)))
}
