package table

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBase is returned when a table file extends a table other than
// "default".
var ErrUnknownBase = errors.New("unknown base table")

// Format selects the encoding of a table file.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf picks the format from a file extension; anything that is not
// .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return YAML
}

// file is the on-disk form of a table:
//
//	extends: default
//	entries:
//	  - find: Lerp
//	    replace: Lerp
//	    group: function-verb
type file struct {
	Extends string  `yaml:"extends,omitempty" toml:"extends,omitempty"`
	Entries []Entry `yaml:"entries" toml:"entries"`
}

// Load reads a table file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table file: %w", err)
	}
	t, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse builds a table from file contents. Entries may be listed in any
// group order; within a group their order is kept. A table that extends
// "default" puts its own entries ahead of the built-in ones of the same
// group, so they win ties.
func Parse(data []byte, format Format) (*Table, error) {
	var f file
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing table file: %w", err)
	}

	entries := f.Entries
	switch f.Extends {
	case "":
	case "default":
		entries = append(entries, defaultEntries...)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBase, f.Extends)
	}

	entries = slices.Clone(entries)
	slices.SortStableFunc(entries, func(a, b Entry) int { return int(a.Group) - int(b.Group) })
	return New(entries...)
}

// Marshal encodes a table in the given format, for use as a starting point
// for a custom table.
func Marshal(t *Table, format Format) ([]byte, error) {
	f := file{Entries: t.Entries()}
	if format == TOML {
		return toml.Marshal(f)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
