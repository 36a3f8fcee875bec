package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParse(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		tbl, err := Parse([]byte(`
entries:
  - find: Lerp
    replace: Mix
    group: function-verb
  - find: HMM_
    replace: HMM_
    group: prefix-function
  - find: Vec2
    replace: V2
    group: function-type
    suffixes: iv
`), YAML)
		assert.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())

		// Sorted into group order.
		assert.Equal(t, Entry{Find: "HMM_", Replace: "HMM_", Group: PrefixFunction}, tbl.Entry(0))
		assert.Equal(t, Entry{Find: "Vec2", Replace: "V2", Group: FunctionType, Suffixes: "iv"}, tbl.Entry(1))
		assert.Equal(t, Entry{Find: "Lerp", Replace: "Mix", Group: FunctionVerb}, tbl.Entry(2))
	})

	t.Run("TOML", func(t *testing.T) {
		tbl, err := Parse([]byte(`
[[entries]]
find = "HMM_"
replace = "HMM_"
group = "prefix-function"

[[entries]]
find = "Perspective"
replace = "Perspective"
group = "handedness"
wrap_angle = true
warning = "degrees"
`), TOML)
		assert.NoError(t, err)
		assert.Equal(t, 2, tbl.Len())
		assert.Equal(t, Entry{Find: "Perspective", Replace: "Perspective", Group: Handedness, WrapAngle: true, Warning: "degrees"}, tbl.Entry(1))
	})

	t.Run("ExtendsDefault", func(t *testing.T) {
		tbl, err := Parse([]byte(`
extends: default
entries:
  - find: Normalize
    replace: NormalizeExact
    group: function-verb
`), YAML)
		assert.NoError(t, err)
		assert.Equal(t, Default().Len()+1, tbl.Len())

		// Custom entries lead their group so they win ties.
		lo, _ := tbl.Range(FunctionVerb)
		assert.Equal(t, "NormalizeExact", tbl.Entry(lo).Replace)
	})

	t.Run("UnknownBase", func(t *testing.T) {
		_, err := Parse([]byte("extends: glm\n"), YAML)
		assert.True(t, errors.Is(err, ErrUnknownBase))
	})

	t.Run("UnknownGroup", func(t *testing.T) {
		_, err := Parse([]byte("entries:\n  - find: x\n    replace: y\n    group: verbs\n"), YAML)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), `unknown group "verbs"`)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := Parse([]byte("entries:\n  - find: x\n    replce: y\n    group: type-name\n"), YAML)
		assert.Error(t, err)
	})

	t.Run("EmptyFind", func(t *testing.T) {
		_, err := Parse([]byte("entries:\n  - replace: y\n    group: type-name\n"), YAML)
		assert.True(t, errors.Is(err, ErrEmptyFind))
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("PicksFormatFromExtension", func(t *testing.T) {
		path := filepath.Join(dir, "rules.toml")
		assert.NoError(t, os.WriteFile(path, []byte("extends = \"default\"\n"), 0o644))

		tbl, err := Load(path)
		assert.NoError(t, err)
		assert.Equal(t, Default().Entries(), tbl.Entries())
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("ErrorsNameTheFile", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yml")
		assert.NoError(t, os.WriteFile(path, []byte("extends: glm\n"), 0o644))
		_, err := Load(path)
		assert.Contains(t, err.Error(), "bad.yml")
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, format := range []Format{YAML, TOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(Default(), format)
			assert.NoError(t, err)

			tbl, err := Parse(data, format)
			assert.NoError(t, err)
			assert.Equal(t, Default().Entries(), tbl.Entries())
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, TOML, FormatOf("rules.TOML"))
	assert.Equal(t, YAML, FormatOf("rules.yaml"))
	assert.Equal(t, YAML, FormatOf("rules"))
}

func TestGroupText(t *testing.T) {
	g, err := ParseGroup("function-type")
	assert.NoError(t, err)
	assert.Equal(t, FunctionType, g)

	_, err = ParseGroup("nope")
	assert.True(t, errors.Is(err, ErrUnknownGroup))

	_, err = Group(99).MarshalText()
	assert.True(t, errors.Is(err, ErrUnknownGroup))
}
