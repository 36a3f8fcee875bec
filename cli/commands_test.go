package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/HandmadeMath/HandmadeMath-sub000/report"
)

const (
	legacy   = "hmm_vec2 x = HMM_Vec2i(1, 2);\nhmm_vec2 z = HMM_Subtract(y, x);\n"
	migrated = "HMM_Vec2 x = HMM_V2I(1, 2);\nHMM_Vec2 z = HMM_Sub(y, x);\n"
)

// syncBuffer is a bytes.Buffer safe to read while a command writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// parse builds a kong context for args the way main does.
func parse(t *testing.T, stdout, stderr *syncBuffer, args ...string) *kong.Context {
	t.Helper()
	var cmds Commands
	parser, err := kong.New(&cmds,
		kong.Name("hmmupdate"),
		kong.Writers(stdout, stderr),
		kong.Bind(&cmds.Globals),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	assert.NoError(t, err)
	kctx, err := parser.Parse(args)
	assert.NoError(t, err)
	return kctx
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr syncBuffer
	err := parse(t, &stdout, &stderr, args...).Run()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readSource(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr), "unexpected error: %v", err)
	return cmdErr.ExitCode()
}

func TestMigrateCmd(t *testing.T) {
	t.Run("NoFiles", func(t *testing.T) {
		_, stderr, err := run(t)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "no files given")
	})

	t.Run("DefaultCommandRewritesInPlace", func(t *testing.T) {
		dir := t.TempDir()
		a := writeSource(t, dir, "a.c", legacy)
		b := writeSource(t, dir, "b.c", "hmm_mat4 m;\n")

		stdout, _, err := run(t, a, b)
		assert.NoError(t, err)
		assert.Equal(t, migrated, readSource(t, a))
		assert.Equal(t, "HMM_Mat4 m;\n", readSource(t, b))

		assert.Contains(t, stdout, a+":1  hmm_vec2 → HMM_Vec2\n")
		assert.Contains(t, stdout, a+":2  HMM_Subtract → HMM_Sub\n")
		assert.Contains(t, stdout, "4 rewrites")
		assert.Contains(t, stdout, "1 rewrite\n")
		assert.True(t, strings.Index(stdout, a) < strings.Index(stdout, b), "files are processed in order")
	})

	t.Run("SecondRunIsUpToDate", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		_, _, err := run(t, "migrate", path)
		assert.NoError(t, err)
		stdout, _, err := run(t, "migrate", path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "up to date")
		assert.Equal(t, migrated, readSource(t, path))
	})

	t.Run("FailedFilesAreSkipped", func(t *testing.T) {
		dir := t.TempDir()
		missing := filepath.Join(dir, "missing.c")
		empty := writeSource(t, dir, "empty.c", "")
		good := writeSource(t, dir, "good.c", legacy)

		_, stderr, err := run(t, missing, empty, good)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "cannot read "+missing)
		assert.Contains(t, stderr, "file is empty")
		assert.Equal(t, migrated, readSource(t, good))
	})

	t.Run("WarningsArePrinted", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "n.c", "v = HMM_NormalizeVec3(v);\n")

		stdout, _, err := run(t, path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "  warning: HMM_Norm* uses a fast inverse square root")
	})

	t.Run("DryRun", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		stdout, _, err := run(t, "migrate", "--dry-run", path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "(dry run)")
		assert.Equal(t, legacy, readSource(t, path))
	})

	t.Run("ConfirmWithoutTerminal", func(t *testing.T) {
		if isTerminal() {
			t.Skip("stdin is a terminal")
		}
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		stdout, _, err := run(t, "migrate", "--confirm", path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "skipped")
		assert.Equal(t, legacy, readSource(t, path))
	})

	t.Run("Recursive", func(t *testing.T) {
		dir := t.TempDir()
		assert.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
		path := writeSource(t, filepath.Join(dir, "src"), "a.cpp", legacy)
		notes := writeSource(t, filepath.Join(dir, "src"), "notes.txt", legacy)

		_, _, err := run(t, "migrate", "-r", dir)
		assert.NoError(t, err)
		assert.Equal(t, migrated, readSource(t, path))
		assert.Equal(t, legacy, readSource(t, notes))
	})

	t.Run("DirectoryWithoutRecursiveFails", func(t *testing.T) {
		dir := t.TempDir()
		_, stderr, err := run(t, "migrate", dir)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "cannot read "+dir)
	})

	t.Run("JSON", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)
		missing := filepath.Join(dir, "missing.c")

		stdout, stderr, err := run(t, "--format=json", path, missing)
		assert.NoError(t, err)
		assert.Equal(t, "", stderr)

		var files []report.FileJSON
		assert.NoError(t, json.Unmarshal([]byte(stdout), &files))
		assert.Equal(t, 2, len(files))
		assert.True(t, files[0].Written)
		assert.Equal(t, 4, len(files[0].Rewrites))
		assert.NotEqual(t, "", files[1].Error)
	})

	t.Run("Verbose", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		_, stderr, err := run(t, "--verbose", path)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "find=hmm_vec2")
	})

	t.Run("VerboseListsNestedRewrites", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", "HMM_Rotate(HMM_ToRadians(a), axis);\n")

		stdout, _, err := run(t, path)
		assert.NoError(t, err)
		assert.NotContains(t, stdout, "HMM_ToRadians → HMM_ToRad")

		assert.NoError(t, os.WriteFile(path, []byte("HMM_Rotate(HMM_ToRadians(a), axis);\n"), 0o644))
		stdout, _, err = run(t, "--verbose", path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "HMM_ToRadians → HMM_ToRad")
	})

	t.Run("Telemetry", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		_, stderr, err := run(t, "--telemetry", path)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "migrate: ")
		assert.Contains(t, stderr, "rewrite.scan: ")
		assert.Contains(t, stderr, "rewrites  4")
	})
}

func TestCustomTable(t *testing.T) {
	dir := t.TempDir()
	rules := writeSource(t, dir, "rules.yaml", `extends: default
entries:
  - find: Lerp
    replace: Mix
    group: function-verb
`)
	path := writeSource(t, dir, "a.c", "f = HMM_Lerp(a, t, b);\nhmm_vec2 v;\n")

	_, _, err := run(t, "--table", rules, path)
	assert.NoError(t, err)
	assert.Equal(t, "f = HMM_Mix(a, t, b);\nHMM_Vec2 v;\n", readSource(t, path))

	t.Run("InvalidTable", func(t *testing.T) {
		bad := writeSource(t, dir, "bad.yaml", "extends: glm\n")
		_, _, err := run(t, "--table", bad, path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown base table")
	})

	t.Run("DoctorExport", func(t *testing.T) {
		stdout, _, err := run(t, "--table", rules, "doctor", "table", "--export=yaml")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "find: Lerp\n")
		assert.Contains(t, stdout, "group: function-verb\n")
	})
}

func TestProgress(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.c", legacy)
	b := writeSource(t, dir, "b.c", legacy)
	missing := filepath.Join(dir, "missing.c")

	stdout, stderr, err := run(t, "--progress", a, missing, b)
	assert.NoError(t, err)
	assert.Equal(t, migrated, readSource(t, a))
	assert.Equal(t, migrated, readSource(t, b))
	assert.NotContains(t, stdout, "hmm_vec2 → HMM_Vec2")
	assert.Contains(t, stdout, "2 files migrated, 8 rewrites")
	assert.Contains(t, stderr, "cannot read "+missing)
}

func TestMigrateWriteFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("read-only files are writable here")
	}

	dir := t.TempDir()
	locked := writeSource(t, dir, "a.c", legacy)
	assert.NoError(t, os.Chmod(locked, 0o444))
	writable := writeSource(t, dir, "b.c", legacy)

	stdout, stderr, err := run(t, locked, writable)
	assert.NoError(t, err)
	assert.Contains(t, stderr, "cannot write "+locked)
	assert.Equal(t, legacy, readSource(t, locked))
	assert.Equal(t, migrated, readSource(t, writable))
	assert.NotContains(t, stdout, locked+": 4 rewrites")
	assert.Contains(t, stdout, writable+": 4 rewrites")

	t.Run("JSON", func(t *testing.T) {
		assert.NoError(t, os.WriteFile(writable, []byte(legacy), 0o644))
		stdout, _, err := run(t, "--format=json", locked, writable)
		assert.NoError(t, err)

		var files []report.FileJSON
		assert.NoError(t, json.Unmarshal([]byte(stdout), &files))
		assert.Equal(t, 2, len(files))
		assert.False(t, files[0].Written)
		assert.Contains(t, files[0].Error, "cannot write")
		assert.True(t, files[1].Written)
	})
}

func TestCheckCmd(t *testing.T) {
	t.Run("NeedsMigrating", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", legacy)

		stdout, stderr, err := run(t, "check", path)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stdout, "4 rewrites needed")
		assert.Contains(t, stderr, "1 file of 1 need migrating")
		assert.Equal(t, legacy, readSource(t, path))
	})

	t.Run("UpToDate", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", migrated)

		stdout, _, err := run(t, "check", path)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Check passed")
	})

	t.Run("FailedFile", func(t *testing.T) {
		dir := t.TempDir()
		_, stderr, err := run(t, "check", filepath.Join(dir, "missing.c"))
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "1 failed")
	})

	t.Run("NoFiles", func(t *testing.T) {
		_, _, err := run(t, "check")
		assert.Equal(t, 1, exitCode(t, err))
	})

	t.Run("PathsStyledAlike", func(t *testing.T) {
		profile := lipgloss.ColorProfile()
		lipgloss.SetColorProfile(termenv.ANSI256)
		defer lipgloss.SetColorProfile(profile)

		dir := t.TempDir()
		dirty := writeSource(t, dir, "a.c", legacy)
		clean := writeSource(t, dir, "b.c", migrated)

		stdout, _, err := run(t, "check", dirty, clean)
		assert.Equal(t, 1, exitCode(t, err))
		for _, path := range []string{dirty, clean} {
			assert.Contains(t, stdout, pathStyle.Render(path)+":")
		}
	})
}

func TestDiffCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.c", legacy)
	clean := writeSource(t, dir, "b.c", migrated)

	stdout, _, err := run(t, "--format=json", "diff", path, clean)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "--- a/"+path)
	assert.Contains(t, stdout, "+++ b/"+path)
	assert.Contains(t, stdout, "-hmm_vec2 x = HMM_Vec2i(1, 2);\n")
	assert.Contains(t, stdout, "+HMM_Vec2 x = HMM_V2I(1, 2);\n")
	assert.NotContains(t, stdout, clean)
	assert.Equal(t, legacy, readSource(t, path))
}

func TestDoctorCmd(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "table")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "# prefix-type [0, 1)\n")
		assert.Contains(t, stdout, "# handedness ")
		assert.Contains(t, stdout, `"Subtract"`)
	})

	t.Run("TableGroup", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "table", "--group=function-verb")
		assert.NoError(t, err)
		assert.Contains(t, stdout, `"Multiply"`)
		assert.NotContains(t, stdout, `"Perspective"`)
	})

	t.Run("UnknownGroup", func(t *testing.T) {
		_, _, err := run(t, "doctor", "table", "--group=verbs")
		assert.EqualError(t, err, `unknown group "verbs"`)
	})

	t.Run("Spans", func(t *testing.T) {
		dir := t.TempDir()
		path := writeSource(t, dir, "a.c", "hmm_vec2 x;\n")

		stdout, _, err := run(t, "doctor", "spans", path)
		assert.NoError(t, err)
		assert.Equal(t,
			"REPLACED        0    4    \"HMM_\"\n"+
				"REPLACED        4    4    \"Vec2\"\n"+
				"ORIGINAL        8    4    \" x;\\n\"\n",
			stdout)
		assert.Equal(t, "hmm_vec2 x;\n", readSource(t, path))
	})

	t.Run("SpansMissingFile", func(t *testing.T) {
		_, stderr, err := run(t, "doctor", "spans", filepath.Join(t.TempDir(), "missing.c"))
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "cannot read")
	})
}

func TestWatchCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.c", legacy)

	var stdout, stderr syncBuffer
	kctx := parse(t, &stdout, &stderr, "watch", "--debounce=10ms", path)
	cmd := &WatchCmd{Debounce: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	s, err := newSession(ctx, kctx, &Globals{Format: "text"}, "watch")
	assert.NoError(t, err)
	s.stream = true

	watcher, err := fsnotify.NewWatcher()
	assert.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	done := make(chan CommandResult)
	go func() { done <- cmd.watch(s, watcher, []string{path}) }()

	waitFor(t, func() bool { return strings.Contains(stdout.String(), "Watching") })
	assert.Equal(t, migrated, readSource(t, path))

	// An editor saving legacy code again gets migrated again.
	assert.NoError(t, os.WriteFile(path, []byte("hmm_quaternion q;\n"), 0o644))
	waitFor(t, func() bool { return readSource(t, path) == "HMM_Quat q;\n" })

	cancel()
	select {
	case res := <-done:
		assert.Equal(t, 0, res.ExitCode)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, stdout.String(), "hmm_quaternion → HMM_Quat")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPromptYesNo(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}
	ok, err := promptYesNo("Write?")
	assert.NoError(t, err)
	assert.False(t, ok)
}
