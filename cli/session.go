package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"github.com/HandmadeMath/HandmadeMath-sub000/loader"
	"github.com/HandmadeMath/HandmadeMath-sub000/output"
	"github.com/HandmadeMath/HandmadeMath-sub000/report"
	"github.com/HandmadeMath/HandmadeMath-sub000/rewrite"
	"github.com/HandmadeMath/HandmadeMath-sub000/table"
	"github.com/HandmadeMath/HandmadeMath-sub000/telemetry"
)

// session carries what every command over a list of files shares: the
// logger and telemetry in ctx, the engine, the loader and the report
// formatter.
type session struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger

	engine    *rewrite.Engine
	loader    *loader.Loader
	formatter report.Formatter
	json      bool
	stream    bool // print JSON reports as they come instead of at the end
	quiet     bool // skip the summary of files left unchanged
	reports   []report.File

	name         string
	showProgress bool
	progress     *progressbar.ProgressBar
	progressDone bool
	failed       []report.File // held back while the progress bar runs

	collector telemetry.Collector
	timer     telemetry.Timer
}

func newSession(ctx context.Context, kctx *kong.Context, globals *Globals, name string, opts ...loader.Option) (*session, error) {
	s := &session{
		stdout:       kctx.Stdout,
		stderr:       kctx.Stderr,
		logger:       newLogger(kctx.Stderr, globals.Verbose),
		engine:       rewrite.New(),
		loader:       loader.New(opts...),
		json:         globals.Format == "json",
		showProgress: globals.Progress,
		name:         name,
	}
	ctx = log.WithContext(ctx, s.logger)

	if globals.Table != "" {
		tbl, err := table.Load(globals.Table)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("using pattern table", "path", globals.Table, "entries", tbl.Len())
		s.engine = rewrite.New(rewrite.WithTable(tbl))
	}

	if s.json {
		s.formatter = report.NewJSONFormatter()
	} else {
		opts := []report.TextFormatterOption{report.WithStyles(output.NewStyles(kctx.Stdout))}
		if globals.Verbose {
			opts = append(opts, report.WithNested())
		}
		s.formatter = report.NewTextFormatter(opts...)
	}

	if globals.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		ctx = telemetry.WithCollector(ctx, s.collector)
		s.timer = s.collector.Start(name)
		ctx = telemetry.WithRootTimer(ctx, s.timer)
	}

	s.ctx = ctx
	return s, nil
}

// finish prints everything held back until the end of the run.
func (s *session) finish() {
	s.endProgress()
	if s.json && !s.stream {
		_, _ = fmt.Fprintln(s.stdout, s.formatter.FormatAll(s.reports))
	}
	if s.collector != nil {
		s.timer.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	}
}

// endProgress completes the progress bar, then prints the failures it
// held back. It is safe to call more than once.
func (s *session) endProgress() {
	if s.progress == nil || s.progressDone {
		return
	}
	s.progressDone = true
	_ = s.progress.Finish()
	_, _ = fmt.Fprintln(s.stderr)
	for _, f := range s.failed {
		printError(s.stderr, f.Err.Error())
	}
}

// expand resolves the file arguments. A failure is printed and ends the
// command.
func (s *session) expand(args []string) ([]string, CommandResult) {
	paths, err := s.loader.Expand(s.ctx, args)
	if err != nil {
		printError(s.stderr, err.Error())
		return nil, CommandResult{ExitCode: 1}
	}
	if s.showProgress && !s.json && !s.stream {
		s.progress = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(s.stderr),
			progressbar.OptionSetDescription(s.name),
			progressbar.OptionShowCount(),
		)
	}
	return paths, Success()
}

// process loads and rewrites one file. A load failure is returned in the
// report, with a nil result.
func (s *session) process(path string) (report.File, *rewrite.Result) {
	timer := telemetry.StartTimer(s.ctx, path)
	defer timer.End()
	ctx := telemetry.WithRootTimer(s.ctx, timer)

	telemetry.Count(ctx, "files", 1)

	src, err := s.loader.Load(ctx, path)
	if err != nil {
		telemetry.Count(ctx, "failed", 1)
		return report.Failed(path, err), nil
	}

	result := s.engine.Rewrite(ctx, src)
	return report.NewFile(path, result), result
}

// save writes a migrated file back, recording the outcome in f.
func (s *session) save(f *report.File, result *rewrite.Result) {
	if err := s.loader.Save(s.ctx, f.Path, result.Output); err != nil {
		telemetry.Count(s.ctx, "failed", 1)
		f.Err = err
		return
	}
	f.Written = true
}

// emit prints a file's rewrites, or queues the report in JSON mode. It
// reports whether the caller should print its own text summary.
func (s *session) emit(f report.File) bool {
	if s.progress != nil {
		_ = s.progress.Add(1)
		if f.Err != nil {
			s.failed = append(s.failed, f)
		}
		return false
	}
	if s.quiet && f.Err == nil && !f.Changed {
		return false
	}
	if s.json {
		if s.stream {
			_, _ = fmt.Fprintln(s.stdout, s.formatter.Format(f))
		} else {
			s.reports = append(s.reports, f)
		}
		return false
	}

	if f.Err != nil {
		printError(s.stderr, f.Err.Error())
		return false
	}
	_, _ = fmt.Fprint(s.stdout, s.formatter.Format(f))
	return true
}

// textOnly returns globals with the report format forced to text and no
// progress bar, for commands whose output is not a report.
func textOnly(globals *Globals) *Globals {
	text := *globals
	text.Format = "text"
	text.Progress = false
	return &text
}

func loaderOptions(recursive bool) []loader.Option {
	if recursive {
		return []loader.Option{loader.WithRecursive()}
	}
	return nil
}

// requireFiles rejects a run without file arguments, the one fatal error.
func requireFiles(kctx *kong.Context, files []string) error {
	if len(files) > 0 {
		return nil
	}
	printError(kctx.Stderr, "no files given")
	_, _ = fmt.Fprintf(kctx.Stderr, "usage: %s FILE...\n", kctx.Model.Name)
	return NewCommandError(1)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
