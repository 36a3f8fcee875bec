package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/HandmadeMath/HandmadeMath-sub000/report"
)

type MigrateCmd struct {
	Files     []string `help:"C or C++ files to migrate in place." arg:"" optional:""`
	Recursive bool     `help:"Migrate every C and C++ source below directory arguments." short:"r"`
	DryRun    bool     `help:"Report rewrites without writing any file." short:"n"`
	Confirm   bool     `help:"Ask before writing each changed file (terminal only)."`
}

func (cmd *MigrateCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := requireFiles(ctx, cmd.Files); err != nil {
		return err
	}

	s, err := newSession(context.Background(), ctx, globals, "migrate", loaderOptions(cmd.Recursive)...)
	if err != nil {
		return err
	}
	defer s.finish()

	return cmd.migrate(s, cmd.Files).AsError()
}

// migrate processes every file in order. Failed files are reported and
// skipped; they never change the exit code.
func (cmd *MigrateCmd) migrate(s *session, args []string) CommandResult {
	paths, res := s.expand(args)
	if res.ExitCode != 0 {
		return res
	}

	written, rewrites := 0, 0
	for _, path := range paths {
		if err := s.ctx.Err(); err != nil {
			return Failure(err)
		}
		f := cmd.migrateFile(s, path)
		if f.Written {
			written++
			rewrites += f.Count()
		}
	}

	// With a progress bar the per-file lines are replaced by a total.
	if s.progress != nil {
		s.endProgress()
		printSuccess(s.stdout, fmt.Sprintf("%s migrated, %s", plural(written, "file"), plural(rewrites, "rewrite")))
	}

	return Success()
}

func (cmd *MigrateCmd) migrateFile(s *session, path string) report.File {
	f, result := s.process(path)

	declined := false
	if f.Err == nil && f.Changed && !cmd.DryRun {
		write := true
		if cmd.Confirm {
			ok, err := promptYesNo(fmt.Sprintf("Write %s to %s?", plural(f.Count(), "rewrite"), path))
			if err != nil {
				f.Err = err
			}
			write = ok
			declined = !ok && err == nil
		}
		if write {
			s.save(&f, result)
		}
	}

	if !s.emit(f) {
		return f
	}

	switch {
	case f.Written:
		printSuccess(s.stdout, fmt.Sprintf("%s: %s", pathStyle.Render(path), plural(f.Count(), "rewrite")))
	case f.Changed && declined:
		printInfof(s.stdout, "%s: skipped", pathStyle.Render(path))
	case f.Changed:
		printInfof(s.stdout, "%s: %s (dry run)", pathStyle.Render(path), plural(f.Count(), "rewrite"))
	default:
		printInfof(s.stdout, "%s: up to date", pathStyle.Render(path))
	}
	return f
}
