package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

type CheckCmd struct {
	Files     []string `help:"C or C++ files to check." arg:"" optional:""`
	Recursive bool     `help:"Check every C and C++ source below directory arguments." short:"r"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := requireFiles(ctx, cmd.Files); err != nil {
		return err
	}

	s, err := newSession(context.Background(), ctx, globals, "check", loaderOptions(cmd.Recursive)...)
	if err != nil {
		return err
	}
	defer s.finish()

	return cmd.check(s).AsError()
}

// check fails when any file still needs migrating or cannot be read.
func (cmd *CheckCmd) check(s *session) CommandResult {
	paths, res := s.expand(cmd.Files)
	if res.ExitCode != 0 {
		return res
	}

	pending, failed := 0, 0
	for _, path := range paths {
		f, _ := s.process(path)
		switch {
		case f.Err != nil:
			failed++
		case f.Changed:
			pending++
		}

		if !s.emit(f) {
			continue
		}
		if f.Changed {
			printFileError(s.stdout, path, plural(f.Count(), "rewrite")+" needed")
		} else {
			printSuccess(s.stdout, fmt.Sprintf("%s: up to date", pathStyle.Render(path)))
		}
	}

	s.endProgress()

	if pending > 0 || failed > 0 {
		if !s.json {
			_, _ = fmt.Fprintln(s.stderr)
			printError(s.stderr, fmt.Sprintf("%s of %d need migrating, %d failed",
				plural(pending, "file"), len(paths), failed))
		}
		return CommandResult{ExitCode: 1}
	}

	if !s.json {
		printSuccess(s.stdout, "Check passed")
	}
	return Success()
}
