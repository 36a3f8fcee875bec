package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/HandmadeMath/HandmadeMath-sub000/rewrite"
)

type DiffCmd struct {
	Files     []string `help:"C or C++ files to diff." arg:"" optional:""`
	Recursive bool     `help:"Diff every C and C++ source below directory arguments." short:"r"`
}

func (cmd *DiffCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := requireFiles(ctx, cmd.Files); err != nil {
		return err
	}

	// The diff itself is the report.
	s, err := newSession(context.Background(), ctx, textOnly(globals), "diff", loaderOptions(cmd.Recursive)...)
	if err != nil {
		return err
	}
	defer s.finish()

	paths, res := s.expand(cmd.Files)
	if res.ExitCode != 0 {
		return res.AsError()
	}

	for _, path := range paths {
		f, result := s.process(path)
		if f.Err != nil {
			printError(s.stderr, f.Err.Error())
			continue
		}
		if f.Changed {
			_, _ = fmt.Fprint(s.stdout, unifiedDiff(path, result))
		}
	}

	return nil
}

// unifiedDiff renders the migration of one file in unified diff format.
func unifiedDiff(path string, result *rewrite.Result) string {
	before, after := string(result.Input), string(result.Output)
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+path, "b/"+path, before, edits))
}
