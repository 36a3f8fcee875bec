package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/HandmadeMath/HandmadeMath-sub000/table"
)

// DoctorCmd provides utilities for debugging the rewrite engine.
type DoctorCmd struct {
	Table TableCmd `cmd:"" help:"Dump or export the active pattern table."`
	Spans SpansCmd `cmd:"" help:"Show the output spans produced for a file."`
}

// TableCmd dumps the pattern table in priority order.
type TableCmd struct {
	Group  string `help:"Only show entries of this group, e.g. function-verb."`
	Export string `help:"Print the table as a file for --table (${enum})." enum:"none,yaml,toml" default:"none"`
}

// Run executes the table command.
func (cmd *TableCmd) Run(ctx *kong.Context, globals *Globals) error {
	tbl := table.Default()
	if globals.Table != "" {
		var err error
		if tbl, err = table.Load(globals.Table); err != nil {
			return err
		}
	}

	if cmd.Export != "none" {
		data, err := table.Marshal(tbl, table.Format(cmd.Export))
		if err != nil {
			return err
		}
		_, err = ctx.Stdout.Write(data)
		return err
	}

	groups := []table.Group{
		table.PrefixType,
		table.PrefixFunction,
		table.TypeName,
		table.FunctionType,
		table.FunctionVerb,
		table.Handedness,
	}
	if cmd.Group != "" {
		g, err := table.ParseGroup(cmd.Group)
		if err != nil {
			return err
		}
		groups = []table.Group{g}
	}

	for _, g := range groups {
		lo, hi := tbl.Range(g)
		_, _ = fmt.Fprintf(ctx.Stdout, "# %s [%d, %d)\n", g, lo, hi)
		for i := lo; i < hi; i++ {
			_, _ = fmt.Fprintf(ctx.Stdout, "%3d %s\n", i,
				repr.String(tbl.Entry(i), repr.OmitEmpty(true)))
		}
	}

	return nil
}

// SpansCmd shows how the output of a file is assembled.
type SpansCmd struct {
	File string `help:"File to rewrite; nothing is written." arg:""`
}

// Run executes the spans command.
func (cmd *SpansCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(context.Background(), ctx, textOnly(globals), "doctor spans")
	if err != nil {
		return err
	}
	defer s.finish()

	f, result := s.process(cmd.File)
	if f.Err != nil {
		printError(ctx.Stderr, f.Err.Error())
		return NewCommandError(1)
	}

	// Format: KIND offset length "text"
	offset := 0
	for _, sp := range result.Spans {
		kind := "ORIGINAL"
		if sp.Replaced {
			kind = "REPLACED"
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%-10s %6d %4d    %q\n", kind, offset, len(sp.Text), sp.Text)
		offset += len(sp.Text)
	}

	if globals.Verbose {
		_, _ = fmt.Fprintln(ctx.Stdout, repr.String(result.Rewrites, repr.Indent("  "), repr.OmitEmpty(true)))
	}

	return nil
}
