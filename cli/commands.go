package cli

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Verbose   bool   `help:"Log every rewrite as it is made and list rewrites inside wrapped angle arguments." short:"v"`
	Format    string `help:"Report format (${enum})." enum:"text,json" default:"text"`
	Table     string `help:"Pattern table file (YAML or TOML) to use instead of the built-in one." type:"existingfile" placeholder:"FILE"`
	Progress  bool   `help:"Show a progress bar instead of a line per rewrite."`
}

type Commands struct {
	Globals

	Migrate MigrateCmd `cmd:"" default:"withargs" help:"Rewrite files in place to the 2.x names (default)."`
	Check   CheckCmd   `cmd:"" help:"Report files that still use 1.x names, without writing."`
	Diff    DiffCmd    `cmd:"" help:"Show the migration of each file as a unified diff."`
	Watch   WatchCmd   `cmd:"" help:"Migrate files, then migrate them again whenever they change."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging the rewrite engine."`
}
