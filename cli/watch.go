package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
)

type WatchCmd struct {
	Files     []string      `help:"C or C++ files to keep migrated." arg:"" optional:""`
	Recursive bool          `help:"Watch every C and C++ source below directory arguments." short:"r"`
	Debounce  time.Duration `help:"Wait this long after the last change before migrating." default:"100ms"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := requireFiles(ctx, cmd.Files); err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := newSession(runCtx, ctx, globals, "watch", loaderOptions(cmd.Recursive)...)
	if err != nil {
		return err
	}
	s.stream = true
	defer s.finish()

	paths, res := s.expand(cmd.Files)
	if res.ExitCode != 0 {
		return res.AsError()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	return cmd.watch(s, watcher, paths).AsError()
}

// watch migrates every file once, then again after each burst of changes
// until the context ends. A file's own migration triggers one more event,
// which finds nothing left to rewrite.
func (cmd *WatchCmd) watch(s *session, watcher *fsnotify.Watcher, paths []string) CommandResult {
	migrate := &MigrateCmd{}
	for _, path := range paths {
		migrate.migrateFile(s, path)
	}

	// Directories are watched rather than files so editors that save by
	// renaming a temporary file over the original keep being noticed.
	watched := make(map[string]string, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		watched[abs] = path
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			s.logger.Warn("failed to watch", "path", path, "err", err)
		}
	}

	// From now on only files that actually changed are worth a line.
	s.quiet = true

	if !s.json {
		printInfof(s.stdout, "Watching %s, press Ctrl+C to stop", plural(len(paths), "file"))
	}

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return Success()

		case event, ok := <-watcher.Events:
			if !ok {
				return Success()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path, ok := watched[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			pending[path] = true

			if timer == nil {
				timer = time.NewTimer(cmd.Debounce)
			} else {
				timer.Reset(cmd.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			// Keep argument order.
			for _, path := range paths {
				if pending[path] {
					migrate.migrateFile(s, path)
				}
			}
			clear(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return Success()
			}
			s.logger.Error("file watcher error", "err", err)
		}
	}
}
