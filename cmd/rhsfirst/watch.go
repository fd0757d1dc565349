// watch.go implements the 'rhsfirst watch' command.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/kolkov/rhsfirst/cmd/rhsfirst/workspace"
)

// watchConfig holds configuration for the watch command.
type watchConfig struct {
	// Directory inside the module to watch
	dir string

	// Verbose output flag (-v)
	verbose bool
}

// watchCommand implements the 'rhsfirst watch' command.
//
// It rewrites the whole module once, then keeps the overlay cache in sync
// with every write to a Go file until interrupted. Editors and scripts can
// then build with:
//
//	go build -overlay=.rhsfirst/overlay.json ./...
func watchCommand(args []string) {
	config, err := parseWatchArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(config.verbose)
	exitOnError("Error", runWatch(ctx, config, logger))
}

// parseWatchArgs parses command-line arguments for 'rhsfirst watch'.
func parseWatchArgs(args []string) (*watchConfig, error) {
	config := &watchConfig{}

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&config.verbose, "v", false, "log every rewrite")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	switch fs.NArg() {
	case 0:
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		config.dir = cwd
	case 1:
		config.dir = fs.Arg(0)
	default:
		return nil, fmt.Errorf("watch: expected at most one directory, got %d", fs.NArg())
	}
	return config, nil
}

// runWatch watches the module enclosing config.dir until ctx is done.
func runWatch(ctx context.Context, config *watchConfig, logger *slog.Logger) error {
	mod, err := workspace.FindModule(config.dir)
	if err != nil {
		return err
	}

	overlay, err := prepareOverlay(ctx, mod, mod.Root, []string{"./..."}, true, logger)
	if err != nil {
		return err
	}
	cache, err := workspace.OpenCache(workspace.CacheDir(mod))
	if err != nil {
		return err
	}

	files, err := workspace.CollectFiles(mod.Root, []string{"./..."}, true, cache.Dir)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	for _, dir := range sourceDirs(files) {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("watching", "module", mod.Path, "dirs", len(w.WatchList()), "overlay", overlay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			handleEvent(ctx, cache, ev, logger)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", err)
		}
	}
}

// handleEvent refreshes the cache for one file system event. Failures are
// logged: a file being edited is often briefly invalid.
func handleEvent(ctx context.Context, cache *workspace.Cache, ev fsnotify.Event, logger *slog.Logger) {
	if !strings.HasSuffix(ev.Name, ".go") || filepath.Dir(ev.Name) == cache.Dir {
		return
	}

	switch {
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		results, err := rewriteFiles(ctx, filepath.Dir(ev.Name), []string{ev.Name}, logger)
		if err != nil {
			logger.Warn("rewrite failed", "file", ev.Name, "err", err)
			return
		}
		fr := results[0]
		logStats(logger, fr)
		if err := record(cache, fr, logger); err != nil {
			logger.Error("cache update failed", "file", ev.Name, "err", err)
			return
		}
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := cache.Drop(ev.Name); err != nil {
			logger.Error("cache update failed", "file", ev.Name, "err", err)
			return
		}
	default:
		return
	}

	if _, err := cache.Write(); err != nil {
		logger.Error("overlay update failed", "err", err)
	}
}

// sourceDirs returns the distinct directories of files, sorted.
func sourceDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}
