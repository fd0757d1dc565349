package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/rhsfirst/cmd/rhsfirst/workspace"
	"github.com/kolkov/rhsfirst/internal/rewrite"
)

// fileResult pairs a source path with its rewrite result.
type fileResult struct {
	path   string
	result *rewrite.Result
}

// rewriteFiles rewrites files concurrently; results keep the order of files.
// Files are rewritten with the type information of their package, loaded
// from dir, and checked alone when it is unavailable.
func rewriteFiles(ctx context.Context, dir string, files []string, logger *slog.Logger) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	typed, err := workspace.LoadTypes(dir, files)
	if err != nil {
		logger.Debug("package type information unavailable", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := rewriteTyped(path, typed[path])
			if err != nil {
				return err
			}
			results[i] = fileResult{path: path, result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// rewriteTyped rewrites path using tf when it is known.
func rewriteTyped(path string, tf *workspace.TypedFile) (*rewrite.Result, error) {
	if tf == nil {
		return rewrite.File(path, nil)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rewrite.Syntax(tf.Fset, tf.Syntax, src, tf.Types, tf.Info)
}

// newLogger returns the CLI logger. Diagnostics go to stderr; -v enables
// per-file statistics.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func logStats(logger *slog.Logger, fr fileResult) {
	stats := fr.result.Stats
	if stats.FuncsAnnotated == 0 {
		return
	}
	logger.Debug("rewritten",
		"file", fr.path,
		"funcs", stats.FuncsAnnotated,
		"split", stats.Split,
		"clause_skipped", stats.ClauseSkipped,
		"constant", stats.Constant,
		"typed", stats.Typed,
	)
	for _, rw := range fr.result.Rewrites {
		logger.Debug("split",
			"pos", fmt.Sprintf("%s:%d:%d", fr.path, rw.Line, rw.Column),
			"func", rw.Func,
			"op", rw.Op.String(),
			"temp", rw.Temp,
			"binding", rw.Binding.String(),
		)
	}
}
