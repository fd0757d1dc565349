// rewrite_cmd.go implements the 'rhsfirst rewrite' command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kolkov/rhsfirst/cmd/rhsfirst/workspace"
)

// rewriteConfig holds configuration for the rewrite command.
type rewriteConfig struct {
	// Files, directories or package patterns to rewrite
	args []string

	// Write results back to the source files (-w)
	write bool

	// List files whose source changes (-l)
	list bool

	// Verbose output flag (-v)
	verbose bool

	// Working directory for pattern resolution
	workDir string
}

// rewriteCommand implements the 'rhsfirst rewrite' command.
//
// Without flags the rewritten source of every file is printed to stdout,
// like gofmt. Test files are included.
//
// Example:
//
//	rhsfirst rewrite main.go
//	rhsfirst rewrite -l ./...
//	rhsfirst rewrite -w -v ./internal/...
func rewriteCommand(args []string) {
	config, err := parseRewriteArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(config.verbose)
	exitOnError("Error", runRewrite(context.Background(), config, os.Stdout, logger))
}

// parseRewriteArgs parses command-line arguments for 'rhsfirst rewrite'.
func parseRewriteArgs(args []string) (*rewriteConfig, error) {
	config := &rewriteConfig{}

	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&config.write, "w", false, "write result to (source) file instead of stdout")
	fs.BoolVar(&config.list, "l", false, "list files whose source changes")
	fs.BoolVar(&config.verbose, "v", false, "log per-file statistics")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	config.args = fs.Args()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	config.workDir = cwd

	return config, nil
}

// runRewrite rewrites the selected files and reports to out.
func runRewrite(ctx context.Context, config *rewriteConfig, out io.Writer, logger *slog.Logger) error {
	exclude := ""
	if mod, err := workspace.FindModule(config.workDir); err == nil {
		exclude = workspace.CacheDir(mod)
	}
	files, err := workspace.CollectFiles(config.workDir, config.args, true, exclude)
	if err != nil {
		return fmt.Errorf("failed to collect source files: %w", err)
	}
	if len(files) == 0 {
		return errors.New("no Go source files found")
	}

	results, err := rewriteFiles(ctx, config.workDir, files, logger)
	if err != nil {
		return err
	}

	for _, fr := range results {
		logStats(logger, fr)

		if config.write && fr.result.Changed {
			if err := writeInPlace(fr.path, fr.result.Code); err != nil {
				return err
			}
		}
		if config.list && fr.result.Changed {
			fmt.Fprintln(out, fr.path)
		}
		if !config.write && !config.list {
			if _, err := out.Write(fr.result.Code); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeInPlace replaces the file at path, keeping its permissions.
func writeInPlace(path string, code []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if err := os.WriteFile(path, code, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
