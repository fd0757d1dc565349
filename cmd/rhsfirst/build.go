// build.go implements the 'rhsfirst build', 'run' and 'test' commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kolkov/rhsfirst/cmd/rhsfirst/workspace"
)

// goCommand implements 'rhsfirst build', 'rhsfirst run' and 'rhsfirst test'.
//
// These commands act as drop-in replacements for the go command. The source
// tree is never modified:
//
// Flow:
//  1. Parse arguments (go flags + packages, program args for run)
//  2. Locate the module and check its go version allows -overlay
//  3. Rewrite the selected files into shadow files in the cache directory
//  4. Write overlay.json mapping originals to shadows
//  5. Run 'go <command> -overlay=overlay.json ...'
//
// Example:
//
//	rhsfirst build -o myapp ./cmd/myapp
//	rhsfirst run main.go arg1 arg2
//	rhsfirst test -run TestSum ./...
func goCommand(command string, args []string) {
	var (
		config *goConfig
		err    error
	)
	if command == "run" {
		config, err = parseRunArgs(args)
	} else {
		config, err = parseGoArgs(command, args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(config.verbose)
	exitOnError("Error", runGo(context.Background(), config, logger))
}

// goConfig holds configuration for the build, run and test commands.
type goConfig struct {
	// go subcommand: "build", "run" or "test"
	command string

	// Packages or .go files to rewrite and pass to the go command
	packages []string

	// Output binary name (from -o flag)
	outputFile string

	// Additional go command flags
	goFlags []string

	// Arguments for the program (run only)
	programArgs []string

	// Working directory for the go command
	workDir string

	// Verbose output flag (-v)
	verbose bool
}

// parseGoArgs parses command-line arguments for 'rhsfirst build' and
// 'rhsfirst test'.
//
// It separates:
//   - Packages (.go files, directories or patterns)
//   - Output file (-o flag)
//   - Go command flags (everything else)
//
// -v both enables verbose logging and is passed on to the go command.
func parseGoArgs(command string, args []string) (*goConfig, error) {
	config := &goConfig{command: command}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	config.workDir = cwd

	expectingValue := false
	for i := 0; i < len(args); i++ {
		arg := args[i]

		// If previous flag expects a value, this is it (even if it starts with -)
		// Example: -ldflags "-s -w"
		if expectingValue {
			config.goFlags = append(config.goFlags, arg)
			expectingValue = false
			continue
		}

		if arg == "-o" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o flag requires an argument")
			}
			i++
			config.outputFile = args[i]
			continue
		}
		if strings.HasPrefix(arg, "-o=") {
			config.outputFile = strings.TrimPrefix(arg, "-o=")
			continue
		}

		if arg == "-v" {
			config.verbose = true
		}

		if strings.HasPrefix(arg, "-") {
			config.goFlags = append(config.goFlags, arg)
			expectingValue = needsValue(arg)
			continue
		}

		config.packages = append(config.packages, arg)
	}

	if expectingValue {
		return nil, fmt.Errorf("%s flag requires an argument", config.goFlags[len(config.goFlags)-1])
	}

	// Default: current directory if no packages specified
	if len(config.packages) == 0 {
		config.packages = []string{"."}
	}

	return config, nil
}

// parseRunArgs separates build flags, the program and its arguments.
//
// The 'go run' command format is:
//
//	go run [build flags] [-exec xprog] package [arguments...]
//
// The program is either one or more .go files or a single package. Every
// argument after it belongs to the program.
func parseRunArgs(args []string) (*goConfig, error) {
	config := &goConfig{command: "run"}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	config.workDir = cwd

	sawGoFile := false
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(config.packages) == 0 && strings.HasPrefix(arg, "-") {
			if arg == "-v" {
				config.verbose = true
			}
			config.goFlags = append(config.goFlags, arg)
			if needsValue(arg) || arg == "-exec" {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s flag requires an argument", arg)
				}
				i++
				config.goFlags = append(config.goFlags, args[i])
			}
			continue
		}

		if filepath.Ext(arg) == ".go" && (len(config.packages) == 0 || sawGoFile) && len(config.programArgs) == 0 {
			config.packages = append(config.packages, arg)
			sawGoFile = true
			continue
		}

		if len(config.packages) == 0 {
			// A package path runs as the program.
			config.packages = append(config.packages, arg)
			continue
		}

		config.programArgs = append(config.programArgs, args[i:]...)
		break
	}

	if len(config.packages) == 0 {
		return nil, fmt.Errorf("no go files or package specified")
	}
	return config, nil
}

// needsValue returns true if the flag expects a following value.
func needsValue(flag string) bool {
	// Flags that take values
	valueFlags := []string{
		"-ldflags", "-gcflags", "-asmflags", "-gccgoflags",
		"-tags", "-installsuffix", "-buildmode", "-mod",
		"-modfile", "-pkgdir", "-toolexec", "-p",
		"-run", "-bench", "-count", "-timeout", "-cpu",
		"-coverprofile", "-covermode", "-coverpkg", "-skip",
	}

	for _, vf := range valueFlags {
		if flag == vf {
			return true
		}
	}
	return false
}

// goArgs assembles the go command line for config.
func (config *goConfig) goArgs(overlay string) []string {
	args := []string{config.command, workspace.OverlayFlag(overlay)}
	if config.outputFile != "" {
		args = append(args, "-o", config.outputFile)
	}
	args = append(args, config.goFlags...)
	args = append(args, config.packages...)
	args = append(args, config.programArgs...)
	return args
}

// runGo prepares the overlay and runs the go command.
func runGo(ctx context.Context, config *goConfig, logger *slog.Logger) error {
	for _, flag := range config.goFlags {
		if strings.HasPrefix(flag, "-overlay") {
			return errors.New("-overlay cannot be combined with rhsfirst, which supplies its own")
		}
	}

	mod, err := workspace.FindModule(config.workDir)
	if err != nil {
		return err
	}
	if err := mod.CheckGoVersion(); err != nil {
		return err
	}

	overlay, err := prepareOverlay(ctx, mod, config.workDir, config.packages, config.command == "test", logger)
	if err != nil {
		return err
	}

	args := config.goArgs(overlay)
	logger.Debug("running go", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = config.workDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// prepareOverlay rewrites the files selected by patterns into the module's
// cache and returns the overlay file path.
func prepareOverlay(ctx context.Context, mod *workspace.Module, dir string, patterns []string, tests bool, logger *slog.Logger) (string, error) {
	cache, err := workspace.OpenCache(workspace.CacheDir(mod))
	if err != nil {
		return "", err
	}

	files, err := workspace.CollectFiles(dir, patterns, tests, cache.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to collect source files: %w", err)
	}

	results, err := rewriteFiles(ctx, dir, files, logger)
	if err != nil {
		return "", err
	}
	for _, fr := range results {
		logStats(logger, fr)
		if err := record(cache, fr, logger); err != nil {
			return "", err
		}
	}
	return cache.Write()
}

// record maps a rewritten file into the cache, or drops a stale mapping for
// a file that no longer changes.
func record(cache *workspace.Cache, fr fileResult, logger *slog.Logger) error {
	if !fr.result.Changed {
		return cache.Drop(fr.path)
	}
	shadow, err := cache.Put(fr.path, fr.result.Code)
	if err != nil {
		return err
	}
	logger.Debug("shadowed", "file", fr.path, "shadow", shadow)
	return nil
}
