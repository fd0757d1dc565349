// Package main implements the rhsfirst CLI tool.
//
// The rhsfirst tool rewrites compound assignments in functions annotated with
// the //rhsfirst:assign directive so that their right-hand side is evaluated
// before the target:
//
//	xs[i()] += f()   →   { tmp := f(); xs[i()] += tmp }
//
// It works by:
//
//  1. Parsing Go source files with go/parser and dst
//  2. Splitting each compound assignment of annotated functions
//  3. Writing the result to stdout, in place, or into overlay shadow files
//  4. Building/running/testing with `go ... -overlay`
//
// Usage:
//
//	rhsfirst rewrite main.go        # Print rewritten source
//	rhsfirst build ./cmd/app        # Build with rewritten sources
//	rhsfirst test ./...             # Test with rewritten sources
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/kolkov/rhsfirst/assign"
	"github.com/kolkov/rhsfirst/internal/rewrite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "rewrite":
		rewriteCommand(os.Args[2:])
	case "build", "run", "test":
		goCommand(command, os.Args[2:])
	case "watch":
		watchCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("rhsfirst version %s (temporaries: %s_l<line>_c<column>)\n", assign.Version, rewrite.TempPrefix)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`rhsfirst - evaluate the right-hand side of compound assignments first

USAGE:
    rhsfirst <command> [arguments]

COMMANDS:
    rewrite    Print or write rewritten sources
    build      Build packages with rewritten sources
    run        Run a program with rewritten sources
    test       Test packages with rewritten sources
    watch      Keep the overlay cache up to date while editing
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Show what the rewrite does to a file
    rhsfirst rewrite main.go

    # Rewrite annotated functions in place
    rhsfirst rewrite -w ./...

    # Build and test without touching the source tree
    rhsfirst build -o myapp ./cmd/myapp
    rhsfirst test -v ./...

ANNOTATION:
    Functions opt in with a directive in their doc comment:

        //rhsfirst:assign
        func update(xs []int) {
            xs[1] += xs[0]
        }

    Every compound assignment (+=, -=, *=, /=, %=, &=, |=, ^=, <<=, >>=, &^=)
    in a statement position becomes

        {
            __rhs_first_assign_rhs_l3_c8 := xs[0]
            xs[1] += __rhs_first_assign_rhs_l3_c8
        }

ENVIRONMENT:
    RHSFIRST_CACHE    Overlay cache directory (default <module>/.rhsfirst)

`)
}

// exitOnError prints err and exits. Errors from a go subprocess exit with
// the subprocess's code, its output has already been shown.
func exitOnError(prefix string, err error) {
	if err == nil {
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", prefix, err)
	os.Exit(1)
}
