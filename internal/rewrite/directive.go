// Package rewrite - Directive detection.
//
// A function opts into the rewrite with a directive line in its doc comment:
//
//	//rhsfirst:assign
//	func f(xs []int) { xs[1] += xs[0] }
//
// Anything after the directive name is opaque and kept verbatim.
package rewrite

import (
	"strings"

	"github.com/dave/dst"
)

// DirectiveName is the directive that marks a function for rewriting.
const DirectiveName = "//rhsfirst:assign"

// Directive returns the full directive line of fn, arguments included, and
// whether fn carries one.
func Directive(fn *dst.FuncDecl) (string, bool) {
	for _, line := range fn.Decs.Start.All() {
		if IsDirective(line) {
			return line, true
		}
	}
	return "", false
}

// IsDirective reports whether a comment line is the rewrite directive,
// with or without arguments.
func IsDirective(comment string) bool {
	rest, ok := strings.CutPrefix(comment, DirectiveName)
	if !ok {
		return false
	}
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
