// Package rewrite implements the rhs-first rewrite of compound assignments.
//
// In a function annotated with the //rhsfirst:assign directive, every
// compound assignment statement (+=, -=, *=, /=, %=, &=, |=, ^=, <<=, >>=,
// &^=) is split so its right-hand side is evaluated into a temporary before
// the target is touched.
//
// Algorithm:
//  1. Parse the source with go/parser, type-check it with go/types and
//     decorate it with dst so comments stay attached to their statements
//  2. Find function declarations carrying the directive
//  3. Copy each body's top-level statement list and rewrite every statement
//     depth-first
//  4. Rebuild the function around the new list
//  5. Print the decorated tree back to source
//
// Example Transformation:
//
//	// INPUT:
//	//rhsfirst:assign
//	func bump(xs []int) {
//		xs[1] += xs[0]
//	}
//
//	// OUTPUT:
//	//rhsfirst:assign
//	func bump(xs []int) {
//		{
//			__rhs_first_assign_rhs_l3_c8 := xs[0]
//			xs[1] += __rhs_first_assign_rhs_l3_c8
//		}
//	}
//
// The rewrite is unconditional: every compound assignment in a statement
// position is split, whatever its operands. Types only select how the
// temporary is declared (see binding.go); no aliasing is analyzed.
//
// Thread Safety: File and Expand parse and own their tree; Syntax only reads
// the syntax and type information it is given. Calls may run concurrently,
// including on files sharing one package.
package rewrite

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"os"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Result holds the result of rewriting one file.
type Result struct {
	Code     []byte    // Rewritten source (the original bytes when unchanged)
	Changed  bool      // Whether any statement was split
	Stats    Stats     // Rewrite statistics
	Rewrites []Rewrite // Split statements, in source order per function
}

// File rewrites every annotated function in a Go source file.
//
// Parameters:
//   - filename: Path to the Go source file (used for positions and errors)
//   - src: Source code. Can be:
//   - nil: Read from filename
//   - []byte: Use provided bytes
//   - string: Use provided string
//   - io.Reader: Read from reader
//
// Returns:
//   - *Result: Rewritten code and statistics
//   - error: *ParseError for invalid source, or a read/print error
//
// The file is type-checked on its own to choose how temporaries are bound.
// Use Syntax when type information for the whole package is available.
//
// Files without annotated functions, or whose annotated functions contain
// no compound assignment to split, are returned byte-identical.
func File(filename string, src interface{}) (*Result, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, fromParserError(err, 0))
	}

	pkg, info := typeCheck(fset, file)
	return rewriteFile(fset, file, data, pkg, info)
}

// Syntax rewrites a file that was parsed, with comments, and type-checked
// as part of its package, as golang.org/x/tools/go/packages does. src is
// the file's content, returned when nothing changes. info may be nil.
//
// file is not modified.
func Syntax(fset *token.FileSet, file *ast.File, src []byte, pkg *types.Package, info *types.Info) (*Result, error) {
	return rewriteFile(fset, file, src, pkg, info)
}

func rewriteFile(fset *token.FileSet, file *ast.File, src []byte, pkg *types.Package, info *types.Info) (*Result, error) {
	filename := fset.Position(file.Package).Filename

	dec := decorator.NewDecorator(fset)
	df, err := dec.DecorateFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decorate file %s: %w", filename, err)
	}

	r := newRewriter(fset, dec, file, pkg, info)
	for i, decl := range df.Decls {
		fn, ok := decl.(*dst.FuncDecl)
		if !ok {
			continue
		}
		if _, ok := Directive(fn); !ok {
			continue
		}
		r.stats.FuncsAnnotated++
		df.Decls[i] = r.rewriteFunc(fn)
	}

	result := &Result{Code: src, Stats: r.stats, Rewrites: r.rewrites}
	if r.stats.Split == 0 {
		return result, nil
	}

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, df); err != nil {
		return nil, fmt.Errorf("failed to generate code for %s: %w", filename, err)
	}
	result.Code = buf.Bytes()
	result.Changed = true
	return result, nil
}

func newRewriter(fset *token.FileSet, dec *decorator.Decorator, file *ast.File, pkg *types.Package, info *types.Info) *rewriter {
	return &rewriter{
		fset:    fset,
		nodes:   dec.Map.Ast.Nodes,
		pkg:     pkg,
		info:    info,
		imports: importNames(file, info),
	}
}

// exprHeader is prepended to function sources so they parse as a file.
const exprHeader = "package p\n"

// Expand rewrites a single function declaration.
//
// directive is the raw annotation text; it is not inspected and is emitted
// verbatim in front of the rewritten function. src must hold exactly one
// function declaration. Positions, in errors and in synthesized names, are
// relative to src: its first line is line 1. The function is type-checked
// alone, so only its parameters, locals and literals inform the binding.
//
// Example:
//
//	out, err := Expand("//rhsfirst:assign", "func f(xs []int) {\n\txs[1] += xs[0]\n}\n")
//	// out:
//	// //rhsfirst:assign
//	// func f(xs []int) {
//	// 	{
//	// 		__rhs_first_assign_rhs_l2_c8 := xs[0]
//	// 		xs[1] += __rhs_first_assign_rhs_l2_c8
//	// 	}
//	// }
func Expand(directive, src string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", exprHeader+src, parser.ParseComments)
	if err != nil {
		return "", fromParserError(err, 1)
	}
	if len(file.Decls) != 1 {
		pos := file.Package
		if len(file.Decls) > 1 {
			pos = file.Decls[1].Pos()
		}
		return "", shiftLine(NewParseErrorWithSuggestion(fset, pos,
			fmt.Sprintf("expected one function declaration, found %d declarations", len(file.Decls)),
			"pass the source of exactly one func declaration"), 1)
	}
	if _, ok := file.Decls[0].(*ast.FuncDecl); !ok {
		return "", shiftLine(NewParseError(fset, file.Decls[0].Pos(), "expected a function declaration"), 1)
	}

	pkg, info := typeCheck(fset, file)

	dec := decorator.NewDecorator(fset)
	df, err := dec.DecorateFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to decorate function: %w", err)
	}

	r := newRewriter(fset, dec, file, pkg, info)
	r.lineOffset = 1
	df.Decls[0] = r.rewriteFunc(df.Decls[0].(*dst.FuncDecl))

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, df); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	fn := strings.TrimLeft(strings.TrimPrefix(buf.String(), exprHeader), "\n")
	if directive == "" {
		return fn, nil
	}
	return directive + "\n" + fn, nil
}

func shiftLine(err *ParseError, lineOffset int) *ParseError {
	err.Line -= lineOffset
	return err
}

// readSource mirrors go/parser's handling of its src argument.
func readSource(filename string, src interface{}) ([]byte, error) {
	switch s := src.(type) {
	case nil:
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		return data, nil
	case []byte:
		return s, nil
	case string:
		return []byte(s), nil
	case io.Reader:
		data, err := io.ReadAll(s)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("invalid source type %T for %s", src, filename)
}
