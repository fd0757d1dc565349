// Package assign provides the public API of the rhsfirst rewriter.
//
// See doc.go for detailed documentation and examples.
package assign

import "github.com/kolkov/rhsfirst/internal/rewrite"

// Directive is the comment that opts a function into the rewrite.
const Directive = rewrite.DirectiveName

// Source rewrites the annotated functions of one Go source file.
//
// filename is used for positions in errors and is read from disk when src
// is nil. Source returns src unchanged when no function needs rewriting.
//
// Example:
//
//	code, err := assign.Source("main.go", src)
//	if err != nil {
//		return err
//	}
//	os.Stdout.Write(code)
func Source(filename string, src []byte) ([]byte, error) {
	var in interface{}
	if src != nil {
		in = src
	}
	res, err := rewrite.File(filename, in)
	if err != nil {
		return nil, err
	}
	return res.Code, nil
}

// Expand rewrites the source of a single function declaration, emitting
// directive in front of it. Positions in synthesized names and errors count
// from the first line of fn.
func Expand(directive, fn string) (string, error) {
	return rewrite.Expand(directive, fn)
}

// TempName returns the temporary bound for the compound assignment whose
// operator is at line and column.
func TempName(line, column int) string {
	return rewrite.TempName(line, column)
}

// IsTempName reports whether name is a temporary produced by the rewrite.
func IsTempName(name string) bool {
	return rewrite.IsTempName(name)
}
