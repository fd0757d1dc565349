// Package rewrite - Error types.
//
// Parsing is the only step that can fail. Errors carry the file position of
// the offending token and an optional suggestion.
//
// Example output:
//
//	main.go:4:9: expected ';', found 'IDENT' y
package rewrite

import (
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
)

// ParseError reports source that does not form valid input.
//
// Fields:
//   - File: Source file path where error occurred
//   - Line: Line number (1-indexed)
//   - Column: Column number (1-indexed)
//   - Message: Human-readable error description
//   - Suggestion: Optional hint for fixing the error
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type ParseError struct {
	File       string // Source file path
	Line       int    // Line number (1-indexed)
	Column     int    // Column number (1-indexed)
	Message    string // Error message
	Suggestion string // Optional suggestion for fixing (empty if none)

	err error // underlying parser error, if any
}

// Error implements the error interface.
//
// Format: file:line:column: message
//
// If Suggestion is non-empty, it's appended on a new line with "Suggestion: " prefix.
func (e *ParseError) Error() string {
	result := fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	if e.Suggestion != "" {
		result += fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion)
	}
	return result
}

// Unwrap returns the underlying parser error (a scanner.ErrorList) or nil.
func (e *ParseError) Unwrap() error {
	return e.err
}

// NewParseError creates an error with file position from an AST position.
//
// Example:
//
//	return NewParseError(fset, decl.Pos(), "expected a function declaration")
func NewParseError(fset *token.FileSet, pos token.Pos, msg string) *ParseError {
	position := fset.Position(pos)
	return &ParseError{
		File:    position.Filename,
		Line:    position.Line,
		Column:  position.Column,
		Message: msg,
	}
}

// NewParseErrorWithSuggestion creates an error with suggestion.
func NewParseErrorWithSuggestion(fset *token.FileSet, pos token.Pos, msg, suggestion string) *ParseError {
	err := NewParseError(fset, pos, msg)
	err.Suggestion = suggestion
	return err
}

// fromParserError converts a go/parser error into a *ParseError pointing at
// the first reported problem. lineOffset is subtracted from the line so
// positions refer to the caller's source when a header was prepended.
func fromParserError(err error, lineOffset int) error {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return err
	}
	first := list[0]
	return &ParseError{
		File:    first.Pos.Filename,
		Line:    first.Pos.Line - lineOffset,
		Column:  first.Pos.Column,
		Message: first.Msg,
		err:     err,
	}
}
