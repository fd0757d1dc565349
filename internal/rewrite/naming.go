// Package rewrite - Temporary identifier synthesis.
//
// Every split compound assignment binds its right-hand side to a temporary
// whose name is derived from the position of the compound operator:
//
//	__rhs_first_assign_rhs_l<line>_c<column>
//
// No two operators in one file share a position, so no counter is needed.
package rewrite

import (
	"fmt"
	"strings"
)

// TempPrefix is the reserved prefix of every synthesized temporary.
//
// Programmers do not write identifiers with a double underscore prefix in Go,
// which keeps synthesized names from colliding with user names.
const TempPrefix = "__rhs_first_assign_rhs"

// TempName returns the temporary identifier for a compound operator at the
// given 1-based line and column.
//
// Example:
//
//	TempName(11, 8) // "__rhs_first_assign_rhs_l11_c8"
func TempName(line, column int) string {
	return fmt.Sprintf("%s_l%d_c%d", TempPrefix, line, column)
}

// IsTempName reports whether name has the shape produced by TempName.
func IsTempName(name string) bool {
	rest, ok := strings.CutPrefix(name, TempPrefix+"_l")
	if !ok {
		return false
	}
	line, col, ok := strings.Cut(rest, "_c")
	return ok && isDigits(line) && isDigits(col)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
