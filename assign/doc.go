// Package assign rewrites compound assignments so that their right-hand side
// is evaluated before the assignment target.
//
// In Go, the operands of the target of a compound assignment such as
// xs[i()] += f() are evaluated before f is called. Functions annotated with
// the //rhsfirst:assign directive have every compound assignment split into
// a binding of the right-hand side followed by the assignment itself.
//
// # Quick Start
//
// The rhsfirst tool applies the rewrite while building, without touching
// the source tree:
//
//	$ rhsfirst build ./cmd/app
//	$ rhsfirst test ./...
//
// Or rewrite files in place:
//
//	$ rhsfirst rewrite -w ./...
//
// # Annotation
//
// The directive goes in the doc comment of a function or method. Anything
// after it on the same line is kept verbatim:
//
//	//rhsfirst:assign
//	func update(xs []int) {
//		xs[1] += xs[0]
//	}
//
// # How It Works
//
// Each compound assignment (+=, -=, *=, /=, %=, &=, |=, ^=, <<=, >>=, &^=)
// in a statement position becomes a block:
//
//	// Original code:
//	xs[1] += xs[0]
//
//	// Rewritten code:
//	{
//		__rhs_first_assign_rhs_l3_c8 := xs[0]
//		xs[1] += __rhs_first_assign_rhs_l3_c8
//	}
//
// The temporary is named after the line and column of the operator, so
// names never collide within a file. Comments attached to the statement move
// to the block. Compound assignments in if, for and switch headers are left
// alone since a block cannot appear there.
//
// The temporary keeps the type the right-hand side had in the original
// statement. Constants are bound with const and untyped shifts with an
// explicit var type:
//
//	var f float64
//	f += 1          // { const __rhs_first_assign_rhs_l2_c3 = 1; f += ... }
//	n += 1 << s     // { var __rhs_first_assign_rhs_l3_c3 int64 = 1 << s; ... }
//
// # API Overview
//
//   - Whole files: [Source]
//   - Single functions: [Expand]
//   - Temporary names: [TempName], [IsTempName]
//   - Version information: [GetInfo], [Version]
package assign
