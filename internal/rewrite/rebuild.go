package rewrite

import (
	"slices"

	"github.com/dave/dst"
)

// Rebuild returns a copy of fn whose body holds stmts.
//
// Everything else is carried over as is: name, receiver, type parameters,
// signature, decorations (the directive included) and the body's brace
// decorations. A function without a body is returned unchanged.
func Rebuild(fn *dst.FuncDecl, stmts []dst.Stmt) *dst.FuncDecl {
	if fn.Body == nil {
		return fn
	}
	body := *fn.Body
	body.List = stmts

	out := *fn
	out.Body = &body
	return &out
}

// rewriteFunc rewrites the top-level statements of fn and rebuilds it.
// The statement list is copied, so fn's own list is left in place.
func (r *rewriter) rewriteFunc(fn *dst.FuncDecl) *dst.FuncDecl {
	if fn.Body == nil {
		return fn
	}
	r.fn = fn.Name.Name

	stmts := slices.Clone(fn.Body.List)
	for i, stmt := range stmts {
		stmts[i] = r.rewriteStmt(stmt)
	}
	return Rebuild(fn, stmts)
}
