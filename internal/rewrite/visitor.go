// Package rewrite - Statement traversal and the compound assignment split.
//
// This file implements the core rewrite: every compound assignment found in
// a statement slot is replaced by a block that evaluates the right-hand side
// into a temporary first.
package rewrite

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/dave/dst"
	"github.com/dave/dst/dstutil"
)

// Stats tracks rewrite statistics.
//
// Use Case:
// Enable with -v flag to see per-file statistics:
//
//	rhsfirst rewrite -v main.go
//	level=DEBUG msg=rewritten file=main.go funcs=2 split=5 clause_skipped=1
//
// Thread Safety: NOT thread-safe (single-threaded rewriting).
type Stats struct {
	FuncsAnnotated int // Number of functions carrying the directive
	Split          int // Number of compound assignments split into blocks
	ClauseSkipped  int // Compound assignments in if/for/switch header clauses
	Constant       int // Splits bound with const
	Typed          int // Splits bound with var and an explicit type
}

// Total returns the number of compound assignments seen in annotated functions.
func (s *Stats) Total() int {
	return s.Split + s.ClauseSkipped
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.FuncsAnnotated += other.FuncsAnnotated
	s.Split += other.Split
	s.ClauseSkipped += other.ClauseSkipped
	s.Constant += other.Constant
	s.Typed += other.Typed
}

// Rewrite records one split compound assignment.
type Rewrite struct {
	Func    string      // Enclosing function declaration name
	Line    int         // Line of the compound operator (1-indexed)
	Column  int         // Column of the compound operator (1-indexed)
	Op      token.Token // Compound operator, e.g. token.ADD_ASSIGN
	Temp    string      // Synthesized temporary name
	Binding Binding     // Declaration form of the temporary
}

// rewriter splits compound assignments of one parsed file.
//
// It owns no tree: positions and types are looked up through the
// decorator's dst->ast node map, which is only valid for nodes produced by
// decoration. Nodes built by the rewriter itself never reach the lookup
// because replacements are not walked again.
type rewriter struct {
	fset  *token.FileSet
	nodes map[dst.Node]ast.Node

	// Type information for the file; info may be nil.
	pkg     *types.Package
	info    *types.Info
	imports map[string]string

	// lineOffset is subtracted from every line, for sources parsed behind a
	// synthetic header.
	lineOffset int

	fn       string
	stats    Stats
	rewrites []Rewrite
}

// rewriteStmt walks stmt depth-first and returns its rewritten form.
//
// The statement is placed in a holder block so a top-level compound
// assignment is seen in a statement-list slot like any nested one.
func (r *rewriter) rewriteStmt(stmt dst.Stmt) dst.Stmt {
	holder := &dst.BlockStmt{List: []dst.Stmt{stmt}}
	dstutil.Apply(holder, nil, r.post)
	return holder.List[0]
}

// post is the post-order hook of the traversal. Children are already
// rewritten when it runs, so function literals inside a compound assignment
// are handled before the assignment itself is replaced.
func (r *rewriter) post(c *dstutil.Cursor) bool {
	as, ok := c.Node().(*dst.AssignStmt)
	if !ok || !isCompoundAssign(as) {
		return true
	}

	if !inStmtSlot(c) {
		// for i := 0; i < n; i += step {} has no room for a block.
		r.stats.ClauseSkipped++
		return true
	}

	c.Replace(r.split(as))
	return true
}

// split builds the replacement block for a compound assignment:
//
//	lhs op= rhs   →   { tmp := rhs; lhs op= tmp }
//
// with the binding form chosen by binding. The statement's decorations
// (comments, spacing) move to the block.
func (r *rewriter) split(as *dst.AssignStmt) *dst.BlockStmt {
	orig, _ := r.nodes[as].(*ast.AssignStmt)
	line, col := r.position(orig)
	name := TempName(line, col)

	kind, typ := r.binding(orig)
	bind := bindStmt(kind, name, typ, as.Rhs[0])

	apply := &dst.AssignStmt{
		Lhs: []dst.Expr{as.Lhs[0]},
		Tok: as.Tok,
		Rhs: []dst.Expr{dst.NewIdent(name)},
	}
	apply.Decs.Before = dst.NewLine
	apply.Decs.After = dst.NewLine
	apply.Decs.Tok = as.Decs.Tok

	block := &dst.BlockStmt{List: []dst.Stmt{bind, apply}}
	block.Decs.NodeDecs = as.Decs.NodeDecs

	r.stats.Split++
	switch kind {
	case BindConst:
		r.stats.Constant++
	case BindVar:
		r.stats.Typed++
	}
	r.rewrites = append(r.rewrites, Rewrite{
		Func:    r.fn,
		Line:    line,
		Column:  col,
		Op:      as.Tok,
		Temp:    name,
		Binding: kind,
	})
	return block
}

// position returns the 1-based line and column of the compound operator.
// Unadjusted positions are used so //line directives cannot make two
// operators share a name.
func (r *rewriter) position(orig *ast.AssignStmt) (line, col int) {
	if orig == nil {
		return 0, 0
	}
	p := r.fset.PositionFor(orig.TokPos, false)
	return p.Line - r.lineOffset, p.Column
}

// isCompoundAssign reports whether as has the form target OP= value.
func isCompoundAssign(as *dst.AssignStmt) bool {
	if len(as.Lhs) != 1 || len(as.Rhs) != 1 {
		return false
	}
	switch as.Tok {
	case token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN, token.QUO_ASSIGN,
		token.REM_ASSIGN, token.AND_ASSIGN, token.OR_ASSIGN, token.XOR_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN, token.AND_NOT_ASSIGN:
		return true
	}
	return false
}

// inStmtSlot reports whether the cursor sits where any statement, including
// a block, may stand: a block, case or comm clause body, or a labeled
// statement. Header clauses (if/switch init, for init/post) only accept
// simple statements.
func inStmtSlot(c *dstutil.Cursor) bool {
	switch c.Parent().(type) {
	case *dst.BlockStmt:
		return c.Name() == "List" && c.Index() >= 0
	case *dst.CaseClause, *dst.CommClause:
		return c.Name() == "Body" && c.Index() >= 0
	case *dst.LabeledStmt:
		return c.Name() == "Stmt"
	}
	return false
}
