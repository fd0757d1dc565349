// Package rewrite - Binding of the right-hand side.
//
// `tmp := rhs` gives an untyped right-hand side its default type, which can
// differ from the type of the target:
//
//	var f float64
//	f += 1          // tmp := 1 makes tmp an int: f += tmp does not compile
//
// The binding form is therefore chosen from type information:
//
//	const tmp = rhs     constant rhs, stays untyped
//	var tmp T = rhs     untyped non-constant rhs (1 << s), T as in the original
//	tmp := rhs          everything else
package rewrite

import (
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"
	"strconv"

	"github.com/dave/dst"
)

// Binding is the declaration form used for a temporary.
type Binding int

const (
	BindDefine Binding = iota // tmp := rhs
	BindConst                 // const tmp = rhs
	BindVar                   // var tmp T = rhs
)

func (b Binding) String() string {
	switch b {
	case BindConst:
		return "const"
	case BindVar:
		return "var"
	}
	return "define"
}

// typeCheck type-checks a single file on its own. Errors are ignored:
// references to other files of the package stay unresolved and the
// expressions using them fall back to the syntactic rules.
func typeCheck(fset *token.FileSet, file *ast.File) (*types.Package, *types.Info) {
	info := &types.Info{
		Types:     make(map[ast.Expr]types.TypeAndValue),
		Defs:      make(map[*ast.Ident]types.Object),
		Uses:      make(map[*ast.Ident]types.Object),
		Implicits: make(map[ast.Node]types.Object),
	}
	conf := types.Config{
		Importer:    importer.Default(),
		FakeImportC: true,
		Error:       func(error) {},
	}
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	return pkg, info
}

// importNames maps import paths to the names file refers to them by. Dot
// imports map to "".
func importNames(file *ast.File, info *types.Info) map[string]string {
	names := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		var name string
		switch {
		case imp.Name != nil:
			name = imp.Name.Name
		case info != nil && info.PkgNameOf(imp) != nil:
			name = info.PkgNameOf(imp).Name()
		default:
			continue
		}
		switch name {
		case "_":
			continue
		case ".":
			name = ""
		}
		names[path] = name
	}
	return names
}

// binding selects the declaration form for the right-hand side of orig.
// For BindVar the returned expression is the declared type.
func (r *rewriter) binding(orig *ast.AssignStmt) (Binding, dst.Expr) {
	if orig == nil {
		return BindDefine, nil
	}
	rhs := orig.Rhs[0]

	if r.info != nil {
		if tv, ok := r.info.Types[rhs]; ok && tv.Type != nil && tv.Type != types.Typ[types.Invalid] {
			if tv.Value != nil {
				return BindConst, nil
			}
			if r.untyped(rhs) {
				// A shift count converts to uint.
				if orig.Tok == token.SHL_ASSIGN || orig.Tok == token.SHR_ASSIGN {
					return BindVar, dst.NewIdent("uint")
				}
				if typ := r.typeExpr(tv.Type); typ != nil {
					return BindVar, typ
				}
			}
			return BindDefine, nil
		}
	}

	if isLiteralConst(rhs) {
		return BindConst, nil
	}
	return BindDefine, nil
}

// untyped reports whether e has no type of its own and takes the type of
// its context, like the non-constant shift 1 << s.
func (r *rewriter) untyped(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return true
	case *ast.ParenExpr:
		return r.untyped(e.X)
	case *ast.UnaryExpr:
		switch e.Op {
		case token.ADD, token.SUB, token.XOR, token.NOT:
			return r.untyped(e.X)
		}
		return false
	case *ast.BinaryExpr:
		switch e.Op {
		case token.SHL, token.SHR:
			return r.untyped(e.X)
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
			return true
		}
		return r.untyped(e.X) && r.untyped(e.Y)
	case *ast.Ident:
		return r.untypedConst(e)
	case *ast.SelectorExpr:
		return r.untypedConst(e.Sel)
	}
	return false
}

func (r *rewriter) untypedConst(id *ast.Ident) bool {
	c, ok := r.info.Uses[id].(*types.Const)
	if !ok {
		return false
	}
	b, ok := c.Type().(*types.Basic)
	return ok && b.Info()&types.IsUntyped != 0
}

// typeExpr returns a type expression naming t from inside the file, or nil
// when t cannot be spelled there.
func (r *rewriter) typeExpr(t types.Type) dst.Expr {
	switch t := t.(type) {
	case *types.Basic:
		if t.Info()&types.IsUntyped != 0 || t.Kind() == types.Invalid {
			return nil
		}
		return dst.NewIdent(t.Name())
	case *types.TypeParam:
		return dst.NewIdent(t.Obj().Name())
	case *types.Named:
		if t.TypeArgs().Len() > 0 {
			return nil
		}
		return r.typeName(t.Obj())
	case *types.Alias:
		return r.typeName(t.Obj())
	}
	return nil
}

func (r *rewriter) typeName(obj *types.TypeName) dst.Expr {
	pkg := obj.Pkg()
	if pkg == nil || pkg == r.pkg {
		return dst.NewIdent(obj.Name())
	}
	if !obj.Exported() {
		return nil
	}
	name, ok := r.imports[pkg.Path()]
	if !ok {
		return nil
	}
	if name == "" {
		return dst.NewIdent(obj.Name())
	}
	return &dst.SelectorExpr{X: dst.NewIdent(name), Sel: dst.NewIdent(obj.Name())}
}

// isLiteralConst reports whether e is built from literals and operators
// only, so it is constant without any type information.
func isLiteralConst(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return true
	case *ast.ParenExpr:
		return isLiteralConst(e.X)
	case *ast.UnaryExpr:
		switch e.Op {
		case token.ADD, token.SUB, token.XOR:
			return isLiteralConst(e.X)
		}
	case *ast.BinaryExpr:
		switch e.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ,
			token.LAND, token.LOR:
			return false
		}
		return isLiteralConst(e.X) && isLiteralConst(e.Y)
	}
	return false
}

// bindStmt builds the statement declaring name for rhs.
func bindStmt(b Binding, name string, typ, rhs dst.Expr) dst.Stmt {
	var stmt dst.Stmt
	switch b {
	case BindConst, BindVar:
		tok := token.CONST
		if b == BindVar {
			tok = token.VAR
		}
		stmt = &dst.DeclStmt{Decl: &dst.GenDecl{
			Tok: tok,
			Specs: []dst.Spec{&dst.ValueSpec{
				Names:  []*dst.Ident{dst.NewIdent(name)},
				Type:   typ,
				Values: []dst.Expr{rhs},
			}},
		}}
	default:
		stmt = &dst.AssignStmt{
			Lhs: []dst.Expr{dst.NewIdent(name)},
			Tok: token.DEFINE,
			Rhs: []dst.Expr{rhs},
		}
	}
	stmt.Decorations().Before = dst.NewLine
	stmt.Decorations().After = dst.NewLine
	return stmt
}
