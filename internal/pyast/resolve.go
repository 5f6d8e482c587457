package pyast

// LinkNames fills in the Defs of every Name in the given definitions
// that refers to one of the declarations, giving the evaluator the
// static resolution hook it needs for user calls and base-class walks.
// Names that already carry resolutions are left alone.
func LinkNames(decls []Decl, fns ...*FuncDef) {
	link := linker(decls)
	for _, d := range decls {
		if c, ok := d.(*ClassDef); ok {
			for _, b := range c.Bases {
				walkExpr(b, link)
			}
		}
		if f, ok := d.(*FuncDef); ok {
			walkFunc(f, link)
		}
	}
	for _, f := range fns {
		walkFunc(f, link)
	}
}

// LinkExprs resolves names in standalone expressions, such as contract
// conditions that live outside any function body.
func LinkExprs(decls []Decl, exprs ...Expr) {
	link := linker(decls)
	for _, e := range exprs {
		walkExpr(e, link)
	}
}

func linker(decls []Decl) func(*Name) {
	byName := make(map[string]Decl, len(decls))
	for _, d := range decls {
		byName[d.DeclName()] = d
	}
	return func(n *Name) {
		if len(n.Defs) > 0 {
			return
		}
		if d, ok := byName[n.ID]; ok {
			n.Defs = []Decl{d}
		}
	}
}

func walkFunc(f *FuncDef, visit func(*Name)) {
	for _, p := range f.Args {
		walkExpr(p.Annotation, visit)
	}
	walkExpr(f.Returns, visit)
	for _, s := range f.Body {
		walkStmt(s, visit)
	}
}

func walkStmt(s Stmt, visit func(*Name)) {
	switch n := s.(type) {
	case *FuncDef:
		walkFunc(n, visit)
	case *ClassDef:
		for _, b := range n.Bases {
			walkExpr(b, visit)
		}
	case *Assign:
		for _, t := range n.Targets {
			walkExpr(t, visit)
		}
		walkExpr(n.Value, visit)
	case *Assert:
		walkExpr(n.Test, visit)
	case *Return:
		walkExpr(n.Value, visit)
	case *If:
		walkExpr(n.Test, visit)
		for _, b := range n.Body {
			walkStmt(b, visit)
		}
		for _, b := range n.Orelse {
			walkStmt(b, visit)
		}
	case *Raise:
		walkExpr(n.Exc, visit)
		walkExpr(n.Cause, visit)
	case *ExprStmt:
		walkExpr(n.Value, visit)
	}
}

func walkExpr(e Expr, visit func(*Name)) {
	switch n := e.(type) {
	case nil:
	case *Name:
		visit(n)
	case *Attribute:
		walkExpr(n.Value, visit)
	case *UnaryOp:
		walkExpr(n.Operand, visit)
	case *BinOp:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *BoolOp:
		for _, v := range n.Values {
			walkExpr(v, visit)
		}
	case *Compare:
		walkExpr(n.Left, visit)
		for _, c := range n.Comparators {
			walkExpr(c, visit)
		}
	case *Call:
		walkExpr(n.Func, visit)
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
		for _, k := range n.Keywords {
			walkExpr(k.Value, visit)
		}
	case *IfExp:
		walkExpr(n.Test, visit)
		walkExpr(n.Body, visit)
		walkExpr(n.Orelse, visit)
	case *Subscript:
		walkExpr(n.Value, visit)
		walkExpr(n.Index, visit)
	case *Slice:
		walkExpr(n.Lo, visit)
		walkExpr(n.Hi, visit)
	case *ListExpr:
		for _, el := range n.Elts {
			walkExpr(el, visit)
		}
	case *TupleExpr:
		for _, el := range n.Elts {
			walkExpr(el, visit)
		}
	case *SetExpr:
		for _, el := range n.Elts {
			walkExpr(el, visit)
		}
	case *DictExpr:
		for i := range n.Keys {
			walkExpr(n.Keys[i], visit)
			walkExpr(n.Values[i], visit)
		}
	case *ListComp:
		walkExpr(n.Iter, visit)
		walkExpr(n.Elt, visit)
		for _, c := range n.Ifs {
			walkExpr(c, visit)
		}
	}
}
