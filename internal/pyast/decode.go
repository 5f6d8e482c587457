package pyast

import "fmt"

// The portable tree encoding: every node is a map carrying a "kind"
// discriminator, decoded from YAML (or anything else that yields plain
// maps/slices/scalars). This is the hand-off format for front ends that
// do not link against this module.

// DecodeStmt builds a statement node from its plain-data encoding.
func DecodeStmt(v any) (Stmt, error) {
	m, kind, err := node(v)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "funcdef":
		return decodeFuncDef(m)
	case "classdef":
		return decodeClassDef(m)
	case "assign":
		targets, err := decodeExprs(m["targets"])
		if err != nil {
			return nil, err
		}
		value, err := DecodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		return &Assign{Targets: targets, Value: value}, nil
	case "assert":
		test, err := DecodeExpr(m["test"])
		if err != nil {
			return nil, err
		}
		return &Assert{Test: test}, nil
	case "return":
		s := &Return{}
		if m["value"] != nil {
			if s.Value, err = DecodeExpr(m["value"]); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "if":
		test, err := DecodeExpr(m["test"])
		if err != nil {
			return nil, err
		}
		body, err := DecodeBody(m["body"])
		if err != nil {
			return nil, err
		}
		orelse, err := DecodeBody(m["orelse"])
		if err != nil {
			return nil, err
		}
		return &If{Test: test, Body: body, Orelse: orelse}, nil
	case "raise":
		s := &Raise{}
		if m["exc"] != nil {
			if s.Exc, err = DecodeExpr(m["exc"]); err != nil {
				return nil, err
			}
		}
		if m["cause"] != nil {
			if s.Cause, err = DecodeExpr(m["cause"]); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "expr":
		value, err := DecodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Value: value}, nil
	case "pass":
		return &Pass{}, nil
	case "import":
		return &Import{Names: strs(m["names"])}, nil
	case "importfrom":
		return &ImportFrom{Module: str(m["module"]), Names: strs(m["names"])}, nil
	case "global":
		return &Global{Names: strs(m["names"])}, nil
	default:
		return nil, fmt.Errorf("pyast: unknown statement kind %q", kind)
	}
}

// DecodeExpr builds an expression node from its plain-data encoding.
func DecodeExpr(v any) (Expr, error) {
	m, kind, err := node(v)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "const":
		return decodeConst(m["value"])
	case "name":
		return &Name{ID: str(m["id"]), Qual: str(m["qual"])}, nil
	case "attribute":
		base, err := DecodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		return &Attribute{Value: base, Attr: str(m["attr"])}, nil
	case "unaryop":
		op, ok := unaryOps[str(m["op"])]
		if !ok {
			return nil, fmt.Errorf("pyast: unknown unary operator %q", str(m["op"]))
		}
		operand, err := DecodeExpr(m["operand"])
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op, Operand: operand}, nil
	case "binop":
		op, ok := binOps[str(m["op"])]
		if !ok {
			return nil, fmt.Errorf("pyast: unknown binary operator %q", str(m["op"]))
		}
		left, err := DecodeExpr(m["left"])
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpr(m["right"])
		if err != nil {
			return nil, err
		}
		return &BinOp{Op: op, Left: left, Right: right}, nil
	case "boolop":
		op := OpAnd
		if str(m["op"]) == "or" {
			op = OpOr
		}
		values, err := decodeExprs(m["values"])
		if err != nil {
			return nil, err
		}
		return &BoolOp{Op: op, Values: values}, nil
	case "compare":
		left, err := DecodeExpr(m["left"])
		if err != nil {
			return nil, err
		}
		cmps, err := decodeExprs(m["comparators"])
		if err != nil {
			return nil, err
		}
		var ops []CmpOpKind
		for _, w := range strs(m["ops"]) {
			op, ok := cmpOps[w]
			if !ok {
				return nil, fmt.Errorf("pyast: unknown comparison operator %q", w)
			}
			ops = append(ops, op)
		}
		if len(ops) != len(cmps) {
			return nil, fmt.Errorf("pyast: compare has %d operators but %d comparators", len(ops), len(cmps))
		}
		return &Compare{Left: left, Ops: ops, Comparators: cmps}, nil
	case "call":
		fn, err := DecodeExpr(m["func"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(m["args"])
		if err != nil {
			return nil, err
		}
		call := &Call{Func: fn, Args: args}
		if kws, ok := m["keywords"].([]any); ok {
			for _, kw := range kws {
				km, err := plainMap(kw, "keyword")
				if err != nil {
					return nil, err
				}
				val, err := DecodeExpr(km["value"])
				if err != nil {
					return nil, err
				}
				call.Keywords = append(call.Keywords, &Keyword{Name: str(km["name"]), Value: val})
			}
		}
		return call, nil
	case "ifexp":
		test, err := DecodeExpr(m["test"])
		if err != nil {
			return nil, err
		}
		body, err := DecodeExpr(m["body"])
		if err != nil {
			return nil, err
		}
		orelse, err := DecodeExpr(m["orelse"])
		if err != nil {
			return nil, err
		}
		return &IfExp{Test: test, Body: body, Orelse: orelse}, nil
	case "subscript":
		base, err := DecodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		index, err := DecodeExpr(m["index"])
		if err != nil {
			return nil, err
		}
		return &Subscript{Value: base, Index: index}, nil
	case "slice":
		s := &Slice{}
		if m["lo"] != nil {
			if s.Lo, err = DecodeExpr(m["lo"]); err != nil {
				return nil, err
			}
		}
		if m["hi"] != nil {
			if s.Hi, err = DecodeExpr(m["hi"]); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "list":
		elts, err := decodeExprs(m["elts"])
		if err != nil {
			return nil, err
		}
		return &ListExpr{Elts: elts}, nil
	case "tuple":
		elts, err := decodeExprs(m["elts"])
		if err != nil {
			return nil, err
		}
		return &TupleExpr{Elts: elts}, nil
	case "set":
		elts, err := decodeExprs(m["elts"])
		if err != nil {
			return nil, err
		}
		return &SetExpr{Elts: elts}, nil
	case "dict":
		keys, err := decodeExprs(m["keys"])
		if err != nil {
			return nil, err
		}
		values, err := decodeExprs(m["values"])
		if err != nil {
			return nil, err
		}
		if len(keys) != len(values) {
			return nil, fmt.Errorf("pyast: dict has %d keys but %d values", len(keys), len(values))
		}
		return &DictExpr{Keys: keys, Values: values}, nil
	case "listcomp":
		elt, err := DecodeExpr(m["elt"])
		if err != nil {
			return nil, err
		}
		iter, err := DecodeExpr(m["iter"])
		if err != nil {
			return nil, err
		}
		ifs, err := decodeExprs(m["ifs"])
		if err != nil {
			return nil, err
		}
		return &ListComp{Elt: elt, Target: str(m["target"]), Iter: iter, Ifs: ifs}, nil
	default:
		return nil, fmt.Errorf("pyast: unknown expression kind %q", kind)
	}
}

// DecodeBody decodes a statement list; nil input yields an empty body.
func DecodeBody(v any) ([]Stmt, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("pyast: body must be a list, got %T", v)
	}
	out := make([]Stmt, 0, len(items))
	for _, it := range items {
		s, err := DecodeStmt(it)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeFuncDef(m map[string]any) (*FuncDef, error) {
	fn := &FuncDef{Name: str(m["name"])}
	if fn.Name == "" {
		return nil, fmt.Errorf("pyast: funcdef without a name")
	}
	if args, ok := m["args"].([]any); ok {
		for _, a := range args {
			am, err := plainMap(a, "parameter")
			if err != nil {
				return nil, err
			}
			p := &Param{Name: str(am["name"])}
			if am["annotation"] != nil {
				ann, err := DecodeExpr(am["annotation"])
				if err != nil {
					return nil, err
				}
				p.Annotation = ann
			}
			fn.Args = append(fn.Args, p)
		}
	}
	if m["returns"] != nil {
		ret, err := DecodeExpr(m["returns"])
		if err != nil {
			return nil, err
		}
		fn.Returns = ret
	}
	body, err := DecodeBody(m["body"])
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func decodeClassDef(m map[string]any) (*ClassDef, error) {
	c := &ClassDef{Name: str(m["name"])}
	if c.Name == "" {
		return nil, fmt.Errorf("pyast: classdef without a name")
	}
	bases, err := decodeExprs(m["bases"])
	if err != nil {
		return nil, err
	}
	c.Bases = bases
	return c, nil
}

func decodeConst(v any) (*Const, error) {
	switch x := v.(type) {
	case nil:
		return None(), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		return Int(int64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return Str(x), nil
	default:
		return nil, fmt.Errorf("pyast: unsupported constant %T", v)
	}
}

func decodeExprs(v any) ([]Expr, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("pyast: expected a list of expressions, got %T", v)
	}
	out := make([]Expr, 0, len(items))
	for _, it := range items {
		e, err := DecodeExpr(it)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func node(v any) (map[string]any, string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, "", fmt.Errorf("pyast: expected a node map, got %T", v)
	}
	kind, ok := m["kind"].(string)
	if !ok {
		return nil, "", fmt.Errorf("pyast: node without a kind")
	}
	return m, kind, nil
}

// plainMap is for the map-shaped entries that are not nodes and carry
// no kind discriminator: parameters and call keywords.
func plainMap(v any, what string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("pyast: %s must be a map, got %T", what, v)
	}
	return m, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, str(it))
	}
	return out
}

var unaryOps = map[string]UnaryOpKind{
	"not": OpNot,
	"-":   OpUSub,
	"+":   OpUAdd,
}

var binOps = map[string]BinOpKind{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMult,
	"/":  OpDiv,
	"//": OpFloorDiv,
	"%":  OpMod,
	"**": OpPow,
}

var cmpOps = map[string]CmpOpKind{
	"==":     OpEq,
	"!=":     OpNotEq,
	"<":      OpLt,
	"<=":     OpLtE,
	">":      OpGt,
	">=":     OpGtE,
	"in":     OpIn,
	"not in": OpNotIn,
}
