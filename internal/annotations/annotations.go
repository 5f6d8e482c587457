// Package annotations resolves type annotations on function parameters
// and return values into typed symbolic values. Only annotations with a
// solver representation resolve; anything else yields nil so callers
// can report the function as out of scope instead of guessing.
package annotations

import (
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

var simpleSorts = map[string]smt.Sort{
	"bool":  smt.BoolSort(),
	"int":   smt.IntSort(),
	"float": smt.RealSort(),
	"str":   smt.StringSort(),
}

// Resolve creates a fresh symbol named after the parameter, typed by
// its annotation. The second return distinguishes "unsupported" (nil
// value, nil error) from decode failures; today there are none of the
// latter, but method-style callers rely on the shape.
func Resolve(ctx *smt.Context, name string, ann pyast.Expr) (proxies.Value, error) {
	shape, ok := shapeOf(ann)
	if !ok {
		return nil, nil
	}
	sym := ctx.Const(name, shape.sort)
	if shape.varTuple {
		return proxies.NewVarTuple(sym), nil
	}
	return proxies.Wrap(sym)
}

// SortOf maps an annotation expression to its solver sort, for callers
// that need the representation without a fresh symbol (recursion
// summaries declare uninterpreted functions from it).
func SortOf(ann pyast.Expr) (smt.Sort, bool) {
	s, ok := shapeOf(ann)
	return s.sort, ok
}

type shape struct {
	sort     smt.Sort
	varTuple bool
}

// shapeOf maps an annotation expression to a solver sort. String
// literal annotations re-enter as names, the way forward references
// are written in the subject language.
func shapeOf(ann pyast.Expr) (shape, bool) {
	switch n := ann.(type) {
	case *pyast.Name:
		if s, ok := simpleSorts[n.ID]; ok {
			return shape{sort: s}, true
		}
	case *pyast.Const:
		if n.Kind == pyast.ConstStr {
			if s, ok := simpleSorts[n.Str]; ok {
				return shape{sort: s}, true
			}
		}
	case *pyast.Subscript:
		return genericShape(n)
	}
	return shape{}, false
}

func genericShape(sub *pyast.Subscript) (shape, bool) {
	base, ok := sub.Value.(*pyast.Name)
	if !ok {
		return shape{}, false
	}
	switch base.ID {
	case "list", "List":
		elem, ok := shapeOf(sub.Index)
		if !ok || elem.varTuple {
			return shape{}, false
		}
		return shape{sort: smt.SeqSort(elem.sort)}, true
	case "set", "Set", "frozenset", "FrozenSet":
		elem, ok := shapeOf(sub.Index)
		if !ok || elem.varTuple {
			return shape{}, false
		}
		return shape{sort: smt.SetSort(elem.sort)}, true
	case "dict", "Dict":
		args, ok := sub.Index.(*pyast.TupleExpr)
		if !ok || len(args.Elts) != 2 {
			return shape{}, false
		}
		key, ok := shapeOf(args.Elts[0])
		if !ok || key.varTuple {
			return shape{}, false
		}
		val, ok := shapeOf(args.Elts[1])
		if !ok || val.varTuple {
			return shape{}, false
		}
		return shape{sort: smt.ArraySort(key.sort, val.sort)}, true
	case "tuple", "Tuple":
		args, ok := sub.Index.(*pyast.TupleExpr)
		if !ok || len(args.Elts) != 2 || !isEllipsis(args.Elts[1]) {
			return shape{}, false
		}
		elem, ok := shapeOf(args.Elts[0])
		if !ok || elem.varTuple {
			return shape{}, false
		}
		return shape{sort: smt.SeqSort(elem.sort), varTuple: true}, true
	}
	return shape{}, false
}

// isEllipsis recognizes the homogeneous-tuple marker. Front ends encode
// the ellipsis as a name, since the portable tree has no constant for
// it.
func isEllipsis(e pyast.Expr) bool {
	n, ok := e.(*pyast.Name)
	return ok && (n.ID == "..." || n.ID == "Ellipsis")
}
