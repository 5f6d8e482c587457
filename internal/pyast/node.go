// Package pyast defines the subject-language syntax tree handed to the
// evaluator by a front end. The variant set is closed: the evaluator
// switches over it exhaustively, and kinds outside the modeled subset
// are rejected there, not here.
package pyast

import "strings"

// Stmt is a statement node.
type Stmt interface {
	isStmt()
	String() string
}

// Expr is an expression node.
type Expr interface {
	isExpr()
	String() string
}

// Decl is a declaration a Name can statically resolve to.
type Decl interface {
	isDecl()
	DeclName() string
}

// Param is one function parameter with its optional type annotation.
type Param struct {
	Name       string
	Annotation Expr
}

// FuncDef is a function definition. Returns holds the return-type
// annotation node, nil when absent.
type FuncDef struct {
	Name    string
	Args    []*Param
	Returns Expr
	Body    []Stmt
}

func (*FuncDef) isStmt()            {}
func (*FuncDef) isDecl()            {}
func (f *FuncDef) DeclName() string { return f.Name }
func (f *FuncDef) String() string   { return "def " + f.Name }

// ClassDef is a class definition; the evaluator only walks it for
// exception base-class resolution.
type ClassDef struct {
	Name  string
	Bases []Expr
}

func (*ClassDef) isStmt()            {}
func (*ClassDef) isDecl()            {}
func (c *ClassDef) DeclName() string { return c.Name }
func (c *ClassDef) String() string   { return "class " + c.Name }

// Assign is an assignment statement. Only a single simple-name target is
// supported by the evaluator.
type Assign struct {
	Targets []Expr
	Value   Expr
}

func (*Assign) isStmt() {}
func (s *Assign) String() string {
	parts := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		parts[i] = t.String()
	}
	return strings.Join(parts, " = ") + " = " + s.Value.String()
}

// Assert is an assert statement.
type Assert struct {
	Test Expr
}

func (*Assert) isStmt()          {}
func (s *Assert) String() string { return "assert " + s.Test.String() }

// Return is a return statement.
type Return struct {
	Value Expr
}

func (*Return) isStmt() {}
func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// If is a conditional statement.
type If struct {
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (*If) isStmt()          {}
func (s *If) String() string { return "if " + s.Test.String() + ": ..." }

// Raise is a raise statement with an optional cause.
type Raise struct {
	Exc   Expr
	Cause Expr
}

func (*Raise) isStmt() {}
func (s *Raise) String() string {
	if s.Exc == nil {
		return "raise"
	}
	return "raise " + s.Exc.String()
}

// ExprStmt is an expression evaluated for its effects.
type ExprStmt struct {
	Value Expr
}

func (*ExprStmt) isStmt()          {}
func (s *ExprStmt) String() string { return s.Value.String() }

// Pass is the no-op statement.
type Pass struct{}

func (*Pass) isStmt()        {}
func (*Pass) String() string { return "pass" }

// Import is an import statement; a genuine no-op for the evaluator.
type Import struct {
	Names []string
}

func (*Import) isStmt()          {}
func (s *Import) String() string { return "import " + strings.Join(s.Names, ", ") }

// ImportFrom is a from-import statement; also a no-op.
type ImportFrom struct {
	Module string
	Names  []string
}

func (*ImportFrom) isStmt()          {}
func (s *ImportFrom) String() string { return "from " + s.Module + " import ..." }

// Global is a global declaration; a no-op.
type Global struct {
	Names []string
}

func (*Global) isStmt()          {}
func (s *Global) String() string { return "global " + strings.Join(s.Names, ", ") }

// ConstKind tags the payload of a Const node.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstStr
)

// Const is a literal constant.
type Const struct {
	Kind  ConstKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func (*Const) isExpr() {}
func (e *Const) String() string {
	switch e.Kind {
	case ConstNone:
		return "None"
	case ConstBool:
		if e.Bool {
			return "True"
		}
		return "False"
	case ConstInt:
		return itoa(e.Int)
	case ConstFloat:
		return ftoa(e.Float)
	default:
		return "'" + e.Str + "'"
	}
}

// Name is an identifier reference. Qual carries the fully-qualified
// dotted name when the front end could resolve one, and Defs the
// candidate declarations it refers to; both may be empty.
type Name struct {
	ID   string
	Qual string
	Defs []Decl
}

func (*Name) isExpr()          {}
func (e *Name) String() string { return e.ID }

// Attribute is a dotted attribute access.
type Attribute struct {
	Value Expr
	Attr  string
}

func (*Attribute) isExpr()          {}
func (e *Attribute) String() string { return e.Value.String() + "." + e.Attr }

// UnaryOpKind enumerates unary operators.
type UnaryOpKind int

const (
	_ UnaryOpKind = iota
	OpNot
	OpUSub
	OpUAdd
)

// UnaryOp is a unary operation.
type UnaryOp struct {
	Op      UnaryOpKind
	Operand Expr
}

func (*UnaryOp) isExpr() {}
func (e *UnaryOp) String() string {
	switch e.Op {
	case OpNot:
		return "not " + e.Operand.String()
	case OpUSub:
		return "-" + e.Operand.String()
	default:
		return "+" + e.Operand.String()
	}
}

// BinOpKind enumerates binary arithmetic operators.
type BinOpKind int

const (
	_ BinOpKind = iota
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
)

func (op BinOpKind) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	default:
		return "?"
	}
}

// BinOp is a binary arithmetic operation.
type BinOp struct {
	Op          BinOpKind
	Left, Right Expr
}

func (*BinOp) isExpr() {}
func (e *BinOp) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// BoolOpKind enumerates boolean connectives.
type BoolOpKind int

const (
	_ BoolOpKind = iota
	OpAnd
	OpOr
)

// BoolOp is an n-ary boolean operation.
type BoolOp struct {
	Op     BoolOpKind
	Values []Expr
}

func (*BoolOp) isExpr() {}
func (e *BoolOp) String() string {
	word := " and "
	if e.Op == OpOr {
		word = " or "
	}
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, word) + ")"
}

// CmpOpKind enumerates comparison operators.
type CmpOpKind int

const (
	_ CmpOpKind = iota
	OpEq
	OpNotEq
	OpLt
	OpLtE
	OpGt
	OpGtE
	OpIn
	OpNotIn
)

func (op CmpOpKind) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtE:
		return "<="
	case OpGt:
		return ">"
	case OpGtE:
		return ">="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	default:
		return "?"
	}
}

// Compare is a (possibly chained) comparison: Left Ops[0] Comparators[0]
// Ops[1] Comparators[1] ...
type Compare struct {
	Left        Expr
	Ops         []CmpOpKind
	Comparators []Expr
}

func (*Compare) isExpr() {}
func (e *Compare) String() string {
	var b strings.Builder
	b.WriteString(e.Left.String())
	for i, op := range e.Ops {
		b.WriteString(" " + op.String() + " " + e.Comparators[i].String())
	}
	return b.String()
}

// Keyword is a keyword argument in a call.
type Keyword struct {
	Name  string
	Value Expr
}

// Call is a call expression.
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

func (*Call) isExpr() {}
func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Func.String() + "(" + strings.Join(parts, ", ") + ")"
}

// IfExp is a conditional (ternary) expression.
type IfExp struct {
	Test, Body, Orelse Expr
}

func (*IfExp) isExpr() {}
func (e *IfExp) String() string {
	return "(" + e.Body.String() + " if " + e.Test.String() + " else " + e.Orelse.String() + ")"
}

// Subscript is an indexing expression; Index may be a *Slice.
type Subscript struct {
	Value Expr
	Index Expr
}

func (*Subscript) isExpr()          {}
func (e *Subscript) String() string { return e.Value.String() + "[" + e.Index.String() + "]" }

// Slice is a slice with optional bounds; steps are not modeled.
type Slice struct {
	Lo, Hi Expr
}

func (*Slice) isExpr() {}
func (e *Slice) String() string {
	lo, hi := "", ""
	if e.Lo != nil {
		lo = e.Lo.String()
	}
	if e.Hi != nil {
		hi = e.Hi.String()
	}
	return lo + ":" + hi
}

// ListExpr is a list display.
type ListExpr struct {
	Elts []Expr
}

func (*ListExpr) isExpr()          {}
func (e *ListExpr) String() string { return "[" + joinExprs(e.Elts) + "]" }

// TupleExpr is a tuple display.
type TupleExpr struct {
	Elts []Expr
}

func (*TupleExpr) isExpr()          {}
func (e *TupleExpr) String() string { return "(" + joinExprs(e.Elts) + ")" }

// SetExpr is a set display.
type SetExpr struct {
	Elts []Expr
}

func (*SetExpr) isExpr()          {}
func (e *SetExpr) String() string { return "{" + joinExprs(e.Elts) + "}" }

// DictExpr is a dict display; Keys and Values run in parallel.
type DictExpr struct {
	Keys   []Expr
	Values []Expr
}

func (*DictExpr) isExpr() {}
func (e *DictExpr) String() string {
	parts := make([]string, len(e.Keys))
	for i := range e.Keys {
		parts[i] = e.Keys[i].String() + ": " + e.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ListComp is a list comprehension with a single generator and optional
// filter conditions.
type ListComp struct {
	Elt    Expr
	Target string
	Iter   Expr
	Ifs    []Expr
}

func (*ListComp) isExpr() {}
func (e *ListComp) String() string {
	return "[" + e.Elt.String() + " for " + e.Target + " in " + e.Iter.String() + "]"
}

func joinExprs(elts []Expr) string {
	parts := make([]string, len(elts))
	for i, e := range elts {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
