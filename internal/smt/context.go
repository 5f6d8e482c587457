package smt

// Context owns fresh-name generation and uninterpreted function
// declarations for one proof attempt. Terms created through a Context
// must never be mixed with terms from another one.
type Context struct {
	fresh map[string]int
	decls map[string]*FuncDecl
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		fresh: make(map[string]int),
		decls: make(map[string]*FuncDecl),
	}
}

// Bool returns a boolean literal.
func (c *Context) Bool(v bool) *Term {
	return &Term{ctx: c, op: OpBoolLit, sort: BoolSort(), bval: v}
}

// True returns the true literal.
func (c *Context) True() *Term { return c.Bool(true) }

// False returns the false literal.
func (c *Context) False() *Term { return c.Bool(false) }

// Int returns an integer literal.
func (c *Context) Int(v int64) *Term {
	return &Term{ctx: c, op: OpIntLit, sort: IntSort(), ival: v}
}

// Real returns a real literal.
func (c *Context) Real(v float64) *Term {
	return &Term{ctx: c, op: OpRealLit, sort: RealSort(), fval: v}
}

// Str returns a string literal.
func (c *Context) Str(v string) *Term {
	return &Term{ctx: c, op: OpStrLit, sort: StringSort(), sval: v}
}

// Seq returns a literal sequence over elem containing the given elements.
func (c *Context) Seq(elem Sort, elts ...*Term) *Term {
	for _, e := range elts {
		if !e.sort.Equal(elem) {
			sortPanic("seq literal: element sort %s does not match %s", e.sort, elem)
		}
	}
	return &Term{ctx: c, op: OpSeqLit, sort: SeqSort(elem), args: elts}
}

// Set returns a literal set over elem containing the given elements.
// Duplicate elements are kept as written and collapse during folding.
func (c *Context) Set(elem Sort, elts ...*Term) *Term {
	for _, e := range elts {
		if !e.sort.Equal(elem) {
			sortPanic("set literal: element sort %s does not match %s", e.sort, elem)
		}
	}
	return &Term{ctx: c, op: OpSetLit, sort: SetSort(elem), args: elts}
}

// ConstArray returns the constant map from key to the default value.
func (c *Context) ConstArray(key Sort, dflt *Term) *Term {
	return &Term{ctx: c, op: OpArrayConst, sort: ArraySort(key, dflt.sort), args: []*Term{dflt}}
}

// Regex returns a regular-expression literal with the given pattern.
func (c *Context) Regex(pattern string) *Term {
	return &Term{ctx: c, op: OpReLit, sort: RegexSort(), sval: pattern}
}

// Const returns the free constant with the given name and sort.
func (c *Context) Const(name string, sort Sort) *Term {
	return &Term{ctx: c, op: OpConst, sort: sort, name: name}
}

// FreshConst returns a free constant with a name derived from prefix that
// is unique within this context.
func (c *Context) FreshConst(prefix string, sort Sort) *Term {
	n := c.fresh[prefix]
	c.fresh[prefix] = n + 1
	return c.Const(freshName(prefix, n), sort)
}

func freshName(prefix string, n int) string {
	// the ! separator cannot occur in subject-language identifiers,
	// so fresh names never collide with user variables
	return prefix + "!" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// FuncDecl is an uninterpreted function declaration.
type FuncDecl struct {
	ctx    *Context
	name   string
	domain []Sort
	rng    Sort
}

// FuncDecl declares (or retrieves) the uninterpreted function with the
// given signature. Redeclaring a name with a different signature panics;
// one proof attempt sees one consistent meaning per name.
func (c *Context) FuncDecl(name string, domain []Sort, rng Sort) *FuncDecl {
	if d, ok := c.decls[name]; ok {
		if !d.rng.Equal(rng) || len(d.domain) != len(domain) {
			sortPanic("redeclaration of %s with a different signature", name)
		}
		for i := range domain {
			if !d.domain[i].Equal(domain[i]) {
				sortPanic("redeclaration of %s with a different signature", name)
			}
		}
		return d
	}
	d := &FuncDecl{ctx: c, name: name, domain: domain, rng: rng}
	c.decls[name] = d
	return d
}

// Name returns the declared name.
func (d *FuncDecl) Name() string { return d.name }

// Arity returns the number of parameters.
func (d *FuncDecl) Arity() int { return len(d.domain) }

// Domain returns the i-th parameter sort.
func (d *FuncDecl) Domain(i int) Sort { return d.domain[i] }

// Range returns the result sort.
func (d *FuncDecl) Range() Sort { return d.rng }

// Apply builds an application of the declaration to the given arguments.
func (d *FuncDecl) Apply(args ...*Term) *Term {
	if len(args) != len(d.domain) {
		sortPanic("%s applied to %d arguments, want %d", d.name, len(args), len(d.domain))
	}
	for i, a := range args {
		if !a.sort.Equal(d.domain[i]) {
			sortPanic("%s: argument %d has sort %s, want %s", d.name, i, a.sort, d.domain[i])
		}
		if a.ctx != d.ctx {
			sortPanic("terms from different contexts combined")
		}
	}
	return &Term{ctx: d.ctx, op: OpApply, sort: d.rng, args: args, decl: d}
}
