package pyast

import "strconv"

// Shorthand constructors for the literal-heavy nodes; front ends and
// tests build the rest with composite literals.

// Int creates an integer constant node.
func Int(v int64) *Const { return &Const{Kind: ConstInt, Int: v} }

// Float creates a float constant node.
func Float(v float64) *Const { return &Const{Kind: ConstFloat, Float: v} }

// Str creates a string constant node.
func Str(v string) *Const { return &Const{Kind: ConstStr, Str: v} }

// Bool creates a boolean constant node.
func Bool(v bool) *Const { return &Const{Kind: ConstBool, Bool: v} }

// None creates the None constant node.
func None() *Const { return &Const{Kind: ConstNone} }

// Var creates a plain name reference.
func Var(id string) *Name { return &Name{ID: id} }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
