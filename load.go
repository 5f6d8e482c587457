package covenant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/covenant-dev/covenant/internal/pyast"
)

// File is one loaded contract file: the functions to check, the
// exception classes they may reference, and the contract attached to
// each function by name.
type File struct {
	Funcs     []*pyast.FuncDef
	Classes   []*pyast.ClassDef
	Contracts map[string]*Contract
}

// Contract returns the contract for a function, or nil when the file
// declares none.
func (f *File) Contract(name string) *Contract { return f.Contracts[name] }

// Load decodes a contract file from its YAML encoding. Functions and
// classes arrive as portable syntax trees; front ends for the subject
// language emit this format so the prover never parses source text
// itself.
func Load(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding contract file: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decoding contract file: document is not a mapping")
	}

	var raw struct {
		Functions []any `yaml:"functions"`
		Classes   []any `yaml:"classes"`
		Contracts map[string]struct {
			Pre    []any    `yaml:"pre"`
			Post   []any    `yaml:"post"`
			Raises []string `yaml:"raises"`
		} `yaml:"contracts"`
	}
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding contract file: %w", err)
	}

	file := &File{Contracts: map[string]*Contract{}}
	var decls []pyast.Decl
	for _, fr := range raw.Functions {
		s, err := pyast.DecodeStmt(fr)
		if err != nil {
			return nil, err
		}
		fn, ok := s.(*pyast.FuncDef)
		if !ok {
			return nil, fmt.Errorf("functions entry is a %T, want a funcdef", s)
		}
		file.Funcs = append(file.Funcs, fn)
		decls = append(decls, fn)
	}
	for _, cr := range raw.Classes {
		s, err := pyast.DecodeStmt(cr)
		if err != nil {
			return nil, err
		}
		cls, ok := s.(*pyast.ClassDef)
		if !ok {
			return nil, fmt.Errorf("classes entry is a %T, want a classdef", s)
		}
		file.Classes = append(file.Classes, cls)
		decls = append(decls, cls)
	}

	var contractExprs []pyast.Expr
	for name, rc := range raw.Contracts {
		c := &Contract{Raises: rc.Raises}
		for _, pr := range rc.Pre {
			e, err := pyast.DecodeExpr(pr)
			if err != nil {
				return nil, fmt.Errorf("contract for %s: %w", name, err)
			}
			c.Pre = append(c.Pre, e)
			contractExprs = append(contractExprs, e)
		}
		for _, po := range rc.Post {
			e, err := pyast.DecodeExpr(po)
			if err != nil {
				return nil, fmt.Errorf("contract for %s: %w", name, err)
			}
			c.Post = append(c.Post, e)
			contractExprs = append(contractExprs, e)
		}
		file.Contracts[name] = c
	}

	pyast.LinkNames(decls)
	pyast.LinkExprs(decls, contractExprs...)
	return file, nil
}

// LoadFile reads and decodes a contract file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contract file: %w", err)
	}
	f, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ProveFile checks every function in a file against its contract.
func (p *Prover) ProveFile(f *File) []*Conclusion {
	out := make([]*Conclusion, 0, len(f.Funcs))
	for _, fn := range f.Funcs {
		out = append(out, p.ProveFunc(fn, f.Contract(fn.Name)))
	}
	return out
}
