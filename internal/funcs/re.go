package funcs

import (
	"regexp"

	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/smt"
)

func init() {
	eval.RegisterFunc("re.compile", reCompile)
	eval.RegisterFunc("re.fullmatch", reMatcher(proxies.MatchFull))
	eval.RegisterFunc("re.match", reMatcher(proxies.MatchPrefix))
	eval.RegisterFunc("re.search", reMatcher(proxies.MatchSearch))
}

// patternSource extracts the literal pattern. Patterns built at run
// time have no known language to reason over, so only literals compile.
func patternSource(v proxies.Value) (string, error) {
	s, ok := v.(*proxies.StrVal)
	if !ok {
		return "", fault.Unsupported("compiling a pattern of type", v.Kind().String())
	}
	t, err := proxies.Unwrap(s)
	if err != nil {
		return "", err
	}
	src, ok := smt.Simplify(t).StrLit()
	if !ok {
		return "", fault.Unsupported("compiling a non-literal pattern", "")
	}
	if _, err := regexp.Compile(src); err != nil {
		return "", fault.Unsupported("compiling an invalid pattern", src)
	}
	return src, nil
}

func reCompile(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	if len(args) != 1 {
		return nil, fault.Unsupported("call with mismatched arity to", "re.compile")
	}
	src, err := patternSource(args[0])
	if err != nil {
		return nil, err
	}
	return proxies.NewPattern(ctx.SMT, src), nil
}

func reMatcher(mode proxies.MatchMode) eval.Handler {
	return func(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
		if len(args) != 2 {
			return nil, fault.Unsupported("call with mismatched arity to", "re match function")
		}
		src, err := patternSource(args[0])
		if err != nil {
			return nil, err
		}
		return proxies.NewPattern(ctx.SMT, src).PatternMatch(args[1], mode)
	}
}
