package eval

import "github.com/covenant-dev/covenant/internal/proxies"

// Handler models one library function: it receives evaluated arguments
// and builds the symbolic result, adding assumptions or exceptions to
// the context as the modeled function warrants.
type Handler func(ctx *Context, args []proxies.Value, kwargs map[string]proxies.Value) (proxies.Value, error)

var registry = map[string]Handler{}

// RegisterFunc binds a handler to a qualified function name, e.g.
// "builtins.len" or "random.randint". Handler packages call this from
// init; a duplicate name is a wiring bug and panics.
func RegisterFunc(name string, h Handler) {
	if _, dup := registry[name]; dup {
		panic("eval: duplicate handler for " + name)
	}
	registry[name] = h
}

// lookupFunc finds the handler for a qualified name, trying the bare
// name under "builtins." as the subject language does.
func lookupFunc(name string) (Handler, bool) {
	if h, ok := registry[name]; ok {
		return h, true
	}
	h, ok := registry["builtins."+name]
	return h, ok
}
