package pyast

// builtinExcBases maps each builtin exception type to its direct base
// classes. It stands in for front-end inference of the builtin class
// hierarchy when a raise statement names an exception that has no
// in-source class definition.
var builtinExcBases = map[string][]string{
	"BaseException":       {},
	"Exception":           {"BaseException"},
	"ArithmeticError":     {"Exception"},
	"ZeroDivisionError":   {"ArithmeticError"},
	"OverflowError":       {"ArithmeticError"},
	"FloatingPointError":  {"ArithmeticError"},
	"AssertionError":      {"Exception"},
	"AttributeError":      {"Exception"},
	"LookupError":         {"Exception"},
	"IndexError":          {"LookupError"},
	"KeyError":            {"LookupError"},
	"NameError":           {"Exception"},
	"UnboundLocalError":   {"NameError"},
	"OSError":             {"Exception"},
	"FileNotFoundError":   {"OSError"},
	"PermissionError":     {"OSError"},
	"TimeoutError":        {"OSError"},
	"RuntimeError":        {"Exception"},
	"NotImplementedError": {"RuntimeError"},
	"RecursionError":      {"RuntimeError"},
	"StopIteration":       {"Exception"},
	"TypeError":           {"Exception"},
	"ValueError":          {"Exception"},
	"UnicodeError":        {"ValueError"},
	"KeyboardInterrupt":   {"BaseException"},
	"SystemExit":          {"BaseException"},
}

// IsBuiltinException reports whether name is a builtin exception type.
func IsBuiltinException(name string) bool {
	_, ok := builtinExcBases[name]
	return ok
}

// BuiltinExceptionBases returns name and every builtin base class above
// it, or nil when name is not a builtin exception.
func BuiltinExceptionBases(name string) []string {
	if !IsBuiltinException(name) {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	var walk func(string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, b := range builtinExcBases[n] {
			walk(b)
		}
	}
	walk(name)
	return out
}
