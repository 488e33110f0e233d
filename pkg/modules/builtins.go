package modules

import (
	"fmt"
	"sort"

	"rocketlang/core-go/pkg/runtime"
)

// BuiltinFunc is the shape of every builtin module export. The body is a
// signature stub; behavior lives behind the host tool executor.
type BuiltinFunc func(args ...any) (any, error)

// builtinExports lists the export names of the fixed builtin modules.
var builtinExports = map[string][]string{
	"collections": {"map", "filter", "reduce", "sort", "reverse", "contains", "first", "last"},
	"strings":     {"split", "join", "replace", "upper", "lower", "trim", "starts_with", "ends_with"},
	"math":        {"abs", "round", "floor", "ceil", "sqrt", "pow", "min", "max", "random"},
	"datetime":    {"now", "today", "format", "parse", "add_days", "diff"},
	"fs":          {"read_file", "write_file", "exists", "list_dir", "remove"},
	"console":     {"log", "error", "prompt"},
	"net":         {"get", "post", "download"},
	"json":        {"parse", "stringify"},
	"crypto":      {"hash", "hmac", "uuid"},
	"testing":     {"assert_equal", "assert_true", "assert_fails"},
	"async":       {"sleep", "timeout", "race"},
	"system":      {"env", "args", "exit", "platform"},
}

// builtinSynonyms maps accepted builtin specifier spellings, including the
// Hindi romanizations, to canonical module names.
var builtinSynonyms = map[string]string{
	"collections": "collections",
	"suchiyan":    "collections",
	"strings":     "strings",
	"shabdkosh":   "strings",
	"math":        "math",
	"ganit":       "math",
	"datetime":    "datetime",
	"samay":       "datetime",
	"fs":          "fs",
	"files":       "fs",
	"console":     "console",
	"net":         "net",
	"jaal":        "net",
	"json":        "json",
	"crypto":      "crypto",
	"testing":     "testing",
	"pariksha":    "testing",
	"async":       "async",
	"system":      "system",
	"pranali":     "system",
}

// BuiltinNames returns the canonical builtin module names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinExports))
	for name := range builtinExports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinModule assembles the export table for one builtin. Every export
// delegates to the tool executor under the "<module>.<export>" tool name.
func builtinModule(name string, executor runtime.ToolExecutor) *Module {
	exports := make(map[string]any, len(builtinExports[name]))
	for _, export := range builtinExports[name] {
		tool := name + "." + export
		exports[export] = BuiltinFunc(func(args ...any) (any, error) {
			if executor == nil {
				return nil, fmt.Errorf("modules: builtin %s requires a tool executor", tool)
			}
			return executor(tool, map[string]any{"args": args})
		})
	}
	return &Module{
		Path:      "builtin:" + name,
		Exports:   exports,
		IsBuiltin: true,
	}
}
