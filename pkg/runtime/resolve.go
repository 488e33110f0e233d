package runtime

import (
	"regexp"
	"strings"
)

var interpolationPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// resolveValue recursively substitutes variable references in a parameter
// value: a string of exactly "$name" is replaced by the variable's value
// (whatever its type), "${name}" occurrences inside strings interpolate the
// stringified value, and arrays/objects resolve element-wise.
func resolveValue(value any, env *Environment) any {
	switch v := value.(type) {
	case string:
		return resolveString(v, env)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = resolveValue(elem, env)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			out[key] = resolveValue(elem, env)
		}
		return out
	default:
		return value
	}
}

func resolveString(s string, env *Environment) any {
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		name := s[1:]
		if isIdentifier(name) {
			if val, err := env.Get(name); err == nil {
				return val
			}
		}
		return s
	}
	if !strings.Contains(s, "${") {
		return s
	}
	return interpolationPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, err := env.Get(name); err == nil {
			return Stringify(val)
		}
		return match
	})
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
