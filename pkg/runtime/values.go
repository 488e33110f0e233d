package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rocketlang/core-go/pkg/types"
)

// Values are plain Go data (float64, string, bool, []any, map[string]any)
// plus the wrapper types below. Commands arrive as JSON-ish structures, so a
// closed value interface would only add conversion layers.

// Result is the tagged success/failure wrapper used for fallible operations.
type Result struct {
	Success bool   `json:"success"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok wraps a value in a success Result.
func Ok(value any) *Result {
	return &Result{Success: true, Value: value}
}

// Fail wraps an error message in a failure Result.
func Fail(message string) *Result {
	return &Result{Success: false, Error: message}
}

// RocketType implements types.Typed.
func (r *Result) RocketType() types.Type {
	if r == nil {
		return types.Result(types.Any(), nil)
	}
	return types.Result(types.Infer(r.Value), nil)
}

// Maybe is the tagged optional wrapper, distinct from nil/nothing.
type Maybe struct {
	Present bool `json:"present"`
	Value   any  `json:"value,omitempty"`
}

// Some wraps a present value.
func Some(value any) *Maybe {
	return &Maybe{Present: true, Value: value}
}

// None is the absent Maybe.
func None() *Maybe {
	return &Maybe{}
}

// RocketType implements types.Typed.
func (m *Maybe) RocketType() types.Type {
	if m == nil || !m.Present {
		return types.Maybe(types.Any())
	}
	return types.Maybe(types.Infer(m.Value))
}

// Param is one declared function parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Function is a user-defined (or pre-seeded built-in) function. Built-ins
// have an empty body; their behavior is hard-coded in the runtime.
type Function struct {
	Name       string     `json:"name"`
	Params     []Param    `json:"params,omitempty"`
	ReturnType string     `json:"returnType,omitempty"`
	Body       []*Command `json:"body,omitempty"`
}

// IsBuiltin reports whether the function has no body to interpret.
func (f *Function) IsBuiltin() bool {
	return f != nil && len(f.Body) == 0
}

// Stringify renders a runtime value for printing.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "nothing"
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case *Result:
		if v.Success {
			return fmt.Sprintf("success(%s)", Stringify(v.Value))
		}
		return fmt.Sprintf("failure(%s)", v.Error)
	case *Maybe:
		if v.Present {
			return fmt.Sprintf("some(%s)", Stringify(v.Value))
		}
		return "none"
	case *Channel:
		return fmt.Sprintf("channel(%s)", v.Name)
	case *Task:
		return fmt.Sprintf("task(%s)", v.Name)
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = Stringify(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, Stringify(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Truthy converts a value to its boolean interpretation.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case *Result:
		return v.Success
	case *Maybe:
		return v.Present
	default:
		return true
	}
}

// AsNumber coerces numeric values to float64.
func AsNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
