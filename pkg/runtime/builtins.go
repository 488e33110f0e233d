package runtime

import (
	"fmt"
	"math"
	"strings"
)

// builtinFunctions pre-seeds the function table. Bodies are empty; behavior
// is hard-coded in callBuiltin.
func builtinFunctions() map[string]*Function {
	specs := []struct {
		name   string
		params []Param
	}{
		{"length", []Param{{Name: "value"}}},
		{"upper", []Param{{Name: "text", Type: "text"}}},
		{"lower", []Param{{Name: "text", Type: "text"}}},
		{"trim", []Param{{Name: "text", Type: "text"}}},
		{"abs", []Param{{Name: "value", Type: "number"}}},
		{"round", []Param{{Name: "value", Type: "number"}}},
		{"range", []Param{{Name: "from", Type: "number"}, {Name: "to", Type: "number"}}},
		{"sum", []Param{{Name: "values", Type: "list<number>"}}},
		{"join", []Param{{Name: "values", Type: "list<any>"}, {Name: "separator", Type: "text"}}},
	}
	table := make(map[string]*Function, len(specs))
	for _, spec := range specs {
		table[spec.name] = &Function{Name: spec.name, Params: spec.params}
	}
	return table
}

func callBuiltin(name string, args []any) (any, error) {
	arg := func(i int) any {
		if i < len(args) {
			return args[i]
		}
		return nil
	}
	switch name {
	case "length":
		switch v := arg(0).(type) {
		case string:
			return float64(len(v)), nil
		case []any:
			return float64(len(v)), nil
		case map[string]any:
			return float64(len(v)), nil
		default:
			return nil, fmt.Errorf("runtime: length expects text, list or map")
		}
	case "upper":
		s, ok := arg(0).(string)
		if !ok {
			return nil, fmt.Errorf("runtime: upper expects text")
		}
		return strings.ToUpper(s), nil
	case "lower":
		s, ok := arg(0).(string)
		if !ok {
			return nil, fmt.Errorf("runtime: lower expects text")
		}
		return strings.ToLower(s), nil
	case "trim":
		s, ok := arg(0).(string)
		if !ok {
			return nil, fmt.Errorf("runtime: trim expects text")
		}
		return strings.TrimSpace(s), nil
	case "abs":
		n, ok := AsNumber(arg(0))
		if !ok {
			return nil, fmt.Errorf("runtime: abs expects a number")
		}
		return math.Abs(n), nil
	case "round":
		n, ok := AsNumber(arg(0))
		if !ok {
			return nil, fmt.Errorf("runtime: round expects a number")
		}
		return math.Round(n), nil
	case "range":
		from, okFrom := AsNumber(arg(0))
		to, okTo := AsNumber(arg(1))
		if !okFrom || !okTo {
			return nil, fmt.Errorf("runtime: range expects numeric bounds")
		}
		var out []any
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
		return out, nil
	case "sum":
		list, ok := arg(0).([]any)
		if !ok {
			return nil, fmt.Errorf("runtime: sum expects a list")
		}
		total := 0.0
		for _, item := range list {
			n, ok := AsNumber(item)
			if !ok {
				return nil, fmt.Errorf("runtime: sum expects numeric elements")
			}
			total += n
		}
		return total, nil
	case "join":
		list, ok := arg(0).([]any)
		if !ok {
			return nil, fmt.Errorf("runtime: join expects a list")
		}
		sep, _ := arg(1).(string)
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, sep), nil
	default:
		return nil, fmt.Errorf("runtime: built-in '%s' has no behavior", name)
	}
}
