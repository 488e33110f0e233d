package types

import (
	"fmt"
	"strings"
)

// synonyms normalizes multilingual type names to their canonical form. The
// Hindi entries are romanized the way the command grammar writes them.
var synonyms = map[string]string{
	"number":  PrimitiveNumber,
	"num":     PrimitiveNumber,
	"int":     PrimitiveNumber,
	"float":   PrimitiveNumber,
	"sankhya": PrimitiveNumber,
	"ank":     PrimitiveNumber,

	"text":   PrimitiveText,
	"string": PrimitiveText,
	"str":    PrimitiveText,
	"shabd":  PrimitiveText,
	"vakya":  PrimitiveText,

	"bool":    PrimitiveBool,
	"boolean": PrimitiveBool,
	"haan":    PrimitiveBool,
	"satya":   PrimitiveBool,

	"nothing": PrimitiveNothing,
	"void":    PrimitiveNothing,
	"null":    PrimitiveNothing,
	"kuch":    PrimitiveNothing,
	"khali":   PrimitiveNothing,

	"any": "any",
	"koi": "any",
	"sab": "any",

	"list":    GenericList,
	"array":   GenericList,
	"suchi":   GenericList,
	"map":     GenericMap,
	"dict":    GenericMap,
	"kosh":    GenericMap,
	"channel": GenericChannel,
	"chan":    GenericChannel,
	"nali":    GenericChannel,

	"result":  "result",
	"parinam": "result",
	"maybe":   "maybe",
	"shayad":  "maybe",
}

// Canonical resolves a bare type name through the synonym table. Unrecognized
// names come back unchanged so callers can treat them as custom types.
func Canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := synonyms[key]; ok {
		return canonical
	}
	return strings.TrimSpace(name)
}

// Parse reads a type expression: bare names (through the synonym table),
// `Name<Arg, Arg>` generics, and `(name: T, ...) -> R` function types.
func Parse(text string) (Type, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return nil, fmt.Errorf("types: empty type expression")
	}
	if strings.HasPrefix(src, "(") {
		return parseFunction(src)
	}
	if open := strings.Index(src, "<"); open > 0 {
		return parseGeneric(src, open)
	}
	return parseBare(src)
}

func parseBare(name string) (Type, error) {
	switch canonical := Canonical(name); canonical {
	case PrimitiveNumber, PrimitiveText, PrimitiveBool, PrimitiveNothing:
		return PrimitiveType{Name: canonical}, nil
	case "any":
		return AnyType{}, nil
	case GenericList:
		return List(Any()), nil
	case GenericMap:
		return Map(Text(), Any()), nil
	case GenericChannel:
		return Channel(Any()), nil
	case "result":
		return Result(Any(), nil), nil
	case "maybe":
		return Maybe(Any()), nil
	default:
		return Custom(canonical), nil
	}
}

func parseGeneric(src string, open int) (Type, error) {
	if !strings.HasSuffix(src, ">") {
		return nil, fmt.Errorf("types: unterminated generic in %q", src)
	}
	head := Canonical(src[:open])
	inner := src[open+1 : len(src)-1]
	parts, err := splitTopLevel(inner)
	if err != nil {
		return nil, fmt.Errorf("types: %q: %w", src, err)
	}
	args := make([]Type, 0, len(parts))
	for _, part := range parts {
		arg, err := Parse(part)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	switch head {
	case GenericList, GenericChannel, "maybe":
		if len(args) != 1 {
			return nil, fmt.Errorf("types: %s takes one type argument, got %d", head, len(args))
		}
		if head == "maybe" {
			return Maybe(args[0]), nil
		}
		return GenericType{Name: head, Args: args}, nil
	case GenericMap:
		if len(args) != 2 {
			return nil, fmt.Errorf("types: map takes two type arguments, got %d", len(args))
		}
		return GenericType{Name: GenericMap, Args: args}, nil
	case "result":
		switch len(args) {
		case 1:
			return Result(args[0], nil), nil
		case 2:
			return Result(args[0], args[1]), nil
		default:
			return nil, fmt.Errorf("types: result takes one or two type arguments, got %d", len(args))
		}
	default:
		// Unknown head with arguments: keep the name, model args as a generic.
		return GenericType{Name: head, Args: args}, nil
	}
}

func parseFunction(src string) (Type, error) {
	depth := 0
	arrow := -1
	for i := 0; i < len(src)-1; i++ {
		switch src[i] {
		case '(', '<':
			depth++
		case ')', '>':
			if src[i] == '>' && i > 0 && src[i-1] == '-' {
				continue
			}
			depth--
		case '-':
			if depth == 0 && src[i+1] == '>' {
				arrow = i
			}
		}
		if arrow >= 0 {
			break
		}
	}
	if arrow < 0 {
		return nil, fmt.Errorf("types: function type %q missing '->'", src)
	}
	paramsSrc := strings.TrimSpace(src[:arrow])
	returnSrc := strings.TrimSpace(src[arrow+2:])
	if !strings.HasPrefix(paramsSrc, "(") || !strings.HasSuffix(paramsSrc, ")") {
		return nil, fmt.Errorf("types: function parameters in %q must be parenthesized", src)
	}
	inner := strings.TrimSpace(paramsSrc[1 : len(paramsSrc)-1])
	var params []Param
	if inner != "" {
		parts, err := splitTopLevel(inner)
		if err != nil {
			return nil, fmt.Errorf("types: %q: %w", src, err)
		}
		for _, part := range parts {
			name, typeSrc, found := strings.Cut(part, ":")
			if !found {
				return nil, fmt.Errorf("types: parameter %q needs a 'name: type' form", part)
			}
			paramType, err := Parse(typeSrc)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: strings.TrimSpace(name), Type: paramType})
		}
	}
	returnType, err := Parse(returnSrc)
	if err != nil {
		return nil, err
	}
	return FunctionType{Params: params, Return: returnType}, nil
}

// splitTopLevel splits on commas that are not nested inside <...> or (...).
func splitTopLevel(src string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if src[i] == '>' && i > 0 && src[i-1] == '-' {
				continue
			}
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in %q", src)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(src[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", src)
	}
	last := strings.TrimSpace(src[start:])
	if last == "" {
		return nil, fmt.Errorf("trailing comma in %q", src)
	}
	parts = append(parts, last)
	return parts, nil
}
