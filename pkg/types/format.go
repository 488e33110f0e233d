package types

import (
	"fmt"
	"strings"
)

// Locale selects the surface names used when rendering a type. The structural
// shape (brackets, arrows, argument order) is locale-independent.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHI Locale = "hi"
)

var localeNames = map[Locale]map[string]string{
	LocaleEN: {},
	LocaleHI: {
		PrimitiveNumber:  "sankhya",
		PrimitiveText:    "shabd",
		PrimitiveBool:    "satya",
		PrimitiveNothing: "khali",
		"any":            "koi",
		GenericList:      "suchi",
		GenericMap:       "kosh",
		GenericChannel:   "nali",
		"result":         "parinam",
		"maybe":          "shayad",
	},
}

func localized(name string, locale Locale) string {
	if table, ok := localeNames[locale]; ok {
		if alias, ok := table[name]; ok {
			return alias
		}
	}
	return name
}

// Format renders a type descriptor back to source syntax.
func Format(t Type, locale Locale) string {
	switch v := t.(type) {
	case nil:
		return localized("nothing", locale)
	case AnyType:
		return localized("any", locale)
	case PrimitiveType:
		return localized(v.Name, locale)
	case GenericType:
		args := make([]string, len(v.Args))
		for i, arg := range v.Args {
			args[i] = Format(arg, locale)
		}
		return fmt.Sprintf("%s<%s>", localized(v.Name, locale), strings.Join(args, ", "))
	case ResultType:
		if v.Err != nil {
			return fmt.Sprintf("%s<%s, %s>", localized("result", locale), Format(v.Value, locale), Format(v.Err, locale))
		}
		return fmt.Sprintf("%s<%s>", localized("result", locale), Format(v.Value, locale))
	case MaybeType:
		return fmt.Sprintf("%s<%s>", localized("maybe", locale), Format(v.Inner, locale))
	case FunctionType:
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = fmt.Sprintf("%s: %s", p.Name, Format(p.Type, locale))
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), Format(v.Return, locale))
	case CustomType:
		return v.Name
	default:
		return localized("any", locale)
	}
}
