package types

// Typed lets runtime values report their own type; Infer consults it before
// falling back to the structural rules below.
type Typed interface {
	RocketType() Type
}

// Infer maps a host value to its RocketLang type. Lists are inferred from
// their first element only: [1, "x"] comes back as list<number>, which is
// wrong for the second element. There is no union type in the model to
// widen to, so the first element wins.
func Infer(value any) Type {
	switch v := value.(type) {
	case nil:
		return Nothing()
	case Typed:
		return v.RocketType()
	case bool:
		return Bool()
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return Number()
	case string:
		return Text()
	case []any:
		if len(v) == 0 {
			return List(Any())
		}
		return List(Infer(v[0]))
	case map[string]any:
		return Map(Text(), Any())
	default:
		return Any()
	}
}
