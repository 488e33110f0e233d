package types

// Compatible reports whether a value of type actual can be used where
// expected is required. Any unifies in both directions; every other pairing
// needs the same kind and recursively compatible structural children.
func Compatible(expected, actual Type) bool {
	if expected == nil || actual == nil {
		return true
	}
	if expected.TypeKind() == KindAny || actual.TypeKind() == KindAny {
		return true
	}
	if expected.TypeKind() != actual.TypeKind() {
		return false
	}
	switch exp := expected.(type) {
	case PrimitiveType:
		return exp.Name == actual.(PrimitiveType).Name
	case GenericType:
		act := actual.(GenericType)
		if exp.Name != act.Name || len(exp.Args) != len(act.Args) {
			return false
		}
		for i := range exp.Args {
			if !Compatible(exp.Args[i], act.Args[i]) {
				return false
			}
		}
		return true
	case FunctionType:
		act := actual.(FunctionType)
		if len(exp.Params) != len(act.Params) {
			return false
		}
		for i := range exp.Params {
			if !Compatible(exp.Params[i].Type, act.Params[i].Type) {
				return false
			}
		}
		return Compatible(exp.Return, act.Return)
	case ResultType:
		act := actual.(ResultType)
		if !Compatible(exp.Value, act.Value) {
			return false
		}
		if exp.Err == nil || act.Err == nil {
			return true
		}
		return Compatible(exp.Err, act.Err)
	case MaybeType:
		return Compatible(exp.Inner, actual.(MaybeType).Inner)
	case CustomType:
		return exp.Name == actual.(CustomType).Name
	default:
		return false
	}
}
