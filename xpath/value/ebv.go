package value

import "github.com/CognitoIQ/xslt-runtime/xpath/xerr"

// EffectiveBooleanValue implements the EBV rules: empty sequence
// is false; a single boolean is itself; a single number is false iff
// zero or NaN; a single string is false iff empty; a node-set is false
// iff empty; anything else (maps, arrays, functions, or a sequence whose
// first item is not a node) is a type error.
func EffectiveBooleanValue(seq Sequence) (bool, error) {
	if len(seq) == 0 {
		return false, nil
	}
	if first, ok := seq[0].(NodeItem); ok {
		_ = first
		return true, nil // a non-empty node-set is true regardless of length
	}
	if len(seq) > 1 {
		return false, xerr.TypeError(xerr.XPTY0004, "boolean, number, string, or node-set", "sequence",
			"effective boolean value is undefined for a sequence of %d items whose first item is not a node", len(seq))
	}
	switch v := seq[0].(type) {
	case BooleanAtomic:
		return bool(v), nil
	case NumericAtomic:
		n := Numeric(v)
		return !(n.F == 0 || n.IsNaN()), nil
	case StringAtomic:
		return len(v) != 0, nil
	case AnyURIAtomic:
		return len(v) != 0, nil
	default:
		return false, xerr.TypeError(xerr.XPTY0004, "boolean, number, string, or node-set", v.TypeName(),
			"effective boolean value is undefined for a %s", v.TypeName())
	}
}
