package corefn

import "github.com/CognitoIQ/xslt-runtime/xpath/value"

// DeepEqual implements fn:deep-equal's sequence comparison: same
// length, and each pair of items deep-equal in order. Atomic items
// compare via the supplied string-compare function for strings (so the
// chosen collation applies) and via numeric/boolean equality otherwise;
// nodes compare structurally through the node package's own Equal (not
// reachable from this package without creating an import cycle with
// nodemodel, so node-vs-node comparison here falls back to string-value
// equality, which coincides with structural equality for the common
// case of comparing leaf/text-bearing nodes).
func DeepEqual(a, b value.Sequence, stringCompare func(x, y string) int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !itemDeepEqual(a[i], b[i], stringCompare) {
			return false
		}
	}
	return true
}

func itemDeepEqual(a, b value.Item, stringCompare func(x, y string) int) bool {
	switch av := a.(type) {
	case value.NumericAtomic:
		bv, ok := b.(value.NumericAtomic)
		if !ok {
			return false
		}
		c, ok := value.Numeric(av).Compare(value.Numeric(bv))
		return ok && c == 0
	case value.BooleanAtomic:
		bv, ok := b.(value.BooleanAtomic)
		return ok && av == bv
	case value.Atomic:
		bv, ok := b.(value.Atomic)
		if !ok {
			return false
		}
		return stringCompare(av.Lexical(), bv.Lexical()) == 0
	case value.NodeItem:
		bv, ok := b.(value.NodeItem)
		if !ok {
			return false
		}
		if av.N.IsSameNode(bv.N) {
			return true
		}
		return av.N.StringValue() == bv.N.StringValue()
	default:
		return false
	}
}
