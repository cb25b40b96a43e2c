package corefn

import (
	"sort"

	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func asCallable(it value.Item, fname string) (value.Function, error) {
	f, ok := it.(value.Function)
	if !ok {
		return value.Function{}, xerr.TypeError(xerr.XPTY0004, "function(*)", it.TypeName(), "%s requires a function argument", fname)
	}
	return f, nil
}

func foldLeftFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	fnItem, ok := value.Singleton(args[2])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "fold-left requires a function argument")
	}
	f, err := asCallable(fnItem, "fold-left")
	if err != nil {
		return nil, err
	}
	acc := args[1]
	for _, it := range args[0] {
		acc, err = f.Call([]value.Sequence{acc, value.Single(it)})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func foldRightFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	fnItem, ok := value.Singleton(args[2])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "fold-right requires a function argument")
	}
	f, err := asCallable(fnItem, "fold-right")
	if err != nil {
		return nil, err
	}
	acc := args[1]
	seq := args[0]
	for i := len(seq) - 1; i >= 0; i-- {
		acc, err = f.Call([]value.Sequence{value.Single(seq[i]), acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func forEachFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	fnItem, ok := value.Singleton(args[1])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "for-each requires a function argument")
	}
	f, err := asCallable(fnItem, "for-each")
	if err != nil {
		return nil, err
	}
	var out value.Sequence
	for _, it := range args[0] {
		r, err := f.Call([]value.Sequence{value.Single(it)})
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

func filterFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	fnItem, ok := value.Singleton(args[1])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "filter requires a function argument")
	}
	f, err := asCallable(fnItem, "filter")
	if err != nil {
		return nil, err
	}
	var out value.Sequence
	for _, it := range args[0] {
		r, err := f.Call([]value.Sequence{value.Single(it)})
		if err != nil {
			return nil, err
		}
		keep, err := value.EffectiveBooleanValue(r)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, it)
		}
	}
	return out, nil
}

func forEachPairFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	fnItem, ok := value.Singleton(args[2])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "for-each-pair requires a function argument")
	}
	f, err := asCallable(fnItem, "for-each-pair")
	if err != nil {
		return nil, err
	}
	a, b := args[0], args[1]
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var out value.Sequence
	for i := 0; i < n; i++ {
		r, err := f.Call([]value.Sequence{value.Single(a[i]), value.Single(b[i])})
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

// sortFn implements fn:sort(sequence[, collation[, key]]): a stable sort
// by string-value (using the collation) when no key function is given,
// or by the key function's result otherwise.
func sortFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	col, err := collationArg(ctx, args, 1)
	if err != nil {
		return nil, err
	}
	var keyFn *value.Function
	if len(args) > 2 {
		if item, ok := value.Singleton(args[2]); ok {
			f, err := asCallable(item, "sort")
			if err != nil {
				return nil, err
			}
			keyFn = &f
		}
	}

	keys := make([]string, len(args[0]))
	for i, it := range args[0] {
		if keyFn != nil {
			r, err := keyFn.Call([]value.Sequence{value.Single(it)})
			if err != nil {
				return nil, err
			}
			if s, ok := value.Singleton(r); ok {
				keys[i] = value.StringValueOf(s)
			}
		} else {
			keys[i] = value.StringValueOf(it)
		}
	}

	idx := make([]int, len(args[0]))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return col.Compare(keys[idx[i]], keys[idx[j]]) < 0
	})
	out := make(value.Sequence, len(args[0]))
	for i, j := range idx {
		out[i] = args[0][j]
	}
	return out, nil
}

var SequenceTable = registry.NewTable(
	fn("fold-left", 3, 3, nil, foldLeftFn),
	fn("fold-right", 3, 3, nil, foldRightFn),
	fn("for-each", 2, 2, nil, forEachFn),
	fn("filter", 2, 2, nil, filterFn),
	fn("for-each-pair", 3, 3, nil, forEachPairFn),
	fn("sort", 1, 3, nil, sortFn),
)
