// Package arrayfn implements the array: function library (XPath and
// XQuery Functions and Operators 3.1 §18): construction, positional
// access, and higher-order traversal over value.ArrayValue, registered
// under its own fixed namespace in the resolution-precedence chain.
package arrayfn

import (
	"sort"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func fn(local string, min, max int, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.ArrayURI, Local: local},
		MinArity: min, MaxArity: max, Call: call,
	}
}

func asCallable(it value.Item, fname string) (value.Function, error) {
	f, ok := it.(value.Function)
	if !ok {
		return value.Function{}, xerr.TypeError(xerr.XPTY0004, "function(*)", it.TypeName(), "%s requires a function argument", fname)
	}
	return f, nil
}

func arrayArg(args []value.Sequence, i int, fname string) (*value.ArrayValue, error) {
	it, ok := value.Singleton(args[i])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "%s requires an array argument", fname)
	}
	a, ok := it.(*value.ArrayValue)
	if !ok {
		return nil, xerr.TypeError(xerr.XPTY0004, "array(*)", it.TypeName(), "%s requires an array argument", fname)
	}
	return a, nil
}

func intArg(args []value.Sequence, i int, fname string) (int, error) {
	it, ok := value.Singleton(args[i])
	if !ok {
		return 0, xerr.New(xerr.XPTY0004, "%s requires an integer argument", fname)
	}
	return int(value.NumberValueOf(it).F), nil
}

func sizeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:size")
	if err != nil {
		return nil, err
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(a.Size())))), nil
}

func getFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:get")
	if err != nil {
		return nil, err
	}
	i, err := intArg(args, 1, "array:get")
	if err != nil {
		return nil, err
	}
	v, ok := a.Get(i)
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:get: position %d is out of bounds (size %d)", i, a.Size())
	}
	return v, nil
}

func putFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:put")
	if err != nil {
		return nil, err
	}
	i, err := intArg(args, 1, "array:put")
	if err != nil {
		return nil, err
	}
	out, ok := a.Put(i, args[2])
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:put: position %d is out of bounds (size %d)", i, a.Size())
	}
	return value.Single(out), nil
}

func appendFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:append")
	if err != nil {
		return nil, err
	}
	return value.Single(a.Append(args[1])), nil
}

func insertBeforeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:insert-before")
	if err != nil {
		return nil, err
	}
	i, err := intArg(args, 1, "array:insert-before")
	if err != nil {
		return nil, err
	}
	out, ok := a.InsertBefore(i, args[2])
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:insert-before: position %d is out of bounds (size %d)", i, a.Size())
	}
	return value.Single(out), nil
}

func removeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:remove")
	if err != nil {
		return nil, err
	}
	for _, it := range args[1] {
		i := int(value.NumberValueOf(it).F)
		var ok bool
		a, ok = a.Remove(i)
		if !ok {
			return nil, xerr.New(xerr.FOAY0001, "array:remove: position %d is out of bounds", i)
		}
	}
	return value.Single(a), nil
}

func subarrayFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:subarray")
	if err != nil {
		return nil, err
	}
	start, err := intArg(args, 1, "array:subarray")
	if err != nil {
		return nil, err
	}
	length := a.Size() - start + 1
	if len(args) > 2 {
		length, err = intArg(args, 2, "array:subarray")
		if err != nil {
			return nil, err
		}
	}
	if length < 0 {
		return nil, xerr.New(xerr.FOAY0002, "array:subarray: length %d must not be negative", length)
	}
	out, ok := a.Subarray(start, length)
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:subarray: range [%d, %d) is out of bounds (size %d)", start, start+length, a.Size())
	}
	return value.Single(out), nil
}

func reverseFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:reverse")
	if err != nil {
		return nil, err
	}
	return value.Single(a.Reverse()), nil
}

func headFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:head")
	if err != nil {
		return nil, err
	}
	v, ok := a.Head()
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:head: array is empty")
	}
	return v, nil
}

func tailFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:tail")
	if err != nil {
		return nil, err
	}
	out, ok := a.Tail()
	if !ok {
		return nil, xerr.New(xerr.FOAY0001, "array:tail: array is empty")
	}
	return value.Single(out), nil
}

func joinFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var arrays []*value.ArrayValue
	for _, it := range args[0] {
		a, ok := it.(*value.ArrayValue)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "array(*)", it.TypeName(), "array:join argument must be a sequence of arrays")
		}
		arrays = append(arrays, a)
	}
	return value.Single(value.JoinArrays(arrays)), nil
}

func flattenFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:flatten")
	if err != nil {
		return nil, err
	}
	return a.Flatten(), nil
}

func forEachFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:for-each")
	if err != nil {
		return nil, err
	}
	fnItem, ok := value.Singleton(args[1])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "array:for-each requires a function argument")
	}
	f, err := asCallable(fnItem, "array:for-each")
	if err != nil {
		return nil, err
	}
	var out []value.Sequence
	for _, m := range a.Members() {
		r, err := f.Call([]value.Sequence{m})
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return value.Single(value.NewArray(out)), nil
}

func filterFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:filter")
	if err != nil {
		return nil, err
	}
	fnItem, ok := value.Singleton(args[1])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "array:filter requires a function argument")
	}
	f, err := asCallable(fnItem, "array:filter")
	if err != nil {
		return nil, err
	}
	var out []value.Sequence
	for _, m := range a.Members() {
		r, err := f.Call([]value.Sequence{m})
		if err != nil {
			return nil, err
		}
		keep, err := value.EffectiveBooleanValue(r)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, m)
		}
	}
	return value.Single(value.NewArray(out)), nil
}

func foldLeftFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:fold-left")
	if err != nil {
		return nil, err
	}
	fnItem, ok := value.Singleton(args[2])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "array:fold-left requires a function argument")
	}
	f, err := asCallable(fnItem, "array:fold-left")
	if err != nil {
		return nil, err
	}
	acc := args[1]
	for _, m := range a.Members() {
		acc, err = f.Call([]value.Sequence{acc, m})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func foldRightFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:fold-right")
	if err != nil {
		return nil, err
	}
	fnItem, ok := value.Singleton(args[2])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "array:fold-right requires a function argument")
	}
	f, err := asCallable(fnItem, "array:fold-right")
	if err != nil {
		return nil, err
	}
	members := a.Members()
	acc := args[1]
	for i := len(members) - 1; i >= 0; i-- {
		acc, err = f.Call([]value.Sequence{members[i], acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func sortFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a, err := arrayArg(args, 0, "array:sort")
	if err != nil {
		return nil, err
	}
	var keyFn *value.Function
	if len(args) > 2 {
		if item, ok := value.Singleton(args[2]); ok {
			f, err := asCallable(item, "array:sort")
			if err != nil {
				return nil, err
			}
			keyFn = &f
		}
	}
	members := append([]value.Sequence(nil), a.Members()...)
	keys := make([]string, len(members))
	for i, m := range members {
		src := m
		if keyFn != nil {
			r, err := keyFn.Call([]value.Sequence{m})
			if err != nil {
				return nil, err
			}
			src = r
		}
		if s, ok := value.Singleton(src); ok {
			keys[i] = value.StringValueOf(s)
		}
	}
	idx := make([]int, len(members))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	out := make([]value.Sequence, len(members))
	for i, j := range idx {
		out[i] = members[j]
	}
	return value.Single(value.NewArray(out)), nil
}

// Table is the fixed array: function table, step 3 of the resolution
// chain.
var Table = registry.NewTable(
	fn("size", 1, 1, sizeFn),
	fn("get", 2, 2, getFn),
	fn("put", 3, 3, putFn),
	fn("append", 2, 2, appendFn),
	fn("insert-before", 3, 3, insertBeforeFn),
	fn("remove", 2, 2, removeFn),
	fn("subarray", 2, 3, subarrayFn),
	fn("reverse", 1, 1, reverseFn),
	fn("head", 1, 1, headFn),
	fn("tail", 1, 1, tailFn),
	fn("join", 1, 1, joinFn),
	fn("flatten", 1, 1, flattenFn),
	fn("for-each", 2, 2, forEachFn),
	fn("filter", 2, 2, filterFn),
	fn("fold-left", 3, 3, foldLeftFn),
	fn("fold-right", 3, 3, foldRightFn),
	fn("sort", 1, 3, sortFn),
)
