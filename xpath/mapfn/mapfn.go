// Package mapfn implements the map: function library (XPath and
// XQuery Functions and Operators 3.1 §17): construction, lookup, and
// higher-order traversal over value.MapValue, registered under its own
// fixed namespace in the resolution-precedence chain.
package mapfn

import (
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func fn(local string, min, max int, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.MapURI, Local: local},
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

func mapArg(args []value.Sequence, i int, fname string) (*value.MapValue, error) {
	it, ok := value.Singleton(args[i])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "%s requires a map argument", fname)
	}
	m, ok := it.(*value.MapValue)
	if !ok {
		return nil, xerr.TypeError(xerr.XPTY0004, "map(*)", it.TypeName(), "%s requires a map argument", fname)
	}
	return m, nil
}

func keyArg(args []value.Sequence, i int, fname string) (value.Atomic, error) {
	it, ok := value.Singleton(args[i])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "%s requires a singleton key", fname)
	}
	k, ok := it.(value.Atomic)
	if !ok {
		return nil, xerr.TypeError(xerr.XPTY0004, "xs:anyAtomicType", it.TypeName(), "%s key must be atomic", fname)
	}
	return k, nil
}

func mergeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var maps []*value.MapValue
	for _, it := range args[0] {
		m, ok := it.(*value.MapValue)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "map(*)", it.TypeName(), "map:merge argument must be a sequence of maps")
		}
		maps = append(maps, m)
	}
	return value.Single(value.Merge(maps)), nil
}

func sizeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:size")
	if err != nil {
		return nil, err
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(m.Size())))), nil
}

func keysFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:keys")
	if err != nil {
		return nil, err
	}
	out := make(value.Sequence, len(m.Keys()))
	for i, k := range m.Keys() {
		out[i] = k
	}
	return out, nil
}

func containsFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:contains")
	if err != nil {
		return nil, err
	}
	k, err := keyArg(args, 1, "map:contains")
	if err != nil {
		return nil, err
	}
	_, ok := m.Get(k)
	return value.Single(value.BooleanAtomic(ok)), nil
}

func getFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:get")
	if err != nil {
		return nil, err
	}
	k, err := keyArg(args, 1, "map:get")
	if err != nil {
		return nil, err
	}
	v, ok := m.Get(k)
	if !ok {
		return value.Empty(), nil
	}
	return v, nil
}

func putFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:put")
	if err != nil {
		return nil, err
	}
	k, err := keyArg(args, 1, "map:put")
	if err != nil {
		return nil, err
	}
	return value.Single(m.Put(k, args[2])), nil
}

func removeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:remove")
	if err != nil {
		return nil, err
	}
	for _, it := range args[1] {
		k, ok := it.(value.Atomic)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "xs:anyAtomicType", it.TypeName(), "map:remove key must be atomic")
		}
		m = m.Remove(k)
	}
	return value.Single(m), nil
}

func entryFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	k, err := keyArg(args, 0, "map:entry")
	if err != nil {
		return nil, err
	}
	return value.Single(value.NewMap().Put(k, args[1])), nil
}

func forEachFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	m, err := mapArg(args, 0, "map:for-each")
	if err != nil {
		return nil, err
	}
	fnItem, ok := value.Singleton(args[1])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "map:for-each requires a function argument")
	}
	f, err := asCallable(fnItem, "map:for-each")
	if err != nil {
		return nil, err
	}
	var out value.Sequence
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		r, err := f.Call([]value.Sequence{value.Single(k), v})
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

// Table is the fixed map: function table, step 3 of the resolution
// chain.
var Table = registry.NewTable(
	fn("merge", 1, 2, mergeFn),
	fn("size", 1, 1, sizeFn),
	fn("keys", 1, 1, keysFn),
	fn("contains", 2, 2, containsFn),
	fn("get", 2, 2, getFn),
	fn("put", 3, 3, putFn),
	fn("remove", 2, 2, removeFn),
	fn("entry", 2, 2, entryFn),
	fn("for-each", 2, 2, forEachFn),
)
