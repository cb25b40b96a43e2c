package corefn

import (
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func booleanFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	b, err := value.EffectiveBooleanValue(args[0])
	if err != nil {
		return nil, err
	}
	return value.Single(value.BooleanAtomic(b)), nil
}

func notFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	b, err := value.EffectiveBooleanValue(args[0])
	if err != nil {
		return nil, err
	}
	return value.Single(value.BooleanAtomic(!b)), nil
}

func trueFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.BooleanAtomic(true)), nil
}

func falseFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.BooleanAtomic(false)), nil
}

// langFn implements fn:lang: walks ancestor-or-self of the context node
// (or the single node argument) looking for the nearest xml:lang
// attribute, and reports whether it matches the requested language
// exactly or as a subtag prefix (e.g. "en" matches "en-US"), case
// insensitively.
func langFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	want := strings.ToLower(asString(args, 0))
	var n node.Node
	if len(args) > 1 {
		item, ok := value.Singleton(args[1])
		if !ok {
			return value.Single(value.BooleanAtomic(false)), nil
		}
		ni, ok := item.(value.NodeItem)
		if !ok {
			return value.Single(value.BooleanAtomic(false)), nil
		}
		n = ni.N
	} else {
		cn, err := contextNode(ctx, "lang")
		if err != nil {
			return nil, err
		}
		n = cn
	}

	const xmlNS = "http://www.w3.org/XML/1998/namespace"
	for cur := n; cur != nil; {
		if cur.Kind() == node.Element {
			it := cur.Axis(node.AttributeAxis)
			for it.Next() {
				a := it.Node()
				if a.Name().Local == "lang" && a.Name().URI == xmlNS {
					got := strings.ToLower(a.StringValue())
					if got == want || strings.HasPrefix(got, want+"-") {
						return value.Single(value.BooleanAtomic(true)), nil
					}
					return value.Single(value.BooleanAtomic(false)), nil
				}
			}
		}
		p, ok := cur.Parent()
		if !ok {
			break
		}
		cur = p
	}
	return value.Single(value.BooleanAtomic(false)), nil
}

var BoolTable = registry.NewTable(
	fn("boolean", 1, 1, nil, booleanFn),
	fn("not", 1, 1, nil, notFn),
	fn("true", 0, 0, nil, trueFn),
	fn("false", 0, 0, nil, falseFn),
	fn("lang", 1, 2, []registry.ArgType{registry.String, registry.NodeSet}, langFn),
)
