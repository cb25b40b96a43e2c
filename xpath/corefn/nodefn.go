// Package corefn implements the core XPath function library: node-set,
// string, boolean, number, date/time, and higher-order sequence
// functions, registered under the empty/fn: namespace.
package corefn

import (
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func fn(local string, min, max int, types []registry.ArgType, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.FnURI, Local: local},
		MinArity: min, MaxArity: max, ArgTypes: types, Call: call,
	}
}

func contextNode(ctx *context.Context, fname string) (node.Node, error) {
	item, ok := ctx.ContextItem()
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "%s() with no arguments requires a context item", fname)
	}
	ni, ok := item.(value.NodeItem)
	if !ok {
		return nil, xerr.TypeError(xerr.XPTY0004, "node()", "atomic value", "%s() with no arguments requires a context node", fname)
	}
	return ni.N, nil
}

// lastFn implements fn:last: the size of the current focus.
func lastFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(value.NewInteger(int64(ctx.Focus().Size)))), nil
}

// positionFn implements fn:position: the 1-based position of the
// current focus.
func positionFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(value.NewInteger(int64(ctx.Focus().Position)))), nil
}

// countFn implements fn:count: the length of a node-set or any
// sequence argument.
func countFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(value.NewInteger(int64(len(args[0]))))), nil
}

// idFn implements fn:id: splits the argument's string-value on
// whitespace (IDREFS-style) and returns the document-ordered,
// deduplicated set of elements whose xml:id (or id) attribute matches
// one of the tokens. A full XML-ID-aware runtime would consult schema
// PSVI information to know which attribute is typed ID; absent that
// external collaborator, this matches any attribute named "id" in no
// namespace or named "id" in the XML namespace, the common convention
// for untyped XML-ID handling.
func idFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var tokens []string
	for _, it := range args[0] {
		tokens = append(tokens, strings.Fields(value.StringValueOf(it))...)
	}
	var root node.Node
	if len(args) > 1 {
		if n, ok := value.Singleton(args[1]); ok {
			if ni, ok := n.(value.NodeItem); ok {
				root = ni.N.Root()
			}
		}
	}
	if root == nil {
		cn, err := contextNode(ctx, "id")
		if err != nil {
			return nil, err
		}
		root = cn.Root()
	}
	wanted := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		wanted[t] = true
	}
	var found node.Set
	walkIDs(root, wanted, &found)
	return value.NodeSet(node.Dedup(found)), nil
}

func walkIDs(n node.Node, wanted map[string]bool, out *node.Set) {
	if n.Kind() == node.Element {
		it := n.Axis(node.AttributeAxis)
		for it.Next() {
			a := it.Node()
			if a.Name().Local == "id" && wanted[a.StringValue()] {
				*out = append(*out, n)
			}
		}
	}
	it := n.Axis(node.Child)
	for it.Next() {
		walkIDs(it.Node(), wanted, out)
	}
}

// localNameFn implements fn:local-name: the local part of a node's
// expanded name. With no argument the context node is used; an empty
// sequence argument gives "".
func localNameFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n, err := nodeArgOrContext(ctx, args, "local-name")
	if err != nil {
		return nil, err
	}
	if n == nil {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(n.Name().Local)), nil
}

// namespaceURIFn implements fn:namespace-uri.
func namespaceURIFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n, err := nodeArgOrContext(ctx, args, "namespace-uri")
	if err != nil {
		return nil, err
	}
	if n == nil {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(n.Name().URI)), nil
}

// nameFn implements fn:name: the Clark-ish qualified-name rendering is
// not meaningful without a live prefix binding, so this returns the
// expanded name's local part prefixed by its namespace URI in
// curly-brace form only when non-empty — matching what a consumer that
// only has the abstract Node interface (no prefix table) can honestly
// report.
func nameFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n, err := nodeArgOrContext(ctx, args, "name")
	if err != nil {
		return nil, err
	}
	if n == nil {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(n.Name().Clark())), nil
}

func nodeArgOrContext(ctx *context.Context, args []value.Sequence, fname string) (node.Node, error) {
	if len(args) > 0 {
		item, ok := value.Singleton(args[0])
		if !ok {
			return nil, nil
		}
		ni, ok := item.(value.NodeItem)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "node()", item.TypeName(), "%s() argument must be a node", fname)
		}
		return ni.N, nil
	}
	return contextNode(ctx, fname)
}

var NodeTable = registry.NewTable(
	fn("last", 0, 0, nil, lastFn),
	fn("position", 0, 0, nil, positionFn),
	fn("count", 1, 1, []registry.ArgType{registry.NodeSet}, countFn),
	fn("id", 1, 2, []registry.ArgType{registry.Any, registry.NodeSet}, idFn),
	fn("local-name", 0, 1, []registry.ArgType{registry.NodeSet}, localNameFn),
	fn("namespace-uri", 0, 1, []registry.ArgType{registry.NodeSet}, namespaceURIFn),
	fn("name", 0, 1, []registry.ArgType{registry.NodeSet}, nameFn),
)
