// Package registry implements function dispatch: routing a
// (namespace-uri, local-name, arity) call through the fixed
// resolution-precedence chain to a callable, with argument-arity and
// argument-type checking ahead of invocation.
package registry

import (
	"fmt"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

// Namespace URIs recognized by the resolution-precedence chain.
const (
	FnURI    = "http://www.w3.org/2005/xpath-functions"
	XsltURI  = "http://www.w3.org/1999/XSL/Transform"
	XsURI    = "http://www.w3.org/2001/XMLSchema"
	MathURI  = "http://www.w3.org/2005/xpath-functions/math"
	MapURI   = "http://www.w3.org/2005/xpath-functions/map"
	ArrayURI = "http://www.w3.org/2005/xpath-functions/array"
)

// ArgType is a declared argument type for the arity/type check that runs
// ahead of invocation.
type ArgType int

const (
	Any ArgType = iota
	Numeric
	String
	Boolean
	NodeSet
	Seq
)

func (t ArgType) describe() string {
	switch t {
	case Numeric:
		return "numeric"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case NodeSet:
		return "node-set"
	case Seq:
		return "sequence"
	default:
		return "item()*"
	}
}

func (t ArgType) matches(s value.Sequence) bool {
	switch t {
	case Any, Seq:
		return true
	case NodeSet:
		return s.IsNodeSet()
	case Numeric, String, Boolean:
		if len(s) > 1 {
			return false
		}
		if len(s) == 0 {
			return true
		}
		switch t {
		case Numeric:
			_, ok := s[0].(value.NumericAtomic)
			return ok
		case String:
			_, ok := s[0].(value.StringAtomic)
			return ok
		case Boolean:
			_, ok := s[0].(value.BooleanAtomic)
			return ok
		}
	}
	return true
}

// Func is the call signature every registered function implements.
type Func func(ctx *context.Context, args []value.Sequence) (value.Sequence, error)

// Descriptor is one registered function's static shape plus its
// implementation.
type Descriptor struct {
	Name     node.ExpandedName
	MinArity int
	MaxArity int // -1 means unbounded (variadic)
	ArgTypes []ArgType
	Call     Func
}

func (d *Descriptor) checkArity(n int) error {
	if n < d.MinArity || (d.MaxArity >= 0 && n > d.MaxArity) {
		return xerr.New(xerr.XPTY0004, "function %s expects %s arguments, got %d", d.Name.Clark(), arityDescription(d), n)
	}
	return nil
}

func arityDescription(d *Descriptor) string {
	if d.MaxArity < 0 {
		return fmt.Sprintf("at least %d", d.MinArity)
	}
	if d.MinArity == d.MaxArity {
		return fmt.Sprintf("exactly %d", d.MinArity)
	}
	return fmt.Sprintf("%d to %d", d.MinArity, d.MaxArity)
}

func (d *Descriptor) checkTypes(args []value.Sequence) error {
	for i, a := range args {
		if i >= len(d.ArgTypes) {
			break
		}
		t := d.ArgTypes[i]
		if !t.matches(a) {
			return xerr.TypeError(xerr.XPTY0004, t.describe(), describeSequence(a),
				"function %s argument %d", d.Name.Clark(), i+1)
		}
	}
	return nil
}

func describeSequence(s value.Sequence) string {
	if len(s) == 0 {
		return "empty-sequence()"
	}
	if len(s) > 1 {
		return "sequence"
	}
	return fmt.Sprintf("%T", s[0])
}

// Table is a flat (name, arity) -> Descriptor map for one namespace's
// fixed function set, as used for fn:/xslt, math:, map:, array:.
type Table map[tableKey]*Descriptor

type tableKey struct {
	uri   string
	local string
	arity int
}

// NewTable builds a Table from a list of descriptors, indexing each
// under every arity it accepts (MinArity..MaxArity, capped at a
// reasonable variadic bound for indexing purposes; variadic functions
// are additionally indexed under a wildcard arity of -1).
func NewTable(descs ...*Descriptor) Table {
	t := make(Table)
	for _, d := range descs {
		d := d
		max := d.MaxArity
		if max < 0 {
			t[tableKey{d.Name.URI, d.Name.Local, -1}] = d
			max = d.MinArity
		}
		for n := d.MinArity; n <= max; n++ {
			t[tableKey{d.Name.URI, d.Name.Local, n}] = d
		}
	}
	return t
}

func (t Table) lookup(uri, local string, arity int) (*Descriptor, bool) {
	if d, ok := t[tableKey{uri, local, arity}]; ok {
		return d, true
	}
	d, ok := t[tableKey{uri, local, -1}]
	return d, ok
}

// UserFunctionResolver is the compiled-stylesheet collaborator consulted
// for any namespace outside the fixed built-in tables (resolution step 4).
type UserFunctionResolver interface {
	LookupFunction(uri, local string, arity int) (*Descriptor, bool)
}

// Registry implements the (namespace, local-name, arity) dispatch chain.
type Registry struct {
	core  Table // empty/null namespace and fn: — core XPath + XSLT functions
	xsd   Table // xs: constructor coercions
	math  Table
	mapT  Table
	array Table
	user  UserFunctionResolver // may be nil outside a TransformContext
}

// New builds a Registry from its per-namespace tables. user may be nil;
// if so, step 4 of the resolution chain is skipped and step 5's fallback
// to the core table is attempted directly.
func New(core, xsd, math, mapT, array Table, user UserFunctionResolver) *Registry {
	return &Registry{core: core, xsd: xsd, math: math, mapT: mapT, array: array, user: user}
}

// Resolve implements the resolution-precedence chain: empty/fn: -> core;
// xs: -> XSD constructors; math:/map:/array: -> fixed tables; any other
// namespace under a TransformContext -> user-defined lookup; fall
// through to core.
func (r *Registry) Resolve(uri, local string, arity int) (*Descriptor, error) {
	switch uri {
	case "", FnURI, XsltURI:
		if d, ok := r.core.lookup(uri, local, arity); ok {
			return d, nil
		}
	case XsURI:
		if d, ok := r.xsd.lookup(uri, local, arity); ok {
			return d, nil
		}
	case MathURI:
		if d, ok := r.math.lookup(uri, local, arity); ok {
			return d, nil
		}
	case MapURI:
		if d, ok := r.mapT.lookup(uri, local, arity); ok {
			return d, nil
		}
	case ArrayURI:
		if d, ok := r.array.lookup(uri, local, arity); ok {
			return d, nil
		}
	default:
		if r.user != nil {
			if d, ok := r.user.LookupFunction(uri, local, arity); ok {
				return d, nil
			}
		}
	}
	// Step 5 fallback: try the core table regardless of namespace, for
	// callers that pass the empty namespace loosely.
	if d, ok := r.core.lookup(uri, local, arity); ok {
		return d, nil
	}
	return nil, xerr.New(xerr.XPTY0004, "no function matches {%s}%s#%d", uri, local, arity)
}

// Call resolves and invokes a function, checking arity and declared
// argument types first.
func (r *Registry) Call(ctx *context.Context, uri, local string, args []value.Sequence) (value.Sequence, error) {
	d, err := r.Resolve(uri, local, len(args))
	if err != nil {
		return nil, err
	}
	if err := d.checkArity(len(args)); err != nil {
		return nil, err
	}
	if err := d.checkTypes(args); err != nil {
		return nil, err
	}
	return d.Call(ctx, args)
}

// AsFunctionItem wraps a resolved Descriptor as a value.Function closed
// over ctx, for named-function-reference callable items (e.g.
// fn:concat#2).
func AsFunctionItem(ctx *context.Context, d *Descriptor, arity int) value.Function {
	return value.Function{
		Name:     d.Name,
		MinArity: arity,
		MaxArity: arity,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			return d.Call(ctx, args)
		},
	}
}
