// Package callable builds value.Function closures for the four kinds of
// callable item the evaluator can produce: user-defined xsl:function
// declarations, inline function expressions, partial function
// applications (the `?` placeholder form), and named function
// references (`fn:concat#2`). None of these is a distinct Go type —
// every one is assembled into the same xpath/value.Function closure,
// following that package's own "closure, not interface hierarchy"
// design.
package callable

import (
	"fmt"
	"strings"
	"sync"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/seqtype"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

// Param is one formal parameter of a user-defined function or inline
// function: a variable name and an optional declared sequence type used
// to coerce the bound argument is left to the caller (arguments are
// bound as supplied; only the return value is coerced, per the return-
// type coercion rule below).
type Param struct {
	Name     string
	Declared *seqtype.SequenceType
}

// AtomicConstructor converts a lexical string into an atomic value of
// the named xs: type — the same shape xpath/xsdctor's constructors
// implement, passed in rather than imported directly so this package
// does not have to depend on xsdctor.
type AtomicConstructor func(typeName, lexical string) (value.Item, error)

// UserFunction is a compiled xsl:function declaration: a fixed
// parameter list, an optional declared return type, and a body that
// reads its parameters out of the Context's variable scope (the caller
// is responsible for compiling the function body into this shape; this
// package only handles binding, memoization, and return coercion).
type UserFunction struct {
	Name       node.ExpandedName
	Params     []Param
	ReturnType *seqtype.SequenceType
	Body       func(ctx *context.Context) (value.Sequence, error)
	Cache      bool
	Ctor       AtomicConstructor

	memo   sync.Map // cache key -> value.Sequence, populated lazily, never mutated once set
	invoke sync.Mutex
}

// cacheKey is the expanded name, arity, and concatenated string-values
// of the arguments — the memoization key named for cache="yes"
// functions: two calls with the same arguments (by string value) hit
// the same cached result without re-running the body.
func (uf *UserFunction) cacheKey(args []value.Sequence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d", uf.Name.Clark(), len(args))
	for _, a := range args {
		for _, it := range a {
			b.WriteByte('\x1f')
			b.WriteString(value.StringValueOf(it))
		}
		b.WriteByte('\x1e')
	}
	return b.String()
}

// AsFunction builds the callable value.Function for this declaration,
// closing over the context that should be used as the lexical base for
// invocation (a root-ish context carrying the stylesheet's static
// namespace bindings and default collation, not any particular call
// site's focus — per-call focus is irrelevant inside a function body,
// which only sees its own bound parameters).
func (uf *UserFunction) AsFunction(base *context.Context) value.Function {
	arity := len(uf.Params)
	return value.Function{
		Name:     uf.Name,
		MinArity: arity,
		MaxArity: arity,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			return uf.invokeFn(base, args)
		},
	}
}

func (uf *UserFunction) invokeFn(base *context.Context, args []value.Sequence) (value.Sequence, error) {
	if len(args) != len(uf.Params) {
		return nil, xerr.New(xerr.XPTY0004, "function %s expects %d arguments, got %d", uf.Name.Clark(), len(uf.Params), len(args))
	}

	var key string
	if uf.Cache {
		key = uf.cacheKey(args)
		if cached, ok := uf.memo.Load(key); ok {
			return cached.(value.Sequence), nil
		}
	}

	bindings := make(map[string]value.Sequence, len(uf.Params))
	for i, p := range uf.Params {
		bindings[p.Name] = args[i]
	}
	callCtx := base.PushVariableScope(bindings).WithEmptyTunnelFrame()

	result, err := uf.Body(callCtx)
	if err != nil {
		return nil, err
	}

	result, err = uf.coerceReturn(callCtx, result)
	if err != nil {
		return nil, err
	}

	if uf.Cache {
		uf.memo.Store(key, result)
	}
	return result, nil
}

func (uf *UserFunction) coerceReturn(ctx *context.Context, result value.Sequence) (value.Sequence, error) {
	if uf.ReturnType == nil {
		return result, nil
	}
	coerced, err := seqtype.Coerce(*uf.ReturnType, result, uf.Ctor)
	if err != nil {
		switch ctx.ErrorMode() {
		case context.Recover, context.Silent:
			return result, nil
		default:
			return nil, err
		}
	}
	return coerced, nil
}

// InlineFunction is an inline function expression (`function($x) { ... }`):
// its body closes over the variable scope in effect where the
// expression was written, not the scope at the call site.
type InlineFunction struct {
	Params     []Param
	ReturnType *seqtype.SequenceType
	Body       func(ctx *context.Context) (value.Sequence, error)
	Ctor       AtomicConstructor
	Captured   *context.Context // the enclosing scope, captured at construction time
}

// AsFunction builds the callable closure. Unlike UserFunction, there is
// no process-wide memoization: inline functions are not addressable by
// (name, arity), so they have no stable cache key.
func (f *InlineFunction) AsFunction() value.Function {
	arity := len(f.Params)
	return value.Function{
		MinArity: arity,
		MaxArity: arity,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			if len(args) != len(f.Params) {
				return nil, xerr.New(xerr.XPTY0004, "inline function expects %d arguments, got %d", len(f.Params), len(args))
			}
			bindings := make(map[string]value.Sequence, len(f.Params))
			for i, p := range f.Params {
				bindings[p.Name] = args[i]
			}
			callCtx := f.Captured.PushVariableScope(bindings).WithEmptyTunnelFrame()
			result, err := f.Body(callCtx)
			if err != nil {
				return nil, err
			}
			if f.ReturnType == nil {
				return result, nil
			}
			coerced, cerr := seqtype.Coerce(*f.ReturnType, result, f.Ctor)
			if cerr != nil {
				switch callCtx.ErrorMode() {
				case context.Recover, context.Silent:
					return result, nil
				default:
					return nil, cerr
				}
			}
			return coerced, nil
		},
	}
}

// Placeholder marks an unbound argument slot (`?`) in a partial
// function application. A nil entry in PartialApply's bound slice means
// the same thing; Placeholder exists for callers that want to be
// explicit in a typed argument vector.
type Placeholder struct{}

// PartialApply builds the callable closure for `fn(bound1, ?, bound3)`:
// base is the function being partially applied, and slots is the full
// argument vector in declaration order, with nil marking each `?`
// placeholder. The returned Function's arity is the number of
// placeholders; invoking it supplies exactly those positions, in order,
// interleaved back into the fixed ones at call time.
func PartialApply(base value.Function, slots []value.Sequence) value.Function {
	var placeholderIdx []int
	for i, s := range slots {
		if s == nil {
			placeholderIdx = append(placeholderIdx, i)
		}
	}
	arity := len(placeholderIdx)
	return value.Function{
		Name:     base.Name,
		MinArity: arity,
		MaxArity: arity,
		Call: func(supplied []value.Sequence) (value.Sequence, error) {
			if len(supplied) != arity {
				return nil, xerr.New(xerr.XPTY0004, "partial application expects %d arguments, got %d", arity, len(supplied))
			}
			full := make([]value.Sequence, len(slots))
			copy(full, slots)
			for i, idx := range placeholderIdx {
				full[idx] = supplied[i]
			}
			return base.Call(full)
		},
	}
}

// NamedFunctionReference resolves `{uri}local#arity` through the
// registry and returns it as a plain callable Function — the
// all-placeholders special case of partial application, expressed
// directly instead of by building a slots vector of all-nil.
func NamedFunctionReference(reg *registry.Registry, ctx *context.Context, uri, local string, arity int) (value.Function, error) {
	d, err := reg.Resolve(uri, local, arity)
	if err != nil {
		return value.Function{}, err
	}
	return registry.AsFunctionItem(ctx, d, arity), nil
}
