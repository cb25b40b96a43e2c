// Package mathfn implements the math: function library (XPath and
// XQuery Functions and Operators 3.1 §8): the trigonometric and
// exponential functions over xs:double, registered under their own
// fixed namespace in the resolution-precedence chain.
package mathfn

import (
	"math"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func fn(local string, min, max int, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.MathURI, Local: local},
		MinArity: min, MaxArity: max, Call: call,
	}
}

// doubleArg atomizes args[i] to an xs:double; an empty sequence
// argument yields ok=false so the caller can propagate empty-sequence
// per each function's "?" occurrence indicator.
func doubleArg(args []value.Sequence, i int) (float64, bool) {
	v, ok := value.Singleton(args[i])
	if !ok {
		return 0, false
	}
	return value.NumberValueOf(v).F, true
}

func unary(f func(float64) float64) registry.Func {
	return func(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
		x, ok := doubleArg(args, 0)
		if !ok {
			return value.Empty(), nil
		}
		return value.Single(value.NumericAtomic(value.NewDouble(f(x)))), nil
	}
}

func piFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(value.NewDouble(math.Pi))), nil
}

func powFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	x, ok := doubleArg(args, 0)
	if !ok {
		return value.Empty(), nil
	}
	y, _ := doubleArg(args, 1)
	return value.Single(value.NumericAtomic(value.NewDouble(math.Pow(x, y)))), nil
}

func atan2Fn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	y, _ := doubleArg(args, 0)
	x, _ := doubleArg(args, 1)
	return value.Single(value.NumericAtomic(value.NewDouble(math.Atan2(y, x)))), nil
}

func exp10(x float64) float64 { return math.Pow(10, x) }

// Table is the fixed math: function table, step 3 of the resolution
// chain.
var Table = registry.NewTable(
	fn("pi", 0, 0, piFn),
	fn("exp", 1, 1, unary(math.Exp)),
	fn("exp10", 1, 1, unary(exp10)),
	fn("log", 1, 1, unary(math.Log)),
	fn("log10", 1, 1, unary(math.Log10)),
	fn("pow", 2, 2, powFn),
	fn("sqrt", 1, 1, unary(math.Sqrt)),
	fn("sin", 1, 1, unary(math.Sin)),
	fn("cos", 1, 1, unary(math.Cos)),
	fn("tan", 1, 1, unary(math.Tan)),
	fn("asin", 1, 1, unary(math.Asin)),
	fn("acos", 1, 1, unary(math.Acos)),
	fn("atan", 1, 1, unary(math.Atan)),
	fn("atan2", 2, 2, atan2Fn),
)
