package callable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/seqtype"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func TestUserFunctionBindsArgsPositionally(t *testing.T) {
	uf := &UserFunction{
		Name:   node.ExpandedName{Local: "double"},
		Params: []Param{{Name: "x"}},
		Body: func(ctx *context.Context) (value.Sequence, error) {
			x, _ := ctx.Variable("x")
			n := x[0].(value.NumericAtomic)
			return value.Single(value.NumericAtomic(value.Numeric{Sub: n.Sub, F: n.F * 2})), nil
		},
	}
	fn := uf.AsFunction(context.New("", nil))
	out, err := fn.Call([]value.Sequence{value.Single(value.NumericAtomic(value.Numeric{Sub: value.NumDouble, F: 21}))})
	require.NoError(t, err)
	assert.Equal(t, 42.0, out[0].(value.NumericAtomic).F)
}

func TestUserFunctionMemoizesWhenCacheEnabled(t *testing.T) {
	calls := 0
	uf := &UserFunction{
		Name:   node.ExpandedName{Local: "counted"},
		Params: []Param{{Name: "x"}},
		Cache:  true,
		Body: func(ctx *context.Context) (value.Sequence, error) {
			calls++
			x, _ := ctx.Variable("x")
			return x, nil
		},
	}
	fn := uf.AsFunction(context.New("", nil))
	arg := value.Single(value.StringAtomic("same"))
	_, err := fn.Call([]value.Sequence{arg})
	require.NoError(t, err)
	_, err = fn.Call([]value.Sequence{arg})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUserFunctionReturnTypeCoercionFailureStrict(t *testing.T) {
	st, _ := seqtype.Parse("xs:integer")
	uf := &UserFunction{
		Name:       node.ExpandedName{Local: "bad"},
		ReturnType: &st,
		Ctor: func(typeName, lexical string) (value.Item, error) {
			return nil, assert.AnError
		},
		Body: func(ctx *context.Context) (value.Sequence, error) {
			return value.Single(value.StringAtomic("not a number")), nil
		},
	}
	fn := uf.AsFunction(context.New("", nil))
	_, err := fn.Call(nil)
	assert.Error(t, err)
}

func TestUserFunctionReturnTypeCoercionRecoverMode(t *testing.T) {
	st, _ := seqtype.Parse("xs:integer")
	uf := &UserFunction{
		Name:       node.ExpandedName{Local: "bad"},
		ReturnType: &st,
		Ctor: func(typeName, lexical string) (value.Item, error) {
			return nil, assert.AnError
		},
		Body: func(ctx *context.Context) (value.Sequence, error) {
			return value.Single(value.StringAtomic("not a number")), nil
		},
	}
	fn := uf.AsFunction(context.New("", nil).WithErrorMode(context.Recover))
	out, err := fn.Call(nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestInlineFunctionCapturesEnclosingScope(t *testing.T) {
	outer := context.New("", nil).PushVariableScope(map[string]value.Sequence{
		"base": value.Single(value.NumericAtomic(value.Numeric{Sub: value.NumInteger, F: 10})),
	})
	f := &InlineFunction{
		Params: []Param{{Name: "n"}},
		Body: func(ctx *context.Context) (value.Sequence, error) {
			base, _ := ctx.Variable("base")
			n, _ := ctx.Variable("n")
			return value.Single(value.NumericAtomic(value.Numeric{
				Sub: value.NumInteger,
				F:   base[0].(value.NumericAtomic).F + n[0].(value.NumericAtomic).F,
			})), nil
		},
		Captured: outer,
	}
	fn := f.AsFunction()
	out, err := fn.Call([]value.Sequence{value.Single(value.NumericAtomic(value.Numeric{Sub: value.NumInteger, F: 5}))})
	require.NoError(t, err)
	assert.Equal(t, 15.0, out[0].(value.NumericAtomic).F)
}

func TestPartialApplyFillsPlaceholders(t *testing.T) {
	base := value.Function{
		MinArity: 3, MaxArity: 3,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			var out value.Sequence
			for _, a := range args {
				out = append(out, a...)
			}
			return out, nil
		},
	}
	partial := PartialApply(base, []value.Sequence{
		value.Single(value.StringAtomic("a")),
		nil,
		value.Single(value.StringAtomic("c")),
	})
	assert.Equal(t, 1, partial.MinArity)
	out, err := partial.Call([]value.Sequence{value.Single(value.StringAtomic("b"))})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, value.StringAtomic("b"), out[1])
}

func TestPartialApplyArityMismatch(t *testing.T) {
	base := value.Function{MinArity: 1, MaxArity: 1, Call: func(args []value.Sequence) (value.Sequence, error) { return args[0], nil }}
	partial := PartialApply(base, []value.Sequence{nil})
	_, err := partial.Call(nil)
	assert.Error(t, err)
}
