package arrayfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func str(s string) value.Sequence { return value.Single(value.StringAtomic(s)) }
func num(f float64) value.Sequence {
	return value.Single(value.NumericAtomic(value.NewDouble(f)))
}

func arr(members ...value.Sequence) *value.ArrayValue { return value.NewArray(members) }

func TestSizeFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := sizeFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b")))})
	require.NoError(t, err)
	assert.Equal(t, 2.0, value.NumberValueOf(out[0]).F)
}

func TestGetFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := getFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), num(2)})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, value.StringAtomic("b"), s)
}

func TestGetFnOutOfBoundsIsFOAY0001(t *testing.T) {
	ctx := context.New("", nil)
	_, err := getFn(ctx, []value.Sequence{value.Single(arr(str("a"))), num(5)})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOAY0001))
}

func TestPutFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := putFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), num(1), str("z")})
	require.NoError(t, err)
	updated := out[0].(*value.ArrayValue)
	v, _ := updated.Get(1)
	s, _ := value.Singleton(v)
	assert.Equal(t, value.StringAtomic("z"), s)
}

func TestAppendFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := appendFn(ctx, []value.Sequence{value.Single(arr(str("a"))), str("b")})
	require.NoError(t, err)
	updated := out[0].(*value.ArrayValue)
	assert.Equal(t, 2, updated.Size())
}

func TestInsertBeforeFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := insertBeforeFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("c"))), num(2), str("b")})
	require.NoError(t, err)
	updated := out[0].(*value.ArrayValue)
	v, _ := updated.Get(2)
	s, _ := value.Singleton(v)
	assert.Equal(t, value.StringAtomic("b"), s)
}

func TestRemoveFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := removeFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"), str("c"))), num(2)})
	require.NoError(t, err)
	updated := out[0].(*value.ArrayValue)
	assert.Equal(t, 2, updated.Size())
}

func TestSubarrayFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := subarrayFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"), str("c"))), num(2)})
	require.NoError(t, err)
	updated := out[0].(*value.ArrayValue)
	assert.Equal(t, 2, updated.Size())
}

func TestSubarrayFnNegativeLengthIsFOAY0002(t *testing.T) {
	ctx := context.New("", nil)
	_, err := subarrayFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), num(1), num(-1)})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOAY0002))
}

func TestReverseFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := reverseFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b")))})
	require.NoError(t, err)
	reversed := out[0].(*value.ArrayValue)
	first, _ := reversed.Get(1)
	s, _ := value.Singleton(first)
	assert.Equal(t, value.StringAtomic("b"), s)
}

func TestHeadAndTailFn(t *testing.T) {
	ctx := context.New("", nil)
	head, err := headFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b")))})
	require.NoError(t, err)
	s, _ := value.Singleton(head)
	assert.Equal(t, value.StringAtomic("a"), s)

	tail, err := tailFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b")))})
	require.NoError(t, err)
	tailArr := tail[0].(*value.ArrayValue)
	assert.Equal(t, 1, tailArr.Size())
}

func TestHeadFnEmptyArrayIsFOAY0001(t *testing.T) {
	ctx := context.New("", nil)
	_, err := headFn(ctx, []value.Sequence{value.Single(arr())})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOAY0001))
}

func TestJoinFn(t *testing.T) {
	ctx := context.New("", nil)
	seq := value.Sequence{arr(str("a")), arr(str("b"))}
	out, err := joinFn(ctx, []value.Sequence{seq})
	require.NoError(t, err)
	joined := out[0].(*value.ArrayValue)
	assert.Equal(t, 2, joined.Size())
}

func TestFlattenFn(t *testing.T) {
	ctx := context.New("", nil)
	out, err := flattenFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b")))})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestForEachFn(t *testing.T) {
	ctx := context.New("", nil)
	upper := value.Function{
		MinArity: 1, MaxArity: 1,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			return str("X"), nil
		},
	}
	out, err := forEachFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), value.Single(upper)})
	require.NoError(t, err)
	result := out[0].(*value.ArrayValue)
	assert.Equal(t, 2, result.Size())
}

func TestFilterFn(t *testing.T) {
	ctx := context.New("", nil)
	keepA := value.Function{
		MinArity: 1, MaxArity: 1,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			s, _ := value.Singleton(args[0])
			return value.Single(value.BooleanAtomic(value.StringValueOf(s) == "a")), nil
		},
	}
	out, err := filterFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), value.Single(keepA)})
	require.NoError(t, err)
	result := out[0].(*value.ArrayValue)
	assert.Equal(t, 1, result.Size())
}

func TestFoldLeftFn(t *testing.T) {
	ctx := context.New("", nil)
	concat := value.Function{
		MinArity: 2, MaxArity: 2,
		Call: func(args []value.Sequence) (value.Sequence, error) {
			a, _ := value.Singleton(args[0])
			b, _ := value.Singleton(args[1])
			return str(value.StringValueOf(a) + value.StringValueOf(b)), nil
		},
	}
	out, err := foldLeftFn(ctx, []value.Sequence{value.Single(arr(str("a"), str("b"))), str(""), value.Single(concat)})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, value.StringAtomic("ab"), s)
}

func TestSortFnOrdersByStringValue(t *testing.T) {
	ctx := context.New("", nil)
	out, err := sortFn(ctx, []value.Sequence{value.Single(arr(str("b"), str("a"), str("c")))})
	require.NoError(t, err)
	sorted := out[0].(*value.ArrayValue)
	first, _ := sorted.Get(1)
	s, _ := value.Singleton(first)
	assert.Equal(t, value.StringAtomic("a"), s)
}

func TestTableResolvesEveryFunction(t *testing.T) {
	reg := registry.New(nil, nil, nil, nil, Table, nil)
	cases := []struct {
		name  string
		arity int
	}{
		{"size", 1}, {"get", 2}, {"put", 3}, {"append", 2}, {"insert-before", 3},
		{"remove", 2}, {"subarray", 2}, {"reverse", 1}, {"head", 1}, {"tail", 1},
		{"join", 1}, {"flatten", 1}, {"for-each", 2}, {"filter", 2},
		{"fold-left", 3}, {"fold-right", 3}, {"sort", 1},
	}
	for _, c := range cases {
		_, err := reg.Resolve(registry.ArrayURI, c.name, c.arity)
		assert.NoErrorf(t, err, "missing array:%s", c.name)
	}
}
