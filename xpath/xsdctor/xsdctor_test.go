package xsdctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func TestBooleanConstructorAcceptsCanonicalForms(t *testing.T) {
	ctx := context.New("", nil)
	for _, in := range []string{"true", "1", "false", "0"} {
		out, err := xsBoolean(ctx, []value.Sequence{value.Single(value.StringAtomic(in))})
		require.NoError(t, err, in)
		require.Len(t, out, 1)
	}
}

func TestBooleanConstructorRejectsGarbage(t *testing.T) {
	ctx := context.New("", nil)
	_, err := xsBoolean(ctx, []value.Sequence{value.Single(value.StringAtomic("yes"))})
	assert.Error(t, err)
}

func TestIntegerConstructorRejectsNaN(t *testing.T) {
	ctx := context.New("", nil)
	fn := numericCtor(value.NumInteger, false, "xs:integer")
	_, err := fn(ctx, []value.Sequence{value.Single(value.StringAtomic("NaN"))})
	assert.Error(t, err)
}

func TestDoubleConstructorAcceptsSpecials(t *testing.T) {
	ctx := context.New("", nil)
	fn := numericCtor(value.NumDouble, true, "xs:double")
	out, err := fn(ctx, []value.Sequence{value.Single(value.StringAtomic("INF"))})
	require.NoError(t, err)
	n := out[0].(value.NumericAtomic)
	assert.True(t, value.Numeric(n).IsInf())
}

func TestIntegerConstructorRejectsFraction(t *testing.T) {
	ctx := context.New("", nil)
	fn := numericCtor(value.NumInteger, false, "xs:integer")
	_, err := fn(ctx, []value.Sequence{value.Single(value.StringAtomic("3.5"))})
	assert.Error(t, err)
}

func TestHexBinaryRequiresEvenLength(t *testing.T) {
	ctx := context.New("", nil)
	_, err := xsHexBinary(ctx, []value.Sequence{value.Single(value.StringAtomic("abc"))})
	assert.Error(t, err)

	out, err := xsHexBinary(ctx, []value.Sequence{value.Single(value.StringAtomic("ab"))})
	require.NoError(t, err)
	assert.Equal(t, value.HexBinaryAtomic([]byte{0xab}), out[0])
}

func TestBase64BinaryRequiresValidLength(t *testing.T) {
	ctx := context.New("", nil)
	_, err := xsBase64Binary(ctx, []value.Sequence{value.Single(value.StringAtomic("abc"))})
	assert.Error(t, err)

	out, err := xsBase64Binary(ctx, []value.Sequence{value.Single(value.StringAtomic("YWJj"))})
	require.NoError(t, err)
	assert.Equal(t, value.Base64BinaryAtomic([]byte("abc")), out[0])
}

func TestDateConstructorRoundTrips(t *testing.T) {
	ctx := context.New("", nil)
	out, err := calendarCtor(value.ParseDate, "xs:date")(ctx, []value.Sequence{value.Single(value.StringAtomic("2024-07-09"))})
	require.NoError(t, err)
	c := out[0].(value.CalendarAtomic)
	assert.Equal(t, "2024-07-09", c.Lexical())
}
