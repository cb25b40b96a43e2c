package seqtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/value"
)

func TestParseOccurrenceIndicators(t *testing.T) {
	st, err := Parse("xs:integer*")
	require.NoError(t, err)
	assert.Equal(t, Atomic, st.ItemKind)
	assert.Equal(t, ZeroOrMore, st.Occurrence)
	assert.Equal(t, "xs:integer", st.TypeName)
}

func TestParseEmptySequence(t *testing.T) {
	st, err := Parse("empty-sequence()")
	require.NoError(t, err)
	assert.True(t, Matches(st, value.Empty()))
	assert.False(t, Matches(st, value.Single(value.StringAtomic("x"))))
}

func TestParseElementWithNameTest(t *testing.T) {
	st, err := Parse("element(row)")
	require.NoError(t, err)
	assert.Equal(t, Element, st.ItemKind)
	assert.Equal(t, "row", st.NameTest.Local)
}

func TestMatchesAtomicDerivedType(t *testing.T) {
	st, err := Parse("xs:decimal")
	require.NoError(t, err)
	seq := value.Single(value.NumericAtomic(value.Numeric{Sub: value.NumInteger, F: 3}))
	assert.True(t, Matches(st, seq))
}

func TestMatchesRejectsWrongCardinality(t *testing.T) {
	st, err := Parse("xs:string")
	require.NoError(t, err)
	seq := value.Sequence{value.StringAtomic("a"), value.StringAtomic("b")}
	assert.False(t, Matches(st, seq))
}

func TestCoerceConvertsLexicalForm(t *testing.T) {
	st, err := Parse("xs:integer")
	require.NoError(t, err)
	ctor := func(typeName, lexical string) (value.Item, error) {
		return value.NumericAtomic(value.Numeric{Sub: value.NumInteger, F: 42}), nil
	}
	out, err := Coerce(st, value.Single(value.StringAtomic("42")), ctor)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, value.KInteger, out[0].(value.Atomic).Kind())
}

func TestCoerceFailsRaisesError(t *testing.T) {
	st, err := Parse("xs:integer")
	require.NoError(t, err)
	ctor := func(typeName, lexical string) (value.Item, error) {
		return nil, assert.AnError
	}
	_, err = Coerce(st, value.Single(value.StringAtomic("nope")), ctor)
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	st, err := Parse("node()?")
	require.NoError(t, err)
	assert.Equal(t, "node()?", st.String())
}
