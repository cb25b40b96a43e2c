package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/value"
)

type stubResolver map[string]string

func (r stubResolver) Resolve(prefix string) (string, bool) {
	uri, ok := r[prefix]
	return uri, ok
}

func TestFocusDerivationDoesNotTouchCurrentNode(t *testing.T) {
	root := New("file:///doc.xml", stubResolver{"xs": "http://www.w3.org/2001/XMLSchema"})
	root = root.WithXsltCurrentNode(nil)
	derived := root.WithFocus(value.StringAtomic("x"), 1, 1)
	_, ok := derived.CurrentNode()
	assert.True(t, ok, "WithFocus must not clear the pinned current node")
}

func TestVariableScopeShadowing(t *testing.T) {
	root := New("", nil)
	outer := root.PushVariableScope(map[string]value.Sequence{
		"{}x": value.Single(value.StringAtomic("outer")),
	})
	inner := outer.PushVariableScope(map[string]value.Sequence{
		"{}x": value.Single(value.StringAtomic("inner")),
	})

	v, ok := inner.Variable("{}x")
	require.True(t, ok)
	assert.Equal(t, value.StringAtomic("inner"), v[0])

	v, ok = outer.Variable("{}x")
	require.True(t, ok)
	assert.Equal(t, value.StringAtomic("outer"), v[0])
}

func TestTunnelParamsMergeVsReplace(t *testing.T) {
	root := New("", nil)
	withA := root.WithTunnelParams(map[string]value.Sequence{
		"{}a": value.Single(value.StringAtomic("1")),
	}, true)
	withAB := withA.WithTunnelParams(map[string]value.Sequence{
		"{}b": value.Single(value.StringAtomic("2")),
	}, false)

	_, ok := withAB.TunnelParam("{}a")
	assert.True(t, ok, "merge must retain existing tunnel params")
	_, ok = withAB.TunnelParam("{}b")
	assert.True(t, ok)

	replaced := withAB.WithTunnelParams(map[string]value.Sequence{
		"{}c": value.Single(value.StringAtomic("3")),
	}, true)
	_, ok = replaced.TunnelParam("{}a")
	assert.False(t, ok, "replace must drop prior tunnel params")
}

func TestPushKeyInProgressDetectsCycle(t *testing.T) {
	root := New("", nil)
	once, err := root.PushKeyInProgress("k1")
	require.NoError(t, err)

	_, err = once.PushKeyInProgress("k1")
	assert.Error(t, err)

	// The root context, unaffected by the nested push, may still enter k1
	// independently once the nested call has returned.
	_, err = root.PushKeyInProgress("k1")
	assert.NoError(t, err)
}

func TestRegexGroupOutOfRangeIsEmpty(t *testing.T) {
	root := New("", nil)
	withMatch := root.WithRegexMatch([]string{"whole", "g1"})
	assert.Equal(t, "g1", withMatch.RegexGroup(1))
	assert.Equal(t, "", withMatch.RegexGroup(5))
}
