package collation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodepointOrdering(t *testing.T) {
	assert.True(t, Codepoint.Compare("a", "b") < 0)
	assert.True(t, Codepoint.Equal("abc", "abc"))
	assert.Equal(t, CodepointURI, Codepoint.URI())
}

func TestForURIDefaultsToCodepoint(t *testing.T) {
	c, err := ForURI("")
	require.NoError(t, err)
	assert.Equal(t, CodepointURI, c.URI())
}

func TestForURILocale(t *testing.T) {
	c, err := ForURI("http://www.w3.org/2013/collation/UCA?lang=sv;strength=primary")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestForURIUnknownIsError(t *testing.T) {
	_, err := ForURI("http://example.com/no-such-collation")
	assert.Error(t, err)
}
