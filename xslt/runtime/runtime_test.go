package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xslt/keyindex"
	"github.com/CognitoIQ/xslt-runtime/xslt/picture"
)

type fakeStylesheet struct {
	keys     map[string]keyindex.Declaration
	funcs    map[string]*registry.Descriptor
	formats  map[string]picture.DecimalFormat
	name     string
	version  string
}

func (f *fakeStylesheet) KeyDeclarations() map[string]keyindex.Declaration { return f.keys }

func (f *fakeStylesheet) LookupFunction(uri, local string, arity int) (*registry.Descriptor, bool) {
	d, ok := f.funcs[local]
	return d, ok
}

func (f *fakeStylesheet) DecimalFormat(name string) (picture.DecimalFormat, bool) {
	df, ok := f.formats[name]
	return df, ok
}

func (f *fakeStylesheet) StripSpace(n node.Node) bool    { return false }
func (f *fakeStylesheet) PreserveSpace(n node.Node) bool { return true }
func (f *fakeStylesheet) PackageName() string            { return f.name }
func (f *fakeStylesheet) PackageVersion() string          { return f.version }

func TestNewPopulatesEmptyLookupMaps(t *testing.T) {
	tc := New(nil, nil, nil, nil, "file:///base/")
	assert.NotNil(t, tc.KnownElements)
	assert.NotNil(t, tc.KnownTypes)
	assert.NotNil(t, tc.SystemProperty)
}

func TestEnvironmentWithNilStylesheetLeavesCollaboratorsNil(t *testing.T) {
	tc := New(nil, keyindex.NewDocumentCache(nil), keyindex.NewIndex(), nil, "")
	_, env := tc.Build()
	assert.Nil(t, env.KeyDecls)
	assert.Nil(t, env.StripSpace)
}

func TestEnvironmentWiresStylesheetCollaborators(t *testing.T) {
	sheet := &fakeStylesheet{
		keys:    map[string]keyindex.Declaration{"k": {Name: "k"}},
		funcs:   map[string]*registry.Descriptor{},
		formats: map[string]picture.DecimalFormat{"": picture.DefaultDecimalFormat()},
		name:    "test-package",
		version: "1.0",
	}
	tc := New(sheet, keyindex.NewDocumentCache(nil), keyindex.NewIndex(), nil, "file:///base/")
	reg, env := tc.Build()
	require.NotNil(t, reg)
	assert.Same(t, reg, env.Registry)

	require.Contains(t, env.KeyDecls, "k")
	assert.False(t, env.StripSpace(nil))
	assert.True(t, env.PreserveSpace(nil))

	df, ok := env.DecimalFormatLookup("")
	require.True(t, ok)
	assert.Equal(t, picture.DefaultDecimalFormat(), df)
}

func TestRegistryDelegatesUserFunctionLookupToStylesheet(t *testing.T) {
	desc := &registry.Descriptor{}
	sheet := &fakeStylesheet{funcs: map[string]*registry.Descriptor{"my-func": desc}}
	tc := New(sheet, nil, nil, nil, "")
	reg, _ := tc.Build()

	resolved, err := reg.Resolve("http://example.com/ns", "my-func", 0)
	require.NoError(t, err)
	assert.Same(t, desc, resolved)
}

func TestRegistryResolvesXsltFunctionThroughCoreTable(t *testing.T) {
	tc := New(nil, keyindex.NewDocumentCache(nil), keyindex.NewIndex(), nil, "")
	reg, _ := tc.Build()

	d, err := reg.Resolve(registry.FnURI, "generate-id", 0)
	require.NoError(t, err)
	assert.NotNil(t, d.Call)
}

func TestRegistryResolvesMathMapArrayNamespaces(t *testing.T) {
	tc := New(nil, nil, nil, nil, "")
	reg, _ := tc.Build()

	for _, c := range []struct {
		uri, local string
		arity      int
	}{
		{registry.MathURI, "pi", 0},
		{registry.MapURI, "size", 1},
		{registry.ArrayURI, "size", 1},
		{registry.XsURI, "string", 1},
	} {
		_, err := reg.Resolve(c.uri, c.local, c.arity)
		assert.NoError(t, err, "%s#%d", c.local, c.arity)
	}
}

func TestRootContextCarriesStaticBaseURI(t *testing.T) {
	tc := New(nil, nil, nil, nil, "file:///docs/")
	ctx := tc.RootContext(nil)
	assert.Equal(t, "file:///docs/", ctx.BaseURI())
	_, ok := ctx.ContextItem()
	assert.False(t, ok)
}
