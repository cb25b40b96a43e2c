package xsltfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/nodemodel"
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
	"github.com/CognitoIQ/xslt-runtime/xslt/keyindex"
	"github.com/CognitoIQ/xslt-runtime/xslt/picture"
)

type fakeNS map[string]string

func (f fakeNS) Resolve(prefix string) (string, bool) {
	u, ok := f[prefix]
	return u, ok
}

type stubLoader struct {
	text string
	err  error
}

func (s stubLoader) LoadText(uri, baseURI string) ([]byte, error) {
	return []byte(s.text), s.err
}

func testEnv() *Environment {
	reg := registry.New(nil, nil, nil, nil, nil, nil)
	return &Environment{
		Keys:           keyindex.NewIndex(),
		KeyDecls:       map[string]keyindex.Declaration{},
		Docs:           keyindex.NewDocumentCache(nil),
		Texts:          stubLoader{text: "line one\nline two\n"},
		StaticBaseURI:  "file:///base/",
		Registry:       reg,
		KnownElements:  map[string]bool{"for-each": true},
		KnownTypes:     map[string]bool{"string": true},
		SystemProperty: map[string]string{"{http://www.w3.org/1999/XSL/Transform}version": "3.0"},
	}
}

func parseDoc(t *testing.T, xml string) node.Node {
	t.Helper()
	doc, err := nodemodel.Parse("", []byte(xml))
	require.NoError(t, err)
	return doc.AsNode()
}

func firstElement(t *testing.T, n node.Node) node.Node {
	t.Helper()
	if n.Kind() == node.Element {
		return n
	}
	it := n.Axis(node.Child)
	require.True(t, it.Next())
	return it.Node()
}

func TestCurrentReturnsContextItem(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<a/>`))
	ctx := context.New("", nil).WithContextNode(root, 1, 1)
	out, err := Current(ctx, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, root, out[0].(value.NodeItem).N)
}

func TestCurrentWithNoContextItemErrors(t *testing.T) {
	ctx := context.New("", nil)
	_, err := Current(ctx, nil)
	assert.Error(t, err)
}

func TestGenerateIDStableForSameNode(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<a><b/></a>`))
	ctx := context.New("", nil)
	args := []value.Sequence{value.Single(value.NodeItem{N: root})}
	id1, err := GenerateID(ctx, args)
	require.NoError(t, err)
	id2, err := GenerateID(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestGenerateIDDiffersAcrossNodes(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<a><b/><c/></a>`))
	ctx := context.New("", nil)
	it := root.Axis(node.Child)
	var kids []node.Node
	for it.Next() {
		kids = append(kids, it.Node())
	}
	require.Len(t, kids, 2)
	id1, err := GenerateID(ctx, []value.Sequence{value.Single(value.NodeItem{N: kids[0]})})
	require.NoError(t, err)
	id2, err := GenerateID(ctx, []value.Sequence{value.Single(value.NodeItem{N: kids[1]})})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func idKeyDecl() keyindex.Declaration {
	return keyindex.Declaration{
		Name: "row-by-id",
		Clauses: []keyindex.Clause{{
			Match: func(n node.Node) bool { return n.Kind() == node.Element && n.Name().Local == "row" },
			Use: func(ctx *context.Context, candidate node.Node) (value.Sequence, error) {
				it := candidate.Axis(node.AttributeAxis)
				for it.Next() {
					a := it.Node()
					if a.Name().Local == "id" {
						return value.Single(value.StringAtomic(a.StringValue())), nil
					}
				}
				return value.Empty(), nil
			},
		}},
	}
}

func TestKeyLooksUpMatchingRows(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<rows><row id="1">one</row><row id="2">two</row></rows>`))
	env := testEnv()
	env.KeyDecls["row-by-id"] = idKeyDecl()

	ctx := context.New("", nil).WithXsltCurrentNode(root)
	out, err := env.Key(ctx, []value.Sequence{
		singleString("row-by-id"),
		value.Single(value.StringAtomic("2")),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "two", out[0].(value.NodeItem).N.StringValue())
}

func TestKeyUnknownNameIsXTDE1260(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<rows/>`))
	env := testEnv()
	ctx := context.New("", nil).WithXsltCurrentNode(root)
	_, err := env.Key(ctx, []value.Sequence{singleString("nope"), value.Empty()})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.XTDE1260))
}

func TestDocAvailableFalseWhenLoaderNil(t *testing.T) {
	env := testEnv()
	ctx := context.New("", nil)
	out, err := env.DocAvailable(ctx, []value.Sequence{singleString("missing.xml")})
	require.NoError(t, err)
	b, _ := value.Singleton(out)
	assert.Equal(t, value.BooleanAtomic(false), b)
}

func TestFormatNumberUnknownDecimalFormatIsXTDE1280(t *testing.T) {
	env := testEnv()
	// a non-nil lookup that declares nothing, including no default
	env.DecimalFormatLookup = func(name string) (picture.DecimalFormat, bool) { return picture.DecimalFormat{}, false }
	ctx := context.New("", nil)
	_, err := env.FormatNumber(ctx, []value.Sequence{
		value.Single(value.NumericAtomic(value.NewDecimal(3))),
		singleString("0.0"),
	})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.XTDE1280))
}

func TestFormatNumberUsesDefaultFormatWhenNoneDeclared(t *testing.T) {
	env := testEnv()
	ctx := context.New("", nil)
	out, err := env.FormatNumber(ctx, []value.Sequence{
		value.Single(value.NumericAtomic(value.NewDecimal(1234.5))),
		singleString("#,##0.00"),
	})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, "1,234.50", value.StringValueOf(s))
}

func TestElementAvailable(t *testing.T) {
	env := testEnv()
	ctx := context.New("", fakeNS{"xsl": "http://www.w3.org/1999/XSL/Transform"})
	out, err := env.ElementAvailable(ctx, []value.Sequence{singleString("xsl:for-each")})
	require.NoError(t, err)
	b, _ := value.Singleton(out)
	assert.Equal(t, value.BooleanAtomic(true), b)
}

func TestElementAvailableUnboundPrefixIsXTDE1400(t *testing.T) {
	env := testEnv()
	ctx := context.New("", fakeNS{})
	_, err := env.ElementAvailable(ctx, []value.Sequence{singleString("foo:bar")})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.XTDE1400))
}

func TestSystemProperty(t *testing.T) {
	env := testEnv()
	ctx := context.New("", fakeNS{"xsl": "http://www.w3.org/1999/XSL/Transform"})
	out, err := env.SystemProperty(ctx, []value.Sequence{singleString("xsl:version")})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, "3.0", value.StringValueOf(s))
}

func TestCurrentGroupEmptyByDefault(t *testing.T) {
	ctx := context.New("", nil)
	out, err := CurrentGroup(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAccumulatorMissingIsError(t *testing.T) {
	ctx := context.New("", nil)
	_, err := AccumulatorBefore(ctx, []value.Sequence{singleString("count")})
	assert.Error(t, err)
}

func TestSnapshotIsIdentity(t *testing.T) {
	root := firstElement(t, parseDoc(t, `<a/>`))
	ctx := context.New("", nil)
	args := []value.Sequence{value.Single(value.NodeItem{N: root})}
	out, err := Snapshot(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, args[0], out)
}

func TestAnalyzeStringSplitsMatchesAndNonMatches(t *testing.T) {
	ctx := context.New("", nil)
	out, err := AnalyzeString(ctx, []value.Sequence{
		singleString("a1b22c"),
		singleString("[0-9]+"),
		singleString(""),
	})
	require.NoError(t, err)
	it, _ := value.Singleton(out)
	result := firstElement(t, it.(value.NodeItem).N)
	assert.Equal(t, "analyze-string-result", result.Name().Local)

	var kinds []string
	var texts []string
	children := result.Axis(node.Child)
	for children.Next() {
		c := children.Node()
		kinds = append(kinds, c.Name().Local)
		texts = append(texts, c.StringValue())
	}
	assert.Equal(t, []string{"non-match", "match", "non-match", "match", "non-match"}, kinds)
	assert.Equal(t, []string{"a", "1", "b", "22", "c"}, texts)
}

func TestAnalyzeStringBadPatternIsFORX0002(t *testing.T) {
	ctx := context.New("", nil)
	_, err := AnalyzeString(ctx, []value.Sequence{
		singleString("x"),
		singleString("(unterminated"),
		singleString(""),
	})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FORX0002))
}

func TestJSONToXMLAndXMLToJSONRoundTrip(t *testing.T) {
	ctx := context.New("", nil)
	out, err := JSONToXML(ctx, []value.Sequence{singleString(`{"a":1,"b":[true,false]}`)})
	require.NoError(t, err)
	it, _ := value.Singleton(out)
	backOut, err := XMLToJSON(ctx, []value.Sequence{value.Single(it)})
	require.NoError(t, err)
	s, _ := value.Singleton(backOut)
	assert.JSONEq(t, `{"a":1,"b":[true,false]}`, value.StringValueOf(s))
}

func TestJSONToXMLInvalidJSONPropagatesError(t *testing.T) {
	ctx := context.New("", nil)
	_, err := JSONToXML(ctx, []value.Sequence{singleString(`{bad`)})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOJS0001))
}

func TestJSONToXMLHonorsDuplicatesOption(t *testing.T) {
	ctx := context.New("", nil)
	opts := value.NewMap().Put(value.StringAtomic("duplicates"), singleString("reject"))
	_, err := JSONToXML(ctx, []value.Sequence{
		singleString(`{"a":1,"a":2}`),
		value.Single(opts),
	})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOJS0003))
}

func TestUnparsedTextReturnsLoaderContent(t *testing.T) {
	env := testEnv()
	ctx := context.New("", nil)
	out, err := env.UnparsedText(ctx, []value.Sequence{singleString("notes.txt")})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, "line one\nline two\n", value.StringValueOf(s))
}

func TestUnparsedTextLinesSplits(t *testing.T) {
	env := testEnv()
	ctx := context.New("", nil)
	out, err := env.UnparsedTextLines(ctx, []value.Sequence{singleString("notes.txt")})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "line one", value.StringValueOf(out[0]))
	assert.Equal(t, "line two", value.StringValueOf(out[1]))
}

func TestUnparsedTextAvailableFalseOnLoaderError(t *testing.T) {
	env := testEnv()
	env.Texts = stubLoader{err: assert.AnError}
	ctx := context.New("", nil)
	out, err := env.UnparsedTextAvailable(ctx, []value.Sequence{singleString("missing.txt")})
	require.NoError(t, err)
	b, _ := value.Singleton(out)
	assert.Equal(t, value.BooleanAtomic(false), b)
}

func TestUnparsedTextRejectsUnknownEncoding(t *testing.T) {
	env := testEnv()
	ctx := context.New("", nil)
	_, err := env.UnparsedText(ctx, []value.Sequence{singleString("notes.txt"), singleString("not-a-real-charset")})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FOUT1190))
}

func TestUnparsedTextDecodesDeclaredEncoding(t *testing.T) {
	env := testEnv()
	env.Texts = stubLoader{text: "line one\nline two\n"}
	ctx := context.New("", nil)
	out, err := env.UnparsedText(ctx, []value.Sequence{singleString("notes.txt"), singleString("UTF-8")})
	require.NoError(t, err)
	s, _ := value.Singleton(out)
	assert.Equal(t, "line one\nline two\n", value.StringValueOf(s))
}

func TestParseXMLBuildsDocument(t *testing.T) {
	ctx := context.New("", nil)
	out, err := ParseXML(ctx, []value.Sequence{singleString(`<root><child/></root>`)})
	require.NoError(t, err)
	it, _ := value.Singleton(out)
	root := firstElement(t, it.(value.NodeItem).N)
	assert.Equal(t, "root", root.Name().Local)
}

func TestParseXMLMalformedIsFODC0006(t *testing.T) {
	ctx := context.New("", nil)
	_, err := ParseXML(ctx, []value.Sequence{singleString(`<root>`)})
	require.Error(t, err)
	assert.True(t, xerr.Is(err, xerr.FODC0006))
}

func TestParseXMLFragmentReturnsForest(t *testing.T) {
	ctx := context.New("", nil)
	out, err := ParseXMLFragment(ctx, []value.Sequence{singleString(`<a/><b/>`)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].(value.NodeItem).N.Name().Local)
	assert.Equal(t, "b", out[1].(value.NodeItem).N.Name().Local)
}
