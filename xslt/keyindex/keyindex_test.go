package keyindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

// fakeNode is a minimal in-memory node.Node for exercising the walker
// without pulling in nodemodel's XML parser.
type fakeNode struct {
	kind     node.Kind
	name     string
	text     string
	attrs    []*fakeNode
	children []*fakeNode
	parent   *fakeNode
	order    uint64
}

func (n *fakeNode) Kind() node.Kind { return n.kind }
func (n *fakeNode) Name() node.ExpandedName { return node.ExpandedName{Local: n.name} }
func (n *fakeNode) StringValue() string {
	if n.kind == node.Text || n.kind == node.Attribute {
		return n.text
	}
	var s string
	for _, c := range n.children {
		s += c.StringValue()
	}
	return s
}
func (n *fakeNode) Parent() (node.Node, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}
func (n *fakeNode) Root() node.Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}
func (n *fakeNode) IsSameNode(o node.Node) bool { return n == o }
func (n *fakeNode) DocumentOrderKey() uint64     { return n.order }
func (n *fakeNode) BaseURI() (string, bool)      { return "", false }
func (n *fakeNode) DocumentURI() string          { return "" }

func (n *fakeNode) Axis(axis node.Axis) node.Iterator {
	switch axis {
	case node.Child:
		return &fakeIter{nodes: n.children}
	case node.AttributeAxis:
		return &fakeIter{nodes: n.attrs}
	default:
		return &fakeIter{}
	}
}

type fakeIter struct {
	nodes []*fakeNode
	i     int
}

func (it *fakeIter) Next() bool { it.i++; return it.i <= len(it.nodes) }
func (it *fakeIter) Node() node.Node { return it.nodes[it.i-1] }

func buildTree() *fakeNode {
	root := &fakeNode{kind: node.Document, order: 0}
	row1 := &fakeNode{kind: node.Element, name: "row", parent: root, order: 1}
	row1.attrs = []*fakeNode{{kind: node.Attribute, name: "id", text: "a1", parent: row1}}
	row2 := &fakeNode{kind: node.Element, name: "row", parent: root, order: 2}
	row2.attrs = []*fakeNode{{kind: node.Attribute, name: "id", text: "a2", parent: row2}}
	root.children = []*fakeNode{row1, row2}
	return root
}

func idKeyDecl() Declaration {
	return Declaration{
		Name: "row-by-id",
		Clauses: []Clause{{
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

func TestLookupFindsMatchingRow(t *testing.T) {
	ix := NewIndex()
	root := buildTree()
	ctx := context.New("", nil)
	set, err := ix.Lookup(ctx, idKeyDecl(), root, "a2")
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "row", set[0].Name().Local)
}

func TestLookupBuildsOnceAndCaches(t *testing.T) {
	ix := NewIndex()
	root := buildTree()
	calls := 0
	decl := Declaration{
		Name: "counted",
		Clauses: []Clause{{
			Match: func(n node.Node) bool { return n.Kind() == node.Element },
			Use: func(ctx *context.Context, candidate node.Node) (value.Sequence, error) {
				calls++
				return value.Single(value.StringAtomic("x")), nil
			},
		}},
	}
	ctx := context.New("", nil)
	_, err := ix.Lookup(ctx, decl, root, "x")
	require.NoError(t, err)
	_, err = ix.Lookup(ctx, decl, root, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, calls) // two elements matched, built exactly once
}

func TestLookupUnknownValueReturnsEmpty(t *testing.T) {
	ix := NewIndex()
	root := buildTree()
	ctx := context.New("", nil)
	set, err := ix.Lookup(ctx, idKeyDecl(), root, "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, set)
}

type fakeLoader struct {
	docs map[string]node.Node
}

func (l *fakeLoader) Load(uri, baseURI string, strip, preserve func(node.Node) bool) (node.Node, error) {
	return l.docs[uri], nil
}

func TestDocumentCacheLoadsOnce(t *testing.T) {
	loads := 0
	loader := &countingLoader{inner: &fakeLoader{docs: map[string]node.Node{"a.xml": buildTree()}}, count: &loads}
	dc := NewDocumentCache(loader)
	_, err := dc.Doc("a.xml", "", nil, nil)
	require.NoError(t, err)
	_, err = dc.Doc("a.xml", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

type countingLoader struct {
	inner DocumentLoader
	count *int
}

func (l *countingLoader) Load(uri, baseURI string, strip, preserve func(node.Node) bool) (node.Node, error) {
	*l.count++
	return l.inner.Load(uri, baseURI, strip, preserve)
}

func TestDocMissingIsFODC0002(t *testing.T) {
	dc := NewDocumentCache(&fakeLoader{docs: map[string]node.Node{}})
	_, err := dc.Doc("missing.xml", "", nil, nil)
	assert.Error(t, err)
}

func TestDocAvailableSwallowsError(t *testing.T) {
	dc := NewDocumentCache(&fakeLoader{docs: map[string]node.Node{}})
	assert.False(t, dc.DocAvailable("missing.xml", "", nil, nil))
}

func TestSlotIDStableForSameURI(t *testing.T) {
	dc := NewDocumentCache(&fakeLoader{docs: map[string]node.Node{"a.xml": buildTree()}})
	first := dc.SlotID("a.xml")
	assert.NotEmpty(t, first)
	assert.Equal(t, first, dc.SlotID("a.xml"))
	assert.NotEqual(t, first, dc.SlotID("b.xml"))
}
