// Package node defines the abstract tree API the runtime evaluates
// against. The runtime never constructs nodes itself; it
// receives them from a host-supplied tree (the "Node model" external
// collaborator) and only ever reads through this interface.
package node

// Kind identifies the category of a Node.
type Kind int

const (
	Document Kind = iota
	Element
	Attribute
	Text
	Comment
	ProcessingInstruction
	Namespace
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document-node"
	case Element:
		return "element"
	case Attribute:
		return "attribute"
	case Text:
		return "text"
	case Comment:
		return "comment"
	case ProcessingInstruction:
		return "processing-instruction"
	case Namespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// ExpandedName is a (namespace-uri, local-name) pair. Clark notation
// "{uri}local" is the canonical string form; the empty uri means "no
// namespace".
type ExpandedName struct {
	URI   string
	Local string
}

// Clark renders the expanded name in Clark notation.
func (n ExpandedName) Clark() string {
	if n.URI == "" {
		return n.Local
	}
	return "{" + n.URI + "}" + n.Local
}

// Axis enumerates the thirteen XPath axes.
type Axis int

const (
	Self Axis = iota
	Child
	Parent
	Ancestor
	AncestorOrSelf
	Descendant
	DescendantOrSelf
	FollowingSibling
	PrecedingSibling
	Following
	Preceding
	AttributeAxis
	NamespaceAxis
)

// Reverse reports whether an axis produces nodes in reverse document
// order (ancestor*, preceding*, preceding-sibling walk in reverse).
func (a Axis) Reverse() bool {
	switch a {
	case Ancestor, AncestorOrSelf, Preceding, PrecedingSibling:
		return true
	default:
		return false
	}
}

// Iterator yields nodes lazily; it is finite but not restartable.
// Callers that need to re-walk an axis must request a fresh Iterator
// from Node.Axis.
type Iterator interface {
	// Next advances the iterator and reports whether a node is
	// available. Once Next returns false, it will always return false.
	Next() bool
	// Node returns the current node. It is only valid after a call to
	// Next that returned true.
	Node() Node
}

// Node is the capability set every node in the tree exposes. Implementations are shared references; the runtime never
// mutates a Node.
type Node interface {
	Kind() Kind
	Name() ExpandedName
	// StringValue is the node's recursively-concatenated descendant
	// text for element/document nodes, the literal value for
	// attribute/text/comment/PI nodes.
	StringValue() string
	Parent() (Node, bool)
	Root() Node
	Axis(Axis) Iterator
	// IsSameNode uses reference identity, never structural comparison.
	IsSameNode(Node) bool
	// DocumentOrderKey is monotonically increasing within one document;
	// cross-document order is only guaranteed stable, not meaningful on
	// its own.
	DocumentOrderKey() uint64
	// BaseURI is optional; ok is false when the node carries none.
	BaseURI() (uri string, ok bool)
	// DocumentURI identifies the owning document for cache/key-index
	// purposes; empty string for an in-memory/anonymous document.
	DocumentURI() string
}

// Set is a set of nodes in document order with duplicates removed by
// identity. It is the concrete representation the
// Value Model stores node-set values as.
type Set []Node

// Dedup returns a new Set containing s's nodes in document order with
// duplicate identities removed. It is safe to call on an already-deduped,
// already-sorted Set (it is then a no-op copy).
func Dedup(s Set) Set {
	sorted := make(Set, len(s))
	copy(sorted, s)
	sortByDocumentOrder(sorted)
	out := sorted[:0:0]
	for i, n := range sorted {
		if i == 0 || !n.IsSameNode(sorted[i-1]) {
			out = append(out, n)
		}
	}
	return out
}

func sortByDocumentOrder(s Set) {
	// insertion sort is fine: node-sets in practice are small relative
	// to typical stylesheet working sets, and callers that need bulk
	// performance pre-sort via DocumentOrderKey directly.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func less(a, b Node) bool {
	if a.DocumentURI() != b.DocumentURI() {
		return a.DocumentURI() < b.DocumentURI()
	}
	return a.DocumentOrderKey() < b.DocumentOrderKey()
}

// Union returns the document-ordered, deduplicated union of a and b.
func Union(a, b Set) Set {
	combined := make(Set, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Dedup(combined)
}

// Intersect returns nodes present (by identity) in both a and b, in
// document order.
func Intersect(a, b Set) Set {
	bSet := make(map[Node]bool, len(b))
	for _, n := range b {
		bSet[identityKey(n)] = true
	}
	var out Set
	for _, n := range Dedup(a) {
		if bSet[identityKey(n)] {
			out = append(out, n)
		}
	}
	return out
}

// Except returns nodes present in a but not (by identity) in b, in
// document order.
func Except(a, b Set) Set {
	bSet := make(map[Node]bool, len(b))
	for _, n := range b {
		bSet[identityKey(n)] = true
	}
	var out Set
	for _, n := range Dedup(a) {
		if !bSet[identityKey(n)] {
			out = append(out, n)
		}
	}
	return out
}

// identityKey builds a map key usable for a Node despite Node being an
// interface over possibly-unhashable implementations; implementations in
// this module are always pointers, which are hashable map keys, so this
// is simply an identity function kept for readability at call sites.
func identityKey(n Node) Node { return n }
