// Package value implements the XPath/XSLT Value Model: atomic values,
// sequences, node-sets, maps, arrays, and function items.
//
// The atomic-kind enumeration follows the same closed-set shape as a
// schema type enumeration would: same iota block shape, same
// "marker method" idiom for sealing the Item interface, rescoped from
// "schema type" to "XPath atomic kind".
package value

import "github.com/CognitoIQ/xslt-runtime/xpath/node"

// Item is anything that can appear in a Sequence: an Atomic value, a node,
// a Map, an Array, or a Function. A Sequence never contains another
// Sequence as an Item; Map and Array may
// contain Sequences as their values/elements.
type Item interface {
	// isItem is unexported so only this package's concrete types satisfy
	// Item, the same closed-set idiom used for sealing a type hierarchy.
	isItem()
	// TypeName is a short, human-readable type descriptor used in
	// XPTY0004/XTTE0505 error messages (e.g. "xs:integer", "element()",
	// "map(*)").
	TypeName() string
}

// Sequence is a finite, ordered, heterogeneous list of Items.
// A nil or zero-length Sequence is the distinguished empty sequence.
type Sequence []Item

// Single wraps v in a one-item Sequence. A single item and a one-item
// sequence are interchangeable, so constructors favor this
// helper over composite literals.
func Single(v Item) Sequence { return Sequence{v} }

// Empty is the empty sequence.
func Empty() Sequence { return nil }

// Concat appends sequences together, preserving source order. The flattening law
// holds automatically since none of the inputs may themselves contain a
// Sequence as an Item — that would not type-check against Item.
func Concat(seqs ...Sequence) Sequence {
	n := 0
	for _, s := range seqs {
		n += len(s)
	}
	out := make(Sequence, 0, n)
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

// NodeSet builds a Sequence of NodeItems from a node.Set, preserving its
// order (callers are expected to have already deduplicated/ordered the
// Set via node.Dedup when that matters).
func NodeSet(set node.Set) Sequence {
	out := make(Sequence, len(set))
	for i, n := range set {
		out[i] = NodeItem{N: n}
	}
	return out
}

// IsNodeSet reports whether every item in the sequence is a node, which
// is true (vacuously) for the empty sequence.
func (s Sequence) IsNodeSet() bool {
	for _, it := range s {
		if _, ok := it.(NodeItem); !ok {
			return false
		}
	}
	return true
}

// Nodes extracts the node.Set backing a node-set Sequence. It panics if
// the sequence contains a non-node item; callers must check IsNodeSet
// (or otherwise know the static type) first.
func (s Sequence) Nodes() node.Set {
	out := make(node.Set, len(s))
	for i, it := range s {
		out[i] = it.(NodeItem).N
	}
	return out
}
