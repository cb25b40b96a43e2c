package nodemodel

import "github.com/CognitoIQ/xslt-runtime/xpath/node"

// sliceIterator adapts a pre-built, already-ordered []node.Node into a
// node.Iterator. Every axis below materializes its result set eagerly;
// the tree sizes this runtime targets (single-document stylesheet runs)
// make that the simplest correct choice, and node.Iterator's contract
// (finite, not restartable) is satisfied either way.
type sliceIterator struct {
	nodes []node.Node
	i     int
}

func (it *sliceIterator) Next() bool {
	if it.i >= len(it.nodes) {
		return false
	}
	it.i++
	return true
}

func (it *sliceIterator) Node() node.Node { return it.nodes[it.i-1] }

func iter(nodes []node.Node) node.Iterator { return &sliceIterator{nodes: nodes} }

// Axis implements node.Node.
func (el *Element) Axis(axis node.Axis) node.Iterator {
	switch axis {
	case node.Self:
		return iter([]node.Node{el})
	case node.Child:
		return iter(el.childNodes())
	case node.Parent:
		if el.parent == nil {
			return iter(nil)
		}
		return iter([]node.Node{el.parent})
	case node.Ancestor:
		return iter(el.ancestors(false))
	case node.AncestorOrSelf:
		return iter(el.ancestors(true))
	case node.Descendant:
		return iter(el.descendants(false))
	case node.DescendantOrSelf:
		return iter(el.descendants(true))
	case node.FollowingSibling:
		return iter(el.siblings(1))
	case node.PrecedingSibling:
		return iter(el.siblings(-1))
	case node.Following:
		return iter(el.followingOrPreceding(true))
	case node.Preceding:
		return iter(el.followingOrPreceding(false))
	case node.AttributeAxis:
		return iter(el.attributeNodes())
	case node.NamespaceAxis:
		return iter(el.namespaceNodes())
	default:
		return iter(nil)
	}
}

func (el *Element) childNodes() []node.Node {
	out := make([]node.Node, len(el.children))
	for i, c := range el.children {
		out[i] = c
	}
	return out
}

func (el *Element) ancestors(self bool) []node.Node {
	var out []node.Node
	if self {
		out = append(out, el)
	}
	for p := el.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

func (el *Element) descendants(self bool) []node.Node {
	var out []node.Node
	if self {
		out = append(out, el)
	}
	var walk func(*Element)
	walk = func(e *Element) {
		for _, c := range e.children {
			out = append(out, c)
			if c.kind == node.Element {
				walk(c)
			}
		}
	}
	walk(el)
	return out
}

// siblings returns following (dir=1) or preceding (dir=-1) siblings, in
// document order (preceding siblings come back in reverse document
// order).
func (el *Element) siblings(dir int) []node.Node {
	if el.parent == nil {
		return nil
	}
	idx := -1
	for i, c := range el.parent.children {
		if c == el {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var out []node.Node
	if dir > 0 {
		for i := idx + 1; i < len(el.parent.children); i++ {
			out = append(out, el.parent.children[i])
		}
	} else {
		for i := idx - 1; i >= 0; i-- {
			out = append(out, el.parent.children[i])
		}
	}
	return out
}

// followingOrPreceding walks the whole document (excluding ancestors and
// descendants/self, per the XPath axis definitions) and partitions by
// document-order key. preceding nodes come back in reverse document
// order.
func (el *Element) followingOrPreceding(following bool) []node.Node {
	if el.doc == nil || el.doc.root == nil {
		return nil
	}
	ancestorSet := make(map[*Element]bool)
	for p := el.parent; p != nil; p = p.parent {
		ancestorSet[p] = true
	}
	descendantSet := make(map[*Element]bool)
	var mark func(*Element)
	mark = func(e *Element) {
		for _, c := range e.children {
			descendantSet[c] = true
			if c.kind == node.Element {
				mark(c)
			}
		}
	}
	mark(el)

	var out []node.Node
	var walk func(*Element)
	walk = func(e *Element) {
		if e != el && !ancestorSet[e] && !descendantSet[e] {
			if following && e.order > el.order {
				out = append(out, e)
			} else if !following && e.order < el.order {
				out = append(out, e)
			}
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	walk(el.doc.root)

	if !following {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (el *Element) attributeNodes() []node.Node {
	if el.kind != node.Element {
		return nil
	}
	out := make([]node.Node, 0, len(el.attr))
	for i, a := range el.attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out = append(out, &Element{
			kind: node.Attribute, name: a.Name, text: a.Value,
			parent: el, doc: el.doc, order: el.order + uint64(i) + 1,
		})
	}
	return out
}

func (el *Element) namespaceNodes() []node.Node {
	if el.kind != node.Element {
		return nil
	}
	bindings := el.scope.bindings()
	out := make([]node.Node, 0, len(bindings))
	for i, ns := range bindings {
		out = append(out, &Element{
			kind: node.Namespace, name: xmlName(ns.Local), text: ns.Space,
			parent: el, doc: el.doc, order: el.order + uint64(len(el.attr)) + uint64(i) + 1,
		})
	}
	return out
}
