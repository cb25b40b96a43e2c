package nodemodel

import (
	"sort"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
)

// Equal reports whether two Elements are equal, ignoring differences in
// whitespace-only text, sub-element order, and namespace prefixes.
func Equal(a, b *Element) bool { return equal(a, b, 0) }

func equal(a, b *Element, depth int) bool {
	const maxDepth = 1000
	if depth > maxDepth {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case node.Text, node.Comment, node.ProcessingInstruction:
		return strings.TrimSpace(a.text) == strings.TrimSpace(b.text)
	}
	if !equalElement(a, b) {
		return false
	}
	aKids := significantChildren(a)
	bKids := significantChildren(b)
	if len(aKids) != len(bKids) {
		return false
	}
	sort.Sort(byName(aKids))
	sort.Sort(byName(bKids))
	for i := range aKids {
		if !equal(aKids[i], bKids[i], depth+1) {
			return false
		}
	}
	return true
}

// significantChildren drops whitespace-only text children so comparison
// ignores incidental formatting whitespace.
func significantChildren(el *Element) []*Element {
	var out []*Element
	for _, c := range el.children {
		if c.kind == node.Text && strings.TrimSpace(c.text) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

type byName []*Element

func (l byName) Len() int { return len(l) }
func (l byName) Less(i, j int) bool {
	return l[i].name.Space+l[i].name.Local < l[j].name.Space+l[j].name.Local
}
func (l byName) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

func equalElement(a, b *Element) bool {
	if a.name != b.name {
		return false
	}
	attrs := make(map[string]string)
	for _, at := range a.attr {
		if at.Name.Space == "xmlns" || at.Name.Local == "xmlns" {
			continue
		}
		attrs[at.Name.Space+"|"+at.Name.Local] = at.Value
	}
	seen := 0
	for _, at := range b.attr {
		if at.Name.Space == "xmlns" || at.Name.Local == "xmlns" {
			continue
		}
		v, ok := attrs[at.Name.Space+"|"+at.Name.Local]
		if !ok || v != at.Value {
			return false
		}
		seen++
	}
	return seen == len(attrs)
}
