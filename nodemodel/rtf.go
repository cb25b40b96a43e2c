package nodemodel

import (
	"encoding/xml"
	"fmt"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
)

// Builder buffers an event stream and, on Finish, interprets it as a
// single document node: a result tree fragment. Its method set mirrors the abstract Event sink collaborator
// of the output-handler collaborator, so the runtime can build RTFs with the same shape of
// calls the real serializer receives, without depending on the serializer
// itself.
type Builder struct {
	doc   *Document
	stack []*Element
	nsDecl []xml.Name
}

// NewBuilder starts a fresh RTF builder.
func NewBuilder() *Builder {
	doc := &Document{}
	return &Builder{doc: doc}
}

func (b *Builder) current() *Element {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// StartPrefixMapping records a namespace binding to apply to the next
// StartElement call.
func (b *Builder) StartPrefixMapping(prefix, uri string) {
	b.nsDecl = append(b.nsDecl, xml.Name{Space: uri, Local: prefix})
}

// EndPrefixMapping is a no-op for RTF construction: scopes are derived
// per-element from the accumulated nsDecl at StartElement time, so
// nothing needs to be undone here.
func (b *Builder) EndPrefixMapping(prefix string) {}

// StartElement opens an element with the given expanded name and
// attributes (each attribute name must already be expanded).
func (b *Builder) StartElement(uri, local string, attrs []xml.Attr) {
	parentScope := Scope{}
	if p := b.current(); p != nil {
		parentScope = p.scope
	}
	scope := parentScope
	if len(b.nsDecl) > 0 {
		next := make([]xml.Name, len(scope.ns)+len(b.nsDecl))
		copy(next, scope.ns)
		copy(next[len(scope.ns):], b.nsDecl)
		scope = Scope{ns: next}
		b.nsDecl = nil
	}
	el := &Element{
		kind: node.Element, name: xml.Name{Space: uri, Local: local},
		attr: attrs, parent: b.current(), scope: scope, doc: b.doc, order: b.doc.next(),
	}
	if p := b.current(); p != nil {
		p.children = append(p.children, el)
	} else {
		b.doc.root = el
	}
	b.stack = append(b.stack, el)
}

// EndElement closes the most recently opened element.
func (b *Builder) EndElement() {
	if len(b.stack) == 0 {
		panic("nodemodel: EndElement with no open element")
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// Characters appends a text node to the current element.
func (b *Builder) Characters(text string) {
	p := b.current()
	if p == nil {
		return
	}
	p.children = append(p.children, &Element{kind: node.Text, text: text, parent: p, doc: b.doc, order: b.doc.next()})
}

// Comment appends a comment node to the current element.
func (b *Builder) Comment(text string) {
	p := b.current()
	if p == nil {
		return
	}
	p.children = append(p.children, &Element{kind: node.Comment, text: text, parent: p, doc: b.doc, order: b.doc.next()})
}

// ProcessingInstruction appends a PI node to the current element.
func (b *Builder) ProcessingInstruction(target, data string) {
	p := b.current()
	if p == nil {
		return
	}
	p.children = append(p.children, &Element{
		kind: node.ProcessingInstruction, piTarget: target, text: data,
		parent: p, doc: b.doc, order: b.doc.next(),
	})
}

// Finish closes the builder and returns the buffered document. It is an
// error to call Finish with unclosed elements.
func (b *Builder) Finish() (*Document, error) {
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("nodemodel: %d unclosed element(s) at Finish", len(b.stack))
	}
	return b.doc, nil
}
