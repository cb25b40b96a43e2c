// Package nodemodel converts XML documents into a tree that satisfies the
// abstract node.Node interface the runtime evaluates against.
//
// The parser reads with encoding/xml and keeps a namespace-Scope/prefix
// resolution layer, but the tree it builds is not "elements with one
// opaque Content blob" — it carries text, comment, and
// processing-instruction children as first-class nodes, and assigns
// every node a monotone document-order key, because the runtime needs
// real axis traversal and node identity, not just round-trip marshaling.
package nodemodel

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
)

const recursionLimit = 3000

var errDeepXML = errors.New("nodemodel: xml document too deeply nested")

// Document owns a parsed tree and assigns it a stable document-order
// numbering and a document URI used as a document-cache key.
type Document struct {
	uri     string
	root    *Element
	counter uint64
}

// URI is the document's base/cache-key URI, or "" for an anonymous or
// in-memory document (e.g. a result tree fragment).
func (d *Document) URI() string { return d.uri }

// Root returns the document's root element.
func (d *Document) Root() *Element { return d.root }

// AsNode returns the document node itself (node.Document kind), whose
// sole child is the root element.
func (d *Document) AsNode() node.Node {
	return &Element{kind: node.Document, doc: d, children: []*Element{d.root}}
}

func (d *Document) next() uint64 {
	d.counter++
	return d.counter
}

// Element is the single concrete node type backing every node.Kind: a
// document, element, attribute, text, comment, processing-instruction, or
// namespace node is an *Element with its kind field set accordingly.
// Elements are shared, read-only references once a Document finishes
// parsing.
type Element struct {
	kind     node.Kind
	name     xml.Name
	attr     []xml.Attr // StartElement attributes, element kind only
	text     string     // literal value for text/comment/PI/attribute nodes
	piTarget string      // processing-instruction target
	children []*Element  // element/document kind only, in document order
	parent   *Element
	scope    Scope
	doc      *Document
	order    uint64
}

// Kind implements node.Node.
func (el *Element) Kind() node.Kind { return el.kind }

// Name implements node.Node.
func (el *Element) Name() node.ExpandedName {
	switch el.kind {
	case node.ProcessingInstruction:
		return node.ExpandedName{Local: el.piTarget}
	case node.Element, node.Attribute, node.Namespace:
		return node.ExpandedName{URI: el.name.Space, Local: el.name.Local}
	default:
		return node.ExpandedName{}
	}
}

// Attr gets the value of the first attribute whose name matches the space
// and local arguments. If space is the empty string, only the local name
// is considered.
func (el *Element) Attr(space, local string) string {
	for _, a := range el.attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || space == a.Name.Space {
			return a.Value
		}
	}
	return ""
}

// StringValue implements node.Node.
func (el *Element) StringValue() string {
	switch el.kind {
	case node.Element, node.Document:
		var buf bytes.Buffer
		el.collectText(&buf)
		return buf.String()
	default:
		return el.text
	}
}

func (el *Element) collectText(buf *bytes.Buffer) {
	for _, c := range el.children {
		switch c.kind {
		case node.Text:
			buf.WriteString(c.text)
		case node.Element:
			c.collectText(buf)
		}
	}
}

// Parent implements node.Node.
func (el *Element) Parent() (node.Node, bool) {
	if el.parent == nil {
		return nil, false
	}
	return el.parent, true
}

// Root implements node.Node.
func (el *Element) Root() node.Node { return el.doc.AsNode() }

// IsSameNode implements node.Node using pointer identity, as required by
// (node identity is reference-equality).
func (el *Element) IsSameNode(other node.Node) bool {
	o, ok := other.(*Element)
	return ok && o == el
}

// DocumentOrderKey implements node.Node.
func (el *Element) DocumentOrderKey() uint64 { return el.order }

// BaseURI implements node.Node for every node kind: the xml:base of the
// nearest element in the ancestor-or-self chain that has one, else the
// document's URI; ok is false when neither is set.
func (el *Element) BaseURI() (string, bool) {
	for n := el; n != nil; n = n.parent {
		if n.kind == node.Element {
			if base := n.Attr("http://www.w3.org/XML/1998/namespace", "base"); base != "" {
				return base, true
			}
		}
	}
	if el.doc != nil && el.doc.uri != "" {
		return el.doc.uri, true
	}
	return "", false
}

// DocumentURI implements node.Node.
func (el *Element) DocumentURI() string {
	if el.doc == nil {
		return ""
	}
	return el.doc.uri
}

// Parse builds a Document by reading an XML document with encoding/xml,
// retaining text/comment/PI nodes and assigning document order.
func Parse(uri string, doc []byte) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(doc))
	document := &Document{uri: uri}
	p := &parser{dec: d, doc: document}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			root, err := p.parseElement(start, Scope{}, nil, 0)
			if err != nil {
				return nil, err
			}
			document.root = root
			return document, nil
		}
	}
}

type parser struct {
	dec *xml.Decoder
	doc *Document
}

func (p *parser) parseElement(start xml.StartElement, outer Scope, parent *Element, depth int) (*Element, error) {
	if depth > recursionLimit {
		return nil, errDeepXML
	}
	scope := outer.push(start)
	el := &Element{
		kind:   node.Element,
		name:   start.Name,
		attr:   start.Attr,
		parent: parent,
		scope:  scope,
		doc:    p.doc,
		order:  p.doc.next(),
	}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := p.parseElement(t.Copy(), scope, el, depth+1)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.EndElement:
			if t.Name != start.Name {
				return nil, fmt.Errorf("nodemodel: expected </%s>, got </%s>", start.Name.Local, t.Name.Local)
			}
			return el, nil
		case xml.CharData:
			el.children = append(el.children, &Element{
				kind: node.Text, text: string(t), parent: el, doc: p.doc, order: p.doc.next(),
			})
		case xml.Comment:
			el.children = append(el.children, &Element{
				kind: node.Comment, text: string(t), parent: el, doc: p.doc, order: p.doc.next(),
			})
		case xml.ProcInst:
			el.children = append(el.children, &Element{
				kind: node.ProcessingInstruction, piTarget: t.Target, text: string(t.Inst),
				parent: el, doc: p.doc, order: p.doc.next(),
			})
		}
	}
}
