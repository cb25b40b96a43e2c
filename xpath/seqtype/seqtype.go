// Package seqtype implements the `as="..."` sequence type system: parsing
// a type descriptor, matching a Sequence against it, and coercing a
// value into it (the basis for XTTE0505 return-type checking in
// xpath/callable).
package seqtype

import (
	"fmt"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
)

// ItemKind is the item-test half of a SequenceType.
type ItemKind int

const (
	AnyItem ItemKind = iota
	Node
	Element
	Attribute
	Text
	Comment
	ProcessingInstruction
	DocumentNode
	Atomic
	EmptySequence
)

// Occurrence is the cardinality indicator on a SequenceType.
type Occurrence int

const (
	One Occurrence = iota
	ZeroOrOne
	OneOrMore
	ZeroOrMore
)

func (o Occurrence) allows(n int) bool {
	switch o {
	case One:
		return n == 1
	case ZeroOrOne:
		return n <= 1
	case OneOrMore:
		return n >= 1
	default:
		return true
	}
}

func (o Occurrence) String() string {
	switch o {
	case ZeroOrOne:
		return "?"
	case OneOrMore:
		return "+"
	case ZeroOrMore:
		return "*"
	default:
		return ""
	}
}

// SequenceType is a parsed `as="..."` descriptor.
type SequenceType struct {
	ItemKind   ItemKind
	NameTest   node.ExpandedName // for element()/attribute() with a name test; Local == "" means *
	TypeName   string            // for element(*, type) / atomic kind name
	Occurrence Occurrence
}

func (st SequenceType) String() string {
	var base string
	switch st.ItemKind {
	case AnyItem:
		base = "item()"
	case Node:
		base = "node()"
	case Element:
		base = "element()"
	case Attribute:
		base = "attribute()"
	case Text:
		base = "text()"
	case Comment:
		base = "comment()"
	case ProcessingInstruction:
		base = "processing-instruction()"
	case DocumentNode:
		base = "document-node()"
	case EmptySequence:
		return "empty-sequence()"
	case Atomic:
		base = st.TypeName
	}
	return base + st.Occurrence.String()
}

// Parse parses a sequence-type descriptor string of the grammar
// `item-kind[occurrence]` for the closed set of item kinds named above,
// plus bare atomic type names (e.g. "xs:integer", "xs:string?").
func Parse(s string) (SequenceType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SequenceType{}, xerr.New(xerr.XPTY0004, "empty sequence type descriptor")
	}
	occ := One
	last := s[len(s)-1]
	switch last {
	case '?':
		occ, s = ZeroOrOne, s[:len(s)-1]
	case '+':
		occ, s = OneOrMore, s[:len(s)-1]
	case '*':
		occ, s = ZeroOrMore, s[:len(s)-1]
	}
	s = strings.TrimSpace(s)

	switch {
	case s == "empty-sequence()":
		return SequenceType{ItemKind: EmptySequence}, nil
	case s == "item()":
		return SequenceType{ItemKind: AnyItem, Occurrence: occ}, nil
	case s == "node()":
		return SequenceType{ItemKind: Node, Occurrence: occ}, nil
	case s == "text()":
		return SequenceType{ItemKind: Text, Occurrence: occ}, nil
	case s == "comment()":
		return SequenceType{ItemKind: Comment, Occurrence: occ}, nil
	case s == "processing-instruction()":
		return SequenceType{ItemKind: ProcessingInstruction, Occurrence: occ}, nil
	case s == "document-node()":
		return SequenceType{ItemKind: DocumentNode, Occurrence: occ}, nil
	case s == "element()" || s == "element(*)":
		return SequenceType{ItemKind: Element, Occurrence: occ}, nil
	case s == "attribute()" || s == "attribute(*)":
		return SequenceType{ItemKind: Attribute, Occurrence: occ}, nil
	case strings.HasPrefix(s, "element(") && strings.HasSuffix(s, ")"):
		name, typeName := splitNodeTestArgs(s, "element(")
		return SequenceType{ItemKind: Element, NameTest: node.ExpandedName{Local: name}, TypeName: typeName, Occurrence: occ}, nil
	case strings.HasPrefix(s, "attribute(") && strings.HasSuffix(s, ")"):
		name, typeName := splitNodeTestArgs(s, "attribute(")
		return SequenceType{ItemKind: Attribute, NameTest: node.ExpandedName{Local: name}, TypeName: typeName, Occurrence: occ}, nil
	default:
		// Anything else is treated as an atomic type name (xs:integer,
		// xs:string, a user-defined simple type name, …).
		return SequenceType{ItemKind: Atomic, TypeName: s, Occurrence: occ}, nil
	}
}

func splitNodeTestArgs(s, prefix string) (name, typeName string) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, prefix), ")")
	parts := strings.SplitN(inner, ",", 2)
	name = strings.TrimSpace(parts[0])
	if name == "*" {
		name = ""
	}
	if len(parts) > 1 {
		typeName = strings.TrimSpace(parts[1])
	}
	return name, typeName
}

// Matches reports whether seq conforms to st.
func Matches(st SequenceType, seq value.Sequence) bool {
	if st.ItemKind == EmptySequence {
		return len(seq) == 0
	}
	if !st.Occurrence.allows(len(seq)) {
		return false
	}
	for _, it := range seq {
		if !itemMatches(st, it) {
			return false
		}
	}
	return true
}

func itemMatches(st SequenceType, it value.Item) bool {
	switch st.ItemKind {
	case AnyItem:
		return true
	case Atomic:
		a, ok := it.(value.Atomic)
		if !ok {
			return false
		}
		return matchesAtomicKind(a.Kind(), st.TypeName)
	case Node, Element, Attribute, Text, Comment, ProcessingInstruction, DocumentNode:
		ni, ok := it.(value.NodeItem)
		if !ok {
			return false
		}
		return matchesNodeKind(st, ni.N)
	default:
		return false
	}
}

func matchesNodeKind(st SequenceType, n node.Node) bool {
	k := n.Kind()
	switch st.ItemKind {
	case Node:
		return true
	case Element:
		if k != node.Element {
			return false
		}
		return st.NameTest.Local == "" || st.NameTest.Local == n.Name().Local
	case Attribute:
		if k != node.Attribute {
			return false
		}
		return st.NameTest.Local == "" || st.NameTest.Local == n.Name().Local
	case Text:
		return k == node.Text
	case Comment:
		return k == node.Comment
	case ProcessingInstruction:
		return k == node.ProcessingInstruction
	case DocumentNode:
		return k == node.Document
	}
	return false
}

// atomicKindNames maps an xs:-prefixed type name to the AtomicKind it
// names, including the minimal derived-type hierarchy an un-schema-aware
// runtime can still honor (e.g. xs:integer is accepted where xs:decimal
// is required, since integer is a restriction of decimal).
var atomicKindNames = map[string]value.AtomicKind{
	"xs:string": value.KString, "xs:boolean": value.KBoolean,
	"xs:double": value.KDouble, "xs:decimal": value.KDecimal, "xs:integer": value.KInteger,
	"xs:anyURI": value.KAnyURI, "xs:QName": value.KQName,
	"xs:hexBinary": value.KHexBinary, "xs:base64Binary": value.KBase64Binary,
	"xs:dateTime": value.KDateTime, "xs:date": value.KDate, "xs:time": value.KTime,
	"xs:gYear": value.KGYear, "xs:gYearMonth": value.KGYearMonth,
	"xs:gMonth": value.KGMonth, "xs:gMonthDay": value.KGMonthDay, "xs:gDay": value.KGDay,
	"xs:duration": value.KDuration, "xs:yearMonthDuration": value.KYearMonthDuration,
	"xs:dayTimeDuration": value.KDayTimeDuration,
}

func matchesAtomicKind(k value.AtomicKind, typeName string) bool {
	want, ok := atomicKindNames[typeName]
	if !ok {
		return true // unknown/user-defined simple type names: accept, un-schema-aware
	}
	if want == k {
		return true
	}
	// xs:decimal accepts xs:integer (integer is decimal's restriction);
	// xs:double is the XPath numeric supertype used loosely by callers.
	if want == value.KDecimal && k == value.KInteger {
		return true
	}
	if want == value.KDouble && (k == value.KInteger || k == value.KDecimal) {
		return true
	}
	return false
}

// Coerce atomizes and string-converts it into the declared atomic type
// of st (the return-value coercion path: atomize, then string-convert
// into the declared type), raising XTTE0505 on failure.
// Node-kinded SequenceTypes are returned unchanged if they already
// match; Coerce only performs atomic conversion.
func Coerce(st SequenceType, seq value.Sequence, ctor func(typeName, lexical string) (value.Item, error)) (value.Sequence, error) {
	if st.ItemKind != Atomic {
		if !Matches(st, seq) {
			return nil, xerr.TypeError(xerr.XTTE0505, st.String(), describeSeq(seq), "return value does not match declared type")
		}
		return seq, nil
	}
	out := make(value.Sequence, len(seq))
	for i, it := range seq {
		lexical := value.StringValueOf(it)
		converted, err := ctor(st.TypeName, lexical)
		if err != nil {
			return nil, xerr.TypeError(xerr.XTTE0505, st.TypeName, it.TypeName(), "cannot coerce %q to %s", lexical, st.TypeName)
		}
		out[i] = converted
	}
	if !st.Occurrence.allows(len(out)) {
		return nil, xerr.TypeError(xerr.XTTE0505, st.String(), describeSeq(seq), "wrong cardinality")
	}
	return out, nil
}

func describeSeq(seq value.Sequence) string {
	return fmt.Sprintf("sequence of %d items", len(seq))
}
