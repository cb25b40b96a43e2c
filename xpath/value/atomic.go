package value

import (
	"encoding/base64"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
)

// AtomicKind enumerates the closed set of atomic kinds, ordered
// alphabetical-ish within related groups, with a go:generate stringer
// pattern for its String method.
type AtomicKind int

//go:generate stringer -type=AtomicKind

const (
	KString AtomicKind = iota
	KBoolean
	KDouble
	KDecimal
	KInteger
	KAnyURI
	KQName
	KHexBinary
	KBase64Binary
	KDateTime
	KDate
	KTime
	KGYear
	KGYearMonth
	KGMonth
	KGMonthDay
	KGDay
	KDuration
	KYearMonthDuration
	KDayTimeDuration
)

// Atomic is a single atomic value. Every
// concrete representation in this package (StringAtomic, BooleanAtomic,
// NumericAtomic, …) implements it.
type Atomic interface {
	Item
	Kind() AtomicKind
	// Lexical renders the value's canonical lexical form, used by
	// as_string, xs:TYPE constructors' round-trip, and error messages.
	Lexical() string
}

// StringAtomic is an xs:string, xs:anyURI, xs:QName-ish textual value;
// AnyURI and QName get their own wrapper types below so that functions
// can require the more specific kind.
type StringAtomic string

func (StringAtomic) isItem()          {}
func (StringAtomic) TypeName() string { return "xs:string" }
func (StringAtomic) Kind() AtomicKind { return KString }
func (s StringAtomic) Lexical() string { return string(s) }

// BooleanAtomic is an xs:boolean.
type BooleanAtomic bool

func (BooleanAtomic) isItem()          {}
func (BooleanAtomic) TypeName() string { return "xs:boolean" }
func (BooleanAtomic) Kind() AtomicKind { return KBoolean }
func (b BooleanAtomic) Lexical() string {
	if b {
		return "true"
	}
	return "false"
}

// AnyURIAtomic is an xs:anyURI.
type AnyURIAtomic string

func (AnyURIAtomic) isItem()           {}
func (AnyURIAtomic) TypeName() string  { return "xs:anyURI" }
func (AnyURIAtomic) Kind() AtomicKind  { return KAnyURI }
func (u AnyURIAtomic) Lexical() string { return string(u) }

// QNameAtomic is an xs:QName: an expanded name plus the lexical prefix it
// was written with.
type QNameAtomic struct {
	Name   node.ExpandedName
	Prefix string
}

func (QNameAtomic) isItem()          {}
func (QNameAtomic) TypeName() string { return "xs:QName" }
func (QNameAtomic) Kind() AtomicKind { return KQName }
func (q QNameAtomic) Lexical() string {
	if q.Prefix == "" {
		return q.Name.Local
	}
	return q.Prefix + ":" + q.Name.Local
}

// HexBinaryAtomic is an xs:hexBinary.
type HexBinaryAtomic []byte

func (HexBinaryAtomic) isItem()          {}
func (HexBinaryAtomic) TypeName() string { return "xs:hexBinary" }
func (HexBinaryAtomic) Kind() AtomicKind { return KHexBinary }
func (h HexBinaryAtomic) Lexical() string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, len(h)*2)
	for i, b := range h {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0xf]
	}
	return string(out)
}

// Base64BinaryAtomic is an xs:base64Binary.
type Base64BinaryAtomic []byte

func (Base64BinaryAtomic) isItem()          {}
func (Base64BinaryAtomic) TypeName() string { return "xs:base64Binary" }
func (Base64BinaryAtomic) Kind() AtomicKind { return KBase64Binary }
func (b Base64BinaryAtomic) Lexical() string { return base64.StdEncoding.EncodeToString(b) }
