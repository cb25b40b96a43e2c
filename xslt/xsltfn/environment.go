// Package xsltfn implements the XSLT-specific function library: the
// functions that need more than the pure XPath evaluation context —
// the key index, the document cache, decimal-format declarations,
// stylesheet metadata, and the regex/JSON/unparsed-text helpers.
package xsltfn

import (
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xslt/keyindex"
	"github.com/CognitoIQ/xslt-runtime/xslt/picture"
)

// TextLoader is the external collaborator fn:unparsed-text and friends
// draw on — the host's raw-resource retrieval, distinct from the
// Document loader which parses XML. It returns the resource's raw bytes
// undecoded; UnparsedText applies the requested character encoding
// itself so FOUT1190 can distinguish a retrieval failure from an
// encoding failure.
type TextLoader interface {
	LoadText(uri, baseURI string) ([]byte, error)
}

// Environment bundles every collaborator the XSLT function library
// needs beyond the pure evaluation Context: the compiled stylesheet's
// key declarations, the process-wide key index and document cache, its
// decimal-format declarations, and the static availability tables
// element-available/function-available/type-available consult.
type Environment struct {
	Keys            *keyindex.Index
	KeyDecls        map[string]keyindex.Declaration
	Docs            *keyindex.DocumentCache
	Texts           TextLoader
	StripSpace      func(node.Node) bool
	PreserveSpace   func(node.Node) bool
	StaticBaseURI  string
	Registry       *registry.Registry
	// DecimalFormatLookup resolves a named xsl:decimal-format
	// declaration ("" for the unnamed default); nil means no
	// declarations exist at all, in which case the unnamed default
	// still resolves to the built-in format.
	DecimalFormatLookup func(name string) (picture.DecimalFormat, bool)
	KnownElements       map[string]bool // xsl:-namespace instruction names recognized by this processor
	KnownTypes          map[string]bool // xs:-namespace type names recognized by this processor
	SystemProperty      map[string]string
	AtomicConstruct     func(typeName, lexical string) (interface{}, error)
}

// decimalFormat resolves name (empty string means the unnamed default
// format) against env's declarations, falling back to the built-in
// default when no lookup collaborator is wired at all.
func (env *Environment) decimalFormat(name string) (picture.DecimalFormat, bool) {
	if env.DecimalFormatLookup == nil {
		if name == "" {
			return picture.DefaultDecimalFormat(), true
		}
		return picture.DecimalFormat{}, false
	}
	return env.DecimalFormatLookup(name)
}
