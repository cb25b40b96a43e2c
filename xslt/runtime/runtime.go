// Package runtime wires the pure evaluation layers — xpath/value,
// xpath/registry, xslt/context — to the collaborators a hosting
// stylesheet processor supplies: a compiled stylesheet's key/decimal-
// format/user-function declarations, a node model, a document loader,
// and an event sink for result-tree construction. Nothing in this
// package parses or executes stylesheet syntax; it only defines the
// consumer-side shape those collaborators must satisfy and assembles
// the per-transformation state (Environment, Registry, root Context)
// that every expression evaluates against.
package runtime

import (
	"encoding/xml"

	"github.com/CognitoIQ/xslt-runtime/xpath/arrayfn"
	"github.com/CognitoIQ/xslt-runtime/xpath/corefn"
	"github.com/CognitoIQ/xslt-runtime/xpath/mapfn"
	"github.com/CognitoIQ/xslt-runtime/xpath/mathfn"
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/xsdctor"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
	"github.com/CognitoIQ/xslt-runtime/xslt/keyindex"
	"github.com/CognitoIQ/xslt-runtime/xslt/picture"
	"github.com/CognitoIQ/xslt-runtime/xslt/xsltfn"
)

// CompiledStylesheet is the external collaborator holding everything a
// running transformation needs that isn't part of the pure evaluation
// context: key declarations, user-defined functions, decimal-formats,
// whitespace-handling rules, and package identity. A stylesheet
// compiler builds one of these once; many transformations (and many
// concurrent Context derivations) may read it afterward.
type CompiledStylesheet interface {
	// KeyDeclarations returns every xsl:key declaration, keyed by the
	// key's expanded name in Clark notation.
	KeyDeclarations() map[string]keyindex.Declaration
	// LookupFunction resolves a user-defined (stylesheet or package)
	// function by expanded name and arity, implementing
	// registry.UserFunctionResolver's contract.
	LookupFunction(uri, local string, arity int) (*registry.Descriptor, bool)
	// DecimalFormat resolves a named xsl:decimal-format declaration;
	// name is "" for the unnamed default.
	DecimalFormat(name string) (picture.DecimalFormat, bool)
	StripSpace(n node.Node) bool
	PreserveSpace(n node.Node) bool
	// PackageName and PackageVersion back system-property() queries
	// about the running package (xsl:package/@name, @package-version).
	PackageName() string
	PackageVersion() string
}

// EventSink is the abstract output-handler collaborator: the shape
// nodemodel.Builder implements structurally for building RTFs, and the
// shape a real serializer implements for building final output. The
// runtime depends only on this interface, never on a concrete
// implementation, so callers may substitute any conforming serializer.
type EventSink interface {
	StartPrefixMapping(prefix, uri string)
	EndPrefixMapping(prefix string)
	StartElement(uri, local string, attrs []xml.Attr)
	EndElement()
	Characters(text string)
	Comment(text string)
	ProcessingInstruction(target, data string)
}

// DocumentLoader is the host's XML retrieval/parse collaborator,
// satisfying keyindex.DocumentLoader directly.
type DocumentLoader = keyindex.DocumentLoader

// TransformContext bundles one running transformation's collaborators:
// the compiled stylesheet, the process-wide document cache and key
// index (both may be shared across concurrent transformations — see
// xslt/keyindex's concurrency contract), and the raw-text loader
// fn:unparsed-text draws on.
type TransformContext struct {
	Stylesheet    CompiledStylesheet
	Docs          *keyindex.DocumentCache
	Keys          *keyindex.Index
	Texts         xsltfn.TextLoader
	StaticBaseURI string
	// KnownElements/KnownTypes/SystemProperty back
	// element-available/type-available/system-property; a hosting
	// processor populates these from its own instruction and type
	// tables at startup.
	KnownElements  map[string]bool
	KnownTypes     map[string]bool
	SystemProperty map[string]string
}

// New assembles a TransformContext from its collaborators. docs and
// keys may be freshly constructed or shared process-wide state; texts
// may be nil if the hosted stylesheet never calls the unparsed-text
// family.
func New(stylesheet CompiledStylesheet, docs *keyindex.DocumentCache, keys *keyindex.Index, texts xsltfn.TextLoader, staticBaseURI string) *TransformContext {
	return &TransformContext{
		Stylesheet:     stylesheet,
		Docs:           docs,
		Keys:           keys,
		Texts:          texts,
		StaticBaseURI:  staticBaseURI,
		KnownElements:  map[string]bool{},
		KnownTypes:     map[string]bool{},
		SystemProperty: map[string]string{},
	}
}

// userFunctionAdapter satisfies registry.UserFunctionResolver by
// delegating straight to the compiled stylesheet, keeping the registry
// package itself free of any dependency on CompiledStylesheet.
type userFunctionAdapter struct {
	stylesheet CompiledStylesheet
}

func (a userFunctionAdapter) LookupFunction(uri, local string, arity int) (*registry.Descriptor, bool) {
	if a.stylesheet == nil {
		return nil, false
	}
	return a.stylesheet.LookupFunction(uri, local, arity)
}

// newEnvironment builds the xsltfn.Environment every XSLT-specific
// function call closes over, wiring this TransformContext's
// collaborators through to it. reg may be nil; Build backfills it once
// the registry that closes over this same Environment exists.
func (tc *TransformContext) newEnvironment(reg *registry.Registry) *xsltfn.Environment {
	var keyDecls map[string]keyindex.Declaration
	var stripSpace, preserveSpace func(node.Node) bool
	var decimalFormat func(string) (picture.DecimalFormat, bool)
	if tc.Stylesheet != nil {
		keyDecls = tc.Stylesheet.KeyDeclarations()
		stripSpace = tc.Stylesheet.StripSpace
		preserveSpace = tc.Stylesheet.PreserveSpace
		decimalFormat = tc.Stylesheet.DecimalFormat
	}
	return &xsltfn.Environment{
		Keys:                tc.Keys,
		KeyDecls:            keyDecls,
		Docs:                tc.Docs,
		Texts:               tc.Texts,
		StripSpace:          stripSpace,
		PreserveSpace:       preserveSpace,
		StaticBaseURI:       tc.StaticBaseURI,
		Registry:            reg,
		DecimalFormatLookup: decimalFormat,
		KnownElements:       tc.KnownElements,
		KnownTypes:          tc.KnownTypes,
		SystemProperty:      tc.SystemProperty,
	}
}

// mergeTables flattens several Tables into one, later tables winning on
// key collision.
func mergeTables(tables ...registry.Table) registry.Table {
	merged := make(registry.Table)
	for _, t := range tables {
		for k, v := range t {
			merged[k] = v
		}
	}
	return merged
}

// Build assembles the Registry and Environment for one transformation in
// the order their mutual dependency requires: the fn:/xslt core table
// includes the XSLT-specific functions closed over this Environment
// (key, current, document, format-number, and the rest), and the one of
// them that uses the registry, FunctionAvailable, reads the Environment's
// Registry field at call time, not at table-construction time. So the
// Environment is built first with a nil Registry, the core table closes
// over it, and the Registry is backfilled onto the Environment once
// built.
func (tc *TransformContext) Build() (*registry.Registry, *xsltfn.Environment) {
	env := tc.newEnvironment(nil)
	core := mergeTables(corefn.Core(), xsltfn.Table(env))
	reg := registry.New(core, xsdctor.Table, mathfn.Table, mapfn.Table, arrayfn.Table, userFunctionAdapter{stylesheet: tc.Stylesheet})
	env.Registry = reg
	return reg, env
}

// RootContext builds the immutable root evaluation Context a
// transformation's top-level expression derives every focus/scope
// change from.
func (tc *TransformContext) RootContext(ns context.NamespaceResolver) *context.Context {
	return context.New(tc.StaticBaseURI, ns)
}
