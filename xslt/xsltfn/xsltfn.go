package xsltfn

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/CognitoIQ/xslt-runtime/nodemodel"
	"github.com/CognitoIQ/xslt-runtime/xpath/jsonxml"
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
	"github.com/CognitoIQ/xslt-runtime/xslt/picture"
)

func singleString(s string) value.Sequence { return value.Single(value.StringAtomic(s)) }
func singleBool(b bool) value.Sequence     { return value.Single(value.BooleanAtomic(b)) }

func argString(args []value.Sequence, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	it, ok := value.Singleton(args[i])
	if !ok {
		return "", false
	}
	return value.StringValueOf(it), true
}

func resolveQName(ctx *context.Context, lexical string) (uri, local string, err error) {
	if idx := strings.IndexByte(lexical, ':'); idx >= 0 {
		prefix, loc := lexical[:idx], lexical[idx+1:]
		ns := ctx.NamespaceResolver()
		if ns == nil {
			return "", "", xerr.New(xerr.XTDE1390, "no namespace bindings in scope to resolve prefix %q", prefix)
		}
		u, ok := ns.Resolve(prefix)
		if !ok {
			return "", "", xerr.New(xerr.XTDE1390, "unbound namespace prefix %q", prefix)
		}
		return u, loc, nil
	}
	return "", lexical, nil
}

// Current implements fn:current(): the context item at the point the
// enclosing instruction began evaluating expressions, which here is
// simply the evaluation context's own focus item (the runtime never
// changes focus without also updating what current() should see).
func Current(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	it, ok := ctx.ContextItem()
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "current() called with no context item")
	}
	return value.Single(it), nil
}

// GenerateID implements fn:generate-id(): a string unique within the
// document and stable for the lifetime of the node, derived from the
// node's owning document identity and its document-order key.
func GenerateID(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var n node.Node
	if len(args) == 0 {
		it, ok := ctx.ContextItem()
		if !ok {
			return nil, xerr.New(xerr.XPTY0004, "generate-id() called with no context item")
		}
		ni, ok := it.(value.NodeItem)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "node()", it.TypeName(), "generate-id() context item must be a node")
		}
		n = ni.N
	} else {
		it, ok := value.Singleton(args[0])
		if !ok {
			return singleString(""), nil
		}
		ni, ok := it.(value.NodeItem)
		if !ok {
			return nil, xerr.TypeError(xerr.XPTY0004, "node()", it.TypeName(), "generate-id() argument must be a node")
		}
		n = ni.N
	}
	return singleString(fmt.Sprintf("id%p-%d", n.Root(), n.DocumentOrderKey())), nil
}

// Key implements the key(name, value) function: the key name's clauses
// are looked up in env, the lookup document root is the current
// node's, and cycle detection runs through xslt/context's
// key-in-progress stack.
func (env *Environment) Key(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	name, _ := argString(args, 0)
	decl, ok := env.KeyDecls[name]
	if !ok {
		return nil, xerr.New(xerr.XTDE1260, "no xsl:key named %q", name)
	}
	cur, ok := ctx.CurrentNode()
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "key() called with no current node")
	}
	derived, err := ctx.PushKeyInProgress(name)
	if err != nil {
		return nil, err
	}

	var out node.Set
	root := cur.Root()
	values := args[1]
	seen := make(map[string]bool)
	for _, it := range values {
		atomic, ok := it.(value.Atomic)
		if !ok {
			continue
		}
		s := atomic.Lexical()
		if seen[s] {
			continue
		}
		seen[s] = true
		set, err := env.Keys.Lookup(derived, decl, root, s)
		if err != nil {
			return nil, err
		}
		out = append(out, set...)
	}
	return value.NodeSet(node.Dedup(out)), nil
}

func absoluteURI(ctx *context.Context, staticBase, href string) string {
	if href == "" {
		return staticBase
	}
	if strings.Contains(href, "://") {
		return href
	}
	base := ctx.BaseURI()
	if base == "" {
		base = staticBase
	}
	if base == "" {
		return href
	}
	if strings.HasSuffix(base, "/") {
		return base + href
	}
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		return base[:idx+1] + href
	}
	return href
}

// Doc implements fn:doc(uri): retrieval/parse failure is always a
// dynamic error, FODC0002, never swallowed.
func (env *Environment) Doc(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	uri, ok := argString(args, 0)
	if !ok {
		return value.Empty(), nil
	}
	abs := absoluteURI(ctx, env.StaticBaseURI, uri)
	n, err := env.Docs.Doc(abs, env.StaticBaseURI, env.StripSpace, env.PreserveSpace)
	if err != nil {
		return nil, err
	}
	return value.Single(value.NodeItem{N: n}), nil
}

// DocAvailable implements fn:doc-available(uri): any failure is
// swallowed to false.
func (env *Environment) DocAvailable(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	uri, ok := argString(args, 0)
	if !ok {
		return singleBool(false), nil
	}
	abs := absoluteURI(ctx, env.StaticBaseURI, uri)
	return singleBool(env.Docs.DocAvailable(abs, env.StaticBaseURI, env.StripSpace, env.PreserveSpace)), nil
}

// Document implements fn:document(object, base?): object may be a
// string or a node-set of strings/nodes; each resolves against the
// supplied base node's base-uri when it has one, otherwise against the
// context's base URI, falling back to the static base URI.
func (env *Environment) Document(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	baseURI := env.StaticBaseURI
	if len(args) > 1 {
		if it, ok := value.Singleton(args[1]); ok {
			if ni, ok := it.(value.NodeItem); ok {
				if u, ok := ni.N.BaseURI(); ok {
					baseURI = u
					ctx = ctx.WithBaseURI(u)
				}
			}
		}
	}
	var out value.Sequence
	for _, it := range args[0] {
		var href string
		switch v := it.(type) {
		case value.NodeItem:
			href = v.N.StringValue()
		default:
			href = value.StringValueOf(it)
		}
		abs := absoluteURI(ctx, baseURI, href)
		n, err := env.Docs.Doc(abs, baseURI, env.StripSpace, env.PreserveSpace)
		if err != nil {
			return nil, err
		}
		out = append(out, value.NodeItem{N: n})
	}
	return out, nil
}

// FormatNumber implements fn:format-number(value, picture, decimal-format-name?).
func (env *Environment) FormatNumber(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	it, ok := value.Singleton(args[0])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "format-number requires a singleton numeric value")
	}
	n := value.NumberValueOf(it)
	pic, _ := argString(args, 1)
	name := ""
	if len(args) > 2 {
		name, _ = argString(args, 2)
	}
	df, ok := env.decimalFormat(name)
	if !ok {
		return nil, xerr.New(xerr.XTDE1280, "no decimal-format named %q", name)
	}
	out, err := picture.FormatNumber(n.F, pic, df)
	if err != nil {
		return nil, xerr.New(xerr.FODF1310, "%v", err)
	}
	return singleString(out), nil
}

// SystemProperty implements fn:system-property(name).
func (env *Environment) SystemProperty(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	lex, _ := argString(args, 0)
	uri, local, err := resolveQName(ctx, lex)
	if err != nil {
		return nil, err
	}
	key := node.ExpandedName{URI: uri, Local: local}.Clark()
	if v, ok := env.SystemProperty[key]; ok {
		return singleString(v), nil
	}
	return singleString(""), nil
}

// ElementAvailable implements fn:element-available(name).
func (env *Environment) ElementAvailable(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	lex, _ := argString(args, 0)
	_, local, err := resolveQName(ctx, lex)
	if err != nil {
		return nil, xerr.New(xerr.XTDE1400, "%v", err)
	}
	return singleBool(env.KnownElements[local]), nil
}

// FunctionAvailable implements fn:function-available(name, arity?).
func (env *Environment) FunctionAvailable(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	lex, _ := argString(args, 0)
	uri, local, err := resolveQName(ctx, lex)
	if err != nil {
		return nil, xerr.New(xerr.XTDE1400, "%v", err)
	}
	arity := -1
	if len(args) > 1 {
		if it, ok := value.Singleton(args[1]); ok {
			arity = int(value.NumberValueOf(it).F)
		}
	}
	if uri == "" {
		uri = registry.FnURI
	}
	if arity >= 0 {
		_, resolveErr := env.Registry.Resolve(uri, local, arity)
		return singleBool(resolveErr == nil), nil
	}
	for a := 0; a <= 8; a++ {
		if _, resolveErr := env.Registry.Resolve(uri, local, a); resolveErr == nil {
			return singleBool(true), nil
		}
	}
	return singleBool(false), nil
}

// TypeAvailable implements fn:type-available(name).
func (env *Environment) TypeAvailable(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	lex, _ := argString(args, 0)
	_, local, err := resolveQName(ctx, lex)
	if err != nil {
		return nil, xerr.New(xerr.XTDE1400, "%v", err)
	}
	return singleBool(env.KnownTypes[local]), nil
}

// CurrentGroup implements fn:current-group().
func CurrentGroup(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return ctx.CurrentGroup(), nil
}

// CurrentGroupingKey implements fn:current-grouping-key().
func CurrentGroupingKey(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	k := ctx.CurrentGroupingKey()
	if k == nil {
		return value.Empty(), nil
	}
	return value.Single(k), nil
}

// CurrentMergeGroup implements fn:current-merge-group(source?).
func CurrentMergeGroup(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	source := ""
	if len(args) > 0 {
		source, _ = argString(args, 0)
	}
	g, _ := ctx.CurrentMergeGroup(source)
	return g, nil
}

// CurrentMergeKey implements fn:current-merge-key().
func CurrentMergeKey(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	k := ctx.CurrentMergeKey()
	if k == nil {
		return value.Empty(), nil
	}
	return value.Single(k), nil
}

// AccumulatorBefore implements fn:accumulator-before(name).
func AccumulatorBefore(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	name, _ := argString(args, 0)
	v, ok := ctx.Accumulator(name)
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "no accumulator named %q is in scope", name)
	}
	return v.Before, nil
}

// AccumulatorAfter implements fn:accumulator-after(name).
func AccumulatorAfter(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	name, _ := argString(args, 0)
	v, ok := ctx.Accumulator(name)
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "no accumulator named %q is in scope", name)
	}
	return v.After, nil
}

// RegexGroup implements fn:regex-group(n).
func RegexGroup(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	it, ok := value.Singleton(args[0])
	if !ok {
		return singleString(""), nil
	}
	n := int(value.NumberValueOf(it).F)
	return singleString(ctx.RegexGroup(n)), nil
}

// Snapshot implements fn:snapshot(node?): on the runtime's fully
// navigable node model, a node already supports every axis regardless
// of document mutation, so snapshot is the identity function — see
// DESIGN.md's Open Question note.
func Snapshot(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	if len(args) == 0 {
		it, ok := ctx.ContextItem()
		if !ok {
			return value.Empty(), nil
		}
		return value.Single(it), nil
	}
	return args[0], nil
}

func regexOptions(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		}
	}
	return opts
}

// AnalyzeString implements fn:analyze-string(input, pattern, flags?):
// built with github.com/dlclark/regexp2 (.NET-flavored regex engine,
// needed for XPath's regex dialect, which is closer to .NET's than to
// RE2's), producing an fn:analyze-string-result tree of fn:match and
// fn:non-match elements via the same nodemodel.Builder the RTF and
// json-to-xml machinery use.
func AnalyzeString(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	input, _ := argString(args, 0)
	pattern, _ := argString(args, 1)
	flags := ""
	if len(args) > 2 {
		flags, _ = argString(args, 2)
	}
	re, err := regexp2.Compile(pattern, regexOptions(flags))
	if err != nil {
		return nil, xerr.New(xerr.FORX0002, "invalid regular expression %q: %v", pattern, err)
	}

	b := nodemodel.NewBuilder()
	const ns = registry.FnURI
	b.StartElement(ns, "analyze-string-result", nil)

	// regexp2 reports Index/Length in runes, not bytes, so the input is
	// walked as a rune slice throughout.
	runes := []rune(input)
	pos := 0
	m, merr := re.FindStringMatch(input)
	for merr == nil && m != nil {
		start := m.Index
		if start < 0 || start > len(runes) {
			break
		}
		if start == pos && m.Length == 0 {
			if pos >= len(runes) {
				break
			}
			m, merr = re.FindNextMatch(m)
			continue
		}
		if start > pos {
			b.StartElement(ns, "non-match", nil)
			b.Characters(string(runes[pos:start]))
			b.EndElement()
		}
		b.StartElement(ns, "match", nil)
		b.Characters(m.String())
		b.EndElement()
		pos = start + m.Length
		m, merr = re.FindNextMatch(m)
	}
	if pos < len(runes) {
		b.StartElement(ns, "non-match", nil)
		b.Characters(string(runes[pos:]))
		b.EndElement()
	}
	b.EndElement()

	doc, err := b.Finish()
	if err != nil {
		return nil, xerr.New(xerr.FORX0002, "%v", err)
	}
	return value.Single(value.NodeItem{N: doc.AsNode()}), nil
}

func duplicateModeFromOptions(args []value.Sequence, idx int) (jsonxml.DuplicateMode, error) {
	if len(args) <= idx {
		return jsonxml.UseFirst, nil
	}
	it, ok := value.Singleton(args[idx])
	if !ok {
		return jsonxml.UseFirst, nil
	}
	m, ok := it.(*value.MapValue)
	if !ok {
		return jsonxml.UseFirst, nil
	}
	v, ok := m.Get(value.StringAtomic("duplicates"))
	if !ok {
		return jsonxml.UseFirst, nil
	}
	s, ok := value.Singleton(v)
	if !ok {
		return jsonxml.UseFirst, nil
	}
	return jsonxml.ParseDuplicateMode(value.StringValueOf(s))
}

// JSONToXML implements fn:json-to-xml(text, options?).
func JSONToXML(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	text, _ := argString(args, 0)
	dup, err := duplicateModeFromOptions(args, 1)
	if err != nil {
		return nil, err
	}
	n, err := jsonxml.JSONToXML(text, jsonxml.Options{Duplicates: dup})
	if err != nil {
		return nil, err
	}
	return value.Single(value.NodeItem{N: n}), nil
}

// ParseJSON implements fn:parse-json(text, options?) — identical to
// json-to-xml at this layer; the two differ only in the map/array
// value-model shape a full implementation would build, which is out of
// scope without a richer map/array constructor than xml-to-json needs.
func ParseJSON(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return JSONToXML(ctx, args)
}

// XMLToJSON implements fn:xml-to-json(node, options?).
func XMLToJSON(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	it, ok := value.Singleton(args[0])
	if !ok {
		return nil, xerr.New(xerr.XPTY0004, "xml-to-json requires a node argument")
	}
	ni, ok := it.(value.NodeItem)
	if !ok {
		return nil, xerr.TypeError(xerr.XPTY0004, "node()", it.TypeName(), "xml-to-json argument must be a node")
	}
	out, err := jsonxml.XMLToJSON(ni.N)
	if err != nil {
		return nil, err
	}
	return singleString(out), nil
}

// UnparsedText implements fn:unparsed-text(uri, encoding?).
func (env *Environment) UnparsedText(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	uri, ok := argString(args, 0)
	if !ok {
		return value.Empty(), nil
	}
	encName := "UTF-8"
	if len(args) > 1 {
		if e, ok := argString(args, 1); ok {
			encName = e
		}
	}
	enc, err := ianaindex.IANA.Encoding(encName)
	if err != nil || enc == nil {
		return nil, xerr.New(xerr.FOUT1190, "unparsed-text: unrecognized encoding %q", encName)
	}
	abs := absoluteURI(ctx, env.StaticBaseURI, uri)
	raw, err := env.Texts.LoadText(abs, env.StaticBaseURI)
	if err != nil {
		return nil, xerr.New(xerr.FOUT1170, "%v", err)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, xerr.New(xerr.FOUT1190, "unparsed-text: %q is not valid %s", uri, encName)
	}
	return singleString(string(decoded)), nil
}

// UnparsedTextLines implements fn:unparsed-text-lines(uri, encoding?).
func (env *Environment) UnparsedTextLines(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	seq, err := env.UnparsedText(ctx, args)
	if err != nil {
		return nil, err
	}
	text, _ := value.Singleton(seq)
	lines := strings.Split(strings.TrimSuffix(value.StringValueOf(text), "\n"), "\n")
	out := make(value.Sequence, len(lines))
	for i, l := range lines {
		out[i] = value.StringAtomic(strings.TrimSuffix(l, "\r"))
	}
	return out, nil
}

// UnparsedTextAvailable implements fn:unparsed-text-available(uri, encoding?).
func (env *Environment) UnparsedTextAvailable(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	_, err := env.UnparsedText(ctx, args)
	return singleBool(err == nil), nil
}

// ParseXML implements fn:parse-xml(text): malformed XML raises FODC0006.
func ParseXML(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	text, _ := argString(args, 0)
	doc, err := nodemodel.Parse("", []byte(text))
	if err != nil {
		return nil, xerr.New(xerr.FODC0006, "%v", err)
	}
	return value.Single(value.NodeItem{N: doc.AsNode()}), nil
}

// ParseXMLFragment implements fn:parse-xml-fragment(text): the input is
// wrapped in a synthetic root so a forest of top-level nodes parses the
// same way fn:parse-xml parses a single document element.
func ParseXMLFragment(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	text, _ := argString(args, 0)
	wrapped := "<fragment-root>" + text + "</fragment-root>"
	doc, err := nodemodel.Parse("", []byte(wrapped))
	if err != nil {
		return nil, xerr.New(xerr.FODC0006, "%v", err)
	}
	root := doc.Root()
	var out value.Sequence
	it := root.Axis(node.Child)
	for it.Next() {
		out = append(out, value.NodeItem{N: it.Node()})
	}
	return out, nil
}
