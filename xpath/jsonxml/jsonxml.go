// Package jsonxml implements the JSON<->XML convertor backing
// fn:json-to-xml, fn:xml-to-json, and fn:parse-json: JSON objects become
// <map> elements (entries carrying a `key` attribute), arrays become
// <array> elements, and strings/numbers/booleans/null become their
// eponymous elements, all in the XPath functions namespace. It is built
// directly on github.com/tidwall/gjson (read side) and
// github.com/tidwall/sjson (write side) rather than hand-rolling a JSON
// tokenizer.
package jsonxml

import (
	"encoding/xml"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/CognitoIQ/xslt-runtime/nodemodel"
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
)

// NS is the namespace every generated map/array/string/number/boolean/
// null element lives in.
const NS = "http://www.w3.org/2005/xpath-functions"

// KeyAttr is the unprefixed attribute name carrying a map entry's key.
const KeyAttr = "key"

// DuplicateMode controls how a repeated object key is handled, per the
// `duplicates` option of fn:json-to-xml/parse-json.
type DuplicateMode int

const (
	// UseFirst keeps the first occurrence of a key and drops every
	// later one (the default).
	UseFirst DuplicateMode = iota
	// Reject raises FOJS0003 on any repeated key.
	Reject
	// Retain keeps every occurrence as a separate map entry.
	Retain
)

// ParseDuplicateMode parses the `duplicates` option string, raising
// FOJS0005 for anything outside the closed set.
func ParseDuplicateMode(s string) (DuplicateMode, error) {
	switch s {
	case "", "use-first":
		return UseFirst, nil
	case "reject":
		return Reject, nil
	case "retain":
		return Retain, nil
	default:
		return 0, xerr.New(xerr.FOJS0005, "unknown duplicates option %q", s)
	}
}

// Options configures JSONToXML.
type Options struct {
	Duplicates   DuplicateMode
	EscapeUnused bool // liberal flag accepted for fn:parse-json option compatibility, currently a no-op
}

// JSONToXML parses jsonText and builds its XML representation. Malformed
// JSON raises FOJS0001; a rejected duplicate key raises FOJS0003.
func JSONToXML(jsonText string, opts Options) (node.Node, error) {
	if !gjson.Valid(jsonText) {
		return nil, xerr.New(xerr.FOJS0001, "invalid JSON input")
	}
	root := gjson.Parse(jsonText)
	b := nodemodel.NewBuilder()
	if err := buildValue(b, root, "", false, opts); err != nil {
		return nil, err
	}
	doc, err := b.Finish()
	if err != nil {
		return nil, xerr.New(xerr.FOJS0001, "%v", err)
	}
	return doc.AsNode(), nil
}

func buildValue(b *nodemodel.Builder, v gjson.Result, key string, withKey bool, opts Options) error {
	var attrs []xml.Attr
	if withKey {
		attrs = []xml.Attr{{Name: xml.Name{Local: KeyAttr}, Value: key}}
	}
	switch {
	case v.IsObject():
		b.StartElement(NS, "map", attrs)
		if err := buildObjectEntries(b, v, opts); err != nil {
			return err
		}
		b.EndElement()
	case v.IsArray():
		b.StartElement(NS, "array", attrs)
		var elemErr error
		v.ForEach(func(_, elem gjson.Result) bool {
			elemErr = buildValue(b, elem, "", false, opts)
			return elemErr == nil
		})
		if elemErr != nil {
			return elemErr
		}
		b.EndElement()
	case v.Type == gjson.String:
		b.StartElement(NS, "string", attrs)
		b.Characters(v.String())
		b.EndElement()
	case v.Type == gjson.Number:
		b.StartElement(NS, "number", attrs)
		b.Characters(strings.TrimSpace(v.Raw))
		b.EndElement()
	case v.Type == gjson.True || v.Type == gjson.False:
		b.StartElement(NS, "boolean", attrs)
		b.Characters(v.Raw)
		b.EndElement()
	case v.Type == gjson.Null:
		b.StartElement(NS, "null", attrs)
		b.EndElement()
	default:
		return xerr.New(xerr.FOJS0001, "unrecognized JSON value kind")
	}
	return nil
}

func buildObjectEntries(b *nodemodel.Builder, obj gjson.Result, opts Options) error {
	seen := make(map[string]bool)
	var entries []gjson.Result
	var keys []string
	var err error
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if seen[key] {
			switch opts.Duplicates {
			case Reject:
				err = xerr.New(xerr.FOJS0003, "duplicate object key %q", key)
				return false
			case UseFirst:
				return true // skip subsequent occurrences
			case Retain:
				// fall through, keep it
			}
		}
		seen[key] = true
		keys = append(keys, key)
		entries = append(entries, v)
		return true
	})
	if err != nil {
		return err
	}
	for i, v := range entries {
		if err := buildValue(b, v, keys[i], true, opts); err != nil {
			return err
		}
	}
	return nil
}

// XMLToJSON serializes n (the root of a json-to-xml-shaped element tree)
// back into a JSON text. A node that is not in this representation, or
// that would require serializing a non-finite number, raises FOJS0006.
func XMLToJSON(n node.Node) (string, error) {
	el := unwrapDocument(n)
	raw, err := serializeValue(el)
	if err != nil {
		return "", err
	}
	return raw, nil
}

func unwrapDocument(n node.Node) node.Node {
	if n.Kind() != node.Document {
		return n
	}
	it := n.Axis(node.Child)
	for it.Next() {
		return it.Node()
	}
	return n
}

func serializeValue(n node.Node) (string, error) {
	if n.Kind() != node.Element {
		return "", xerr.New(xerr.FOJS0006, "xml-to-json input must be an element, got %s", n.Kind())
	}
	switch n.Name().Local {
	case "map":
		return serializeMap(n)
	case "array":
		return serializeArray(n)
	case "string":
		out, err := sjson.Set("", "v", n.StringValue())
		if err != nil {
			return "", xerr.New(xerr.FOJS0006, "%v", err)
		}
		return gjson.Get(out, "v").Raw, nil
	case "number":
		text := strings.TrimSpace(n.StringValue())
		if text == "NaN" || text == "INF" || text == "-INF" || text == "Infinity" || text == "-Infinity" {
			return "", xerr.New(xerr.FOJS0006, "cannot serialize non-finite number %q to JSON", text)
		}
		if !gjson.Valid(text) {
			return "", xerr.New(xerr.FOJS0006, "invalid number element content %q", text)
		}
		return text, nil
	case "boolean":
		text := strings.TrimSpace(n.StringValue())
		if text != "true" && text != "false" {
			return "", xerr.New(xerr.FOJS0006, "invalid boolean element content %q", text)
		}
		return text, nil
	case "null":
		return "null", nil
	default:
		return "", xerr.New(xerr.FOJS0006, "unrecognized element %q in xml-to-json input", n.Name().Local)
	}
}

func serializeMap(n node.Node) (string, error) {
	accum := "{}"
	it := n.Axis(node.Child)
	for it.Next() {
		child := it.Node()
		if child.Kind() != node.Element {
			continue
		}
		key, ok := entryKey(child)
		if !ok {
			return "", xerr.New(xerr.FOJS0006, "map entry missing key attribute")
		}
		raw, err := serializeValue(child)
		if err != nil {
			return "", err
		}
		accum, err = sjson.SetRaw(accum, jsonPathKey(key), raw)
		if err != nil {
			return "", xerr.New(xerr.FOJS0006, "%v", err)
		}
	}
	return accum, nil
}

func serializeArray(n node.Node) (string, error) {
	accum := "[]"
	it := n.Axis(node.Child)
	for it.Next() {
		child := it.Node()
		if child.Kind() != node.Element {
			continue
		}
		raw, err := serializeValue(child)
		if err != nil {
			return "", err
		}
		var err2 error
		accum, err2 = sjson.SetRaw(accum, "-1", raw)
		if err2 != nil {
			return "", xerr.New(xerr.FOJS0006, "%v", err2)
		}
	}
	return accum, nil
}

func entryKey(n node.Node) (string, bool) {
	it := n.Axis(node.AttributeAxis)
	for it.Next() {
		a := it.Node()
		if a.Name().Local == KeyAttr {
			return a.StringValue(), true
		}
	}
	return "", false
}

// jsonPathKey escapes a map key for use as an sjson path segment:
// sjson treats '.', '*', '?' specially in path syntax, so a literal key
// containing them must be colon-escaped.
func jsonPathKey(key string) string {
	if !strings.ContainsAny(key, ".*?") {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(".*?", r) {
			b.WriteByte(':')
		}
		b.WriteRune(r)
	}
	return b.String()
}
