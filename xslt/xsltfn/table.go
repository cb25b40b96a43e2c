package xsltfn

import (
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
)

func fn(local string, min, max int, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.FnURI, Local: local},
		MinArity: min, MaxArity: max, Call: call,
	}
}

// Table builds the fixed fn:/empty-namespace table for every XSLT-
// specific function this package implements, closed over env. It is
// merged into the core table the registry consults at resolution steps
// 1 and 5, alongside xpath/corefn's pure-XPath functions.
func Table(env *Environment) registry.Table {
	return registry.NewTable(
		fn("current", 0, 0, Current),
		fn("generate-id", 0, 1, GenerateID),
		fn("key", 2, 2, env.Key),
		fn("doc", 1, 1, env.Doc),
		fn("doc-available", 1, 1, env.DocAvailable),
		fn("document", 1, 2, env.Document),
		fn("format-number", 2, 3, env.FormatNumber),
		fn("system-property", 1, 1, env.SystemProperty),
		fn("element-available", 1, 1, env.ElementAvailable),
		fn("function-available", 1, 2, env.FunctionAvailable),
		fn("type-available", 1, 1, env.TypeAvailable),
		fn("current-group", 0, 0, CurrentGroup),
		fn("current-grouping-key", 0, 0, CurrentGroupingKey),
		fn("current-merge-group", 0, 1, CurrentMergeGroup),
		fn("current-merge-key", 0, 0, CurrentMergeKey),
		fn("accumulator-before", 1, 1, AccumulatorBefore),
		fn("accumulator-after", 1, 1, AccumulatorAfter),
		fn("regex-group", 1, 1, RegexGroup),
		fn("analyze-string", 2, 3, AnalyzeString),
		fn("snapshot", 0, 1, Snapshot),
		fn("json-to-xml", 1, 2, JSONToXML),
		fn("parse-json", 1, 2, ParseJSON),
		fn("xml-to-json", 1, 2, XMLToJSON),
		fn("unparsed-text", 1, 2, env.UnparsedText),
		fn("unparsed-text-lines", 1, 2, env.UnparsedTextLines),
		fn("unparsed-text-available", 1, 2, env.UnparsedTextAvailable),
		fn("parse-xml", 1, 1, ParseXML),
		fn("parse-xml-fragment", 1, 1, ParseXMLFragment),
	)
}
