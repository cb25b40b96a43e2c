package value

import "github.com/CognitoIQ/xslt-runtime/xpath/node"

// NodeItem wraps a node.Node as a Value Model Item.
type NodeItem struct {
	N node.Node
}

func (NodeItem) isItem() {}

func (n NodeItem) TypeName() string {
	switch n.N.Kind() {
	case node.Document:
		return "document-node()"
	case node.Element:
		return "element()"
	case node.Attribute:
		return "attribute()"
	case node.Text:
		return "text()"
	case node.Comment:
		return "comment()"
	case node.ProcessingInstruction:
		return "processing-instruction()"
	case node.Namespace:
		return "namespace-node()"
	default:
		return "node()"
	}
}
