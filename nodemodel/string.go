package nodemodel

import (
	"bytes"
	"fmt"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
)

// String renders el as an XML fragment, used for debugging and test
// failure messages. It is not the XSLT serializer (that lives in the
// abstract output-handler collaborator); this is deliberately
// minimal, a plain recursive tag/attribute/text dump.
func (el *Element) String() string {
	var buf bytes.Buffer
	writeNode(&buf, el)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, el *Element) {
	switch el.kind {
	case node.Text:
		buf.WriteString(el.text)
	case node.Comment:
		fmt.Fprintf(buf, "<!--%s-->", el.text)
	case node.ProcessingInstruction:
		fmt.Fprintf(buf, "<?%s %s?>", el.piTarget, el.text)
	case node.Document:
		for _, c := range el.children {
			writeNode(buf, c)
		}
	case node.Element:
		name := el.scope.Prefix(el.name)
		fmt.Fprintf(buf, "<%s", name)
		for _, a := range el.attr {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
				continue
			}
			fmt.Fprintf(buf, " %s=%q", el.scope.Prefix(a.Name), a.Value)
		}
		buf.WriteByte('>')
		for _, c := range el.children {
			writeNode(buf, c)
		}
		fmt.Fprintf(buf, "</%s>", name)
	}
}
