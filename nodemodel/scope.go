package nodemodel

import (
	"encoding/xml"
	"strings"
)

// Scope represents the xml namespace scope at a given position in the
// document. push returns a new Scope instead of mutating one in place,
// since this parser threads scopes functionally through recursive
// descent rather than sharing one mutable slice.
type Scope struct {
	ns []xml.Name
}

// Resolve translates an XML QName (namespace-prefixed string) to an
// xml.Name with a canonicalized namespace in its Space field. If qname
// has no prefix, the default namespace is used. If a namespace prefix
// cannot be resolved, the returned value's Space field is the unresolved
// prefix; use ResolveNS to detect that case.
func (s Scope) Resolve(qname string) xml.Name {
	name, _ := s.ResolveNS(qname)
	return name
}

// ResolveNS is like Resolve, but reports whether the prefix was resolved.
func (s Scope) ResolveNS(qname string) (xml.Name, bool) {
	var prefix, local string
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		prefix, local = qname[:i], qname[i+1:]
	} else {
		local = qname
	}
	for i := len(s.ns) - 1; i >= 0; i-- {
		if s.ns[i].Local == prefix {
			return xml.Name{Space: s.ns[i].Space, Local: local}, true
		}
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// ResolveDefault is like Resolve, but lets the caller override the
// namespace used for unprefixed names.
func (s Scope) ResolveDefault(qname, defaultns string) xml.Name {
	if defaultns == "" || strings.Contains(qname, ":") {
		return s.Resolve(qname)
	}
	return xml.Name{Space: defaultns, Local: qname}
}

// Prefix is the inverse of Resolve: it finds the closest prefix bound to
// name's namespace. If none is bound, or the namespace is the default
// namespace, the unqualified local name is returned.
func (s Scope) Prefix(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	for i := len(s.ns) - 1; i >= 0; i-- {
		if s.ns[i].Space == name.Space {
			if s.ns[i].Local == "" {
				return name.Local
			}
			return s.ns[i].Local + ":" + name.Local
		}
	}
	return name.Local
}

// push returns a new Scope with any xmlns declarations on tag appended.
func (s Scope) push(tag xml.StartElement) Scope {
	var added []xml.Name
	for _, attr := range tag.Attr {
		if attr.Name.Space == "xmlns" {
			added = append(added, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		} else if attr.Name.Local == "xmlns" {
			added = append(added, xml.Name{Space: attr.Value})
		}
	}
	if len(added) == 0 {
		return s
	}
	next := make([]xml.Name, len(s.ns)+len(added))
	copy(next, s.ns)
	copy(next[len(s.ns):], added)
	return Scope{ns: next}
}

// bindings returns every prefix->uri binding in scope at this frame,
// inherited ones included, for building namespace-axis nodes.
func (s Scope) bindings() []xml.Name { return s.ns }

func xmlName(local string) xml.Name { return xml.Name{Local: local} }
