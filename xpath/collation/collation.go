// Package collation implements the pluggable string-comparison interface
// of a pluggable interface: every function that accepts a collation argument routes
// through a Collation, never compares strings directly.
package collation

import (
	"net/url"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
)

// CodepointURI is the well-known Unicode-codepoint-order collation, the
// only collation every XPath 3.1 processor must support.
const CodepointURI = "http://www.w3.org/2005/xpath-functions/collation/codepoint"

// Collation compares strings for ordering and equality.
type Collation interface {
	// Compare returns <0, 0, or >0 as a sorts before, equal to, or after b.
	Compare(a, b string) int
	Equal(a, b string) bool
	URI() string
}

type codepointCollation struct{}

// Compare orders by Unicode codepoint, which for well-formed UTF-8 is
// exactly byte-wise comparison.
func (codepointCollation) Compare(a, b string) int { return strings.Compare(a, b) }
func (codepointCollation) Equal(a, b string) bool  { return a == b }
func (codepointCollation) URI() string             { return CodepointURI }

// Codepoint is the shared codepoint-order Collation instance.
var Codepoint Collation = codepointCollation{}

// localeCollation adapts golang.org/x/text/collate to the Collation
// interface (see DESIGN.md domain-stack table).
type localeCollation struct {
	uri string
	col *collate.Collator
}

func (l *localeCollation) Compare(a, b string) int { return l.col.CompareString(a, b) }
func (l *localeCollation) Equal(a, b string) bool  { return l.col.CompareString(a, b) == 0 }
func (l *localeCollation) URI() string             { return l.uri }

// ForURI resolves a collation URI to a Collation. The codepoint URI
// always resolves. Any other URI is parsed as
// "scheme://host/path?lang=<BCP-47 tag>[;strength=primary|secondary|tertiary]";
// an unrecognized or malformed URI is an error.
func ForURI(uri string) (Collation, error) {
	if uri == "" || uri == CodepointURI {
		return Codepoint, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, xerr.New(xerr.FOCH0002, "invalid collation URI %q: %v", uri, err)
	}
	q, _ := url.ParseQuery(strings.ReplaceAll(u.RawQuery, ";", "&"))
	lang := q.Get("lang")
	if lang == "" {
		return nil, xerr.New(xerr.FOCH0002, "unsupported collation URI %q: no lang parameter", uri)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, xerr.New(xerr.FOCH0002, "unsupported collation URI %q: %v", uri, err)
	}
	var opts []collate.Option
	switch q.Get("strength") {
	case "primary":
		opts = append(opts, collate.Strength(collate.Primary))
	case "secondary":
		opts = append(opts, collate.Strength(collate.Secondary))
	case "tertiary", "":
		opts = append(opts, collate.Strength(collate.Tertiary))
	default:
		return nil, xerr.New(xerr.FOCH0002, "unsupported collation URI %q: unknown strength", uri)
	}
	return &localeCollation{uri: uri, col: collate.New(tag, opts...)}, nil
}

// MustCodepoint is a convenience for call sites that already know they
// want the mandatory codepoint collation (e.g. default-collation-less
// contexts).
func MustCodepoint() Collation { return Codepoint }

// Min returns the index of the minimum string in ss under c, or -1 if ss
// is empty.
func Min(ss []string, c Collation) int {
	if len(ss) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(ss); i++ {
		if c.Compare(ss[i], ss[best]) < 0 {
			best = i
		}
	}
	return best
}

