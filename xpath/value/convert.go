package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
)

// StringValueOf implements as_string for a single Item: a
// node's string-value for NodeItem, the atomic's lexical form for
// Atomic, and fn:string()'s rule of a JSON-ish structural rendering for
// maps/arrays/functions (the static type system should rule those out
// before this is called in practice, but we still need a total
// function here).
func StringValueOf(it Item) string {
	switch v := it.(type) {
	case NodeItem:
		return v.N.StringValue()
	case Atomic:
		return v.Lexical()
	default:
		return it.TypeName()
	}
}

// NumberFromString converts a string to a number per XPath's string-to-
// number conversion rules: trims surrounding whitespace,
// accepts an optional sign and decimal point, returns NaN on any other
// input.
func NumberFromString(s string) Numeric {
	t := strings.TrimSpace(s)
	body := t
	if body != "" && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}
	if strings.Trim(body, "0123456789.") != "" || strings.Count(body, ".") > 1 || strings.Trim(body, ".") == "" {
		return NewDouble(math.NaN())
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return NewDouble(math.NaN())
	}
	return NewDouble(f)
}

// NumberValueOf implements as_number for a single Item.
func NumberValueOf(it Item) Numeric {
	switch v := it.(type) {
	case NumericAtomic:
		return Numeric(v)
	case Atomic:
		return NumberFromString(v.Lexical())
	case NodeItem:
		return NumberFromString(v.N.StringValue())
	default:
		return NewDouble(math.NaN())
	}
}

// Singleton extracts the single item of a one-item sequence, or the
// appropriate default for a zero-item sequence. It is the common case
// callers rely on: "a single item and a one-item sequence are
// interchangeable": most function arguments are typed "item()?" and
// just need this.
func Singleton(seq Sequence) (Item, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	if len(seq) != 1 {
		return nil, false
	}
	return seq[0], true
}

// RequireSingleton is Singleton, but raises XPTY0004 for a
// multi-item sequence instead of silently reporting "not found". Callers
// that already know they need a true singleton (not an optional one)
// should use this so the error carries the right code.
func RequireSingleton(seq Sequence, context string) (Item, error) {
	if len(seq) == 0 {
		return nil, nil
	}
	if len(seq) > 1 {
		return nil, xerr.TypeError(xerr.XPTY0004, "item()", "sequence", "%s expects a singleton, got a sequence of %d items", context, len(seq))
	}
	return seq[0], nil
}
