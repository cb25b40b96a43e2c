package corefn

import (
	"math"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/collation"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func asString(args []value.Sequence, i int) string {
	v, ok := value.Singleton(args[i])
	if !ok {
		return ""
	}
	return value.StringValueOf(v)
}

// concatFn implements fn:concat: two or more arguments, each stringified
// (absent/empty arguments contribute "").
func concatFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var b strings.Builder
	for i := range args {
		b.WriteString(asString(args, i))
	}
	return value.Single(value.StringAtomic(b.String())), nil
}

// roundHalfUp implements XPath substring's rounding rule: round half
// away from zero, not the language's usual round-half-to-even.
func roundHalfUp(f float64) float64 {
	if math.IsNaN(f) {
		return f
	}
	if f >= 0 {
		return math.Floor(f + 0.5)
	}
	return math.Ceil(f - 0.5)
}

// substringFn implements fn:substring(string, start[, length]). Start
// and length are rounded half-up (not floored); NaN for either bound
// yields the empty string; a start before 1 or a length extending past
// the string's end is clipped rather than erroring.
func substringFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	s := []rune(asString(args, 0))
	startF := value.NumberValueOf(mustItem(args[1]))
	if startF.IsNaN() {
		return value.Single(value.StringAtomic("")), nil
	}
	start := roundHalfUp(startF.F)

	length := math.Inf(1)
	if len(args) > 2 {
		lenF := value.NumberValueOf(mustItem(args[2]))
		if lenF.IsNaN() {
			return value.Single(value.StringAtomic("")), nil
		}
		length = roundHalfUp(lenF.F)
	}

	// Characters are numbered from 1; the selected range is
	// [start, start+length).
	first := start
	last := start + length
	if math.IsInf(last, 1) {
		last = math.Inf(1)
	}
	lo := int(math.Max(1, first))
	var hi int
	if math.IsInf(last, 1) {
		hi = len(s) + 1
	} else {
		hi = int(math.Min(float64(len(s)+1), last))
	}
	if lo >= hi || lo > len(s) {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(string(s[lo-1 : hi-1]))), nil
}

func mustItem(s value.Sequence) value.Item {
	if len(s) == 0 {
		return value.NumericAtomic(value.NewDouble(math.NaN()))
	}
	return s[0]
}

// normalizeSpaceFn implements fn:normalize-space: trims leading/trailing
// ASCII whitespace and collapses interior runs to a single space.
func normalizeSpaceFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var s string
	if len(args) > 0 {
		s = asString(args, 0)
	} else {
		n, err := contextNode(ctx, "normalize-space")
		if err != nil {
			return nil, err
		}
		s = n.StringValue()
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	return value.Single(value.StringAtomic(strings.Join(fields, " "))), nil
}

// translateFn implements fn:translate: maps each character in the input
// present in the "from" string to the character at the same position in
// "to"; characters whose index in "from" is ≥ len(to) are removed
// entirely.
func translateFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	in := []rune(asString(args, 0))
	from := []rune(asString(args, 1))
	to := []rune(asString(args, 2))
	index := make(map[rune]int, len(from))
	for i, r := range from {
		if _, seen := index[r]; !seen {
			index[r] = i
		}
	}
	var b strings.Builder
	for _, r := range in {
		if i, ok := index[r]; ok {
			if i < len(to) {
				b.WriteRune(to[i])
			}
			continue
		}
		b.WriteRune(r)
	}
	return value.Single(value.StringAtomic(b.String())), nil
}

func stringLengthFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var s string
	if len(args) > 0 {
		s = asString(args, 0)
	} else {
		n, err := contextNode(ctx, "string-length")
		if err != nil {
			return nil, err
		}
		s = n.StringValue()
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(len([]rune(s)))))), nil
}

func startsWithFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.BooleanAtomic(strings.HasPrefix(asString(args, 0), asString(args, 1)))), nil
}

func endsWithFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.BooleanAtomic(strings.HasSuffix(asString(args, 0), asString(args, 1)))), nil
}

func containsFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.BooleanAtomic(strings.Contains(asString(args, 0), asString(args, 1)))), nil
}

func substringBeforeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	s, sep := asString(args, 0), asString(args, 1)
	if sep == "" {
		return value.Single(value.StringAtomic("")), nil
	}
	i := strings.Index(s, sep)
	if i < 0 {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(s[:i])), nil
}

func substringAfterFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	s, sep := asString(args, 0), asString(args, 1)
	if sep == "" {
		return value.Single(value.StringAtomic(s)), nil
	}
	i := strings.Index(s, sep)
	if i < 0 {
		return value.Single(value.StringAtomic("")), nil
	}
	return value.Single(value.StringAtomic(s[i+len(sep):])), nil
}

func upperCaseFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.StringAtomic(strings.ToUpper(asString(args, 0)))), nil
}

func lowerCaseFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.StringAtomic(strings.ToLower(asString(args, 0)))), nil
}

// compareFn / codepointEqualFn / deepEqualFn round out string/sequence
// comparison: compare() and codepoint-equal() are named in
// the core function library (XPath Functions 3.1 §7), and deep-equal()
// compares two sequences item by item (see DeepEqual).
func compareFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	col, err := collationArg(ctx, args, 2)
	if err != nil {
		return nil, err
	}
	a1, ok1 := value.Singleton(args[0])
	a2, ok2 := value.Singleton(args[1])
	if !ok1 || !ok2 {
		return value.Empty(), nil
	}
	c := col.Compare(value.StringValueOf(a1), value.StringValueOf(a2))
	switch {
	case c < 0:
		c = -1
	case c > 0:
		c = 1
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(c)))), nil
}

func codepointEqualFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	a1, ok1 := value.Singleton(args[0])
	a2, ok2 := value.Singleton(args[1])
	if !ok1 || !ok2 {
		return value.Empty(), nil
	}
	return value.Single(value.BooleanAtomic(value.StringValueOf(a1) == value.StringValueOf(a2))), nil
}

func deepEqualFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	col, err := collationArg(ctx, args, 2)
	if err != nil {
		return nil, err
	}
	return value.Single(value.BooleanAtomic(DeepEqual(args[0], args[1], col.Compare))), nil
}

var StringTable = registry.NewTable(
	fn("concat", 2, -1, nil, concatFn),
	fn("substring", 2, 3, []registry.ArgType{registry.String}, substringFn),
	fn("normalize-space", 0, 1, []registry.ArgType{registry.String}, normalizeSpaceFn),
	fn("translate", 3, 3, []registry.ArgType{registry.String, registry.String, registry.String}, translateFn),
	fn("string-length", 0, 1, []registry.ArgType{registry.String}, stringLengthFn),
	fn("starts-with", 2, 2, []registry.ArgType{registry.String, registry.String}, startsWithFn),
	fn("ends-with", 2, 2, []registry.ArgType{registry.String, registry.String}, endsWithFn),
	fn("contains", 2, 2, []registry.ArgType{registry.String, registry.String}, containsFn),
	fn("substring-before", 2, 2, []registry.ArgType{registry.String, registry.String}, substringBeforeFn),
	fn("substring-after", 2, 2, []registry.ArgType{registry.String, registry.String}, substringAfterFn),
	fn("upper-case", 1, 1, []registry.ArgType{registry.String}, upperCaseFn),
	fn("lower-case", 1, 1, []registry.ArgType{registry.String}, lowerCaseFn),
	fn("compare", 2, 3, nil, compareFn),
	fn("codepoint-equal", 2, 2, nil, codepointEqualFn),
	fn("deep-equal", 2, 3, nil, deepEqualFn),
)

func collationArg(ctx *context.Context, args []value.Sequence, idx int) (collation.Collation, error) {
	uri := ctx.DefaultCollation()
	if len(args) > idx {
		if s, ok := value.Singleton(args[idx]); ok {
			uri = value.StringValueOf(s)
		}
	}
	return collation.ForURI(uri)
}
