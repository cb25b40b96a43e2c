package corefn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func numberFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	var n value.Numeric
	if len(args) > 0 {
		v, ok := value.Singleton(args[0])
		if !ok {
			n = value.NewDouble(math.NaN())
		} else {
			n = value.NumberValueOf(v)
		}
	} else {
		cn, err := contextNode(ctx, "number")
		if err != nil {
			return nil, err
		}
		n = value.NumberFromString(cn.StringValue())
	}
	return value.Single(value.NumericAtomic(n)), nil
}

func sumFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	if len(args[0]) == 0 {
		if len(args) > 1 {
			return args[1], nil
		}
		return value.Single(value.NumericAtomic(value.NewInteger(0))), nil
	}
	total := value.NewInteger(0)
	for _, it := range args[0] {
		total = total.Add(value.NumberValueOf(it))
	}
	return value.Single(value.NumericAtomic(total)), nil
}

func numArg(args []value.Sequence, i int) value.Numeric {
	v, ok := value.Singleton(args[i])
	if !ok {
		return value.NewDouble(math.NaN())
	}
	return value.NumberValueOf(v)
}

func floorFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(numArg(args, 0).Floor())), nil
}

func ceilingFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(numArg(args, 0).Ceiling())), nil
}

func roundFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n := numArg(args, 0)
	if len(args) > 1 {
		precision := numArg(args, 1)
		return value.Single(value.NumericAtomic(n.RoundTo(int(precision.F)))), nil
	}
	return value.Single(value.NumericAtomic(n.Round())), nil
}

func absFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	return value.Single(value.NumericAtomic(numArg(args, 0).Abs())), nil
}

func roundHalfToEvenFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n := numArg(args, 0)
	precision := 0
	if len(args) > 1 {
		precision = int(numArg(args, 1).F)
	}
	return value.Single(value.NumericAtomic(n.RoundHalfToEven(precision))), nil
}

func minMax(args []value.Sequence, col func(a, b string) int, wantMax bool) (value.Sequence, error) {
	if len(args[0]) == 0 {
		return value.Empty(), nil
	}
	for _, it := range args[0] {
		if n, ok := it.(value.NumericAtomic); ok && value.Numeric(n).IsNaN() {
			return value.Single(it), nil
		}
	}
	best := args[0][0]
	for _, it := range args[0][1:] {
		less, err := compareItemsForOrder(best, it, col)
		if err != nil {
			return nil, err
		}
		if (wantMax && less) || (!wantMax && !less) {
			best = it
		}
	}
	return value.Single(best), nil
}

// compareItemsForOrder reports whether a sorts before b: numerically if
// both are numeric (NaN makes every comparison false, so minMax returns
// a NaN operand before comparing anything), otherwise by the supplied
// collation's string comparison.
func compareItemsForOrder(a, b value.Item, col func(x, y string) int) (bool, error) {
	an, aok := a.(value.NumericAtomic)
	bn, bok := b.(value.NumericAtomic)
	if aok && bok {
		c, ok := value.Numeric(an).Compare(value.Numeric(bn))
		if !ok {
			return false, nil
		}
		return c < 0, nil
	}
	return col(value.StringValueOf(a), value.StringValueOf(b)) < 0, nil
}

func minFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	col, err := collationArg(ctx, args, 1)
	if err != nil {
		return nil, err
	}
	return minMax(args, col.Compare, false)
}

func maxFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	col, err := collationArg(ctx, args, 1)
	if err != nil {
		return nil, err
	}
	return minMax(args, col.Compare, true)
}

func avgFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	if len(args[0]) == 0 {
		return value.Empty(), nil
	}
	total := value.NewInteger(0)
	for _, it := range args[0] {
		total = total.Add(value.NumberValueOf(it))
	}
	avg := total.Div(value.NewInteger(int64(len(args[0]))))
	return value.Single(value.NumericAtomic(avg)), nil
}

// formatIntegerFn implements fn:format-integer for the common picture
// forms: "1" (decimal), "01" (zero-padded decimal), "a"/"A" (alphabetic),
// "i"/"I" (lowercase/uppercase Roman numerals), "w"/"W" (English words is
// out of scope without a locale dictionary dependency — falls back to
// decimal, matching many lightweight implementations' documented
// behavior for unsupported picture tokens).
func formatIntegerFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	n := numArg(args, 0)
	picture := asString(args, 1)
	i := int64(n.F)
	switch {
	case picture == "a":
		return value.Single(value.StringAtomic(alphabetic(i, false))), nil
	case picture == "A":
		return value.Single(value.StringAtomic(alphabetic(i, true))), nil
	case picture == "i":
		return value.Single(value.StringAtomic(strings.ToLower(roman(i)))), nil
	case picture == "I":
		return value.Single(value.StringAtomic(roman(i))), nil
	case strings.HasPrefix(picture, "0"):
		width := len(picture)
		return value.Single(value.StringAtomic(fmt.Sprintf("%0*d", width, i))), nil
	default:
		return value.Single(value.StringAtomic(strconv.FormatInt(i, 10))), nil
	}
}

func alphabetic(n int64, upper bool) string {
	if n <= 0 {
		return strconv.FormatInt(n, 10)
	}
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('a' + n%26)}, letters...)
		n /= 26
	}
	s := string(letters)
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

func roman(n int64) string {
	if n <= 0 || n > 3999 {
		return strconv.FormatInt(n, 10)
	}
	vals := []int64{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var b strings.Builder
	for i, v := range vals {
		for n >= v {
			b.WriteString(syms[i])
			n -= v
		}
	}
	return b.String()
}

var NumberTable = registry.NewTable(
	fn("number", 0, 1, nil, numberFn),
	fn("sum", 1, 2, []registry.ArgType{registry.Seq, registry.Any}, sumFn),
	fn("floor", 1, 1, []registry.ArgType{registry.Numeric}, floorFn),
	fn("ceiling", 1, 1, []registry.ArgType{registry.Numeric}, ceilingFn),
	fn("round", 1, 2, []registry.ArgType{registry.Numeric}, roundFn),
	fn("abs", 1, 1, []registry.ArgType{registry.Numeric}, absFn),
	fn("round-half-to-even", 1, 2, []registry.ArgType{registry.Numeric}, roundHalfToEvenFn),
	fn("min", 1, 2, nil, minFn),
	fn("max", 1, 2, nil, maxFn),
	fn("avg", 1, 1, nil, avgFn),
	fn("format-integer", 2, 3, nil, formatIntegerFn),
)
