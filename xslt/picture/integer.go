package picture

import (
	"strconv"
	"strings"
)

// FormatInteger renders n according to a single component's
// presentation/width, used both by fn:format-integer directly and by
// every numeric date/time component (year, month, day, ...).
func FormatInteger(n int64, comp *Component) string {
	neg := n < 0
	if neg {
		n = -n
	}
	var body string
	switch comp.Presentation {
	case "I":
		body = roman(n, false)
	case "i":
		body = roman(n, true)
	case "A":
		body = alphabetic(n, false)
	case "a":
		body = alphabetic(n, true)
	case "W", "w", "Ww":
		// English-words spellout has no locale dictionary wired in;
		// fall back to decimal, a documented scope simplification
		// shared with xpath/corefn's format-integer.
		body = decimalPadded(n, comp)
	default:
		body = decimalPadded(n, comp)
	}
	if comp.MaxWidth > 0 && len(body) > comp.MaxWidth {
		body = body[len(body)-comp.MaxWidth:]
	}
	if neg {
		return "-" + body
	}
	return body
}

func decimalPadded(n int64, comp *Component) string {
	s := strconv.FormatInt(n, 10)
	grouped := strings.Contains(comp.Presentation, ",") || strings.Contains(comp.Presentation, "#")
	minWidth := comp.MinWidth
	if minWidth < 1 {
		minWidth = 1
	}
	for len(s) < minWidth {
		s = "0" + s
	}
	if !grouped {
		return s
	}
	return groupDigits(s, 3)
}

func groupDigits(s string, size int) string {
	if len(s) <= size {
		return s
	}
	var out []byte
	rem := len(s) % size
	if rem == 0 {
		rem = size
	}
	out = append(out, s[:rem]...)
	for i := rem; i < len(s); i += size {
		out = append(out, ',')
		out = append(out, s[i:i+size]...)
	}
	return string(out)
}

var romanValues = []struct {
	v int64
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman renders 1..3999 in Roman numerals; values outside that range
// (Roman numerals have no canonical representation beyond it) fall
// back to plain decimal.
func roman(n int64, lower bool) string {
	if n < 1 || n > 3999 {
		return strconv.FormatInt(n, 10)
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.v {
			b.WriteString(rv.s)
			n -= rv.v
		}
	}
	s := b.String()
	if lower {
		return strings.ToLower(s)
	}
	return s
}

// alphabetic renders n in base-26 "spreadsheet column" form (1=A,
// 2=B, ..., 26=Z, 27=AA, ...).
func alphabetic(n int64, lower bool) string {
	if n < 1 {
		return strconv.FormatInt(n, 10)
	}
	var b strings.Builder
	for n > 0 {
		n--
		digit := byte('A' + n%26)
		b.WriteByte(digit)
		n /= 26
	}
	s := reverseString(b.String())
	if lower {
		return strings.ToLower(s)
	}
	return s
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Ordinal appends an English ordinal suffix (1st, 2nd, 3rd, 4th, ...)
// to a rendered integer — the "o" modifier.
func Ordinal(n int64) string {
	s := strconv.FormatInt(n, 10)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	suffix := "th"
	switch abs % 100 {
	case 11, 12, 13:
		suffix = "th"
	default:
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return s + suffix
}
