package picture

import (
	"math"
	"strconv"
	"strings"
)

// DecimalFormat is one xsl:decimal-format declaration's configurable
// symbol set; the zero value is the default (Western-Arabic) decimal
// format.
type DecimalFormat struct {
	DecimalSeparator  rune
	GroupingSeparator rune
	Infinity          string
	Minus             rune
	NaN               string
	Percent           rune
	PerMille          rune
	Zero              rune // must be the first of a contiguous run of ten decimal digits
	Digit             rune
	PatternSeparator  rune
}

// DefaultDecimalFormat is the format in force when no xsl:decimal-format
// is named.
func DefaultDecimalFormat() DecimalFormat {
	return DecimalFormat{
		DecimalSeparator: '.', GroupingSeparator: ',', Infinity: "Infinity",
		Minus: '-', NaN: "NaN", Percent: '%', PerMille: '‰',
		Zero: '0', Digit: '#', PatternSeparator: ';',
	}
}

// subPattern is one parsed half (positive or negative) of a
// format-number picture.
type subPattern struct {
	prefix, suffix                string
	minIntDigits, maxIntDigits    int
	minFracDigits, maxFracDigits  int
	groupingSize                  int
	useGrouping                   bool
	multiplier                    float64 // 1, 100 (percent), or 1000 (per-mille)
}

// FormatNumber renders v under picture using the given decimal-format
// symbols — percent/per-mille in the picture scale v by 100/1000
// respectively; a custom minus-sign applies only to the default
// (implied) negative prefix, not to an explicitly-written negative
// subpattern.
func FormatNumber(v float64, pic string, df DecimalFormat) (result string, err error) {
	defer recoverInto(&err)

	if math.IsNaN(v) {
		return df.NaN, nil
	}

	positivePic, negativePic, hasNegative := splitPatternSeparator(pic, df)
	pos := parseSubPattern(positivePic, df)

	if math.IsInf(v, 0) {
		sign := ""
		if v < 0 {
			sign = string(df.Minus)
		}
		return sign + pos.prefix + df.Infinity + pos.suffix, nil
	}

	neg := pos
	neg.prefix = string(df.Minus) + pos.prefix
	if hasNegative {
		neg = parseSubPattern(negativePic, df)
	}

	sp := pos
	negative := v < 0 || math.Signbit(v)
	if negative {
		sp = neg
		v = -v
	}
	v *= sp.multiplier

	digits := formatMagnitude(v, sp, df)
	return sp.prefix + digits + sp.suffix, nil
}

func splitPatternSeparator(pic string, df DecimalFormat) (positive, negative string, hasNegative bool) {
	idx := strings.IndexRune(pic, df.PatternSeparator)
	if idx < 0 {
		return pic, "", false
	}
	return pic[:idx], pic[idx+1:], true
}

func parseSubPattern(pic string, df DecimalFormat) subPattern {
	sp := subPattern{multiplier: 1, groupingSize: 3}

	// Split the pattern into prefix / numeric body / suffix: the
	// numeric body is the maximal run of digit/grouping/decimal
	// characters.
	start, end := -1, -1
	for i, r := range pic {
		if isNumericChar(r, df) {
			if start < 0 {
				start = i
			}
			end = i + len(string(r))
		}
	}
	if start < 0 {
		stop("format-number picture %q has no digit positions", pic)
	}
	sp.prefix = pic[:start]
	sp.suffix = pic[end:]
	body := pic[start:end]

	if strings.ContainsRune(sp.prefix, df.Percent) || strings.ContainsRune(sp.suffix, df.Percent) {
		sp.multiplier = 100
	}
	if strings.ContainsRune(sp.prefix, df.PerMille) || strings.ContainsRune(sp.suffix, df.PerMille) {
		sp.multiplier = 1000
	}

	intPart, fracPart, hasFrac := body, "", false
	if idx := strings.IndexRune(body, df.DecimalSeparator); idx >= 0 {
		intPart, fracPart, hasFrac = body[:idx], body[idx+len(string(df.DecimalSeparator)):], true
	}

	sp.useGrouping = strings.ContainsRune(intPart, df.GroupingSeparator)
	if sp.useGrouping {
		lastSep := strings.LastIndex(intPart, string(df.GroupingSeparator))
		sp.groupingSize = len([]rune(intPart[lastSep+len(string(df.GroupingSeparator)):]))
		intPart = strings.ReplaceAll(intPart, string(df.GroupingSeparator), "")
	}
	for _, r := range intPart {
		switch r {
		case df.Zero:
			sp.minIntDigits++
			sp.maxIntDigits++
		case df.Digit:
			sp.maxIntDigits++
		}
	}
	if sp.maxIntDigits == 0 {
		sp.maxIntDigits = 1
	}

	if hasFrac {
		for _, r := range fracPart {
			switch r {
			case df.Zero:
				sp.minFracDigits++
				sp.maxFracDigits++
			case df.Digit:
				sp.maxFracDigits++
			}
		}
	}
	return sp
}

func isNumericChar(r rune, df DecimalFormat) bool {
	return r == df.Zero || r == df.Digit || r == df.GroupingSeparator || r == df.DecimalSeparator
}

func formatMagnitude(v float64, sp subPattern, df DecimalFormat) string {
	scale := math.Pow(10, float64(sp.maxFracDigits))
	rounded := math.Round(v*scale) / scale
	s := strconv.FormatFloat(rounded, 'f', sp.maxFracDigits, 64)

	intStr, fracStr := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intStr, fracStr = s[:idx], s[idx+1:]
	}
	for len(intStr) < sp.minIntDigits {
		intStr = "0" + intStr
	}
	fracStr = trimTrailingZerosAbove(fracStr, sp.minFracDigits)

	if sp.useGrouping {
		intStr = groupWithRune(intStr, sp.groupingSize, df.GroupingSeparator)
	}
	intStr = translateDigits(intStr, df.Zero)
	fracStr = translateDigits(fracStr, df.Zero)

	if fracStr == "" {
		return intStr
	}
	return intStr + string(df.DecimalSeparator) + fracStr
}

func trimTrailingZerosAbove(s string, minDigits int) string {
	for len(s) > minDigits && strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s
}

func groupWithRune(s string, size int, sep rune) string {
	if size <= 0 || len(s) <= size {
		return s
	}
	var out []byte
	rem := len(s) % size
	if rem == 0 {
		rem = size
	}
	out = append(out, s[:rem]...)
	for i := rem; i < len(s); i += size {
		out = append(out, string(sep)...)
		out = append(out, s[i:i+size]...)
	}
	return string(out)
}

// translateDigits remaps ASCII '0'-'9' into the decimal-format's custom
// zero-digit codepoint run, for locales with non-Western-Arabic digits.
func translateDigits(s string, zero rune) string {
	if zero == '0' {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(zero + (r - '0'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
