// Package xsdctor implements the xs:NAME(value) constructor/coercion
// layer: each constructor accepts an atomic or atomizable value and
// returns the typed value after lexical validation, built directly atop
// xpath/value's AtomicKind enum rather than defining its own type
// system.
package xsdctor

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func atomize(args []value.Sequence, fname string) (value.Item, bool, error) {
	v, ok := value.Singleton(args[0])
	if !ok {
		return nil, false, nil
	}
	if _, isFn := v.(value.Function); isFn {
		return nil, false, xerr.TypeError(xerr.XPTY0004, "atomic value", "function(*)", "%s cannot atomize a function item", fname)
	}
	return v, true, nil
}

func stringForm(v value.Item) string {
	return value.StringValueOf(v)
}

func ctor(local string, call registry.Func) *registry.Descriptor {
	return &registry.Descriptor{
		Name:     node.ExpandedName{URI: registry.XsURI, Local: local},
		MinArity: 1, MaxArity: 1,
		Call: call,
	}
}

func xsString(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	v, ok, err := atomize(args, "xs:string")
	if err != nil || !ok {
		return value.Empty(), err
	}
	return value.Single(value.StringAtomic(stringForm(v))), nil
}

func xsBoolean(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	v, ok, err := atomize(args, "xs:boolean")
	if err != nil || !ok {
		return value.Empty(), err
	}
	s := strings.TrimSpace(stringForm(v))
	switch s {
	case "true", "1":
		return value.Single(value.BooleanAtomic(true)), nil
	case "false", "0":
		return value.Single(value.BooleanAtomic(false)), nil
	default:
		return nil, xerr.New(xerr.FORG0001, "xs:boolean: %q is not true|false|1|0", s)
	}
}

func numericCtor(kind value.NumSub, allowSpecials bool, fname string) registry.Func {
	return func(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
		v, ok, err := atomize(args, fname)
		if err != nil || !ok {
			return value.Empty(), err
		}
		s := strings.TrimSpace(stringForm(v))
		var f float64
		switch s {
		case "NaN":
			if !allowSpecials {
				return nil, xerr.New(xerr.FORG0001, "%s: NaN is not a valid integer", fname)
			}
			f = math.NaN()
		case "INF", "+INF":
			if !allowSpecials {
				return nil, xerr.New(xerr.FORG0001, "%s: INF is not a valid integer", fname)
			}
			f = math.Inf(1)
		case "-INF":
			if !allowSpecials {
				return nil, xerr.New(xerr.FORG0001, "%s: -INF is not a valid integer", fname)
			}
			f = math.Inf(-1)
		default:
			parsed, perr := strconv.ParseFloat(s, 64)
			if perr != nil {
				return nil, xerr.New(xerr.FORG0001, "%s: %q is not a valid number", fname, s)
			}
			f = parsed
			if kind == value.NumInteger && f != math.Trunc(f) {
				return nil, xerr.New(xerr.FORG0001, "%s: %q is not an integer", fname, s)
			}
		}
		return value.Single(value.NumericAtomic(value.Numeric{Sub: kind, F: f})), nil
	}
}

func xsHexBinary(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	v, ok, err := atomize(args, "xs:hexBinary")
	if err != nil || !ok {
		return value.Empty(), err
	}
	s := strings.TrimSpace(stringForm(v))
	if len(s)%2 != 0 {
		return nil, xerr.New(xerr.FORG0001, "xs:hexBinary: %q has odd length", s)
	}
	b, derr := hex.DecodeString(s)
	if derr != nil {
		return nil, xerr.New(xerr.FORG0001, "xs:hexBinary: %q is not valid hex", s)
	}
	return value.Single(value.HexBinaryAtomic(b)), nil
}

func xsBase64Binary(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	v, ok, err := atomize(args, "xs:base64Binary")
	if err != nil || !ok {
		return value.Empty(), err
	}
	s := strings.Join(strings.Fields(stringForm(v)), "")
	if len(s)%4 != 0 {
		return nil, xerr.New(xerr.FORG0001, "xs:base64Binary: %q has invalid length", s)
	}
	b, derr := base64.StdEncoding.DecodeString(s)
	if derr != nil {
		return nil, xerr.New(xerr.FORG0001, "xs:base64Binary: %q is not valid base64", s)
	}
	return value.Single(value.Base64BinaryAtomic(b)), nil
}

func xsAnyURI(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	v, ok, err := atomize(args, "xs:anyURI")
	if err != nil || !ok {
		return value.Empty(), err
	}
	return value.Single(value.AnyURIAtomic(stringForm(v))), nil
}

func calendarCtor(parse func(string) (value.CalendarAtomic, error), fname string) registry.Func {
	return func(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
		v, ok, err := atomize(args, fname)
		if err != nil || !ok {
			return value.Empty(), err
		}
		c, perr := parse(strings.TrimSpace(stringForm(v)))
		if perr != nil {
			return nil, xerr.New(xerr.FORG0001, "%s: %v", fname, perr)
		}
		return value.Single(c), nil
	}
}

// Table is the fixed xs: constructor table.
var Table = registry.NewTable(
	ctor("string", xsString),
	ctor("boolean", xsBoolean),
	ctor("double", numericCtor(value.NumDouble, true, "xs:double")),
	ctor("decimal", numericCtor(value.NumDecimal, false, "xs:decimal")),
	ctor("integer", numericCtor(value.NumInteger, false, "xs:integer")),
	ctor("hexBinary", xsHexBinary),
	ctor("base64Binary", xsBase64Binary),
	ctor("anyURI", xsAnyURI),
	ctor("dateTime", calendarCtor(value.ParseDateTime, "xs:dateTime")),
	ctor("date", calendarCtor(value.ParseDate, "xs:date")),
	ctor("time", calendarCtor(value.ParseTime, "xs:time")),
	ctor("gYear", calendarCtor(value.ParseGYear, "xs:gYear")),
	ctor("gYearMonth", calendarCtor(value.ParseGYearMonth, "xs:gYearMonth")),
	ctor("gMonth", calendarCtor(value.ParseGMonth, "xs:gMonth")),
	ctor("gMonthDay", calendarCtor(value.ParseGMonthDay, "xs:gMonthDay")),
	ctor("gDay", calendarCtor(value.ParseGDay, "xs:gDay")),
	ctor("duration", calendarCtor(value.ParseDuration, "xs:duration")),
)
