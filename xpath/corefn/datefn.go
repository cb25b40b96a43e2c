package corefn

import (
	"github.com/CognitoIQ/xslt-runtime/xpath/registry"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

func calendarArg(args []value.Sequence, i int, fname string) (value.CalendarAtomic, bool, error) {
	v, ok := value.Singleton(args[i])
	if !ok {
		return value.CalendarAtomic{}, false, nil
	}
	c, ok := v.(value.CalendarAtomic)
	if !ok {
		return value.CalendarAtomic{}, false, xerr.TypeError(xerr.XPTY0004, "date/time value", v.TypeName(), "%s requires a date/time argument", fname)
	}
	return c, true, nil
}

func yearFromDateTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "year-from-dateTime")
	if err != nil || !ok {
		return value.Empty(), err
	}
	y, ok := c.Year()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(y)))), nil
}

func monthFromDateTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "month-from-dateTime")
	if err != nil || !ok {
		return value.Empty(), err
	}
	m, ok := c.Month()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(m)))), nil
}

func dayFromDateTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "day-from-dateTime")
	if err != nil || !ok {
		return value.Empty(), err
	}
	d, ok := c.Day()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(d)))), nil
}

func hoursFromTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "hours-from-time")
	if err != nil || !ok {
		return value.Empty(), err
	}
	h, ok := c.Hour()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(h)))), nil
}

func minutesFromTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "minutes-from-time")
	if err != nil || !ok {
		return value.Empty(), err
	}
	m, ok := c.Minute()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewInteger(int64(m)))), nil
}

func secondsFromTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, ok, err := calendarArg(args, 0, "seconds-from-time")
	if err != nil || !ok {
		return value.Empty(), err
	}
	s, ok := c.Second()
	if !ok {
		return value.Empty(), nil
	}
	return value.Single(value.NumericAtomic(value.NewDecimal(s))), nil
}

// currentDateTimeFn, currentDateFn, currentTimeFn all read the Context's
// sampled instant, so repeated calls within one transformation see the
// same value.
func currentDateTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, err := value.ParseDateTime(ctx.Now().Format("2006-01-02T15:04:05"))
	if err != nil {
		return nil, err
	}
	return value.Single(c), nil
}

func currentDateFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, err := value.ParseDate(ctx.Now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return value.Single(c), nil
}

func currentTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	c, err := value.ParseTime(ctx.Now().Format("15:04:05"))
	if err != nil {
		return nil, err
	}
	return value.Single(c), nil
}

// dateTimeFn implements the dateTime(date, time) constructor, which
// fails if the two operands specify conflicting timezones.
func dateTimeFn(ctx *context.Context, args []value.Sequence) (value.Sequence, error) {
	d, ok, err := calendarArg(args, 0, "dateTime")
	if err != nil || !ok {
		return value.Empty(), err
	}
	t, ok, err := calendarArg(args, 1, "dateTime")
	if err != nil || !ok {
		return value.Empty(), err
	}
	dtz, dHasTZ := d.TZOffsetMinutes()
	ttz, tHasTZ := t.TZOffsetMinutes()
	if dHasTZ && tHasTZ && dtz != ttz {
		return nil, xerr.New(xerr.XPTY0004, "dateTime: date and time operands specify conflicting timezones")
	}
	y, _ := d.Year()
	mo, _ := d.Month()
	day, _ := d.Day()
	h, _ := t.Hour()
	mi, _ := t.Minute()
	s, _ := t.Second()
	lexical := formatDateTime(y, mo, day, h, mi, s)
	tz := dtz
	hasTZ := dHasTZ
	if !hasTZ {
		tz, hasTZ = ttz, tHasTZ
	}
	if hasTZ {
		lexical += tzSuffix(tz)
	}
	c, err := value.ParseDateTime(lexical)
	return value.Single(c), err
}

func formatDateTime(y, mo, day, h, mi int, s float64) string {
	return padInt(y, 4) + "-" + padInt(mo, 2) + "-" + padInt(day, 2) +
		"T" + padInt(h, 2) + ":" + padInt(mi, 2) + ":" + padSeconds(s)
}

func padInt(n, width int) string {
	s := itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func padSeconds(s float64) string {
	whole := int(s)
	return padInt(whole, 2)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		return "-" + string(b)
	}
	return string(b)
}

func tzSuffix(offsetMinutes int) string {
	if offsetMinutes == 0 {
		return "Z"
	}
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return sign + padInt(offsetMinutes/60, 2) + ":" + padInt(offsetMinutes%60, 2)
}

var DateTimeTable = registry.NewTable(
	fn("year-from-dateTime", 1, 1, nil, yearFromDateTimeFn),
	fn("month-from-dateTime", 1, 1, nil, monthFromDateTimeFn),
	fn("day-from-dateTime", 1, 1, nil, dayFromDateTimeFn),
	fn("hours-from-time", 1, 1, nil, hoursFromTimeFn),
	fn("minutes-from-time", 1, 1, nil, minutesFromTimeFn),
	fn("seconds-from-time", 1, 1, nil, secondsFromTimeFn),
	fn("current-dateTime", 0, 0, nil, currentDateTimeFn),
	fn("current-date", 0, 0, nil, currentDateFn),
	fn("current-time", 0, 0, nil, currentTimeFn),
	fn("dateTime", 2, 2, nil, dateTimeFn),
)
