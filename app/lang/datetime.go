package lang

import (
	"fmt"
	"time"
)

// DateTime subtypes.
const (
	subtypeDate     = "Date"
	subtypeTime     = "Time"
	subtypeDateTime = "DateTime"
)

// DateTime is a point in time. A time of day written without a date is
// anchored on the current day.
type DateTime struct {
	DataLocation
	Value   time.Time
	HasDate bool
	HasTime bool
}

// NewDateTime returns a date/time datum.
func NewDateTime(loc DataLocation, t time.Time, hasDate, hasTime bool) *DateTime {
	return &DateTime{DataLocation: loc, Value: t, HasDate: hasDate, HasTime: hasTime}
}

func (d *DateTime) Type() string { return TypeDateTime }

func (d *DateTime) Subtype() string {
	switch {
	case d.HasDate && d.HasTime:
		return subtypeDateTime
	case d.HasTime:
		return subtypeTime
	default:
		return subtypeDate
	}
}

func (d *DateTime) ConflictResolutionPriority() int    { return 10 }
func (d *DateTime) WithLocation(loc DataLocation) Data { cp := *d; cp.DataLocation = loc; return &cp }

func (d *DateTime) Equal(other Data) bool {
	o, ok := other.(*DateTime)
	return ok && sameSpan(d, o) && d.Value.Equal(o.Value) && d.HasDate == o.HasDate && d.HasTime == o.HasTime
}

// DisplayText renders ISO dates for English and day-first dates for French,
// followed by the UTC offset when the value is not in UTC.
func (d *DateTime) DisplayText(culture string) string {
	dateLayout := "2006-01-02"
	if cultureInfoFor(culture).dayFirst {
		dateLayout = "02/01/2006"
	}
	var layout string
	switch {
	case d.HasDate && d.HasTime:
		layout = dateLayout + " 15:04:05"
	case d.HasTime:
		layout = "15:04:05"
	default:
		layout = dateLayout
	}
	s := d.Value.Format(layout)
	if !d.HasTime {
		return s
	}
	_, offset := d.Value.Zone()
	if offset == 0 {
		return s
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s %s%02d%02d", s, sign, offset/3600, (offset%3600)/60)
}

// AddSeconds returns d shifted by a duration expressed in seconds. Shifting
// a plain date by a duration with a time part makes it a date and time.
func (d *DateTime) AddSeconds(seconds Number) *DateTime {
	ns := seconds.Mul(NumberFromInt(int64(time.Second))).Int64()
	t := d.Value.Add(time.Duration(ns))
	hasTime := d.HasTime || ns%int64(24*time.Hour) != 0
	return NewDateTime(d.DataLocation, t, d.HasDate || d.HasTime && !sameDay(d.Value, t), hasTime)
}

// SecondsSince returns d - o in seconds.
func (d *DateTime) SecondsSince(o *DateTime) Number {
	return NumberFromFrac(int64(d.Value.Sub(o.Value)), int64(time.Second))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
