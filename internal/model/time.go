package model

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	dateFmtLayout = "02/01/06"
	stampLayout   = "02/01/06 15:04"
)

// DateOnly is a calendar date without time of day. It is stored as an ISO
// string and compared by day, never by instant.
type DateOnly struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) DateOnly {
	return DateOnly{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return DateOnly{}, err
	}

	return DateOnly{t}, nil
}

// ParseDateFlexible accepts ISO (YYYY-MM-DD), dd/mm/yyyy and dd/mm/yy.
// Returns nil for empty or unparseable input.
func ParseDateFlexible(s string) *DateOnly {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if d, err := ParseDate(s); err == nil {
		return &d
	}

	for _, layout := range []string{"02/01/2006", "02/01/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &DateOnly{t}
		}
	}

	return nil
}

func (d DateOnly) String() string {
	return d.Format(dateLayout)
}

// Fmt renders the short display form (dd/mm/yy) used on cards and reports.
func (d DateOnly) Fmt() string {
	return d.Format(dateFmtLayout)
}

func (d DateOnly) Same(o DateOnly) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}

// DaysUntil is the number of whole days from today to this date, for the
// urgency highlight on the dashboard.
func (d DateOnly) DaysUntil(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	return int(day.Sub(today).Hours() / 24)
}

func (d DateOnly) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateOnly) UnmarshalText(text []byte) error {
	v, err := ParseDate(string(text))
	if err != nil {
		return err
	}

	*d = v

	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *DateOnly) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		*d = DateOnly{t}
		return nil
	case string:
		return d.UnmarshalText([]byte(t))
	case []byte:
		return d.UnmarshalText(t)
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", v)
	}
}

// ClockTime is a time of day with minute precision, stored as minutes from
// midnight.
type ClockTime int

var reClock12 = regexp.MustCompile(`^(\d{1,2})(?::(\d{1,2}))?(?::(\d{1,2}))?\s*(am|pm)$`)

func NewClock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("bad time %q", s)
	}

	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}

	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}

	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("bad time %q", s)
	}

	return NewClock(hh, mm), nil
}

// ParseClockFlexible accepts HH:MM, HH:MM:SS and 12-hour forms like "3 pm"
// or "03:05 PM". Returns nil for empty or unparseable input.
func ParseClockFlexible(s string) *ClockTime {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return nil
	}

	if m := reClock12.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm := 0

		if m[2] != "" {
			mm, _ = strconv.Atoi(m[2])
		}

		if hh == 12 {
			hh = 0
		}

		if m[4] == "pm" {
			hh += 12
		}

		if hh > 23 || mm > 59 {
			return nil
		}

		c := NewClock(hh, mm)

		return &c
	}

	if c, err := ParseClock(v); err == nil {
		return &c
	}

	return nil
}

func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) Minute() int {
	return int(c) % 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// DiffMinutes is the absolute distance between two times of the same day.
func (c ClockTime) DiffMinutes(o ClockTime) int {
	d := int(c) - int(o)
	if d < 0 {
		return -d
	}

	return d
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(text []byte) error {
	v, err := ParseClock(string(text))
	if err != nil {
		return err
	}

	*c = v

	return nil
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *ClockTime) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return c.UnmarshalText([]byte(t))
	case []byte:
		return c.UnmarshalText(t)
	case int64:
		*c = ClockTime(t)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", v)
	}
}

func fmtStamp(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(stampLayout)
}
