package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Period is a billing period key, rendered as YYYYMM.
type Period struct {
	year  int
	month time.Month
}

func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("NewPeriod: month %d outside 1..12: %w", month, ErrInvalidPeriod)
	}
	if year < 2000 || year > 9999 {
		return Period{}, fmt.Errorf("NewPeriod: year %d outside 2000..9999: %w", year, ErrInvalidPeriod)
	}
	return Period{year: year, month: month}, nil
}

func ParsePeriod(s string) (Period, error) {
	if len(s) != 6 {
		return Period{}, fmt.Errorf("ParsePeriod: %q is not YYYYMM: %w", s, ErrInvalidPeriod)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Period{}, fmt.Errorf("ParsePeriod: %q is not YYYYMM: %w", s, ErrInvalidPeriod)
		}
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[4:])
	p, err := NewPeriod(year, time.Month(month))
	if err != nil {
		return Period{}, fmt.Errorf("ParsePeriod: %w", err)
	}
	return p, nil
}

func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

func (p Period) Year() int           { return p.year }
func (p Period) Month() time.Month   { return p.month }
func (p Period) IsZero() bool        { return p.year == 0 && p.month == 0 }
func (p Period) String() string      { return fmt.Sprintf("%04d%02d", p.year, int(p.month)) }
func (p Period) Next() Period        { return p.AddMonths(1) }
func (p Period) Previous() Period    { return p.AddMonths(-1) }
func (p Period) FirstDay() time.Time { return Date(p.year, p.month, 1) }

func (p Period) LastDay() time.Time {
	return Date(p.year, p.month, DaysIn(p.year, p.month))
}

func (p Period) AddMonths(n int) Period {
	idx := p.year*12 + int(p.month) - 1 + n
	return Period{year: idx / 12, month: time.Month(idx%12 + 1)}
}

func (p Period) Compare(other Period) int {
	switch {
	case p.year != other.year:
		if p.year < other.year {
			return -1
		}
		return 1
	case p.month < other.month:
		return -1
	case p.month > other.month:
		return 1
	}
	return 0
}

func (p Period) Before(other Period) bool { return p.Compare(other) < 0 }
func (p Period) After(other Period) bool  { return p.Compare(other) > 0 }

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate returns day in the given month, or the month's last day when
// day does not exist there.
func clampedDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}
