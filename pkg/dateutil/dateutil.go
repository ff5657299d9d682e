// Package dateutil implements calendar-date arithmetic on explicit
// integer components. Mutating time.Time values across day boundaries
// has produced off-by-one date shifts in production scheduling flows,
// so every add/compare here works on {year, month, day} integers and a
// time.Time is only ever constructed read-only, for weekday extraction,
// locale formatting, or day-count subtraction.
package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateComponents is an immutable calendar date. The canonical string
// form is YYYY-MM-DD.
type DateComponents struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

var (
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	lenientDateRe   = regexp.MustCompile(`^(\d{1,4})-(\d{1,2})-(\d{1,2})$`)
)

// ErrInvalidFormat is returned when a date string is not YYYY-MM-DD.
var ErrInvalidFormat = fmt.Errorf("invalid date format, expected YYYY-MM-DD")

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Parse parses a canonical YYYY-MM-DD string.
func Parse(s string) (DateComponents, error) {
	if !canonicalDateRe.MatchString(s) {
		return DateComponents{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	parts := strings.SplitN(s, "-", 3)
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	c := DateComponents{Year: year, Month: month, Day: day}
	if err := c.Validate(); err != nil {
		return DateComponents{}, err
	}
	return c, nil
}

// Format renders the canonical zero-padded YYYY-MM-DD form. It is the
// sole inverse of Parse.
func Format(c DateComponents) string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
}

// Validate checks component ranges against the real calendar.
func (c DateComponents) Validate() error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month %d out of range", c.Month)
	}
	if c.Day < 1 || c.Day > DaysInMonth(c.Year, c.Month) {
		return fmt.Errorf("day %d out of range for %04d-%02d", c.Day, c.Year, c.Month)
	}
	return nil
}

func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// AddDays returns dateStr shifted by n calendar days. The carry/borrow
// runs entirely on integer components; no time.Time is involved.
func AddDays(dateStr string, n int) (string, error) {
	c, err := Parse(dateStr)
	if err != nil {
		return "", err
	}

	day := c.Day + n
	month := c.Month
	year := c.Year

	for day > DaysInMonth(year, month) {
		day -= DaysInMonth(year, month)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	for day < 1 {
		month--
		if month < 1 {
			month = 12
			year--
		}
		day += DaysInMonth(year, month)
	}

	return Format(DateComponents{Year: year, Month: month, Day: day}), nil
}

// WeekdayIndex returns 0=Sunday..6=Saturday. This is one of the few
// sanctioned uses of a transient time.Time: it is constructed at noon
// UTC, read once, and discarded.
func WeekdayIndex(dateStr string) (int, error) {
	c, err := Parse(dateStr)
	if err != nil {
		return 0, err
	}
	t := time.Date(c.Year, time.Month(c.Month), c.Day, 12, 0, 0, 0, time.UTC)
	return int(t.Weekday()), nil
}

// StartOfWeek returns the Sunday on or before dateStr. The weekday is
// read from a transient time.Time; the actual back-step happens through
// AddDays.
func StartOfWeek(dateStr string) (string, error) {
	wd, err := WeekdayIndex(dateStr)
	if err != nil {
		return "", err
	}
	return AddDays(dateStr, -wd)
}

// WeekDates returns the 7 consecutive dates starting at startDateStr.
func WeekDates(startDateStr string) ([]string, error) {
	dates := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		d, err := AddDays(startDateStr, i)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Compare orders two canonical dates: -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b DateComponents) int {
	if a.Year != b.Year {
		return sign(a.Year - b.Year)
	}
	if a.Month != b.Month {
		return sign(a.Month - b.Month)
	}
	return sign(a.Day - b.Day)
}

// CompareStrings parses both dates and compares them.
func CompareStrings(a, b string) (int, error) {
	ca, err := Parse(a)
	if err != nil {
		return 0, err
	}
	cb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(ca, cb), nil
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Today returns the current wall-clock date in canonical form. It is
// derived once per call and never mutated afterward.
func Today() string {
	now := time.Now()
	return Format(DateComponents{Year: now.Year(), Month: int(now.Month()), Day: now.Day()})
}

func IsToday(dateStr string) (bool, error) {
	cmp, err := CompareStrings(dateStr, Today())
	if err != nil {
		return false, err
	}
	return cmp == 0, nil
}

func IsPastDate(dateStr string) (bool, error) {
	cmp, err := CompareStrings(dateStr, Today())
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

// DaysDifference returns the absolute number of calendar days between
// two dates. The subtraction runs on two read-only time.Time values
// pinned to noon UTC; neither is ever mutated.
func DaysDifference(a, b string) (int, error) {
	ca, err := Parse(a)
	if err != nil {
		return 0, err
	}
	cb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	ta := time.Date(ca.Year, time.Month(ca.Month), ca.Day, 12, 0, 0, 0, time.UTC)
	tb := time.Date(cb.Year, time.Month(cb.Month), cb.Day, 12, 0, 0, 0, time.UTC)
	diff := int(tb.Sub(ta).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff, nil
}

// Displacement describes a date whose spelling changed during
// normalization, together with the day delta between input and
// canonical value.
type Displacement struct {
	Detected   bool   `json:"detected"`
	Original   string `json:"original,omitempty"`
	Normalized string `json:"normalized,omitempty"`
	DayDelta   int    `json:"day_delta,omitempty"`
}

// ValidationOutcome is the result of ValidateAndNormalize.
type ValidationOutcome struct {
	IsValid        bool
	NormalizedDate string
	Err            error
	Displacement   Displacement
}

// ValidateAndNormalize accepts a leniently formatted date string,
// validates its component ranges, and reports the canonical spelling.
// A displacement is flagged when the input was parseable but not
// canonical; the day delta is 0 unless the day value itself moved.
func ValidateAndNormalize(dateStr string) ValidationOutcome {
	m := lenientDateRe.FindStringSubmatch(strings.TrimSpace(dateStr))
	if m == nil {
		return ValidationOutcome{
			IsValid: false,
			Err:     fmt.Errorf("%w: %q", ErrInvalidFormat, dateStr),
		}
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	c := DateComponents{Year: year, Month: month, Day: day}
	if err := c.Validate(); err != nil {
		return ValidationOutcome{IsValid: false, Err: err}
	}

	normalized := Format(c)
	out := ValidationOutcome{IsValid: true, NormalizedDate: normalized}
	if dateStr != normalized {
		// Lenient parsing preserves the numeric day value, so a pure
		// respelling has delta 0. A non-zero delta here would mean the
		// parser itself moved the date, which is exactly the defect
		// this engine exists to catch.
		delta := 0
		if reparsed, err := Parse(normalized); err == nil {
			delta = absInt(reparsed.Day - day)
		}
		out.Displacement = Displacement{
			Detected:   true,
			Original:   dateStr,
			Normalized: normalized,
			DayDelta:   delta,
		}
	}
	return out
}

// DayName returns the English weekday name via a transient, read-only
// time.Time.
func DayName(dateStr string) (string, error) {
	c, err := Parse(dateStr)
	if err != nil {
		return "", err
	}
	t := time.Date(c.Year, time.Month(c.Month), c.Day, 12, 0, 0, 0, time.UTC)
	return t.Weekday().String(), nil
}

// FormatForDisplay renders a human-readable form like
// "Wednesday, June 4, 2025". The time.Time is used for formatting only.
func FormatForDisplay(dateStr string) (string, error) {
	c, err := Parse(dateStr)
	if err != nil {
		return "", err
	}
	t := time.Date(c.Year, time.Month(c.Month), c.Day, 12, 0, 0, 0, time.UTC)
	return t.Format("Monday, January 2, 2006"), nil
}

// IsWeekend reports whether dateStr falls on Saturday or Sunday.
func IsWeekend(dateStr string) (bool, error) {
	wd, err := WeekdayIndex(dateStr)
	if err != nil {
		return false, err
	}
	return wd == 0 || wd == 6, nil
}
