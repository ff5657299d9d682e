package dateutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	dates := []string{
		"2024-01-01",
		"2024-02-29",
		"2025-06-04",
		"2025-12-31",
		"1999-07-15",
	}
	for _, d := range dates {
		c, err := Parse(d)
		require.NoError(t, err, d)
		assert.Equal(t, d, Format(c))
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"2025-6-4",
		"04-06-2025",
		"2025/06/04",
		"2025-13-01",
		"2025-02-30",
		"2025-00-10",
		"2025-01-00",
		"not-a-date",
	}
	for _, d := range bad {
		_, err := Parse(d)
		assert.Error(t, err, d)
	}
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(2025))
	assert.False(t, IsLeapYear(1900))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 28, DaysInMonth(2025, 2))
	assert.Equal(t, 31, DaysInMonth(2025, 1))
	assert.Equal(t, 30, DaysInMonth(2025, 4))
	assert.Equal(t, 31, DaysInMonth(2025, 12))
}

func TestAddDaysBoundaries(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-02-28", 1, "2024-02-29"},
		{"2025-02-28", 1, "2025-03-01"},
		{"2025-05-30", 2, "2025-06-01"},
		{"2024-12-29", 3, "2025-01-01"},
		{"2025-01-01", -1, "2024-12-31"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2025-06-15", 0, "2025-06-15"},
		{"2025-01-01", 365, "2026-01-01"},
		{"2024-01-01", 366, "2025-01-01"},
		{"2025-06-15", -400, "2025-05-11"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "AddDays(%s, %d)", tt.date, tt.n)
	}
}

func TestAddDaysInverse(t *testing.T) {
	dates := []string{"2024-02-29", "2025-01-15", "2025-12-31"}
	offsets := []int{1, 7, 31, 365, -1, -90, 1000}
	for _, d := range dates {
		for _, n := range offsets {
			forward, err := AddDays(d, n)
			require.NoError(t, err)
			back, err := AddDays(forward, -n)
			require.NoError(t, err)
			assert.Equal(t, d, back, "AddDays(AddDays(%s, %d), %d)", d, n, -n)
		}
	}
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates("2025-06-01")
	require.NoError(t, err)
	require.Len(t, dates, 7)
	assert.Equal(t, "2025-06-01", dates[0])
	assert.Equal(t, "2025-06-07", dates[6])
	for i := 1; i < len(dates); i++ {
		diff, err := DaysDifference(dates[i-1], dates[i])
		require.NoError(t, err)
		assert.Equal(t, 1, diff)
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2025-06-04 is a Wednesday; the preceding Sunday is 2025-06-01.
	start, err := StartOfWeek("2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", start)

	// A Sunday is its own start of week.
	start, err = StartOfWeek("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", start)
}

func TestWeekdayIndex(t *testing.T) {
	wd, err := WeekdayIndex("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 0, wd) // Sunday

	wd, err = WeekdayIndex("2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, 6, wd) // Saturday
}

func TestCompareStrings(t *testing.T) {
	cmp, err := CompareStrings("2025-06-04", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = CompareStrings("2025-06-04", "2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	cmp, err = CompareStrings("2026-01-01", "2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestDaysDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-06-04", "2025-06-05", 1},
		{"2025-06-05", "2025-06-04", 1},
		{"2024-02-28", "2024-03-01", 2},
		{"2025-02-28", "2025-03-01", 1},
		{"2024-01-01", "2025-01-01", 366},
		{"2025-06-04", "2025-06-04", 0},
	}
	for _, tt := range tests {
		got, err := DaysDifference(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "DaysDifference(%s, %s)", tt.a, tt.b)
	}
}

func TestIsPastAndToday(t *testing.T) {
	today := Today()

	isToday, err := IsToday(today)
	require.NoError(t, err)
	assert.True(t, isToday)

	yesterday, err := AddDays(today, -1)
	require.NoError(t, err)
	past, err := IsPastDate(yesterday)
	require.NoError(t, err)
	assert.True(t, past)

	tomorrow, err := AddDays(today, 1)
	require.NoError(t, err)
	past, err = IsPastDate(tomorrow)
	require.NoError(t, err)
	assert.False(t, past)
}

func TestValidateAndNormalize(t *testing.T) {
	t.Run("canonical input has no displacement", func(t *testing.T) {
		out := ValidateAndNormalize("2025-06-04")
		assert.True(t, out.IsValid)
		assert.Equal(t, "2025-06-04", out.NormalizedDate)
		assert.False(t, out.Displacement.Detected)
	})

	t.Run("non-padded input is respelled and flagged", func(t *testing.T) {
		out := ValidateAndNormalize("2025-6-4")
		assert.True(t, out.IsValid)
		assert.Equal(t, "2025-06-04", out.NormalizedDate)
		assert.True(t, out.Displacement.Detected)
		assert.Equal(t, "2025-6-4", out.Displacement.Original)
		assert.Equal(t, 0, out.Displacement.DayDelta)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		out := ValidateAndNormalize("tomorrow")
		assert.False(t, out.IsValid)
		assert.Error(t, out.Err)
	})

	t.Run("out of range components are rejected", func(t *testing.T) {
		out := ValidateAndNormalize("2025-02-30")
		assert.False(t, out.IsValid)
		assert.Error(t, out.Err)
	})
}

func TestDayNameAndDisplay(t *testing.T) {
	name, err := DayName("2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", name)

	disp, err := FormatForDisplay("2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday, June 4, 2025", disp)
}

func TestIsWeekend(t *testing.T) {
	for _, tt := range []struct {
		date string
		want bool
	}{
		{"2025-06-01", true},  // Sunday
		{"2025-06-07", true},  // Saturday
		{"2025-06-04", false}, // Wednesday
	} {
		got, err := IsWeekend(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.date)
	}
}

func TestAddDaysLongWalkMatchesDaysDifference(t *testing.T) {
	start := "2023-11-15"
	cur := start
	var err error
	for i := 1; i <= 500; i++ {
		cur, err = AddDays(cur, 1)
		require.NoError(t, err)
		if i%100 == 0 {
			diff, derr := DaysDifference(start, cur)
			require.NoError(t, derr)
			assert.Equal(t, i, diff, fmt.Sprintf("after %d steps", i))
		}
	}
}
