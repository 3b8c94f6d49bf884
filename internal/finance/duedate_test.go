package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodDueDate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		start    time.Time
		want     time.Time
	}{
		{
			name:     "monthly anchor after start",
			schedule: Schedule{Frequency: Monthly, DayOfMonth: 10},
			start:    date(2024, time.March, 1),
			want:     date(2024, time.March, 10),
		},
		{
			name:     "monthly anchor before start rolls to next month",
			schedule: Schedule{Frequency: Monthly, DayOfMonth: 5},
			start:    date(2024, time.March, 15),
			want:     date(2024, time.April, 5),
		},
		{
			name:     "monthly anchor on start",
			schedule: Schedule{Frequency: Monthly, DayOfMonth: 15},
			start:    date(2024, time.March, 15),
			want:     date(2024, time.March, 15),
		},
		{
			name:     "monthly clamps to month end",
			schedule: Schedule{Frequency: Monthly, DayOfMonth: 31},
			start:    date(2023, time.February, 1),
			want:     date(2023, time.February, 28),
		},
		{
			name:     "monthly default anchor is the first",
			schedule: Schedule{Frequency: Monthly},
			start:    date(2024, time.June, 1),
			want:     date(2024, time.June, 1),
		},
		{
			name:     "monthly roll over clamps in the next month",
			schedule: Schedule{Frequency: Monthly, DayOfMonth: 30},
			start:    date(2024, time.January, 31),
			want:     date(2024, time.February, 29),
		},
		{
			name:     "weekly next target weekday",
			schedule: Schedule{Frequency: Weekly, DayOfWeek: Friday},
			start:    date(2024, time.May, 6), // Monday
			want:     date(2024, time.May, 10),
		},
		{
			name:     "weekly start is the target weekday",
			schedule: Schedule{Frequency: Weekly, DayOfWeek: Monday},
			start:    date(2024, time.May, 6),
			want:     date(2024, time.May, 6),
		},
		{
			name:     "weekly sunday",
			schedule: Schedule{Frequency: Weekly, DayOfWeek: Sunday},
			start:    date(2024, time.May, 6),
			want:     date(2024, time.May, 12),
		},
		{
			name:     "weekly default is monday",
			schedule: Schedule{Frequency: Weekly},
			start:    date(2024, time.May, 8), // Wednesday
			want:     date(2024, time.May, 13),
		},
		{
			name:     "fortnightly third tuesday",
			schedule: Schedule{Frequency: Fortnightly, DayOfWeek: Tuesday, WeekOfMonth: 3},
			start:    date(2024, time.May, 1),
			want:     date(2024, time.May, 21),
		},
		{
			name:     "fortnightly occurrence before start falls back to next weekday",
			schedule: Schedule{Frequency: Fortnightly, DayOfWeek: Tuesday, WeekOfMonth: 1},
			start:    date(2024, time.May, 15),
			want:     date(2024, time.May, 21),
		},
		{
			name:     "yearly january anchor",
			schedule: Schedule{Frequency: Yearly, DayOfMonth: 15},
			start:    date(2024, time.January, 1),
			want:     date(2024, time.January, 15),
		},
		{
			name:     "yearly anchor passed rolls to next year",
			schedule: Schedule{Frequency: Yearly, DayOfMonth: 15},
			start:    date(2024, time.March, 1),
			want:     date(2025, time.January, 15),
		},
		{
			name:     "unknown frequency is the start date",
			schedule: Schedule{Frequency: Frequency("DAILY")},
			start:    time.Date(2024, time.May, 6, 17, 30, 0, 0, time.UTC),
			want:     date(2024, time.May, 6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodDueDate(tt.schedule, tt.start)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Before(DateOnly(tt.start)))
		})
	}
}

func TestDaysLate(t *testing.T) {
	due := date(2024, time.March, 10)

	assert.Equal(t, 0, DaysLate(due, date(2024, time.March, 1)))
	assert.Equal(t, 0, DaysLate(due, due))
	assert.Equal(t, 0, DaysLate(due, due.Add(23*time.Hour)), "same calendar day")
	assert.Equal(t, 1, DaysLate(due, date(2024, time.March, 11).Add(time.Minute)))
	assert.Equal(t, 21, DaysLate(due, date(2024, time.March, 31)))
	assert.Equal(t, 20, DaysLate(due.Add(22*time.Hour), date(2024, time.March, 30).Add(time.Hour)), "time of day ignored")
}

func TestLateFineInfo(t *testing.T) {
	s := Schedule{Frequency: Monthly, DayOfMonth: 10}

	info := LateFineInfo(s, date(2024, time.March, 1), date(2024, time.March, 15))
	assert.Equal(t, date(2024, time.March, 10), info.DueDate)
	assert.Equal(t, 5, info.DaysLate)
	assert.True(t, info.IsLate)

	info = LateFineInfo(s, date(2024, time.March, 1), date(2024, time.March, 10))
	assert.Equal(t, 0, info.DaysLate)
	assert.False(t, info.IsLate)
}

func TestNextPeriodStartAndEnd(t *testing.T) {
	tests := []struct {
		freq      Frequency
		start     time.Time
		wantNext  time.Time
		wantEndOn time.Time
	}{
		{Weekly, date(2024, time.May, 6), date(2024, time.May, 13), date(2024, time.May, 12)},
		{Fortnightly, date(2024, time.May, 6), date(2024, time.May, 20), date(2024, time.May, 19)},
		{Monthly, date(2024, time.January, 31), date(2024, time.February, 29), date(2024, time.February, 28)},
		{Monthly, date(2024, time.March, 1), date(2024, time.April, 1), date(2024, time.March, 31)},
		{Yearly, date(2024, time.February, 29), date(2025, time.February, 28), date(2025, time.February, 27)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			assert.Equal(t, tt.wantNext, NextPeriodStart(tt.freq, tt.start))
			assert.Equal(t, tt.wantEndOn, PeriodEndDate(tt.freq, tt.start))
		})
	}
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, time.Sunday, Sunday.Time())
	assert.Equal(t, time.Friday, Weekday("friday").Time())
	assert.Equal(t, time.Monday, Weekday("").Time())
	assert.True(t, Weekday("saturday").Valid())
	assert.False(t, Weekday("FUNDAY").Valid())
}
