package finance

import (
	"strings"
	"time"
)

// Weekday names the collection day for weekly and fortnightly groups.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

var weekdays = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// Valid reports whether d names a day of the week.
func (d Weekday) Valid() bool {
	_, ok := weekdays[Weekday(strings.ToUpper(string(d)))]
	return ok
}

// Time converts d to a time.Weekday, defaulting to Monday.
func (d Weekday) Time() time.Weekday {
	if wd, ok := weekdays[Weekday(strings.ToUpper(string(d)))]; ok {
		return wd
	}
	return time.Monday
}

// Schedule is a group's collection calendar. Only the anchors relevant to
// Frequency are read; the others are ignored.
type Schedule struct {
	Frequency   Frequency
	DayOfMonth  int     // MONTHLY, YEARLY; 1 when unset
	DayOfWeek   Weekday // WEEKLY, FORTNIGHTLY; Monday when unset
	WeekOfMonth int     // FORTNIGHTLY; 1 when unset
}

// LateInfo describes how late a payment is against its period's due date.
type LateInfo struct {
	DueDate  time.Time
	DaysLate int
	IsLate   bool
}

// DateOnly truncates t to midnight UTC of its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodDueDate returns the day contributions for the period starting at
// periodStart fall due. The result never precedes the period start.
func PeriodDueDate(s Schedule, periodStart time.Time) time.Time {
	start := DateOnly(periodStart)

	switch s.Frequency {
	case Weekly:
		return nextWeekday(start, s.DayOfWeek.Time())

	case Fortnightly:
		week := s.WeekOfMonth
		if week < 1 || week > 4 {
			week = 1
		}
		first := nextWeekday(time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC), s.DayOfWeek.Time())
		due := first.AddDate(0, 0, (week-1)*7)
		if due.Before(start) {
			return nextWeekday(start, s.DayOfWeek.Time())
		}
		return due

	case Monthly:
		day := anchorDay(s.DayOfMonth)
		due := clampedDate(start.Year(), start.Month(), day)
		if due.Before(start) {
			next := start.AddDate(0, 0, 1-start.Day()).AddDate(0, 1, 0)
			due = clampedDate(next.Year(), next.Month(), day)
		}
		return due

	case Yearly:
		day := anchorDay(s.DayOfMonth)
		due := clampedDate(start.Year(), time.January, day)
		if due.Before(start) {
			due = clampedDate(start.Year()+1, time.January, day)
		}
		return due

	default:
		return start
	}
}

// DaysLate counts whole calendar days between the due date and the payment
// date. Payments on or before the due date are zero days late.
func DaysLate(dueDate, paymentDate time.Time) int {
	days := int(DateOnly(paymentDate).Sub(DateOnly(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// LateFineInfo combines PeriodDueDate and DaysLate.
func LateFineInfo(s Schedule, periodStart, paymentDate time.Time) LateInfo {
	due := PeriodDueDate(s, periodStart)
	days := DaysLate(due, paymentDate)
	return LateInfo{DueDate: due, DaysLate: days, IsLate: days > 0}
}

// NextPeriodStart returns the start of the period following the one that
// starts at start.
func NextPeriodStart(f Frequency, start time.Time) time.Time {
	start = DateOnly(start)

	switch f {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Fortnightly:
		return start.AddDate(0, 0, 14)
	case Yearly:
		return clampedDate(start.Year()+1, start.Month(), start.Day())
	default:
		next := start.AddDate(0, 0, 1-start.Day()).AddDate(0, 1, 0)
		return clampedDate(next.Year(), next.Month(), start.Day())
	}
}

// PeriodEndDate is the last calendar day of the period starting at start.
func PeriodEndDate(f Frequency, start time.Time) time.Time {
	return NextPeriodStart(f, start).AddDate(0, 0, -1)
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	offset := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

func anchorDay(day int) int {
	if day < 1 {
		return 1
	}
	return day
}

// clampedDate builds a UTC date, using the last day of the month when day
// does not exist in it.
func clampedDate(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
