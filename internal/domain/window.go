package domain

import "time"

// Window filters score history by time range when ranking users.
type Window int

const (
	WindowAll Window = iota
	WindowToday
	WindowWeek
	WindowMonth
)

func (w Window) String() string {
	switch w {
	case WindowAll:
		return "all"
	case WindowToday:
		return "today"
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	}
	return "unknown"
}

// ParseWindow maps a filter name to its Window; empty means all time.
func ParseWindow(name string) (Window, bool) {
	switch name {
	case "", "all":
		return WindowAll, true
	case "today":
		return WindowToday, true
	case "week":
		return WindowWeek, true
	case "month":
		return WindowMonth, true
	}
	return WindowAll, false
}

// Start computes the window's inclusive lower bound relative to now.
// WindowAll returns the zero time, matching every entry.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowToday:
		return StartOfDay(now)
	case WindowWeek:
		return StartOfWeek(now)
	case WindowMonth:
		return StartOfMonth(now)
	}
	return time.Time{}
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek truncates t to the preceding Monday midnight (ISO week).
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth truncates t to the first of the month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
