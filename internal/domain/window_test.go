package domain

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	cases := []struct {
		name string
		want Window
		ok   bool
	}{
		{"", WindowAll, true},
		{"all", WindowAll, true},
		{"today", WindowToday, true},
		{"week", WindowWeek, true},
		{"month", WindowMonth, true},
		{"fortnight", WindowAll, false},
	}
	for _, tc := range cases {
		got, ok := ParseWindow(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseWindow(%q) = %v, %v; want %v, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWindowStart(t *testing.T) {
	// Wednesday, mid-month.
	now := time.Date(2024, 11, 20, 15, 30, 45, 0, time.UTC)

	if got := WindowAll.Start(now); !got.IsZero() {
		t.Fatalf("all-time window must start at zero, got %v", got)
	}
	if got := WindowToday.Start(now); !got.Equal(time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("today start = %v", got)
	}
	if got := WindowWeek.Start(now); !got.Equal(time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the preceding Monday, got %v", got)
	}
	if got := WindowMonth.Start(now); !got.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("month start = %v", got)
	}

	// A Sunday belongs to the week opened six days earlier.
	sunday := time.Date(2024, 11, 24, 8, 0, 0, 0, time.UTC)
	if got := WindowWeek.Start(sunday); !got.Equal(time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Sunday to close out Monday's week, got %v", got)
	}
	// Monday opens its own week.
	monday := time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)
	if got := WindowWeek.Start(monday); !got.Equal(monday) {
		t.Fatalf("expected Monday to open its own week, got %v", got)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2024, 11, 20, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 11, 20, 23, 59, 59, 0, time.UTC)
	if !SameDay(morning, night) {
		t.Fatalf("expected same calendar day")
	}
	if SameDay(night, night.Add(time.Minute)) {
		t.Fatalf("expected midnight to split days")
	}
}
