package util

import (
	"testing"
	"time"
)

func TestQuarterOf(t *testing.T) {
	cases := map[time.Month]int{
		time.January: 1, time.March: 1, time.April: 2,
		time.September: 3, time.October: 4, time.December: 4,
	}
	for m, want := range cases {
		got := QuarterOf(time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC))
		if got != want {
			t.Fatalf("%s: expected Q%d, got Q%d", m, want, got)
		}
	}
}

func TestLastReportedQuarterFloorsAtOne(t *testing.T) {
	if got := LastReportedQuarter(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := LastReportedQuarter(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestQuarterLabel(t *testing.T) {
	if QuarterLabel(2) != "Q2" {
		t.Fatalf("unexpected label %q", QuarterLabel(2))
	}
}
