package util

import (
	"fmt"
	"time"
)

// QuarterOf returns the calendar quarter (1-4) containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// LastReportedQuarter is the most recent quarter that has likely reported:
// one before the current quarter, floored at 1 within the same year.
func LastReportedQuarter(t time.Time) int {
	q := QuarterOf(t) - 1
	if q < 1 {
		q = 1
	}
	return q
}

// QuarterLabel formats q as "Q3".
func QuarterLabel(q int) string {
	return fmt.Sprintf("Q%d", q)
}

// ValidQuarter reports whether q is 1-4.
func ValidQuarter(q int) bool {
	return q >= 1 && q <= 4
}

// ValidYear accepts four-digit years in the 2000s.
func ValidYear(y int) bool {
	return y >= 2000 && y <= 2099
}
