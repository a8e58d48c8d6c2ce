package models

import (
	"fmt"
	"time"
)

// SchoolYearLabel renders the "YYYY-YYYY+1" label identifying the academic
// year containing the given instant. The year runs September through August,
// so a spring date belongs to the label opened the previous September.
func SchoolYearLabel(t time.Time) string {
	start := t.Year()
	if t.Month() < time.September {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// FeeMonths are the tuition months of a school year in chronological order.
var FeeMonths = []string{
	"Septembre", "Octobre", "Novembre", "Décembre", "Janvier",
	"Février", "Mars", "Avril", "Mai", "Juin",
}

// IsFeeMonth reports whether the label names a tuition month.
func IsFeeMonth(month string) bool {
	for _, m := range FeeMonths {
		if m == month {
			return true
		}
	}
	return false
}

// ElapsedFeeMonths returns the tuition months already started at the given
// instant, always at least the first month.
func ElapsedFeeMonths(t time.Time) []string {
	var idx int
	if t.Month() >= time.September {
		idx = int(t.Month()) - int(time.September)
	} else {
		idx = int(t.Month()) + 3
	}
	if idx >= len(FeeMonths) {
		idx = len(FeeMonths) - 1
	}
	return FeeMonths[:idx+1]
}
