package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchoolYearLabel(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-09-01", "2025-2026"},
		{"2025-12-31", "2025-2026"},
		{"2026-01-15", "2025-2026"},
		{"2026-08-31", "2025-2026"},
		{"2026-09-01", "2026-2027"},
	}
	for _, tc := range cases {
		date, err := time.Parse("2006-01-02", tc.date)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, SchoolYearLabel(date), "date %s", tc.date)
	}
}

func TestElapsedFeeMonths(t *testing.T) {
	at := func(month time.Month) time.Time {
		return time.Date(2025, month, 15, 0, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, []string{"Septembre"}, ElapsedFeeMonths(at(time.September)))
	assert.Equal(t, []string{"Septembre", "Octobre", "Novembre"}, ElapsedFeeMonths(at(time.November)))
	assert.Len(t, ElapsedFeeMonths(at(time.January)), 5)
	assert.Equal(t, "Janvier", ElapsedFeeMonths(at(time.January))[4])
	assert.Equal(t, FeeMonths, ElapsedFeeMonths(at(time.June)))

	// July and August sit after the last tuition month; the full year stays open.
	assert.Equal(t, FeeMonths, ElapsedFeeMonths(at(time.July)))
	assert.Equal(t, FeeMonths, ElapsedFeeMonths(at(time.August)))
}
