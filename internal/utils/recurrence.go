package utils

import (
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// IsDue determines if a recurring item with the given range and frequency
// comes due on candidate. Only the calendar dates of the arguments matter.
// A nil end means the item never ends. Unrecognised frequencies are never due.
func IsDue(start time.Time, end *time.Time, freq models.Frequency, candidate time.Time) bool {
	day := civilDate(candidate)
	first := civilDate(start)

	if day.Before(first) {
		return false
	}
	if end != nil && day.After(civilDate(*end)) {
		return false
	}

	daysSince := DaysBetween(start, candidate)

	switch freq {
	case models.FrequencyDaily, models.FrequencyTwiceDaily, models.FrequencyThreeTimesDaily:
		return true
	case models.FrequencyEveryOtherDay:
		return daysSince%2 == 0
	case models.FrequencyEveryThreeDays:
		return daysSince%3 == 0
	case models.FrequencyWeekly:
		return daysSince%7 == 0
	case models.FrequencyMonthly:
		// Anchor on the start's day of month. Months that are too short for
		// it (Feb for a 31st start) use their last day instead of skipping.
		want := start.Day()
		if last := daysInMonth(day.Year(), day.Month()); want > last {
			want = last
		}
		return day.Day() == want
	case models.FrequencyAsNeeded, models.FrequencyOther:
		return false // user-triggered only
	default:
		return false
	}
}

// ShouldTakeMedication reports whether med is due on date. The record's
// calendar dates are read in date's location. A record with an unreadable
// start date is never due.
func ShouldTakeMedication(med models.Medication, date time.Time) bool {
	start, end, err := MedicationRange(med, date.Location())
	if err != nil {
		return false
	}
	return IsDue(start, end, med.Frequency, date)
}

// MedicationRange parses the start and optional end dates of med in loc.
func MedicationRange(med models.Medication, loc *time.Location) (time.Time, *time.Time, error) {
	start, err := ParseDateInLocation(med.StartDate, loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	if med.EndDate == "" {
		return start, nil, nil
	}
	end, err := ParseDateInLocation(med.EndDate, loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, &end, nil
}

// DaysBetween returns the number of calendar days from a to b. Time of day
// and DST transitions do not affect the result.
func DaysBetween(a, b time.Time) int {
	return int(civilDate(b).Sub(civilDate(a)).Hours() / 24)
}

// civilDate strips the clock and zone from t, keeping its calendar date.
// UTC has no DST, so subtracting two civil dates is always a whole number of days.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Today returns the date string (YYYY-MM-DD) of now.
func Today(now time.Time) string {
	return now.Format(constants.DateFormat)
}
