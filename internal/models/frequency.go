package models

import "strings"

// Frequency is the human-facing recurrence label of a medication.
type Frequency string

const (
	FrequencyDaily           Frequency = "Daily"
	FrequencyTwiceDaily      Frequency = "Twice Daily"
	FrequencyThreeTimesDaily Frequency = "Three Times Daily"
	FrequencyEveryOtherDay   Frequency = "Every Other Day"
	FrequencyEveryThreeDays  Frequency = "Every Three Days"
	FrequencyWeekly          Frequency = "Weekly"
	FrequencyMonthly         Frequency = "Monthly"
	FrequencyAsNeeded        Frequency = "As Needed"
	FrequencyOther           Frequency = "Other"
)

// Frequencies lists every recognised frequency in display order.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyTwiceDaily,
	FrequencyThreeTimesDaily,
	FrequencyEveryOtherDay,
	FrequencyEveryThreeDays,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyAsNeeded,
	FrequencyOther,
}

// ParseFrequency resolves a label case-insensitively. Hyphens and underscores
// are accepted in place of spaces so "every-other-day" works on the command line.
func ParseFrequency(s string) (Frequency, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, f := range Frequencies {
		if strings.ToLower(string(f)) == norm {
			return f, true
		}
	}
	return Frequency(s), false
}

// IsKnown reports whether f is one of the enumerated labels.
func (f Frequency) IsKnown() bool {
	for _, known := range Frequencies {
		if f == known {
			return true
		}
	}
	return false
}

// IsScheduled reports whether items with this frequency ever come due on
// their own. As Needed, Other and unrecognised labels are user-triggered only.
func (f Frequency) IsScheduled() bool {
	switch f {
	case FrequencyDaily, FrequencyTwiceDaily, FrequencyThreeTimesDaily,
		FrequencyEveryOtherDay, FrequencyEveryThreeDays, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}
