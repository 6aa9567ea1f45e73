package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// ErrNoUpcomingOccurrence is returned when no occurrence exists within the
// search horizon, including items that are never due on their own.
var ErrNoUpcomingOccurrence = errors.New("no upcoming occurrence")

// Scheduler finds the next due instants of recurring items. It never reads
// the clock; every search is anchored on the instant it is given.
type Scheduler struct {
	// Horizon is the maximum number of days walked forward from the start
	// of a search.
	Horizon int
}

func New() *Scheduler {
	return &Scheduler{Horizon: constants.SearchHorizonDays}
}

// NewWithHorizon returns a scheduler bounded to horizon days. Non-positive
// values fall back to the default.
func NewWithHorizon(horizon int) *Scheduler {
	if horizon <= 0 {
		horizon = constants.SearchHorizonDays
	}
	return &Scheduler{Horizon: horizon}
}

// Occurrence is a concrete instant at which a medication slot is due.
type Occurrence struct {
	MedicationID string
	Slot         models.Slot
	At           time.Time
}

// NextSlotInstant returns the first instant strictly after from at which med
// is due in slot. A slot time that has already passed today moves the search
// on to the next due day. The result is in from's location.
func (s *Scheduler) NextSlotInstant(med models.Medication, slot models.Slot, from time.Time, slotTimes models.DailySlotTimes) (time.Time, error) {
	if !med.Frequency.IsScheduled() {
		return time.Time{}, fmt.Errorf("%w: %s is not scheduled automatically", ErrNoUpcomingOccurrence, med.Frequency)
	}

	loc := from.Location()
	start, end, err := utils.MedicationRange(med, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid medication dates: %w", err)
	}
	hour, minute, err := slotTimes.Clock(slot)
	if err != nil {
		return time.Time{}, err
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	if day.Before(start) {
		// Nothing can be due before the item starts; skip the empty stretch.
		day = start
	}

	for i := 0; i <= s.horizon(); i++ {
		candidate := day.AddDate(0, 0, i)
		if end != nil && candidate.After(*end) {
			break
		}
		if !utils.IsDue(start, end, med.Frequency, candidate) {
			continue
		}
		at := time.Date(candidate.Year(), candidate.Month(), candidate.Day(), hour, minute, 0, 0, loc)
		if at.After(from) {
			return at, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: none within %d days of %s",
		ErrNoUpcomingOccurrence, s.horizon(), from.Format(constants.DateFormat))
}

// NextDueInstant returns the earliest next instant across all of med's slots.
func (s *Scheduler) NextDueInstant(med models.Medication, from time.Time, slotTimes models.DailySlotTimes) (time.Time, models.Slot, error) {
	if len(med.TimeSlots) == 0 {
		return time.Time{}, "", fmt.Errorf("%w: medication has no time slots", ErrNoUpcomingOccurrence)
	}

	var (
		best     time.Time
		bestSlot models.Slot
		lastErr  error
	)
	for _, slot := range models.SortSlots(med.TimeSlots) {
		at, err := s.NextSlotInstant(med, slot, from, slotTimes)
		if err != nil {
			lastErr = err
			continue
		}
		if best.IsZero() || at.Before(best) {
			best, bestSlot = at, slot
		}
	}
	if best.IsZero() {
		return time.Time{}, "", lastErr
	}
	return best, bestSlot, nil
}

// Occurrences lists every occurrence of med in the half-open window (from, to],
// ordered by time.
func (s *Scheduler) Occurrences(med models.Medication, from, to time.Time, slotTimes models.DailySlotTimes) ([]Occurrence, error) {
	if !to.After(from) || !med.Frequency.IsScheduled() {
		return nil, nil
	}

	loc := from.Location()
	start, end, err := utils.MedicationRange(med, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid medication dates: %w", err)
	}

	var out []Occurrence
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for i := 0; i <= s.horizon(); i++ {
		candidate := day.AddDate(0, 0, i)
		if candidate.After(to) {
			break
		}
		if !utils.IsDue(start, end, med.Frequency, candidate) {
			continue
		}
		for _, slot := range models.SortSlots(med.TimeSlots) {
			at, err := slotTimes.At(slot, candidate)
			if err != nil {
				return nil, err
			}
			if at.After(from) && !at.After(to) {
				out = append(out, Occurrence{MedicationID: med.ID, Slot: slot, At: at})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *Scheduler) horizon() int {
	if s == nil || s.Horizon <= 0 {
		return constants.SearchHorizonDays
	}
	return s.Horizon
}
