// Package adherence derives whether today's doses were taken, are late, or
// were missed. Nothing is stored; every call recomputes from the logs.
package adherence

import (
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

type Status int

const (
	Pending Status = iota
	Late
	Missed
	Taken
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Late:
		return "late"
	case Missed:
		return "missed"
	case Taken:
		return "taken"
	default:
		return "unknown"
	}
}

// StatusFor classifies one slot of a medication at now. Rules apply in
// order: a log for the slot on now's date means Taken; reaching the next
// slot's time means Missed; reaching the slot's own time means Late;
// otherwise Pending. The evening slot has no successor and never becomes
// Missed.
func StatusFor(medicationID string, slot models.Slot, logs []models.IntakeLog, slotTimes models.DailySlotTimes, now time.Time) (Status, error) {
	for _, l := range logs {
		if l.MedicationID == medicationID && l.Slot == slot && l.SameDay(now) {
			return Taken, nil
		}
	}

	if next, ok := slot.Next(); ok {
		nextAt, err := slotTimes.At(next, now)
		if err != nil {
			return Pending, err
		}
		if !now.Before(nextAt) {
			return Missed, nil
		}
	}

	at, err := slotTimes.At(slot, now)
	if err != nil {
		return Pending, err
	}
	if !now.Before(at) {
		return Late, nil
	}
	return Pending, nil
}

// SlotStatus pairs a slot with its status.
type SlotStatus struct {
	Slot   models.Slot
	Status Status
}

// Summarize returns the status of every slot of med, in slot order.
func Summarize(med models.Medication, logs []models.IntakeLog, slotTimes models.DailySlotTimes, now time.Time) ([]SlotStatus, error) {
	slots := models.SortSlots(med.TimeSlots)
	out := make([]SlotStatus, 0, len(slots))
	for _, slot := range slots {
		st, err := StatusFor(med.ID, slot, logs, slotTimes, now)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotStatus{Slot: slot, Status: st})
	}
	return out, nil
}

// Counts tallies statuses, for the day summary line.
type Counts struct {
	Taken, Late, Missed, Pending int
}

func (c *Counts) Add(s Status) {
	switch s {
	case Taken:
		c.Taken++
	case Late:
		c.Late++
	case Missed:
		c.Missed++
	default:
		c.Pending++
	}
}

func (c Counts) Total() int {
	return c.Taken + c.Late + c.Missed + c.Pending
}
