package models

import (
	"fmt"
	"strings"
	"time"
)

// Slot is one of the three fixed daily time windows.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
)

// Slots holds every slot in chronological order.
var Slots = []Slot{SlotMorning, SlotAfternoon, SlotEvening}

func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	if !slot.IsValid() {
		return "", fmt.Errorf("invalid slot %q (must be morning, afternoon or evening)", s)
	}
	return slot, nil
}

// ParseSlots parses a comma-separated list such as "morning,evening".
func ParseSlots(s string) ([]Slot, error) {
	var slots []Slot
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		slot, err := ParseSlot(part)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return SortSlots(slots), nil
}

func (s Slot) IsValid() bool {
	return s == SlotMorning || s == SlotAfternoon || s == SlotEvening
}

// Next returns the slot that follows s on the same day. Evening is the last
// slot and has no successor.
func (s Slot) Next() (Slot, bool) {
	switch s {
	case SlotMorning:
		return SlotAfternoon, true
	case SlotAfternoon:
		return SlotEvening, true
	default:
		return "", false
	}
}

// SortSlots returns slots deduplicated and in chronological order.
func SortSlots(slots []Slot) []Slot {
	seen := make(map[Slot]bool, len(slots))
	for _, s := range slots {
		seen[s] = true
	}
	out := make([]Slot, 0, len(seen))
	for _, s := range Slots {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// DailySlotTimes holds the configured clock time (HH:MM) of each slot.
type DailySlotTimes struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// TimeOf returns the raw HH:MM value configured for slot.
func (d DailySlotTimes) TimeOf(slot Slot) string {
	switch slot {
	case SlotMorning:
		return d.Morning
	case SlotAfternoon:
		return d.Afternoon
	case SlotEvening:
		return d.Evening
	default:
		return ""
	}
}

// Clock returns the hour and minute configured for slot.
func (d DailySlotTimes) Clock(slot Slot) (int, int, error) {
	if !slot.IsValid() {
		return 0, 0, fmt.Errorf("invalid slot %q", slot)
	}
	t, err := time.Parse("15:04", d.TimeOf(slot))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s time %q (expected HH:MM): %w", slot, d.TimeOf(slot), err)
	}
	return t.Hour(), t.Minute(), nil
}

// At places slot's clock time on the calendar date of day, in day's location.
func (d DailySlotTimes) At(slot Slot, day time.Time) (time.Time, error) {
	h, m, err := d.Clock(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

// Validate checks every slot parses as HH:MM and that the slots fall in
// day order, morning before afternoon before evening.
func (d DailySlotTimes) Validate() error {
	prev := -1
	for _, slot := range Slots {
		h, m, err := d.Clock(slot)
		if err != nil {
			return err
		}
		minute := h*60 + m
		if minute <= prev {
			return fmt.Errorf("slot times out of order: %s (%s) must come after the previous slot", slot, d.TimeOf(slot))
		}
		prev = minute
	}
	return nil
}
