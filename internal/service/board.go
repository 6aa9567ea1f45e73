package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/adherence"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// BoardRow is one medication due today with the status of each slot.
type BoardRow struct {
	Medication models.Medication
	Slots      []adherence.SlotStatus
}

// Board is the today view: medications due today, appointments starting
// today and the tally of slot statuses.
type Board struct {
	Now          time.Time
	SlotTimes    models.DailySlotTimes
	Rows         []BoardRow
	Appointments []models.Appointment
	Counts       adherence.Counts
}

// TodayBoard recomputes the adherence status of every slot due today.
func (s *Service) TodayBoard(ctx context.Context, userID string) (Board, error) {
	prefs, now, err := s.clock(ctx, userID)
	if err != nil {
		return Board{}, err
	}
	board := Board{Now: now, SlotTimes: prefs.SlotTimes()}

	meds, err := s.repo.ListMedications(ctx, userID)
	if err != nil {
		return Board{}, err
	}
	logs, err := s.repo.ListIntakeLogs(ctx, userID, now)
	if err != nil {
		return Board{}, err
	}

	for _, med := range meds {
		if !utils.ShouldTakeMedication(med, now) {
			continue
		}
		slots, err := adherence.Summarize(med, logs, board.SlotTimes, now)
		if err != nil {
			return Board{}, fmt.Errorf("%s: %w", med.Name, err)
		}
		for _, st := range slots {
			board.Counts.Add(st.Status)
		}
		board.Rows = append(board.Rows, BoardRow{Medication: med, Slots: slots})
	}

	appts, err := s.repo.ListAppointments(ctx, userID)
	if err != nil {
		return Board{}, err
	}
	for _, a := range appts {
		if sameDay(a.Start.In(now.Location()), now) {
			board.Appointments = append(board.Appointments, a)
		}
	}
	return board, nil
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Event is one upcoming dose or appointment.
type Event struct {
	At     time.Time
	Kind   notifier.Kind
	ItemID string
	Title  string
	Slot   models.Slot
	Detail string
}

// Upcoming lists doses and appointments in the next days, ordered by time.
func (s *Service) Upcoming(ctx context.Context, userID string, days int) ([]Event, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive")
	}
	prefs, now, err := s.clock(ctx, userID)
	if err != nil {
		return nil, err
	}
	until := now.AddDate(0, 0, days)

	meds, err := s.repo.ListMedications(ctx, userID)
	if err != nil {
		return nil, err
	}
	var events []Event
	for _, med := range meds {
		occ, err := s.scheduler.Occurrences(med, now, until, prefs.SlotTimes())
		if err != nil {
			s.log.Warn("Skipping medication in upcoming", "medication", med.ID, "error", err)
			continue
		}
		for _, o := range occ {
			events = append(events, Event{
				At:     o.At,
				Kind:   notifier.KindMedication,
				ItemID: med.ID,
				Title:  med.Name,
				Slot:   o.Slot,
				Detail: med.FormatDosage(),
			})
		}
	}

	appts, err := s.repo.ListAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range appts {
		start := a.Start.In(now.Location())
		if start.After(now) && !start.After(until) {
			events = append(events, Event{
				At:     start,
				Kind:   notifier.KindAppointment,
				ItemID: a.ID,
				Title:  a.Title,
				Detail: a.Location,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].At.Before(events[j].At) })
	return events, nil
}
