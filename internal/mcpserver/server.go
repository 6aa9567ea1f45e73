// Package mcpserver exposes the medication service to MCP clients over
// stdio. Every tool acts on one configured user.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
)

const serverName = constants.AppName

// Server is the MCP server for one user's medications and appointments.
type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
	userID    string
}

func NewServer(svc *service.Service, userID, version string) *Server {
	s := &Server{svc: svc, userID: userID}
	s.mcpServer = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_medications",
			mcp.WithDescription("List every medication with its dosage, frequency and time slots"),
		),
		s.handleListMedications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_appointments",
			mcp.WithDescription("List appointments that have not ended yet"),
		),
		s.handleListAppointments,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("today",
			mcp.WithDescription("Adherence status of every slot due today: taken, late, missed or pending"),
		),
		s.handleToday,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("upcoming",
			mcp.WithDescription("Doses and appointments in the next days, in time order"),
			mcp.WithNumber("days", mcp.Description("How many days to look ahead (default: 7)")),
		),
		s.handleUpcoming,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("is_due",
			mcp.WithDescription("Whether a medication is due on a date"),
			mcp.WithString("medication", mcp.Required(), mcp.Description("Medication id, id prefix or name")),
			mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD (default: today)")),
		),
		s.handleIsDue,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("next_dose",
			mcp.WithDescription("The next scheduled dose of a medication"),
			mcp.WithString("medication", mcp.Required(), mcp.Description("Medication id, id prefix or name")),
		),
		s.handleNextDose,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("log_intake",
			mcp.WithDescription("Record that a dose was taken now"),
			mcp.WithString("medication", mcp.Required(), mcp.Description("Medication id, id prefix or name")),
			mcp.WithString("slot", mcp.Required(), mcp.Description("Time slot"),
				mcp.Enum(string(models.SlotMorning), string(models.SlotAfternoon), string(models.SlotEvening))),
		),
		s.handleLogIntake,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("reschedule_all",
			mcp.WithDescription("Cancel and reschedule every reminder from the current settings"),
		),
		s.handleRescheduleAll,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("check",
			mcp.WithDescription("Look for inconsistencies in the stored records"),
		),
		s.handleCheck,
	)
}

type medicationView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage,omitempty"`
	Frequency string   `json:"frequency"`
	Slots     []string `json:"slots"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
	Reminders bool     `json:"reminders"`
}

type appointmentView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
}

type slotView struct {
	Medication string `json:"medication"`
	Slot       string `json:"slot"`
	Status     string `json:"status"`
}

type eventView struct {
	At     string `json:"at"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Slot   string `json:"slot,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListMedications(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meds, err := s.svc.ListMedications(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list medications: %v", err)), nil
	}
	if len(meds) == 0 {
		return mcp.NewToolResultText("No medications found."), nil
	}

	views := make([]medicationView, 0, len(meds))
	for _, m := range meds {
		slots := make([]string, len(m.TimeSlots))
		for i, sl := range m.TimeSlots {
			slots[i] = string(sl)
		}
		views = append(views, medicationView{
			ID:        m.ID,
			Name:      m.Name,
			Dosage:    m.FormatDosage(),
			Frequency: string(m.Frequency),
			Slots:     slots,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
			Reminders: m.HasReminders(),
		})
	}
	return jsonResult(views)
}

func (s *Server) handleListAppointments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appts, err := s.svc.ListAppointments(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list appointments: %v", err)), nil
	}
	board, err := s.svc.TodayBoard(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	now := board.Now

	var views []appointmentView
	for _, a := range appts {
		if a.End.Before(now) {
			continue
		}
		views = append(views, appointmentView{
			ID:       a.ID,
			Title:    a.Title,
			Start:    a.Start.In(now.Location()).Format(time.RFC3339),
			End:      a.End.In(now.Location()).Format(time.RFC3339),
			Location: a.Location,
		})
	}
	if len(views) == 0 {
		return mcp.NewToolResultText("No upcoming appointments."), nil
	}
	return jsonResult(views)
}

func (s *Server) handleToday(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := s.svc.TodayBoard(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build today's board: %v", err)), nil
	}

	slots := []slotView{}
	for _, row := range board.Rows {
		for _, st := range row.Slots {
			slots = append(slots, slotView{
				Medication: row.Medication.Name,
				Slot:       string(st.Slot),
				Status:     st.Status.String(),
			})
		}
	}
	return jsonResult(map[string]any{
		"date":  board.Now.Format(constants.DateFormat),
		"slots": slots,
		"counts": map[string]int{
			"taken":   board.Counts.Taken,
			"late":    board.Counts.Late,
			"missed":  board.Counts.Missed,
			"pending": board.Counts.Pending,
		},
	})
}

func (s *Server) handleUpcoming(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := int(req.GetFloat("days", 7))
	if days <= 0 || days > constants.SearchHorizonDays {
		return mcp.NewToolResultError(fmt.Sprintf("days must be between 1 and %d", constants.SearchHorizonDays)), nil
	}

	events, err := s.svc.Upcoming(ctx, s.userID, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list upcoming events: %v", err)), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("Nothing coming up."), nil
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			At:     e.At.Format(time.RFC3339),
			Kind:   string(e.Kind),
			Title:  e.Title,
			Slot:   string(e.Slot),
			Detail: e.Detail,
		})
	}
	return jsonResult(views)
}

func (s *Server) handleIsDue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	med, errResult := s.medication(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	board, err := s.svc.TodayBoard(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date := board.Now
	if v := req.GetString("date", ""); v != "" {
		date, err = time.ParseInLocation(constants.DateFormat, v, board.Now.Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", v)), nil
		}
	}

	due, err := s.svc.IsDue(ctx, s.userID, med.ID, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"medication": med.Name,
		"date":       date.Format(constants.DateFormat),
		"due":        due,
	})
}

func (s *Server) handleNextDose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	med, errResult := s.medication(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	at, slot, err := s.svc.NextDose(ctx, s.userID, med.ID)
	if errors.Is(err, scheduler.ErrNoUpcomingOccurrence) {
		return mcp.NewToolResultText(fmt.Sprintf("%s has no upcoming doses.", med.Name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"medication": med.Name,
		"at":         at.Format(time.RFC3339),
		"slot":       string(slot),
	})
}

func (s *Server) handleLogIntake(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	med, errResult := s.medication(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	slot, err := models.ParseSlot(req.GetString("slot", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, err := s.svc.LogIntake(ctx, s.userID, med.ID, slot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log intake: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Logged %s %s dose at %s.",
		med.Name, slot, entry.LoggedAt.Format(time.RFC3339))), nil
}

func (s *Server) handleRescheduleAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.svc.RescheduleAll(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reschedule: %v", err)), nil
	}

	counts := map[lifecycle.Status]int{}
	var failures []string
	for _, r := range results {
		counts[r.Status]++
		if r.Status == lifecycle.StatusFailed {
			failures = append(failures, fmt.Sprintf("%s %s: %v", r.Kind, r.ID, r.Err))
		}
	}
	return jsonResult(map[string]any{
		"scheduled": counts[lifecycle.StatusScheduled],
		"skipped":   counts[lifecycle.StatusSkipped],
		"cancelled": counts[lifecycle.StatusCancelled],
		"failed":    counts[lifecycle.StatusFailed],
		"failures":  failures,
	})
}

func (s *Server) handleCheck(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Check(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check records: %v", err)), nil
	}
	return mcp.NewToolResultText(res.FormatReport()), nil
}

// medication resolves the "medication" argument. A non-nil result is the
// error to hand back to the client.
func (s *Server) medication(ctx context.Context, req mcp.CallToolRequest) (models.Medication, *mcp.CallToolResult) {
	ref := req.GetString("medication", "")
	if ref == "" {
		return models.Medication{}, mcp.NewToolResultError("medication is required")
	}
	med, err := s.svc.FindMedication(ctx, s.userID, ref)
	if err != nil {
		return models.Medication{}, mcp.NewToolResultError(err.Error())
	}
	return med, nil
}
