package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

const testUser = "u1"

func newTestServer(t *testing.T) (*Server, *storage.Repository) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := storage.NewMemoryStore()
	repo := storage.NewRepository(store)
	queue := notifier.NewQueue(store, 10*time.Minute)
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := repo.SaveSettings(ctx, testUser, settings); err != nil {
		t.Fatal(err)
	}
	manager := lifecycle.New(queue, repo, lifecycle.WithClock(clock))
	svc := service.New(repo, manager, service.WithClock(clock), service.WithQueue(queue))

	_, err := svc.AddMedication(ctx, testUser, models.Medication{
		Name:      "Tamoxifen",
		Dosage:    20,
		Unit:      "mg",
		Frequency: models.FrequencyDaily,
		StartDate: "2024-03-01",
		TimeSlots: []models.Slot{models.SlotMorning, models.SlotEvening},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(svc, testUser, "test"), repo
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestListMedications(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListMedications(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", text(t, res))
	}
	out := text(t, res)
	for _, want := range []string{`"name": "Tamoxifen"`, `"dosage": "20 mg"`, `"morning"`, `"reminders": true`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestToolErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		{"is_due without medication", s.handleIsDue, nil},
		{"is_due unknown medication", s.handleIsDue, map[string]any{"medication": "Nothing"}},
		{"is_due bad date", s.handleIsDue, map[string]any{"medication": "Tamoxifen", "date": "03/01/2024"}},
		{"log_intake bad slot", s.handleLogIntake, map[string]any{"medication": "Tamoxifen", "slot": "noon"}},
		{"log_intake slot not taken", s.handleLogIntake, map[string]any{"medication": "Tamoxifen", "slot": "afternoon"}},
		{"upcoming too far", s.handleUpcoming, map[string]any{"days": float64(10000)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.handler(ctx, call(tt.args))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", text(t, res))
			}
		})
	}
}

func TestIsDue(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		date string
		want string
	}{
		{"", `"due": true`},
		{"2024-03-05", `"due": true`},
		{"2024-02-28", `"due": false`},
	}
	for _, tt := range tests {
		args := map[string]any{"medication": "Tamoxifen"}
		if tt.date != "" {
			args["date"] = tt.date
		}
		res, err := s.handleIsDue(ctx, call(args))
		if err != nil {
			t.Fatal(err)
		}
		if out := text(t, res); !strings.Contains(out, tt.want) {
			t.Errorf("is_due(%q) = %s, want %s", tt.date, out, tt.want)
		}
	}
}

func TestNextDose(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleNextDose(context.Background(), call(map[string]any{"medication": "Tamoxifen"}))
	if err != nil {
		t.Fatal(err)
	}
	out := text(t, res)
	if !strings.Contains(out, `"slot": "evening"`) || !strings.Contains(out, "2024-03-01T18:00:00Z") {
		t.Errorf("next_dose = %s, want today's evening dose", out)
	}
}

func TestLogIntakeThenToday(t *testing.T) {
	s, repo := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleLogIntake(ctx, call(map[string]any{"medication": "Tamoxifen", "slot": "morning"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("log_intake failed: %s", text(t, res))
	}
	logs, err := repo.ListAllIntakeLogs(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("intake logs = %d, want 1", len(logs))
	}

	res, err = s.handleToday(ctx, call(nil))
	if err != nil {
		t.Fatal(err)
	}
	out := text(t, res)
	if !strings.Contains(out, `"date": "2024-03-01"`) {
		t.Errorf("today missing date:\n%s", out)
	}
	if !strings.Contains(out, `"status": "pending"`) {
		t.Errorf("evening slot should still be pending:\n%s", out)
	}
}

func TestRescheduleAllAndCheck(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRescheduleAll(ctx, call(nil))
	if err != nil {
		t.Fatal(err)
	}
	if out := text(t, res); !strings.Contains(out, `"scheduled": 1`) {
		t.Errorf("reschedule_all = %s, want one scheduled medication", out)
	}

	res, err = s.handleCheck(ctx, call(nil))
	if err != nil {
		t.Fatal(err)
	}
	if out := text(t, res); out != "No conflicts detected." {
		t.Errorf("check = %q", out)
	}
}
