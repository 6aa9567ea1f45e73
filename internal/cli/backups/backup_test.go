package backups

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/clitest"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/sqlite"
)

func sqliteEnv(t *testing.T) *clitest.Env {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "oncotrack.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	env := clitest.NewWithStore(t, store)
	env.Ctx.Config.Database.Driver = config.DriverSQLite
	return env
}

func TestBackupCreateListRestore(t *testing.T) {
	env := sqliteEnv(t)
	ctx := env.Ctx

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "No backups found.") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}

	if _, err := ctx.Service.AddMedication(ctx, ctx.UserID, models.Medication{
		Name: "Tamoxifen", Frequency: models.FrequencyDaily, StartDate: "2024-03-01",
		TimeSlots: []models.Slot{models.SlotMorning},
	}); err != nil {
		t.Fatal(err)
	}

	env.Out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	out := env.Out.String()
	if !strings.Contains(out, "✓ Backup created: oncotrack-") {
		t.Fatalf("unexpected output: %q", out)
	}
	name := strings.TrimSpace(strings.TrimPrefix(out, "✓ Backup created: "))

	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, "Tamoxifen")
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Service.DeleteMedication(ctx, ctx.UserID, med.ID); err != nil {
		t.Fatal(err)
	}

	env.Out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Database restored successfully") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
	meds, err := ctx.Service.ListMedications(ctx, ctx.UserID)
	if err != nil || len(meds) != 1 {
		t.Errorf("restored medications = %v, %v", meds, err)
	}

	env.Out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "Available backups (2 total") {
		t.Errorf("expected the backup and the safety copy:\n%s", env.Out.String())
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	env := clitest.New(t)
	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != errNotSQLite {
		t.Errorf("error = %v, want %v", err, errNotSQLite)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	env := sqliteEnv(t)
	if err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(env.Ctx); err == nil {
		t.Error("expected an error for a missing backup")
	}
}
