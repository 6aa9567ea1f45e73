package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func writeLockfile(t *testing.T, dir, content string) {
	t.Helper()
	trayDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestTrayConfigDir(t *testing.T) {
	dir := withConfigDir(t)
	tray := NewTray()

	got, err := tray.ConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(dir, constants.TrayAppIdentifier); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	custom := filepath.Join(dir, "custom")
	if err := os.MkdirAll(got, 0755); err != nil {
		t.Fatal(err)
	}
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(got, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	got, err = tray.ConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != custom {
		t.Errorf("expected %s, got %s", custom, got)
	}
}

func TestReadLockfile(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    string
	}{
		{name: "valid", content: "4567|42|s3cret", executable: "oncotrack-tray"},
		{name: "malformed", content: "4567|42", executable: "oncotrack-tray", wantErr: "malformed"},
		{name: "bad port", content: "abc|42|s", executable: "oncotrack-tray", wantErr: "invalid port"},
		{name: "port out of range", content: "70000|42|s", executable: "oncotrack-tray", wantErr: "outside valid range"},
		{name: "bad pid", content: "4567|x|s", executable: "oncotrack-tray", wantErr: "invalid process ID"},
		{name: "empty secret", content: "4567|42| ", executable: "oncotrack-tray", wantErr: "secret"},
		{name: "process gone", content: "4567|42|s", executable: "", wantErr: "not running"},
		{name: "wrong process", content: "4567|42|s", executable: "bash", wantErr: "is not oncotrack-tray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProcess(t, tt.executable)
			path := filepath.Join(t.TempDir(), "lock")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			ep, err := readLockfile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ep.port != 4567 || ep.secret != "s3cret" {
				t.Errorf("unexpected endpoint %+v", ep)
			}
		})
	}
}

func TestReadLockfileMissing(t *testing.T) {
	if _, err := readLockfile(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("expected ErrTrayNotRunning, got %v", err)
	}
}

func TestTraySend(t *testing.T) {
	var got webhookPayload
	var secret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-Oncotrack-Secret")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	dir := withConfigDir(t)
	withProcess(t, "oncotrack-tray")
	writeLockfile(t, dir, fmt.Sprintf("%s|42|s3cret", u.Port()))

	tray := NewTray()
	if err := tray.Send(context.Background(), "Aspirin - 2 mg"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got.Text != "Aspirin - 2 mg" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("unexpected payload %+v", got)
	}
	if secret != "s3cret" {
		t.Errorf("secret header = %q", secret)
	}
}

func TestTraySendRetriesThenFails(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	dir := withConfigDir(t)
	withProcess(t, "oncotrack-tray")
	writeLockfile(t, dir, fmt.Sprintf("%s|42|s3cret", u.Port()))

	tray := NewTray()
	tray.RetryDelay = time.Millisecond
	err := tray.Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected a 503 error, got %v", err)
	}
	if calls != constants.NotifyMaxRetries {
		t.Errorf("expected %d attempts, got %d", constants.NotifyMaxRetries, calls)
	}
}
