package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning means no live tray companion could be found.
var ErrTrayNotRunning = errors.New("oncotrack-tray is not running")

type webhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Tray delivers alerts to the desktop tray companion through the local
// webhook it advertises in its lockfile.
type Tray struct {
	Identifier string
	DurationMs uint32
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

func NewTray() *Tray {
	return &Tray{
		Identifier: constants.TrayAppIdentifier,
		DurationMs: constants.NotificationDurationMs,
		Retries:    constants.NotifyMaxRetries,
		RetryDelay: constants.NotifyRetryDelay,
		Client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (t *Tray) Send(ctx context.Context, text string) error {
	dir, err := t.ConfigDir()
	if err != nil {
		return err
	}

	endpoint, err := readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	attempts := t.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.RetryDelay):
			}
		}
		lastErr = t.post(ctx, endpoint, webhookPayload{Text: text, DurationMs: t.DurationMs})
		if lastErr == nil {
			return nil
		}
		logger.Debug("Tray delivery attempt failed", "attempt", i+1, "error", lastErr)
	}
	return lastErr
}

// ConfigDir returns the tray companion's directory, honouring a custom
// lockfile_dir from its settings.json.
func (t *Tray) ConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, t.Identifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

type trayEndpoint struct {
	port   int
	secret string
}

// readLockfile parses port|pid|secret and checks that pid is a running
// tray process.
func readLockfile(path string) (trayEndpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return trayEndpoint{}, ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return trayEndpoint{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return trayEndpoint{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return trayEndpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return trayEndpoint{}, errors.New("invalid process ID in lockfile")
	}

	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return trayEndpoint{}, errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return trayEndpoint{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName+"-tray") {
		return trayEndpoint{}, fmt.Errorf("process with PID %d is not %s-tray (is %s)", pid, constants.AppName, process.Executable())
	}

	return trayEndpoint{port: port, secret: secret}, nil
}

func (t *Tray) post(ctx context.Context, ep trayEndpoint, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", ep.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Oncotrack-Secret", ep.secret)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
