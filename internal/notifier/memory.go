package notifier

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduled is a pending alert.
type Scheduled struct {
	Handle  string    `json:"handle"`
	FireAt  time.Time `json:"fire_at"`
	Payload Payload   `json:"payload"`
}

// Memory keeps alerts in process memory. It backs tests.
type Memory struct {
	mu        sync.Mutex
	pending   map[string]Scheduled
	cancelled []string
	failFn    func(Payload) error
}

func NewMemory() *Memory {
	return &Memory{pending: make(map[string]Scheduled)}
}

// FailWith makes Schedule return the error produced by fn. A nil fn or a
// nil result lets scheduling succeed.
func (m *Memory) FailWith(fn func(Payload) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFn = fn
}

func (m *Memory) Schedule(ctx context.Context, fireAt time.Time, payload Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFn != nil {
		if err := m.failFn(payload); err != nil {
			return "", err
		}
	}

	handle := uuid.New().String()
	m.pending[handle] = Scheduled{Handle: handle, FireAt: fireAt, Payload: payload}
	return handle, nil
}

func (m *Memory) Cancel(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[handle]; !ok {
		return ErrUnknownHandle
	}
	delete(m.pending, handle)
	m.cancelled = append(m.cancelled, handle)
	return nil
}

// Pending returns every live alert ordered by fire time.
func (m *Memory) Pending() []Scheduled {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Scheduled, 0, len(m.pending))
	for _, s := range m.pending {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].Payload.Key() < out[j].Payload.Key()
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// PendingFor returns the live alerts of a single item.
func (m *Memory) PendingFor(itemID string) []Scheduled {
	var out []Scheduled
	for _, s := range m.Pending() {
		if s.Payload.ItemID == itemID {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the pending alert for handle.
func (m *Memory) Lookup(handle string) (Scheduled, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.pending[handle]
	return s, ok
}

// Cancelled returns the handles cancelled so far, in order.
func (m *Memory) Cancelled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}
