package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterSender prints alerts instead of delivering them, for dry runs and
// terminals without the tray companion.
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Send(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(s.W, "reminder: %s\n", text)
	return err
}

// RecordingSender keeps every delivered text. Err, when set, fails delivery.
type RecordingSender struct {
	mu   sync.Mutex
	Err  error
	Sent []string
}

func (s *RecordingSender) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, text)
	return nil
}
