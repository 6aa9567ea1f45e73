package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

// Queue persists pending alerts in the document store under
// notifications/{handle}. A periodic DispatchDue call delivers them.
type Queue struct {
	store storage.Provider
	grace time.Duration
}

var _ Notifier = (*Queue)(nil)

// NewQueue returns a queue that delivers alerts up to grace after their
// fire time and drops older ones.
func NewQueue(store storage.Provider, grace time.Duration) *Queue {
	if grace <= 0 {
		grace = time.Duration(constants.DefaultGracePeriodMin) * time.Minute
	}
	return &Queue{store: store, grace: grace}
}

func (q *Queue) Schedule(ctx context.Context, fireAt time.Time, payload Payload) (string, error) {
	handle := uuid.New().String()
	path, err := storage.NotificationDocument(handle)
	if err != nil {
		return "", err
	}

	alert := Scheduled{Handle: handle, FireAt: fireAt.UTC(), Payload: payload}
	if err := q.store.Set(ctx, path, alert); err != nil {
		return "", fmt.Errorf("failed to queue notification: %w", err)
	}
	return handle, nil
}

func (q *Queue) Cancel(ctx context.Context, handle string) error {
	path, err := storage.NotificationDocument(handle)
	if err != nil {
		return ErrUnknownHandle
	}
	err = q.store.Delete(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUnknownHandle
	}
	return err
}

// Pending lists queued alerts ordered by fire time.
func (q *Queue) Pending(ctx context.Context) ([]Scheduled, error) {
	docs, err := q.store.Query(ctx, constants.CollectionNotifications)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]Scheduled, 0, len(docs))
	for _, d := range docs {
		var s Scheduled
		if err := d.Decode(&s); err != nil {
			logger.Warn("Skipping unreadable notification", "path", d.Path, "error", err)
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

// DispatchReport summarises one DispatchDue pass.
type DispatchReport struct {
	Sent    []Scheduled
	Dropped []Scheduled
	Failed  []Scheduled
}

// DispatchDue delivers every alert whose fire time is at or before now.
// Alerts older than the grace window are dropped without delivery. A failed
// delivery stays queued for the next pass. The error is the first delivery
// or store failure; the report is complete either way.
func (q *Queue) DispatchDue(ctx context.Context, now time.Time, sender Sender) (DispatchReport, error) {
	return q.DispatchDueFor(ctx, now, "", sender)
}

// DispatchDueFor is DispatchDue restricted to the alerts of userID. Alerts of
// other users stay queued. An empty userID matches every alert.
func (q *Queue) DispatchDueFor(ctx context.Context, now time.Time, userID string, sender Sender) (DispatchReport, error) {
	var report DispatchReport

	pending, err := q.Pending(ctx)
	if err != nil {
		return report, err
	}

	var firstErr error
	for _, alert := range pending {
		if alert.FireAt.After(now) {
			break
		}
		if userID != "" && alert.Payload.UserID != userID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if now.Sub(alert.FireAt) > q.grace {
			logger.Warn("Dropping stale notification", "handle", alert.Handle, "item", alert.Payload.Key(), "fire_at", alert.FireAt)
			report.Dropped = append(report.Dropped, alert)
		} else if err := sender.Send(ctx, alert.Payload.Text()); err != nil {
			logger.Error("Failed to deliver notification", "handle", alert.Handle, "item", alert.Payload.Key(), "error", err)
			report.Failed = append(report.Failed, alert)
			if firstErr == nil {
				firstErr = err
			}
			continue
		} else {
			report.Sent = append(report.Sent, alert)
		}

		if err := q.Cancel(ctx, alert.Handle); err != nil && !errors.Is(err, ErrUnknownHandle) && firstErr == nil {
			firstErr = err
		}
	}
	return report, firstErr
}
