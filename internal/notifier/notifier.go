// Package notifier provides the local alert capability: schedule an alert
// for a wall-clock instant, get an opaque handle back, cancel by handle.
package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// ErrUnknownHandle is returned by Cancel when the handle is not pending,
// usually because the alert already fired or was cancelled before.
var ErrUnknownHandle = errors.New("unknown notification handle")

// Notifier schedules and cancels local alerts.
type Notifier interface {
	Schedule(ctx context.Context, fireAt time.Time, payload Payload) (string, error)
	Cancel(ctx context.Context, handle string) error
}

// Sender delivers the text of an alert that has come due.
type Sender interface {
	Send(ctx context.Context, text string) error
}

type Kind string

const (
	KindMedication  Kind = "medication"
	KindAppointment Kind = "appointment"
)

// Payload is carried by a scheduled alert and handed back on delivery.
type Payload struct {
	Kind   Kind        `json:"kind"`
	ItemID string      `json:"item_id"`
	Slot   models.Slot `json:"slot,omitempty"`
	UserID string      `json:"user_id,omitempty"`
	Title  string      `json:"title"`
	Body   string      `json:"body,omitempty"`
}

// Key identifies the item (and slot, for medications) the alert belongs to.
func (p Payload) Key() string {
	if p.Slot == "" {
		return string(p.Kind) + ":" + p.ItemID
	}
	return string(p.Kind) + ":" + p.ItemID + ":" + string(p.Slot)
}

// Text is the single line shown to the user.
func (p Payload) Text() string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + " - " + p.Body
}
