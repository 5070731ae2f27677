package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies events handed to the notification sink
type NotificationKind string

const (
	NotificationNewBooking    NotificationKind = "NEW_BOOKING"
	NotificationStatusChanged NotificationKind = "STATUS_CHANGED"
	NotificationReminder      NotificationKind = "REMINDER"
)

// NotificationEvent is enqueued after a durable state change.
// NewStatus captures the status at enqueue time so re-deliveries can be detected as stale.
type NotificationEvent struct {
	AppointmentID uuid.UUID          `json:"appointment_id"`
	Kind          NotificationKind   `json:"kind"`
	OldStatus     *AppointmentStatus `json:"old_status,omitempty"`
	NewStatus     *AppointmentStatus `json:"new_status,omitempty"`
	EnqueuedAt    time.Time          `json:"enqueued_at"`
}

// CacheKey addresses one cached derived value, e.g. the free slots of a doctor on a date
type CacheKey struct {
	EntityType string
	OwnerID    uuid.UUID
	FilterHash string
}

// Cache entity types
const (
	CacheEntitySlots = "slots"
)
