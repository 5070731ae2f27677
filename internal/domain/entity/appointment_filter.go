package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for querying appointments.
// Zero values are ignored; From and To are inclusive calendar dates.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Statuses  []AppointmentStatus
	// EndedBy keeps appointments dated before it or already in a closed status
	EndedBy *time.Time
	// Descending orders newest first, used for history listings
	Descending bool
}

// BookingRequest is one slot reservation asked for by a caller
type BookingRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Time      TimeOfDay
	Reason    string
	Notes     string
}
