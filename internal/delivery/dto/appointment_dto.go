package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest books one slot. PatientID is taken from the token for
// patients and is required when an admin books on a patient's behalf.
type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID  `json:"doctor_id" validate:"required"`
	PatientID *uuid.UUID `json:"patient_id" validate:"omitempty"`
	Date      string     `json:"appointment_date" validate:"required,yyyymmdd"` // Format: YYYY-MM-DD
	Time      string     `json:"appointment_time" validate:"required,hhmm"`     // Format: HH:MM
	Reason    string     `json:"reason" validate:"required,max=1000"`
	Notes     string     `json:"notes" validate:"omitempty,max=2000"`
}

type BulkCreateAppointmentRequest struct {
	Appointments []CreateAppointmentRequest `json:"appointments" validate:"required,min=1,max=50,dive"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID        `json:"id"`
	PatientID       uuid.UUID        `json:"patient_id"`
	DoctorID        uuid.UUID        `json:"doctor_id"`
	Patient         *PatientResponse `json:"patient,omitempty"`
	Doctor          *DoctorResponse  `json:"doctor,omitempty"`
	Date            string           `json:"appointment_date"`
	Time            string           `json:"appointment_time"`
	Status          string           `json:"status"`
	Reason          string           `json:"reason"`
	Notes           string           `json:"notes,omitempty"`
	ConsultationFee string           `json:"consultation_fee"`
	AllowedActions  []string         `json:"allowed_actions"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type BulkBookingItemResponse struct {
	Index       int                  `json:"index"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
	Error       string               `json:"error,omitempty"`
}

type BulkBookingResponse struct {
	Results []BulkBookingItemResponse `json:"results"`
	Booked  int                       `json:"booked"`
	Failed  int                       `json:"failed"`
}

type TransitionResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	From        string              `json:"from"`
	To          string              `json:"to"`
}
