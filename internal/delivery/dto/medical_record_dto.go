package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// MedicalRecordRequest is the body of both create and update; update replaces every field
type MedicalRecordRequest struct {
	Diagnosis   string `json:"diagnosis" validate:"required,max=5000"`
	Treatment   string `json:"treatment" validate:"required,max=5000"`
	Medications string `json:"medications" validate:"max=5000"`
	Notes       string `json:"notes" validate:"max=5000"`
}

// Response DTOs

type MedicalRecordResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	Diagnosis     string    `json:"diagnosis"`
	Treatment     string    `json:"treatment"`
	Medications   string    `json:"medications,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MedicalRecordListResponse struct {
	Records []MedicalRecordResponse `json:"records"`
	Total   int64                   `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}
