package dto

import (
	"github.com/google/uuid"
)

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	STRNumber       string    `json:"str_number"`
	Specialization  string    `json:"specialization"`
	Biography       string    `json:"biography,omitempty"`
	ConsultationFee string    `json:"consultation_fee"`
	IsActive        *bool     `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
