package dto

import (
	"github.com/google/uuid"
)

// Response DTOs

// PatientResponse is the patient side of an appointment
type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Gender      string    `json:"gender"`
}
