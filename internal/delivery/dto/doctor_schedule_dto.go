package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SetAvailabilityRequest upserts the window of the weekday named in the path
type SetAvailabilityRequest struct {
	StartTime   string `json:"start_time" validate:"required,hhmm"` // Format: HH:MM
	EndTime     string `json:"end_time" validate:"required,hhmm"`   // Format: HH:MM
	IsAvailable *bool  `json:"is_available" validate:"required"`
}

// Response DTOs

type ScheduleResponse struct {
	ID          int       `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	DayOfWeek   int       `json:"day_of_week"`
	DayName     string    `json:"day_name"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CalendarResponse struct {
	DoctorID  uuid.UUID          `json:"doctor_id"`
	Schedules []ScheduleResponse `json:"schedules"`
	Total     int                `json:"total"`
}

type SlotListResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
	Total    int       `json:"total"`
}
