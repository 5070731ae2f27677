package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// ActiveStatuses occupy their slot; CANCELLED and NO_SHOW free it for re-booking
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
}

// OpenStatuses are the statuses an appointment can still leave
var OpenStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
}

// ClosedStatuses are terminal; no action leaves them
var ClosedStatuses = []AppointmentStatus{
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

// Valid reports whether s is one of the known statuses
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed || s == AppointmentStatusCompleted
}

// IsOpen reports whether the appointment has not reached a terminal status
func (s AppointmentStatus) IsOpen() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment represents a patient visit booked into a doctor's slot.
// (doctor_id, appointment_date, appointment_time) is unique among active statuses;
// the partial unique index lives in db/migrations.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date            time.Time         `gorm:"column:appointment_date;type:date;not null;index" json:"appointment_date"`
	Time            TimeOfDay         `gorm:"column:appointment_time;type:time;not null" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:varchar(10);not null;default:'SCHEDULED';index" json:"status"`
	Reason          string            `gorm:"type:text;not null" json:"reason"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	ConsultationFee decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	Version         int               `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
	Doctor  *DoctorProfile  `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// StartsAt is the instant the appointment begins, in the location of its date
func (a *Appointment) StartsAt() time.Time {
	return a.Time.On(a.Date)
}

// Occupies reports whether a occupies the given doctor slot
func (a *Appointment) Occupies(doctorID uuid.UUID, date time.Time, at TimeOfDay) bool {
	return a.Status.IsActive() && a.DoctorID == doctorID && a.Time == at && SameDate(a.Date, date)
}
