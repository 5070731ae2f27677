package entity

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the clinical note a doctor writes for a completed appointment.
// At most one record exists per appointment.
type MedicalRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Diagnosis     string    `gorm:"type:text;not null" json:"diagnosis"`
	Treatment     string    `gorm:"type:text;not null" json:"treatment"`
	Medications   string    `gorm:"type:text" json:"medications,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}

// MedicalRecordFilter pages the records of one patient; DoctorID narrows to one author
type MedicalRecordFilter struct {
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	Limit     int
	Offset    int
}
