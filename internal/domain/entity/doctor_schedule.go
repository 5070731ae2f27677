package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorSchedule is one weekday entry of a doctor's recurring weekly calendar.
// (DoctorID, DayOfWeek) is unique: writes upsert, rows are never deleted.
type DoctorSchedule struct {
	ID          int          `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_doctor_schedules_doctor_day" json:"doctor_id"`
	DayOfWeek   time.Weekday `gorm:"type:smallint;not null;uniqueIndex:idx_doctor_schedules_doctor_day" json:"day_of_week"`
	StartTime   TimeOfDay    `gorm:"type:time;not null" json:"start_time"`
	EndTime     TimeOfDay    `gorm:"type:time;not null" json:"end_time"`
	IsAvailable bool         `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor *DoctorProfile `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}
