package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one audited write. Metadata carries entity, entity_id,
// old_value, new_value and the acting caller.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows an audit listing; zero fields match everything
type AuditLogFilter struct {
	Action   string
	Entity   string
	EntityID string
	UserID   *uuid.UUID
	Limit    int
	Offset   int
}

// JSON is a jsonb column holding the audited change
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit metadata: unsupported column type %T", value)
	}

	decoded := JSON{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("audit metadata: %w", err)
	}
	*j = decoded
	return nil
}

// Audit actions written by the usecases
const (
	AuditActionAppointmentBook       = "appointment.book"
	AuditActionAppointmentTransition = "appointment.transition"
	AuditActionScheduleUpsert        = "schedule.upsert"
	AuditActionMedicalRecordCreate   = "medical_record.create"
	AuditActionMedicalRecordUpdate   = "medical_record.update"
)

// Audited entity names
const (
	AuditEntityAppointment    = "appointment"
	AuditEntityDoctorSchedule = "doctor_schedule"
	AuditEntityMedicalRecord  = "medical_record"
)
