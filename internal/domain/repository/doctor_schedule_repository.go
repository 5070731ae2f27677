package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error)
	// Upsert writes the row keyed by (doctor_id, day_of_week)
	Upsert(ctx context.Context, db *gorm.DB, schedule *entity.DoctorSchedule) error
}
