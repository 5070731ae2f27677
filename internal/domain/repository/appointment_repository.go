package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	// Create inserts a new appointment; a clash on the active-slot unique index
	// is reported as scheduling.ErrPersistenceConflict
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	// FindActiveByDoctorAndDate returns the appointments occupying slots of doctorID on date
	FindActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	// UpdateStatus persists apt.Status only if the stored row still has status from and
	// version apt.Version; it bumps the version. Zero matched rows is scheduling.ErrPersistenceConflict.
	UpdateStatus(ctx context.Context, db *gorm.DB, apt *entity.Appointment, from entity.AppointmentStatus) error
	// FindOpenStartedBefore returns SCHEDULED/CONFIRMED appointments dated on or before the date of now
	FindOpenStartedBefore(ctx context.Context, db *gorm.DB, now time.Time) ([]entity.Appointment, error)
}
