package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"gorm.io/gorm"
)

type MedicalRecordRepository interface {
	// Create inserts a record; a second record for the same appointment is
	// reported as scheduling.ErrPersistenceConflict
	Create(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error
	Update(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error)
	FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.MedicalRecord, error)
	// FindByPatientID pages newest first and returns the unpaged total
	FindByPatientID(ctx context.Context, db *gorm.DB, filter *entity.MedicalRecordFilter) ([]entity.MedicalRecord, int64, error)
}
