package repository

import (
	"context"
	"errors"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	domainRepo "github.com/peter-abel/healthcare/internal/domain/repository"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type medicalRecordRepository struct{}

func NewMedicalRecordRepository() domainRepo.MedicalRecordRepository {
	return &medicalRecordRepository{}
}

func (r *medicalRecordRepository) Create(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error {
	err := db.WithContext(ctx).Omit("Appointment").Create(record).Error
	if isUniqueViolation(err) {
		return scheduling.ErrPersistenceConflict
	}
	return err
}

func (r *medicalRecordRepository) Update(ctx context.Context, db *gorm.DB, record *entity.MedicalRecord) error {
	result := db.WithContext(ctx).
		Model(&entity.MedicalRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"diagnosis":   record.Diagnosis,
			"treatment":   record.Treatment,
			"medications": record.Medications,
			"notes":       record.Notes,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return scheduling.ErrNotFound
	}
	return nil
}

func (r *medicalRecordRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *medicalRecordRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.MedicalRecord, error) {
	return r.findOne(ctx, db, "appointment_id = ?", appointmentID)
}

func (r *medicalRecordRepository) FindByPatientID(ctx context.Context, db *gorm.DB, filter *entity.MedicalRecordFilter) ([]entity.MedicalRecord, int64, error) {
	query := db.WithContext(ctx).Model(&entity.MedicalRecord{}).Where("patient_id = ?", filter.PatientID)
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []entity.MedicalRecord
	err := query.
		Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *medicalRecordRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg interface{}) (*entity.MedicalRecord, error) {
	var record entity.MedicalRecord
	err := db.WithContext(ctx).Where(query, arg).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
