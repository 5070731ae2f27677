package repository

import (
	"context"
	"errors"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	domainRepo "github.com/peter-abel/healthcare/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(ctx context.Context, db *gorm.DB, specialization string) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.WithContext(ctx).
		Joins("User").
		Where(`"User".is_active = ?`, true)
	if specialization != "" {
		query = query.Where("doctor_profiles.specialization ILIKE ?", specialization)
	}
	err := query.Order(`"User".full_name ASC`).Find(&profiles).Error
	return profiles, err
}
