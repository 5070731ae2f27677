package repository

import (
	"context"

	"github.com/peter-abel/healthcare/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	// FindAll lists active doctors; an empty specialization matches all
	FindAll(ctx context.Context, db *gorm.DB, specialization string) ([]entity.DoctorProfile, error)
}
