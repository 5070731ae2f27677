package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"gorm.io/gorm"
)

type PatientProfileRepository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error)
}
