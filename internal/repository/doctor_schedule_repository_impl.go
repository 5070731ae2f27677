package repository

import (
	"context"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	domainRepo "github.com/peter-abel/healthcare/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type doctorScheduleRepository struct{}

func NewDoctorScheduleRepository() domainRepo.DoctorScheduleRepository {
	return &doctorScheduleRepository{}
}

func (r *doctorScheduleRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	err := db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("day_of_week ASC").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// Upsert creates the weekday row on first write and overwrites it afterwards
func (r *doctorScheduleRepository) Upsert(ctx context.Context, db *gorm.DB, schedule *entity.DoctorSchedule) error {
	return db.WithContext(ctx).Omit("Doctor").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "is_available", "updated_at"}),
	}).Create(schedule).Error
}
