package repository

import (
	"context"
	"errors"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	domainRepo "github.com/peter-abel/healthcare/internal/domain/repository"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type appointmentRepository struct {
	loc *time.Location
}

// NewAppointmentRepository returns a repository whose dates are anchored to loc, the clinic timezone
func NewAppointmentRepository(loc *time.Location) domainRepo.AppointmentRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &appointmentRepository{loc: loc}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	err := db.WithContext(ctx).Omit("Patient", "Doctor").Create(appointment).Error
	if isUniqueViolation(err) {
		return scheduling.ErrPersistenceConflict
	}
	return err
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient.User").Preload("Doctor.User").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	r.anchor(&appointment)
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	query := db.WithContext(ctx).Model(&entity.Appointment{})
	order := "appointment_date ASC, appointment_time ASC"

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.From != nil {
			query = query.Where("appointment_date >= ?", filter.From.Format(entity.DateLayout))
		}
		if filter.To != nil {
			query = query.Where("appointment_date <= ?", filter.To.Format(entity.DateLayout))
		}
		if filter.EndedBy != nil {
			query = query.Where("(appointment_date < ? OR status IN ?)", filter.EndedBy.Format(entity.DateLayout), entity.ClosedStatuses)
		}
		if len(filter.Statuses) > 0 {
			query = query.Where("status IN ?", filter.Statuses)
		}
		if filter.Descending {
			order = "appointment_date DESC, appointment_time DESC"
		}
	}

	var appointments []entity.Appointment
	err := query.Preload("Patient.User").Preload("Doctor.User").Order(order).Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	r.anchorAll(appointments)
	return appointments, nil
}

func (r *appointmentRepository) FindActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?", doctorID, date.Format(entity.DateLayout), entity.ActiveStatuses).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	r.anchorAll(appointments)
	return appointments, nil
}

// UpdateStatus is a compare-and-set on (status, version) so two concurrent
// transitions from the same prior state cannot both succeed
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, apt *entity.Appointment, from entity.AppointmentStatus) error {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ? AND version = ?", apt.ID, from, apt.Version).
		Updates(map[string]interface{}{
			"status":     apt.Status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": apt.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return scheduling.ErrPersistenceConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return scheduling.ErrPersistenceConflict
	}
	apt.Version++
	return nil
}

func (r *appointmentRepository) FindOpenStartedBefore(ctx context.Context, db *gorm.DB, now time.Time) ([]entity.Appointment, error) {
	today := entity.DateOf(now, r.loc)

	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("appointment_date <= ? AND status IN ?", today.Format(entity.DateLayout), entity.OpenStatuses).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	r.anchorAll(appointments)

	// rows dated today may not have started yet
	started := appointments[:0]
	for _, apt := range appointments {
		if apt.StartsAt().Before(now) {
			started = append(started, apt)
		}
	}
	return started, nil
}

func (r *appointmentRepository) anchor(apt *entity.Appointment) {
	apt.Date = entity.AsDate(apt.Date, r.loc)
}

func (r *appointmentRepository) anchorAll(appointments []entity.Appointment) {
	for i := range appointments {
		r.anchor(&appointments[i])
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
