package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/internal/converter"
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/repository"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
)

type DoctorScheduleUsecase interface {
	SetAvailability(ctx context.Context, caller entity.CallerRole, doctorID uuid.UUID, day time.Weekday, req *dto.SetAvailabilityRequest) (*dto.ScheduleResponse, error)
	GetCalendar(ctx context.Context, doctorID uuid.UUID) (*dto.CalendarResponse, error)
}

type doctorScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	scheduleRepo      repository.DoctorScheduleRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	slotCache         service.SlotCache
}

func NewDoctorScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		db:                db,
		log:               log,
		scheduleRepo:      scheduleRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		slotCache:         slotCache,
	}
}

// SetAvailability upserts one weekday of the doctor's calendar.
// Existing bookings are left untouched; only future slot generation changes.
func (u *doctorScheduleUsecase) SetAvailability(ctx context.Context, caller entity.CallerRole, doctorID uuid.UUID, day time.Weekday, req *dto.SetAvailabilityRequest) (*dto.ScheduleResponse, error) {
	start, err := entity.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := entity.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	available := req.IsAvailable == nil || *req.IsAvailable

	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, scheduling.ErrNotFound)
	}

	var saved *entity.DoctorSchedule
	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := u.scheduleRepo.FindByDoctorID(ctx, tx, doctorID)
		if err != nil {
			return err
		}

		var old interface{}
		for i := range rows {
			if rows[i].DayOfWeek == day {
				old = scheduleSnapshot(&rows[i])
			}
		}

		cal := scheduling.CalendarFromSchedules(doctorID, rows)
		row, err := cal.SetAvailability(day, start, end, available)
		if err != nil {
			return err
		}

		if err := u.scheduleRepo.Upsert(ctx, tx, row); err != nil {
			return err
		}

		saved = row
		return u.auditService.LogUpdate(ctx, tx, caller, entity.AuditActionScheduleUpsert,
			entity.AuditEntityDoctorSchedule, fmt.Sprintf("%s/%d", doctorID, day),
			old, scheduleSnapshot(row))
	})
	if err != nil {
		if !errors.Is(err, scheduling.ErrInvalidRange) && !errors.Is(err, scheduling.ErrInvalidWeekday) {
			u.log.Warnf("Failed to set availability for doctor %s: %+v", doctorID, err)
		}
		return nil, err
	}

	if err := u.slotCache.Invalidate(ctx, entity.CacheEntitySlots, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
	}

	u.log.WithFields(logrus.Fields{
		"doctor_id": doctorID,
		"weekday":   day.String(),
	}).Infof("Availability set to %s-%s (available=%t)", start, end, available)
	return converter.ScheduleToResponse(saved), nil
}

func (u *doctorScheduleUsecase) GetCalendar(ctx context.Context, doctorID uuid.UUID) (*dto.CalendarResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, scheduling.ErrNotFound)
	}

	rows, err := u.scheduleRepo.FindByDoctorID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	entries := scheduling.CalendarFromSchedules(doctorID, rows).Entries()
	return &dto.CalendarResponse{
		DoctorID:  doctorID,
		Schedules: converter.SchedulesToResponses(entries),
		Total:     len(entries),
	}, nil
}

func scheduleSnapshot(row *entity.DoctorSchedule) map[string]interface{} {
	return map[string]interface{}{
		"day_of_week":  int(row.DayOfWeek),
		"start_time":   row.StartTime.String(),
		"end_time":     row.EndTime.String(),
		"is_available": row.IsAvailable,
	}
}
