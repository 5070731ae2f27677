package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/repository"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SchedulingOptions carries the clinic-wide scheduling settings
type SchedulingOptions struct {
	Location     *time.Location
	SlotInterval time.Duration
	SlotCacheTTL time.Duration
}

// BookingResult is the outcome of one item of a bulk booking, in request order
type BookingResult struct {
	Index       int
	Request     entity.BookingRequest
	Appointment *entity.Appointment
	Err         error
}

// TransitionResult is a persisted status change
type TransitionResult struct {
	Appointment *entity.Appointment
	Transition  scheduling.Transition
}

// BookingCoordinator orchestrates validation, persistence and notification around
// the scheduling core. Every time-sensitive call takes now explicitly.
type BookingCoordinator interface {
	Book(ctx context.Context, caller entity.CallerRole, req entity.BookingRequest, now time.Time) (*entity.Appointment, error)
	BulkBook(ctx context.Context, caller entity.CallerRole, reqs []entity.BookingRequest, now time.Time) []BookingResult
	Transition(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, action scheduling.Action, now time.Time) (*TransitionResult, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error)
	ListAppointments(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	Upcoming(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error)
	Past(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error)
	Today(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeOfDay, error)
	SweepNoShows(ctx context.Context, now time.Time) (int, error)
	EnqueueReminders(ctx context.Context, now time.Time) (int, error)
}

type bookingCoordinator struct {
	db                 *gorm.DB
	log                *logrus.Logger
	opts               SchedulingOptions
	appointmentRepo    repository.AppointmentRepository
	scheduleRepo       repository.DoctorScheduleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
	slotCache          service.SlotCache
	notifications      service.NotificationSink
	slotLoads          singleflight.Group
}

func NewBookingCoordinator(
	db *gorm.DB,
	log *logrus.Logger,
	opts SchedulingOptions,
	appointmentRepo repository.AppointmentRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
	notifications service.NotificationSink,
) BookingCoordinator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SlotInterval <= 0 {
		opts.SlotInterval = scheduling.DefaultSlotInterval
	}
	return &bookingCoordinator{
		db:                 db,
		log:                log,
		opts:               opts,
		appointmentRepo:    appointmentRepo,
		scheduleRepo:       scheduleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
		slotCache:          slotCache,
		notifications:      notifications,
	}
}

// Book reserves a slot for a patient.
//
// Flow:
// 1. Patient and doctor must exist
// 2. Validate against the doctor's calendar and the active appointments of that date
// 3. Insert the SCHEDULED appointment and its audit row in one transaction
// 4. A unique-index clash means another request won the slot; validate once more
// 5. Invalidate cached slots and enqueue NEW_BOOKING
func (u *bookingCoordinator) Book(ctx context.Context, caller entity.CallerRole, req entity.BookingRequest, now time.Time) (*entity.Appointment, error) {
	req.Date = entity.AsDate(req.Date, u.opts.Location)

	apt, err := u.book(ctx, caller, req, now)
	if errors.Is(err, scheduling.ErrPersistenceConflict) {
		u.log.WithFields(logrus.Fields{
			"doctor_id": req.DoctorID,
			"date":      req.Date.Format(entity.DateLayout),
			"time":      req.Time,
		}).Info("Booking lost a race for the slot, validating again")
		apt, err = u.book(ctx, caller, req, now)
	}
	if err != nil {
		return nil, err
	}

	u.invalidateSlots(ctx, apt.DoctorID)
	scheduled := apt.Status
	u.notify(ctx, entity.NotificationEvent{
		AppointmentID: apt.ID,
		Kind:          entity.NotificationNewBooking,
		NewStatus:     &scheduled,
		EnqueuedAt:    now,
	})

	u.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID,
		"doctor_id":      apt.DoctorID,
		"patient_id":     apt.PatientID,
	}).Infof("Appointment booked for %s %s", apt.Date.Format(entity.DateLayout), apt.Time)
	return apt, nil
}

func (u *bookingCoordinator) book(ctx context.Context, caller entity.CallerRole, req entity.BookingRequest, now time.Time) (*entity.Appointment, error) {
	patient, err := u.patientProfileRepo.FindByUserID(ctx, u.db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", req.PatientID, scheduling.ErrNotFound)
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, fmt.Errorf("doctor %s: %w", req.DoctorID, scheduling.ErrNotFound)
	}

	cal, existing, err := u.loadDay(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, err
	}

	slot := scheduling.BookingSlot{DoctorID: req.DoctorID, Date: req.Date, Time: req.Time}
	if err := scheduling.Validate(cal, slot, existing, now); err != nil {
		return nil, err
	}

	apt := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		Date:            req.Date,
		Time:            req.Time,
		Status:          entity.AppointmentStatusScheduled,
		Reason:          req.Reason,
		Notes:           req.Notes,
		ConsultationFee: doctor.ConsultationFee,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.appointmentRepo.Create(ctx, tx, apt); err != nil {
			return err
		}
		return u.auditService.LogCreate(ctx, tx, caller, entity.AuditActionAppointmentBook,
			entity.AuditEntityAppointment, apt.ID.String(), appointmentSnapshot(apt))
	})
	if err != nil {
		if !errors.Is(err, scheduling.ErrPersistenceConflict) {
			u.log.Warnf("Failed to create appointment: %+v", err)
		}
		return nil, err
	}

	return apt, nil
}

// BulkBook books each request independently and in order, so requests of the same
// batch compete for slots like separate callers would
func (u *bookingCoordinator) BulkBook(ctx context.Context, caller entity.CallerRole, reqs []entity.BookingRequest, now time.Time) []BookingResult {
	results := make([]BookingResult, 0, len(reqs))
	for i, req := range reqs {
		apt, err := u.Book(ctx, caller, req, now)
		results = append(results, BookingResult{
			Index:       i,
			Request:     req,
			Appointment: apt,
			Err:         err,
		})
	}
	return results
}

// Transition applies action to an appointment with optimistic concurrency.
// When the stored row changed in between, the appointment is reloaded and the
// action re-evaluated once against its fresh status.
func (u *bookingCoordinator) Transition(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, action scheduling.Action, now time.Time) (*TransitionResult, error) {
	result, err := u.transition(ctx, caller, appointmentID, action, now)
	if errors.Is(err, scheduling.ErrPersistenceConflict) {
		u.log.WithField("appointment_id", appointmentID).Info("Appointment changed concurrently, retrying transition")
		result, err = u.transition(ctx, caller, appointmentID, action, now)
	}
	if err != nil {
		return nil, err
	}

	tr := result.Transition
	if tr.From.IsActive() != tr.To.IsActive() {
		u.invalidateSlots(ctx, result.Appointment.DoctorID)
	}
	if tr.Changed() {
		from, to := tr.From, tr.To
		u.notify(ctx, entity.NotificationEvent{
			AppointmentID: result.Appointment.ID,
			Kind:          entity.NotificationStatusChanged,
			OldStatus:     &from,
			NewStatus:     &to,
			EnqueuedAt:    now,
		})
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"caller":         caller.String(),
	}).Infof("Appointment %s: %s -> %s", action, tr.From, tr.To)
	return result, nil
}

func (u *bookingCoordinator) transition(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, action scheduling.Action, now time.Time) (*TransitionResult, error) {
	apt, err := u.appointmentRepo.FindByID(ctx, u.db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if apt == nil {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, scheduling.ErrNotFound)
	}

	tr, err := scheduling.Apply(apt, action, now)
	if err != nil {
		return nil, err
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.appointmentRepo.UpdateStatus(ctx, tx, apt, tr.From); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, caller, entity.AuditActionAppointmentTransition,
			entity.AuditEntityAppointment, apt.ID.String(),
			map[string]interface{}{"status": tr.From},
			map[string]interface{}{"status": tr.To, "action": action},
		)
	})
	if err != nil {
		if !errors.Is(err, scheduling.ErrPersistenceConflict) {
			u.log.Warnf("Failed to persist transition of appointment %s: %+v", appointmentID, err)
		}
		return nil, err
	}

	return &TransitionResult{Appointment: apt, Transition: tr}, nil
}

func (u *bookingCoordinator) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	apt, err := u.appointmentRepo.FindByID(ctx, u.db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if apt == nil {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, scheduling.ErrNotFound)
	}
	return apt, nil
}

func (u *bookingCoordinator) ListAppointments(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, &filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}
	return appointments, nil
}

// Upcoming lists open appointments from today on, soonest first
func (u *bookingCoordinator) Upcoming(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	today := entity.DateOf(now, u.opts.Location)
	filter.From = &today
	filter.To = nil
	filter.EndedBy = nil
	filter.Statuses = entity.OpenStatuses
	filter.Descending = false
	return u.ListAppointments(ctx, filter)
}

// Past lists appointments dated before today or already closed, newest first
func (u *bookingCoordinator) Past(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	today := entity.DateOf(now, u.opts.Location)
	filter.From = nil
	filter.To = nil
	filter.EndedBy = &today
	filter.Statuses = nil
	filter.Descending = true
	return u.ListAppointments(ctx, filter)
}

// Today lists every appointment dated today regardless of status
func (u *bookingCoordinator) Today(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	today := entity.DateOf(now, u.opts.Location)
	filter.From = &today
	filter.To = &today
	filter.EndedBy = nil
	filter.Statuses = nil
	filter.Descending = false
	return u.ListAppointments(ctx, filter)
}

// AvailableSlots returns the free slots of a doctor on date. Results are cached per
// (doctor, date, interval) and concurrent misses for the same key share one load.
func (u *bookingCoordinator) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeOfDay, error) {
	date = entity.AsDate(date, u.opts.Location)
	key := service.SlotCacheKey(doctorID, date, u.opts.SlotInterval)

	slots, hit, err := u.slotCache.Get(ctx, key)
	if err != nil {
		u.log.Warnf("Failed to read slot cache for doctor %s: %+v", doctorID, err)
	} else if hit {
		return slots, nil
	}

	// waiters share the load, so it must outlive any single caller
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := u.slotLoads.Do(doctorID.String()+":"+key.FilterHash, func() (interface{}, error) {
		slots, err := u.loadSlots(loadCtx, doctorID, date)
		if err != nil {
			return nil, err
		}
		if err := u.slotCache.Set(loadCtx, key, slots, u.opts.SlotCacheTTL); err != nil {
			u.log.Warnf("Failed to write slot cache for doctor %s: %+v", doctorID, err)
		}
		return slots, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.TimeOfDay), nil
}

func (u *bookingCoordinator) loadSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeOfDay, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, scheduling.ErrNotFound)
	}

	cal, existing, err := u.loadDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	booked := scheduling.BookedTimesOf(existing, cal, date)
	slots := slices.Collect(scheduling.AvailableSlots(cal, booked, date, u.opts.SlotInterval))
	if slots == nil {
		slots = []entity.TimeOfDay{}
	}
	return slots, nil
}

// SweepNoShows marks open appointments whose start has passed as NO_SHOW.
// Rows that changed meanwhile are skipped; the next sweep sees them again if still open.
func (u *bookingCoordinator) SweepNoShows(ctx context.Context, now time.Time) (int, error) {
	due, err := u.appointmentRepo.FindOpenStartedBefore(ctx, u.db, now)
	if err != nil {
		u.log.Warnf("Failed to find appointments due for no-show: %+v", err)
		return 0, err
	}

	var (
		marked int
		errs   []error
	)
	for i := range due {
		if err := ctx.Err(); err != nil {
			return marked, err
		}
		_, err := u.Transition(ctx, entity.SystemCaller(), due[i].ID, scheduling.ActionMarkNoShow, now)
		switch {
		case err == nil:
			marked++
		case errors.Is(err, scheduling.ErrIllegalTransition),
			errors.Is(err, scheduling.ErrPersistenceConflict),
			errors.Is(err, scheduling.ErrNotFound):
			u.log.Debugf("Skipping no-show for appointment %s: %v", due[i].ID, err)
		default:
			errs = append(errs, fmt.Errorf("appointment %s: %w", due[i].ID, err))
		}
	}

	if marked > 0 {
		u.log.Infof("Marked %d appointments as no-show", marked)
	}
	return marked, errors.Join(errs...)
}

// EnqueueReminders emits a REMINDER event for every open appointment dated tomorrow
func (u *bookingCoordinator) EnqueueReminders(ctx context.Context, now time.Time) (int, error) {
	tomorrow := entity.DateOf(now, u.opts.Location).AddDate(0, 0, 1)

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, &entity.AppointmentFilter{
		From:     &tomorrow,
		To:       &tomorrow,
		Statuses: entity.OpenStatuses,
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments for reminders: %+v", err)
		return 0, err
	}

	var errs []error
	sent := 0
	for i := range appointments {
		status := appointments[i].Status
		err := u.notifications.Enqueue(ctx, entity.NotificationEvent{
			AppointmentID: appointments[i].ID,
			Kind:          entity.NotificationReminder,
			NewStatus:     &status,
			EnqueuedAt:    now,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}

	u.log.Infof("Enqueued %d reminders for %s", sent, tomorrow.Format(entity.DateLayout))
	return sent, errors.Join(errs...)
}

func (u *bookingCoordinator) loadDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (*scheduling.ScheduleCalendar, []entity.Appointment, error) {
	rows, err := u.scheduleRepo.FindByDoctorID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load calendar of doctor %s: %+v", doctorID, err)
		return nil, nil, err
	}

	existing, err := u.appointmentRepo.FindActiveByDoctorAndDate(ctx, u.db, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to load appointments of doctor %s: %+v", doctorID, err)
		return nil, nil, err
	}

	return scheduling.CalendarFromSchedules(doctorID, rows), existing, nil
}

// invalidateSlots drops cached slots of the doctor; the database stays authoritative on failure
func (u *bookingCoordinator) invalidateSlots(ctx context.Context, doctorID uuid.UUID) {
	if err := u.slotCache.Invalidate(ctx, entity.CacheEntitySlots, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
	}
}

// notify hands an event to the sink; failures never undo the committed change
func (u *bookingCoordinator) notify(ctx context.Context, event entity.NotificationEvent) {
	if err := u.notifications.Enqueue(ctx, event); err != nil {
		u.log.WithFields(logrus.Fields{
			"appointment_id": event.AppointmentID,
			"kind":           event.Kind,
		}).Warnf("Failed to enqueue notification: %+v", err)
	}
}

func appointmentSnapshot(apt *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":       apt.PatientID,
		"doctor_id":        apt.DoctorID,
		"appointment_date": apt.Date.Format(entity.DateLayout),
		"appointment_time": apt.Time.String(),
		"status":           apt.Status,
		"consultation_fee": apt.ConsultationFee.StringFixed(2),
	}
}
