package usecase

import (
	"context"
	"fmt"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/repository"
	"github.com/peter-abel/healthcare/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationUsecase delivers queued notification events.
// Events may arrive more than once or late, so each delivery re-reads the appointment
// and drops events that no longer describe its current state.
type NotificationUsecase interface {
	Dispatch(ctx context.Context, event entity.NotificationEvent) error
}

type notificationUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	mailer          service.Mailer
}

func NewNotificationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	mailer service.Mailer,
) NotificationUsecase {
	return &notificationUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		mailer:          mailer,
	}
}

func (u *notificationUsecase) Dispatch(ctx context.Context, event entity.NotificationEvent) error {
	entry := u.log.WithFields(logrus.Fields{
		"appointment_id": event.AppointmentID,
		"kind":           event.Kind,
	})

	apt, err := u.appointmentRepo.FindByID(ctx, u.db, event.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", event.AppointmentID, err)
		return err
	}
	if apt == nil {
		entry.Warn("Appointment no longer exists, dropping notification")
		return nil
	}

	if reason, stale := staleReason(event, apt); stale {
		entry.Infof("Skipping stale notification: %s", reason)
		return nil
	}

	mail, ok := composeMail(event, apt)
	if !ok {
		entry.Warn("No recipient for notification, dropping")
		return nil
	}

	if err := u.mailer.Send(ctx, mail); err != nil {
		entry.Warnf("Failed to send notification: %+v", err)
		return err
	}

	entry.Debug("Notification delivered")
	return nil
}

func staleReason(event entity.NotificationEvent, apt *entity.Appointment) (string, bool) {
	switch event.Kind {
	case entity.NotificationStatusChanged:
		if event.NewStatus != nil && *event.NewStatus != apt.Status {
			return fmt.Sprintf("status is now %s, event announced %s", apt.Status, *event.NewStatus), true
		}
	case entity.NotificationReminder:
		if !apt.Status.IsOpen() {
			return fmt.Sprintf("appointment is %s", apt.Status), true
		}
	case entity.NotificationNewBooking:
		if apt.Status == entity.AppointmentStatusCancelled {
			return "appointment was cancelled", true
		}
	default:
		return fmt.Sprintf("unknown kind %q", event.Kind), true
	}
	return "", false
}

// composeMail addresses new bookings to the doctor and everything else to the patient
func composeMail(event entity.NotificationEvent, apt *entity.Appointment) (service.Mail, bool) {
	when := fmt.Sprintf("%s at %s", apt.Date.Format(entity.DateLayout), apt.Time)

	switch event.Kind {
	case entity.NotificationNewBooking:
		if apt.Doctor == nil || apt.Doctor.User.Email == "" {
			return service.Mail{}, false
		}
		patient := "a patient"
		if apt.Patient != nil && apt.Patient.User.FullName != "" {
			patient = apt.Patient.User.FullName
		}
		return service.Mail{
			To:      apt.Doctor.User.Email,
			Subject: "New appointment booked",
			Body:    fmt.Sprintf("Dear Dr. %s, %s booked an appointment with you on %s. Reason: %s", apt.Doctor.User.FullName, patient, when, apt.Reason),
		}, true

	case entity.NotificationStatusChanged:
		if apt.Patient == nil || apt.Patient.User.Email == "" {
			return service.Mail{}, false
		}
		old := "unknown"
		if event.OldStatus != nil {
			old = string(*event.OldStatus)
		}
		return service.Mail{
			To:      apt.Patient.User.Email,
			Subject: "Appointment status updated",
			Body:    fmt.Sprintf("Dear %s, your appointment on %s changed from %s to %s.", apt.Patient.User.FullName, when, old, apt.Status),
		}, true

	case entity.NotificationReminder:
		if apt.Patient == nil || apt.Patient.User.Email == "" {
			return service.Mail{}, false
		}
		doctor := "your doctor"
		if apt.Doctor != nil && apt.Doctor.User.FullName != "" {
			doctor = "Dr. " + apt.Doctor.User.FullName
		}
		return service.Mail{
			To:      apt.Patient.User.Email,
			Subject: "Appointment reminder",
			Body:    fmt.Sprintf("Dear %s, you have an appointment with %s tomorrow at %s.", apt.Patient.User.FullName, doctor, apt.Time),
		}, true
	}

	return service.Mail{}, false
}
