package usecase

import (
	"context"
	"errors"
	"fmt"

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
	ErrDoctorOnly              = errors.New("only doctors can write medical records")
	ErrAppointmentNotCompleted = errors.New("medical records can only be created for completed appointments")
	ErrRecordExists            = errors.New("a medical record already exists for this appointment")
)

const (
	defaultRecordPageSize = 20
	maxRecordPageSize     = 100
)

type MedicalRecordUsecase interface {
	Create(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, req *dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error)
	Update(ctx context.Context, caller entity.CallerRole, recordID uuid.UUID, req *dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error)
	ListByPatient(ctx context.Context, caller entity.CallerRole, patientID uuid.UUID, limit, offset int) (*dto.MedicalRecordListResponse, error)
}

type medicalRecordUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	recordRepo         repository.MedicalRecordRepository
	appointmentRepo    repository.AppointmentRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewMedicalRecordUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	recordRepo repository.MedicalRecordRepository,
	appointmentRepo repository.AppointmentRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) MedicalRecordUsecase {
	return &medicalRecordUsecase{
		db:                 db,
		log:                log,
		recordRepo:         recordRepo,
		appointmentRepo:    appointmentRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

// Create writes the record of a completed appointment. Only the appointment's
// own doctor may write it, and only once.
func (u *medicalRecordUsecase) Create(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, req *dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	if caller.Kind != entity.CallerDoctor {
		return nil, ErrDoctorOnly
	}

	var record *entity.MedicalRecord
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apt, err := u.appointmentRepo.FindByID(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if apt == nil || apt.DoctorID != caller.ID {
			return fmt.Errorf("appointment %s: %w", appointmentID, scheduling.ErrNotFound)
		}
		if apt.Status != entity.AppointmentStatusCompleted {
			return fmt.Errorf("appointment %s is %s: %w", appointmentID, apt.Status, ErrAppointmentNotCompleted)
		}

		existing, err := u.recordRepo.FindByAppointmentID(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrRecordExists
		}

		record = &entity.MedicalRecord{
			ID:            uuid.New(),
			AppointmentID: apt.ID,
			PatientID:     apt.PatientID,
			DoctorID:      apt.DoctorID,
		}
		applyRecordRequest(record, req)

		if err := u.recordRepo.Create(ctx, tx, record); err != nil {
			if errors.Is(err, scheduling.ErrPersistenceConflict) {
				return ErrRecordExists
			}
			return err
		}

		return u.auditService.LogCreate(ctx, tx, caller, entity.AuditActionMedicalRecordCreate,
			entity.AuditEntityMedicalRecord, record.ID.String(), recordSnapshot(record))
	})
	if err != nil {
		u.logRecordError(err, "create", appointmentID)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"record_id":      record.ID,
		"appointment_id": appointmentID,
		"doctor_id":      caller.ID,
	}).Info("Medical record created")
	return converter.MedicalRecordToResponse(record), nil
}

// Update replaces the clinical fields; only the authoring doctor may edit
func (u *medicalRecordUsecase) Update(ctx context.Context, caller entity.CallerRole, recordID uuid.UUID, req *dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	if caller.Kind != entity.CallerDoctor {
		return nil, ErrDoctorOnly
	}

	var record *entity.MedicalRecord
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := u.recordRepo.FindByID(ctx, tx, recordID)
		if err != nil {
			return err
		}
		if found == nil || found.DoctorID != caller.ID {
			return fmt.Errorf("medical record %s: %w", recordID, scheduling.ErrNotFound)
		}

		old := recordSnapshot(found)
		applyRecordRequest(found, req)
		if err := u.recordRepo.Update(ctx, tx, found); err != nil {
			return err
		}

		record = found
		return u.auditService.LogUpdate(ctx, tx, caller, entity.AuditActionMedicalRecordUpdate,
			entity.AuditEntityMedicalRecord, recordID.String(), old, recordSnapshot(found))
	})
	if err != nil {
		u.logRecordError(err, "update", recordID)
		return nil, err
	}

	return converter.MedicalRecordToResponse(record), nil
}

// ListByPatient pages a patient's records newest first. Patients see their own,
// admins see all, and doctors see only the records they wrote.
func (u *medicalRecordUsecase) ListByPatient(ctx context.Context, caller entity.CallerRole, patientID uuid.UUID, limit, offset int) (*dto.MedicalRecordListResponse, error) {
	filter := entity.MedicalRecordFilter{PatientID: patientID, Offset: max(offset, 0)}
	switch {
	case limit <= 0:
		filter.Limit = defaultRecordPageSize
	case limit > maxRecordPageSize:
		filter.Limit = maxRecordPageSize
	default:
		filter.Limit = limit
	}

	switch caller.Kind {
	case entity.CallerAdmin:
	case entity.CallerPatient:
		if caller.ID != patientID {
			return nil, fmt.Errorf("patient %s: %w", patientID, scheduling.ErrNotFound)
		}
	case entity.CallerDoctor:
		doctorID := caller.ID
		filter.DoctorID = &doctorID
	default:
		return nil, fmt.Errorf("patient %s: %w", patientID, scheduling.ErrNotFound)
	}

	patient, err := u.patientProfileRepo.FindByUserID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, scheduling.ErrNotFound)
	}

	records, total, err := u.recordRepo.FindByPatientID(ctx, u.db, &filter)
	if err != nil {
		u.log.Warnf("Failed to find medical records of patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.MedicalRecordListResponse{
		Records: converter.MedicalRecordsToResponses(records),
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func (u *medicalRecordUsecase) logRecordError(err error, op string, id uuid.UUID) {
	if errors.Is(err, scheduling.ErrNotFound) || errors.Is(err, ErrAppointmentNotCompleted) || errors.Is(err, ErrRecordExists) {
		return
	}
	u.log.Warnf("Failed to %s medical record %s: %+v", op, id, err)
}

func applyRecordRequest(record *entity.MedicalRecord, req *dto.MedicalRecordRequest) {
	record.Diagnosis = req.Diagnosis
	record.Treatment = req.Treatment
	record.Medications = req.Medications
	record.Notes = req.Notes
}

func recordSnapshot(record *entity.MedicalRecord) map[string]interface{} {
	return map[string]interface{}{
		"appointment_id": record.AppointmentID.String(),
		"patient_id":     record.PatientID.String(),
		"diagnosis":      record.Diagnosis,
		"treatment":      record.Treatment,
		"medications":    record.Medications,
		"notes":          record.Notes,
	}
}
