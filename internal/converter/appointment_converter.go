package converter

import (
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// actions are the transitions the viewing caller may apply right now.
func AppointmentToResponse(apt *entity.Appointment, actions []scheduling.Action) *dto.AppointmentResponse {
	if apt == nil {
		return nil
	}

	allowed := make([]string, len(actions))
	for i, a := range actions {
		allowed[i] = string(a)
	}

	response := &dto.AppointmentResponse{
		ID:              apt.ID,
		PatientID:       apt.PatientID,
		DoctorID:        apt.DoctorID,
		Date:            apt.Date.Format(entity.DateLayout),
		Time:            apt.Time.String(),
		Status:          string(apt.Status),
		Reason:          apt.Reason,
		Notes:           apt.Notes,
		ConsultationFee: apt.ConsultationFee.StringFixed(2),
		AllowedActions:  allowed,
		CreatedAt:       apt.CreatedAt,
		UpdatedAt:       apt.UpdatedAt,
	}

	// Include participants if preloaded
	if apt.Patient != nil {
		response.Patient = PatientProfileToResponse(apt.Patient)
	}
	if apt.Doctor != nil {
		response.Doctor = DoctorProfileToResponse(apt.Doctor)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment, actionsFor func(*entity.Appointment) []scheduling.Action) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], actionsFor(&appointments[i]))
	}
	return responses
}

// BookingRequestFromDTO parses the date and time of req in the clinic location.
// patientID is the patient resolved from the caller.
func BookingRequestFromDTO(req *dto.CreateAppointmentRequest, patientID uuid.UUID, loc *time.Location) (entity.BookingRequest, error) {
	date, err := time.ParseInLocation(entity.DateLayout, req.Date, loc)
	if err != nil {
		return entity.BookingRequest{}, fmt.Errorf("invalid appointment_date %q, use YYYY-MM-DD", req.Date)
	}
	at, err := entity.ParseTimeOfDay(req.Time)
	if err != nil {
		return entity.BookingRequest{}, err
	}

	return entity.BookingRequest{
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		Date:      date,
		Time:      at,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}, nil
}
