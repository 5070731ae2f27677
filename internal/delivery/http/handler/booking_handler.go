package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/peter-abel/healthcare/internal/converter"
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/response"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var (
	errPatientRequired  = errors.New("patient_id is required when booking on behalf of a patient")
	errBookForSomeone   = errors.New("patients can only book for themselves")
	errUnsupportedScope = errors.New("scope must be one of upcoming, past, today")
)

type BookingHandler struct {
	coordinator usecase.BookingCoordinator
	validator   *validator.CustomValidator
	loc         *time.Location
	now         func() time.Time
}

func NewBookingHandler(coordinator usecase.BookingCoordinator, validator *validator.CustomValidator, loc *time.Location) *BookingHandler {
	return &BookingHandler{
		coordinator: coordinator,
		validator:   validator,
		loc:         loc,
		now:         time.Now,
	}
}

func (h *BookingHandler) clock() time.Time {
	return h.now().In(h.loc)
}

func (h *BookingHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date, err := time.ParseInLocation(entity.DateLayout, r.URL.Query().Get("date"), h.loc)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		return
	}

	slots, err := h.coordinator.AvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", dto.SlotListResponse{
		DoctorID: doctorID,
		Date:     date.Format(entity.DateLayout),
		Slots:    converter.SlotsToStrings(slots),
		Total:    len(slots),
	})
}

func (h *BookingHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingRequest(caller, &req)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}

	now := h.clock()
	apt, err := h.coordinator.Book(r.Context(), caller, booking, now)
	if err != nil {
		writeSchedulingError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully",
		converter.AppointmentToResponse(apt, actionsFor(caller, now)(apt)))
}

func (h *BookingHandler) BulkCreateAppointments(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.BulkCreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	bookings := make([]entity.BookingRequest, len(req.Appointments))
	for i := range req.Appointments {
		booking, err := h.bookingRequest(caller, &req.Appointments[i])
		if err != nil {
			h.writeRequestError(w, fmt.Errorf("appointments[%d]: %w", i, err))
			return
		}
		bookings[i] = booking
	}

	now := h.clock()
	results := h.coordinator.BulkBook(r.Context(), caller, bookings, now)
	resp := bookingResultsToResponse(results, actionsFor(caller, now))

	status := http.StatusCreated
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	response.Success(w, status, fmt.Sprintf("%d booked, %d failed", resp.Booked, resp.Failed), resp)
}

func (h *BookingHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	filter, err := scopedFilter(caller, r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	now := h.clock()
	var appointments []entity.Appointment
	switch r.URL.Query().Get("scope") {
	case "":
		appointments, err = h.coordinator.ListAppointments(r.Context(), filter)
	case "upcoming":
		appointments, err = h.coordinator.Upcoming(r.Context(), filter, now)
	case "past":
		appointments, err = h.coordinator.Past(r.Context(), filter, now)
	case "today":
		appointments, err = h.coordinator.Today(r.Context(), filter, now)
	default:
		response.BadRequest(w, errUnsupportedScope.Error())
		return
	}
	if err != nil {
		writeSchedulingError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments, actionsFor(caller, now)),
		Total:        len(appointments),
	})
}

func (h *BookingHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	apt, err := h.coordinator.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get appointment")
		return
	}
	if !caller.CanAccess(apt) {
		response.NotFound(w, "Appointment not found")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully",
		converter.AppointmentToResponse(apt, actionsFor(caller, h.clock())(apt)))
}

func (h *BookingHandler) TransitionAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	action, err := scheduling.ParseAction(vars["action"])
	if err != nil {
		writeSchedulingError(w, err, "Failed to update appointment")
		return
	}

	apt, err := h.coordinator.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		writeSchedulingError(w, err, "Failed to update appointment")
		return
	}
	if !caller.CanAccess(apt) {
		response.NotFound(w, "Appointment not found")
		return
	}
	if !mayApply(caller, action) {
		response.Forbidden(w, fmt.Sprintf("A %s cannot %s an appointment", caller.Kind, action))
		return
	}

	now := h.clock()
	result, err := h.coordinator.Transition(r.Context(), caller, appointmentID, action, now)
	if err != nil {
		writeSchedulingError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", dto.TransitionResponse{
		Appointment: *converter.AppointmentToResponse(result.Appointment, actionsFor(caller, now)(result.Appointment)),
		From:        string(result.Transition.From),
		To:          string(result.Transition.To),
	})
}

// mayApply: patients may only cancel, doctors and admins drive the whole lifecycle
func mayApply(caller entity.CallerRole, action scheduling.Action) bool {
	switch caller.Kind {
	case entity.CallerAdmin, entity.CallerDoctor:
		return true
	case entity.CallerPatient:
		return action == scheduling.ActionCancel
	}
	return false
}

// actionsFor lists what caller may apply to an appointment at now: legal for its
// status and guards, and permitted for the caller's role
func actionsFor(caller entity.CallerRole, now time.Time) func(*entity.Appointment) []scheduling.Action {
	return func(apt *entity.Appointment) []scheduling.Action {
		var actions []scheduling.Action
		for _, a := range scheduling.Available(apt.Status, apt.Date, apt.Time, now) {
			if mayApply(caller, a) {
				actions = append(actions, a)
			}
		}
		return actions
	}
}

func (h *BookingHandler) bookingRequest(caller entity.CallerRole, req *dto.CreateAppointmentRequest) (entity.BookingRequest, error) {
	var patientID uuid.UUID
	switch {
	case caller.Kind == entity.CallerPatient:
		if req.PatientID != nil && *req.PatientID != caller.ID {
			return entity.BookingRequest{}, errBookForSomeone
		}
		patientID = caller.ID
	case req.PatientID == nil:
		return entity.BookingRequest{}, errPatientRequired
	default:
		patientID = *req.PatientID
	}

	if !caller.CanBookFor(patientID) {
		return entity.BookingRequest{}, errBookForSomeone
	}

	return converter.BookingRequestFromDTO(req, patientID, h.loc)
}

func (h *BookingHandler) writeRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBookForSomeone) {
		response.Forbidden(w, err.Error())
		return
	}
	response.BadRequest(w, err.Error())
}

// scopedFilter narrows listings to the caller's own appointments unless the caller is an admin
func scopedFilter(caller entity.CallerRole, r *http.Request) (entity.AppointmentFilter, error) {
	var filter entity.AppointmentFilter
	query := r.URL.Query()

	if raw := query.Get("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid doctor_id")
		}
		filter.DoctorID = &id
	}
	if raw := query.Get("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid patient_id")
		}
		filter.PatientID = &id
	}

	self := caller.ID
	switch caller.Kind {
	case entity.CallerPatient:
		filter.PatientID = &self
	case entity.CallerDoctor:
		filter.DoctorID = &self
	}
	return filter, nil
}

func bookingResultsToResponse(results []usecase.BookingResult, actions func(*entity.Appointment) []scheduling.Action) dto.BulkBookingResponse {
	resp := dto.BulkBookingResponse{Results: make([]dto.BulkBookingItemResponse, len(results))}
	for i, result := range results {
		item := dto.BulkBookingItemResponse{Index: result.Index}
		if result.Err != nil {
			item.Error = result.Err.Error()
			resp.Failed++
		} else {
			item.Appointment = converter.AppointmentToResponse(result.Appointment, actions(result.Appointment))
			resp.Booked++
		}
		resp.Results[i] = item
	}
	return resp
}
