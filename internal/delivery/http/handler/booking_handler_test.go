package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var clinicNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newBookingHandler() (*BookingHandler, *mockCoordinator) {
	coordinator := new(mockCoordinator)
	h := NewBookingHandler(coordinator, validator.NewValidator(), time.UTC)
	h.now = func() time.Time { return clinicNow }
	return h, coordinator
}

func scheduledAppointment(patientID, doctorID uuid.UUID) *entity.Appointment {
	return &entity.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Time:      entity.MustTimeOfDay(9, 0),
		Status:    entity.AppointmentStatusScheduled,
		Reason:    "checkup",
	}
}

func TestGetAvailableSlots(t *testing.T) {
	h, coordinator := newBookingHandler()
	doctorID := uuid.New()
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	coordinator.On("AvailableSlots", mock.Anything, doctorID, monday).
		Return([]entity.TimeOfDay{entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(9, 30)}, nil)

	caller := entity.PatientCaller(uuid.New())
	rec, env := serve(t, http.MethodGet, "/doctors/{doctorId}/slots",
		fmt.Sprintf("/doctors/%s/slots?date=2026-10-19", doctorID), nil, &caller, h.GetAvailableSlots)

	require.Equal(t, http.StatusOK, rec.Code)
	var slots dto.SlotListResponse
	require.NoError(t, json.Unmarshal(env.Data, &slots))
	assert.Equal(t, []string{"09:00", "09:30"}, slots.Slots)
	assert.Equal(t, 2, slots.Total)
}

func TestGetAvailableSlots_BadDate(t *testing.T) {
	h, coordinator := newBookingHandler()
	caller := entity.PatientCaller(uuid.New())

	rec, _ := serve(t, http.MethodGet, "/doctors/{doctorId}/slots",
		fmt.Sprintf("/doctors/%s/slots?date=19-10-2026", uuid.New()), nil, &caller, h.GetAvailableSlots)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	coordinator.AssertNotCalled(t, "AvailableSlots", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAppointment_PatientBooksForSelf(t *testing.T) {
	h, coordinator := newBookingHandler()
	patientID, doctorID := uuid.New(), uuid.New()
	caller := entity.PatientCaller(patientID)
	apt := scheduledAppointment(patientID, doctorID)

	coordinator.On("Book", mock.Anything, caller, mock.MatchedBy(func(req entity.BookingRequest) bool {
		return req.PatientID == patientID &&
			req.DoctorID == doctorID &&
			req.Time == entity.MustTimeOfDay(9, 0) &&
			req.Date.Format(entity.DateLayout) == "2026-10-19"
	}), clinicNow).Return(apt, nil).Once()

	rec, env := serve(t, http.MethodPost, "/appointments", "/appointments", dto.CreateAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-10-19",
		Time:     "09:00",
		Reason:   "checkup",
	}, &caller, h.CreateAppointment)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.AppointmentResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "SCHEDULED", resp.Status)
	assert.Equal(t, []string{"cancel"}, resp.AllowedActions)
	coordinator.AssertExpectations(t)
}

func TestCreateAppointment_MapsErrors(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		errCode string
	}{
		{fmt.Errorf("wrapped: %w", scheduling.ErrSlotTaken), http.StatusConflict, "SLOT_TAKEN"},
		{scheduling.ErrPastDate, http.StatusBadRequest, "PAST_DATE"},
		{scheduling.ErrNoAvailability, http.StatusBadRequest, "NO_AVAILABILITY"},
		{scheduling.ErrOutsideWindow, http.StatusBadRequest, "OUTSIDE_WINDOW"},
		{fmt.Errorf("doctor: %w", scheduling.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{scheduling.ErrPersistenceConflict, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h, coordinator := newBookingHandler()
			caller := entity.PatientCaller(uuid.New())
			coordinator.On("Book", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			rec, env := serve(t, http.MethodPost, "/appointments", "/appointments", dto.CreateAppointmentRequest{
				DoctorID: uuid.New(),
				Date:     "2026-10-19",
				Time:     "09:00",
				Reason:   "checkup",
			}, &caller, h.CreateAppointment)

			assert.Equal(t, tc.code, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.errCode, env.Code)
		})
	}
}

func TestCreateAppointment_RejectsBeforeBooking(t *testing.T) {
	patient := entity.PatientCaller(uuid.New())
	admin := entity.AdminCaller(uuid.New())
	other := uuid.New()

	cases := []struct {
		name   string
		caller entity.CallerRole
		req    dto.CreateAppointmentRequest
		code   int
	}{
		{"invalid time", patient, dto.CreateAppointmentRequest{DoctorID: uuid.New(), Date: "2026-10-19", Time: "9am", Reason: "x"}, http.StatusBadRequest},
		{"missing reason", patient, dto.CreateAppointmentRequest{DoctorID: uuid.New(), Date: "2026-10-19", Time: "09:00"}, http.StatusBadRequest},
		{"patient booking for someone else", patient, dto.CreateAppointmentRequest{DoctorID: uuid.New(), PatientID: &other, Date: "2026-10-19", Time: "09:00", Reason: "x"}, http.StatusForbidden},
		{"admin without patient", admin, dto.CreateAppointmentRequest{DoctorID: uuid.New(), Date: "2026-10-19", Time: "09:00", Reason: "x"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, coordinator := newBookingHandler()
			caller := tc.caller
			rec, _ := serve(t, http.MethodPost, "/appointments", "/appointments", tc.req, &caller, h.CreateAppointment)

			assert.Equal(t, tc.code, rec.Code)
			coordinator.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBulkCreateAppointments_PartialSuccess(t *testing.T) {
	h, coordinator := newBookingHandler()
	patientID, doctorID := uuid.New(), uuid.New()
	admin := entity.AdminCaller(uuid.New())
	apt := scheduledAppointment(patientID, doctorID)

	coordinator.On("BulkBook", mock.Anything, admin, mock.MatchedBy(func(reqs []entity.BookingRequest) bool {
		return len(reqs) == 2 && reqs[0].PatientID == patientID && reqs[1].PatientID == patientID
	}), clinicNow).Return([]usecase.BookingResult{
		{Index: 0, Appointment: apt},
		{Index: 1, Err: scheduling.ErrSlotTaken},
	})

	item := dto.CreateAppointmentRequest{DoctorID: doctorID, PatientID: &patientID, Date: "2026-10-19", Time: "09:00", Reason: "x"}
	rec, env := serve(t, http.MethodPost, "/appointments/bulk", "/appointments/bulk",
		dto.BulkCreateAppointmentRequest{Appointments: []dto.CreateAppointmentRequest{item, item}}, &admin, h.BulkCreateAppointments)

	require.Equal(t, http.StatusMultiStatus, rec.Code)
	var resp dto.BulkBookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.Booked)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.NotNil(t, resp.Results[0].Appointment)
	assert.Equal(t, scheduling.ErrSlotTaken.Error(), resp.Results[1].Error)
}

func TestListAppointments_ScopesToCaller(t *testing.T) {
	h, coordinator := newBookingHandler()
	doctorID := uuid.New()
	caller := entity.DoctorCaller(doctorID)
	someoneElse := uuid.New()

	coordinator.On("Upcoming", mock.Anything, mock.MatchedBy(func(f entity.AppointmentFilter) bool {
		return f.DoctorID != nil && *f.DoctorID == doctorID
	}), clinicNow).Return([]entity.Appointment{*scheduledAppointment(uuid.New(), doctorID)}, nil).Once()

	rec, env := serve(t, http.MethodGet, "/appointments",
		"/appointments?scope=upcoming&doctor_id="+someoneElse.String(), nil, &caller, h.ListAppointments)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AppointmentListResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.Total)
	coordinator.AssertExpectations(t)
}

func TestListAppointments_Scopes(t *testing.T) {
	for _, scope := range []string{"past", "today"} {
		t.Run(scope, func(t *testing.T) {
			h, coordinator := newBookingHandler()
			caller := entity.AdminCaller(uuid.New())
			method := map[string]string{"past": "Past", "today": "Today"}[scope]
			coordinator.On(method, mock.Anything, entity.AppointmentFilter{}, clinicNow).Return([]entity.Appointment{}, nil).Once()

			rec, _ := serve(t, http.MethodGet, "/appointments", "/appointments?scope="+scope, nil, &caller, h.ListAppointments)

			assert.Equal(t, http.StatusOK, rec.Code)
			coordinator.AssertExpectations(t)
		})
	}
}

func TestListAppointments_UnknownScope(t *testing.T) {
	h, _ := newBookingHandler()
	caller := entity.AdminCaller(uuid.New())

	rec, _ := serve(t, http.MethodGet, "/appointments", "/appointments?scope=someday", nil, &caller, h.ListAppointments)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAppointment_HiddenFromOutsiders(t *testing.T) {
	h, coordinator := newBookingHandler()
	apt := scheduledAppointment(uuid.New(), uuid.New())
	coordinator.On("GetAppointment", mock.Anything, apt.ID).Return(apt, nil)

	outsider := entity.PatientCaller(uuid.New())
	rec, _ := serve(t, http.MethodGet, "/appointments/{id}", "/appointments/"+apt.ID.String(), nil, &outsider, h.GetAppointment)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	owner := entity.PatientCaller(apt.PatientID)
	rec, _ = serve(t, http.MethodGet, "/appointments/{id}", "/appointments/"+apt.ID.String(), nil, &owner, h.GetAppointment)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransitionAppointment(t *testing.T) {
	h, coordinator := newBookingHandler()
	doctorID := uuid.New()
	apt := scheduledAppointment(uuid.New(), doctorID)
	caller := entity.DoctorCaller(doctorID)

	confirmed := *apt
	confirmed.Status = entity.AppointmentStatusConfirmed
	coordinator.On("GetAppointment", mock.Anything, apt.ID).Return(apt, nil)
	coordinator.On("Transition", mock.Anything, caller, apt.ID, scheduling.ActionConfirm, clinicNow).Return(&usecase.TransitionResult{
		Appointment: &confirmed,
		Transition:  scheduling.Transition{From: entity.AppointmentStatusScheduled, To: entity.AppointmentStatusConfirmed},
	}, nil)

	rec, env := serve(t, http.MethodPost, "/appointments/{id}/{action}",
		fmt.Sprintf("/appointments/%s/confirm", apt.ID), nil, &caller, h.TransitionAppointment)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.TransitionResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "SCHEDULED", resp.From)
	assert.Equal(t, "CONFIRMED", resp.To)
	assert.Equal(t, "CONFIRMED", resp.Appointment.Status)
	assert.Equal(t, []string{"complete", "cancel"}, resp.Appointment.AllowedActions)
}

func TestGetAppointment_AllowedActionsFollowGuardsAndRole(t *testing.T) {
	patientID, doctorID := uuid.New(), uuid.New()

	upcoming := scheduledAppointment(patientID, doctorID)
	started := scheduledAppointment(patientID, doctorID)
	started.Date = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	missed := scheduledAppointment(patientID, doctorID)
	missed.Date = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	missed.Status = entity.AppointmentStatusConfirmed
	completed := scheduledAppointment(patientID, doctorID)
	completed.Status = entity.AppointmentStatusCompleted

	cases := []struct {
		name   string
		apt    *entity.Appointment
		caller entity.CallerRole
		want   []string
	}{
		{"doctor, tomorrow", upcoming, entity.DoctorCaller(doctorID), []string{"confirm", "cancel"}},
		{"patient, tomorrow", upcoming, entity.PatientCaller(patientID), []string{"cancel"}},
		{"doctor, started this morning", started, entity.DoctorCaller(doctorID), []string{"confirm", "cancel", "mark_no_show"}},
		{"admin, confirmed yesterday", missed, entity.AdminCaller(uuid.New()), []string{"complete", "mark_no_show"}},
		{"patient, confirmed yesterday", missed, entity.PatientCaller(patientID), []string{}},
		{"doctor, completed", completed, entity.DoctorCaller(doctorID), []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, coordinator := newBookingHandler()
			coordinator.On("GetAppointment", mock.Anything, tc.apt.ID).Return(tc.apt, nil)

			caller := tc.caller
			rec, env := serve(t, http.MethodGet, "/appointments/{id}", "/appointments/"+tc.apt.ID.String(), nil, &caller, h.GetAppointment)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp dto.AppointmentResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, tc.want, resp.AllowedActions)
		})
	}
}

func TestTransitionAppointment_Rejections(t *testing.T) {
	patientID, doctorID := uuid.New(), uuid.New()
	apt := scheduledAppointment(patientID, doctorID)

	cases := []struct {
		name     string
		caller   entity.CallerRole
		action   string
		transErr error
		code     int
	}{
		{"unknown action", entity.AdminCaller(uuid.New()), "reschedule", nil, http.StatusBadRequest},
		{"patient cannot confirm", entity.PatientCaller(patientID), "confirm", nil, http.StatusForbidden},
		{"other doctor", entity.DoctorCaller(uuid.New()), "confirm", nil, http.StatusNotFound},
		{"illegal transition", entity.DoctorCaller(doctorID), "complete", scheduling.ErrIllegalTransition, http.StatusConflict},
		{"lost race twice", entity.PatientCaller(patientID), "cancel", scheduling.ErrPersistenceConflict, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, coordinator := newBookingHandler()
			coordinator.On("GetAppointment", mock.Anything, apt.ID).Return(apt, nil)
			if tc.transErr != nil {
				coordinator.On("Transition", mock.Anything, tc.caller, apt.ID, mock.Anything, clinicNow).Return(nil, tc.transErr)
			}

			caller := tc.caller
			rec, _ := serve(t, http.MethodPost, "/appointments/{id}/{action}",
				fmt.Sprintf("/appointments/%s/%s", apt.ID, tc.action), nil, &caller, h.TransitionAppointment)

			assert.Equal(t, tc.code, rec.Code)
			if tc.transErr == nil {
				coordinator.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
