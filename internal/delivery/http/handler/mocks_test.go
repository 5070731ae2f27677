package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCoordinator struct {
	mock.Mock
}

func (m *mockCoordinator) Book(ctx context.Context, caller entity.CallerRole, req entity.BookingRequest, now time.Time) (*entity.Appointment, error) {
	args := m.Called(ctx, caller, req, now)
	apt, _ := args.Get(0).(*entity.Appointment)
	return apt, args.Error(1)
}

func (m *mockCoordinator) BulkBook(ctx context.Context, caller entity.CallerRole, reqs []entity.BookingRequest, now time.Time) []usecase.BookingResult {
	args := m.Called(ctx, caller, reqs, now)
	results, _ := args.Get(0).([]usecase.BookingResult)
	return results
}

func (m *mockCoordinator) Transition(ctx context.Context, caller entity.CallerRole, appointmentID uuid.UUID, action scheduling.Action, now time.Time) (*usecase.TransitionResult, error) {
	args := m.Called(ctx, caller, appointmentID, action, now)
	result, _ := args.Get(0).(*usecase.TransitionResult)
	return result, args.Error(1)
}

func (m *mockCoordinator) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(ctx, appointmentID)
	apt, _ := args.Get(0).(*entity.Appointment)
	return apt, args.Error(1)
}

func (m *mockCoordinator) ListAppointments(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	args := m.Called(ctx, filter)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockCoordinator) Upcoming(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, filter, now)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockCoordinator) Past(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, filter, now)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockCoordinator) Today(ctx context.Context, filter entity.AppointmentFilter, now time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, filter, now)
	apts, _ := args.Get(0).([]entity.Appointment)
	return apts, args.Error(1)
}

func (m *mockCoordinator) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeOfDay, error) {
	args := m.Called(ctx, doctorID, date)
	slots, _ := args.Get(0).([]entity.TimeOfDay)
	return slots, args.Error(1)
}

func (m *mockCoordinator) SweepNoShows(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockCoordinator) EnqueueReminders(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockScheduleUsecase struct {
	mock.Mock
}

func (m *mockScheduleUsecase) SetAvailability(ctx context.Context, caller entity.CallerRole, doctorID uuid.UUID, day time.Weekday, req *dto.SetAvailabilityRequest) (*dto.ScheduleResponse, error) {
	args := m.Called(ctx, caller, doctorID, day, req)
	resp, _ := args.Get(0).(*dto.ScheduleResponse)
	return resp, args.Error(1)
}

func (m *mockScheduleUsecase) GetCalendar(ctx context.Context, doctorID uuid.UUID) (*dto.CalendarResponse, error) {
	args := m.Called(ctx, doctorID)
	resp, _ := args.Get(0).(*dto.CalendarResponse)
	return resp, args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Meta    json.RawMessage `json:"meta"`
}

// serve routes req through a bare mux so path variables resolve, with caller already authenticated
func serve(t *testing.T, method, pattern, target string, body interface{}, caller *entity.CallerRole, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if caller != nil {
		req = req.WithContext(middleware.WithCaller(req.Context(), *caller))
	}

	router := mux.NewRouter()
	router.HandleFunc(pattern, h).Methods(method)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}
