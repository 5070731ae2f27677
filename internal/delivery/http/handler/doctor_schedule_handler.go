package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/delivery/http/middleware"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/response"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorScheduleHandler struct {
	scheduleUsecase usecase.DoctorScheduleUsecase
	validator       *validator.CustomValidator
}

func NewDoctorScheduleHandler(scheduleUsecase usecase.DoctorScheduleUsecase, validator *validator.CustomValidator) *DoctorScheduleHandler {
	return &DoctorScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

func (h *DoctorScheduleHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	calendar, err := h.scheduleUsecase.GetCalendar(r.Context(), doctorID)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get calendar")
		return
	}

	response.Success(w, http.StatusOK, "Calendar retrieved successfully", calendar)
}

func (h *DoctorScheduleHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}
	if !caller.CanManageCalendar(doctorID) {
		response.Forbidden(w, "You can only manage your own calendar")
		return
	}

	day, err := parseWeekday(vars["weekday"])
	if err != nil {
		writeSchedulingError(w, err, "Failed to set availability")
		return
	}

	var req dto.SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.scheduleUsecase.SetAvailability(r.Context(), caller, doctorID, day, &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to set availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", schedule)
}

// parseWeekday accepts 0 (Sunday) to 6 (Saturday) or an English day name
func parseWeekday(raw string) (time.Weekday, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < int(time.Sunday) || n > int(time.Saturday) {
			return 0, scheduling.ErrInvalidWeekday
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(raw, d.String()) {
			return d, nil
		}
	}
	return 0, scheduling.ErrInvalidWeekday
}
