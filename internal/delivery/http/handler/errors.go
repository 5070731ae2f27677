package handler

import (
	"errors"
	"net/http"

	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/internal/usecase"
	"github.com/peter-abel/healthcare/pkg/response"
)

// schedulingFailure is the HTTP rendering of one core error
type schedulingFailure struct {
	target error
	status int
	code   string
}

var schedulingFailures = []schedulingFailure{
	{scheduling.ErrSlotTaken, http.StatusConflict, "SLOT_TAKEN"},
	{scheduling.ErrPastDate, http.StatusBadRequest, "PAST_DATE"},
	{scheduling.ErrNoAvailability, http.StatusBadRequest, "NO_AVAILABILITY"},
	{scheduling.ErrOutsideWindow, http.StatusBadRequest, "OUTSIDE_WINDOW"},
	{scheduling.ErrIllegalTransition, http.StatusConflict, "ILLEGAL_TRANSITION"},
	{scheduling.ErrPersistenceConflict, http.StatusConflict, "CONCURRENT_MODIFICATION"},
	{scheduling.ErrNotFound, http.StatusNotFound, response.CodeNotFound},
	{scheduling.ErrUnknownAction, http.StatusBadRequest, "UNKNOWN_ACTION"},
	{scheduling.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
	{scheduling.ErrInvalidWeekday, http.StatusBadRequest, "INVALID_WEEKDAY"},
	{usecase.ErrInvalidTimeFormat, http.StatusBadRequest, "INVALID_TIME_FORMAT"},
	{usecase.ErrAppointmentNotCompleted, http.StatusConflict, "APPOINTMENT_NOT_COMPLETED"},
	{usecase.ErrRecordExists, http.StatusConflict, "RECORD_EXISTS"},
	{usecase.ErrDoctorOnly, http.StatusForbidden, response.CodeForbidden},
}

// writeSchedulingError maps core errors onto HTTP statuses; anything unknown is a 500 with fallback
func writeSchedulingError(w http.ResponseWriter, err error, fallback string) {
	for _, f := range schedulingFailures {
		if !errors.Is(err, f.target) {
			continue
		}
		message := err.Error()
		if f.target == scheduling.ErrPersistenceConflict {
			message = "The appointment was modified concurrently, please retry"
		}
		response.Fail(w, f.status, f.code, message, nil)
		return
	}
	response.InternalServerError(w, fallback)
}
