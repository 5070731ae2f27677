package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/domain/scheduling"
	"github.com/peter-abel/healthcare/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const calendarPattern = "/doctors/{doctorId}/calendar/{weekday}"

func availability(start, end string) dto.SetAvailabilityRequest {
	available := true
	return dto.SetAvailabilityRequest{StartTime: start, EndTime: end, IsAvailable: &available}
}

func TestSetAvailability_OwnerMayWrite(t *testing.T) {
	usecase := new(mockScheduleUsecase)
	h := NewDoctorScheduleHandler(usecase, validator.NewValidator())
	doctorID := uuid.New()
	caller := entity.DoctorCaller(doctorID)

	usecase.On("SetAvailability", mock.Anything, caller, doctorID, time.Wednesday, mock.Anything).
		Return(&dto.ScheduleResponse{DoctorID: doctorID, DayOfWeek: 3, DayName: "Wednesday"}, nil).Once()

	rec, env := serve(t, http.MethodPut, calendarPattern,
		fmt.Sprintf("/doctors/%s/calendar/wednesday", doctorID), availability("09:00", "17:00"), &caller, h.SetAvailability)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	usecase.AssertExpectations(t)
}

func TestSetAvailability_Rejections(t *testing.T) {
	doctorID := uuid.New()

	cases := []struct {
		name    string
		caller  entity.CallerRole
		weekday string
		body    dto.SetAvailabilityRequest
		ucErr   error
		code    int
	}{
		{"other doctor", entity.DoctorCaller(uuid.New()), "1", availability("09:00", "17:00"), nil, http.StatusForbidden},
		{"weekday out of range", entity.AdminCaller(uuid.New()), "7", availability("09:00", "17:00"), nil, http.StatusBadRequest},
		{"weekday name unknown", entity.AdminCaller(uuid.New()), "funday", availability("09:00", "17:00"), nil, http.StatusBadRequest},
		{"malformed time", entity.AdminCaller(uuid.New()), "1", availability("9", "17:00"), nil, http.StatusBadRequest},
		{"inverted range", entity.AdminCaller(uuid.New()), "1", availability("17:00", "09:00"), scheduling.ErrInvalidRange, http.StatusBadRequest},
		{"unknown doctor", entity.AdminCaller(uuid.New()), "1", availability("09:00", "17:00"), scheduling.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			usecase := new(mockScheduleUsecase)
			h := NewDoctorScheduleHandler(usecase, validator.NewValidator())
			if tc.ucErr != nil {
				usecase.On("SetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.ucErr)
			}

			caller := tc.caller
			body := tc.body
			rec, _ := serve(t, http.MethodPut, calendarPattern,
				fmt.Sprintf("/doctors/%s/calendar/%s", doctorID, tc.weekday), body, &caller, h.SetAvailability)

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := parseWeekday("0")
	assert.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	day, err = parseWeekday("Saturday")
	assert.NoError(t, err)
	assert.Equal(t, time.Saturday, day)

	_, err = parseWeekday("-1")
	assert.ErrorIs(t, err, scheduling.ErrInvalidWeekday)
}
