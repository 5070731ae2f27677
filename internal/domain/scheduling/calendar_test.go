package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAvailability_Upserts(t *testing.T) {
	cal := NewScheduleCalendar(uuid.New())

	_, err := cal.SetAvailability(time.Monday, entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(17, 0), true)
	require.NoError(t, err)

	row, err := cal.SetAvailability(time.Monday, entity.MustTimeOfDay(10, 0), entity.MustTimeOfDay(12, 0), true)
	require.NoError(t, err)
	assert.Equal(t, entity.MustTimeOfDay(10, 0), row.StartTime)

	entries := cal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MustTimeOfDay(12, 0), entries[0].EndTime)
}

func TestSetAvailability_InvalidRange(t *testing.T) {
	cal := NewScheduleCalendar(uuid.New())

	_, err := cal.SetAvailability(time.Tuesday, entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(9, 0), true)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = cal.SetAvailability(time.Tuesday, entity.MustTimeOfDay(17, 0), entity.MustTimeOfDay(9, 0), true)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, ok := cal.WindowFor(time.Tuesday)
	assert.False(t, ok, "failed writes must not create an entry")
}

func TestSetAvailability_InvalidWeekday(t *testing.T) {
	cal := NewScheduleCalendar(uuid.New())

	_, err := cal.SetAvailability(time.Weekday(7), entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(10, 0), true)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestWindowFor(t *testing.T) {
	cal := NewScheduleCalendar(uuid.New())
	_, err := cal.SetAvailability(time.Monday, entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(17, 0), true)
	require.NoError(t, err)
	_, err = cal.SetAvailability(time.Friday, entity.MustTimeOfDay(9, 0), entity.MustTimeOfDay(12, 0), false)
	require.NoError(t, err)

	w, ok := cal.WindowFor(time.Monday)
	require.True(t, ok)
	assert.Equal(t, Window{Start: entity.MustTimeOfDay(9, 0), End: entity.MustTimeOfDay(17, 0), Available: true}, w)

	_, ok = cal.WindowFor(time.Friday)
	assert.False(t, ok, "unavailable entries have no window")

	_, ok = cal.WindowFor(time.Sunday)
	assert.False(t, ok, "unset weekdays have no window")

	var nilCal *ScheduleCalendar
	_, ok = nilCal.WindowFor(time.Monday)
	assert.False(t, ok)
}

func TestCalendarFromSchedules_IgnoresOtherDoctors(t *testing.T) {
	doctorID := uuid.New()
	rows := []entity.DoctorSchedule{
		{DoctorID: doctorID, DayOfWeek: time.Wednesday, StartTime: entity.MustTimeOfDay(8, 0), EndTime: entity.MustTimeOfDay(11, 0), IsAvailable: true},
		{DoctorID: uuid.New(), DayOfWeek: time.Thursday, StartTime: entity.MustTimeOfDay(8, 0), EndTime: entity.MustTimeOfDay(11, 0), IsAvailable: true},
	}

	cal := CalendarFromSchedules(doctorID, rows)

	_, ok := cal.WindowFor(time.Wednesday)
	assert.True(t, ok)
	_, ok = cal.WindowFor(time.Thursday)
	assert.False(t, ok)
}
