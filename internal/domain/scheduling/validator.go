package scheduling

import (
	"time"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// BookingSlot is the (doctor, date, time) triple a booking wants to occupy
type BookingSlot struct {
	DoctorID uuid.UUID
	Date     time.Time
	Time     entity.TimeOfDay
}

// StartsAt combines Date and Time in the location of Date
func (s BookingSlot) StartsAt() time.Time {
	return s.Time.On(s.Date)
}

// Validate checks a proposed booking against the temporal and uniqueness rules.
// Checks run in order and the first failure is returned:
// past instant, no window for the weekday, time outside the window, slot occupied.
// It is a pure function of its arguments; the storage unique index remains the race boundary.
func Validate(cal *ScheduleCalendar, slot BookingSlot, existing []entity.Appointment, now time.Time) error {
	if !slot.StartsAt().After(now) {
		return ErrPastDate
	}

	window, ok := cal.WindowFor(slot.Date.Weekday())
	if !ok {
		return ErrNoAvailability
	}

	if !window.Covers(slot.Time) {
		return ErrOutsideWindow
	}

	for i := range existing {
		if existing[i].Occupies(slot.DoctorID, slot.Date, slot.Time) {
			return ErrSlotTaken
		}
	}

	return nil
}
