package scheduling

import "errors"

// Validation errors; all user-correctable and surfaced verbatim
var (
	ErrPastDate       = errors.New("cannot book an appointment in the past")
	ErrNoAvailability = errors.New("doctor is not available on this day")
	ErrOutsideWindow  = errors.New("appointment time is outside the doctor's schedule")
	ErrSlotTaken      = errors.New("this time slot is already booked")
)

var (
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrUnknownAction       = errors.New("unknown appointment action")
	ErrNotFound            = errors.New("not found")
	ErrPersistenceConflict = errors.New("concurrent modification detected, retry")
	ErrInvalidRange        = errors.New("end time must be after start time")
	ErrInvalidWeekday      = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
)

// IsValidationError reports whether err is one of the booking validation failures
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrNoAvailability) ||
		errors.Is(err, ErrOutsideWindow) ||
		errors.Is(err, ErrSlotTaken)
}
