package scheduling

import (
	"iter"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
)

const DefaultSlotInterval = 30 * time.Minute

// BookedTimes is the set of already occupied times of day for one doctor and date
type BookedTimes map[entity.TimeOfDay]struct{}

// BookedTimesOf collects the times occupied by active appointments of doctor on date
func BookedTimesOf(appointments []entity.Appointment, cal *ScheduleCalendar, date time.Time) BookedTimes {
	booked := make(BookedTimes, len(appointments))
	for i := range appointments {
		if appointments[i].Occupies(cal.DoctorID, date, appointments[i].Time) {
			booked[appointments[i].Time] = struct{}{}
		}
	}
	return booked
}

// AvailableSlots yields the bookable times of day for date in ascending order.
// The walk starts at the window start and advances by interval while the time is
// not past the window end; the end itself is yielded only when a step lands on it.
// The sequence is lazy and can be ranged over any number of times.
func AvailableSlots(cal *ScheduleCalendar, booked BookedTimes, date time.Time, interval time.Duration) iter.Seq[entity.TimeOfDay] {
	step := entity.TimeOfDay(interval / time.Minute)
	if step <= 0 {
		step = entity.TimeOfDay(DefaultSlotInterval / time.Minute)
	}

	return func(yield func(entity.TimeOfDay) bool) {
		window, ok := cal.WindowFor(date.Weekday())
		if !ok {
			return
		}
		for t := window.Start; t <= window.End; t += step {
			if _, taken := booked[t]; taken {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}
