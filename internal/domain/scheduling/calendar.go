package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// Window is a doctor's working hours for one weekday
type Window struct {
	Start     entity.TimeOfDay
	End       entity.TimeOfDay
	Available bool
}

// Covers reports whether t lies in [Start, End], both ends inclusive
func (w Window) Covers(t entity.TimeOfDay) bool {
	return w.Start <= t && t <= w.End
}

// ScheduleCalendar is a doctor's recurring weekly availability, at most one window per weekday
type ScheduleCalendar struct {
	DoctorID uuid.UUID
	entries  map[time.Weekday]*entity.DoctorSchedule
}

func NewScheduleCalendar(doctorID uuid.UUID) *ScheduleCalendar {
	return &ScheduleCalendar{
		DoctorID: doctorID,
		entries:  make(map[time.Weekday]*entity.DoctorSchedule, 7),
	}
}

// CalendarFromSchedules rebuilds a calendar from persisted rows.
// Rows belonging to another doctor are ignored; a later duplicate weekday wins.
func CalendarFromSchedules(doctorID uuid.UUID, rows []entity.DoctorSchedule) *ScheduleCalendar {
	cal := NewScheduleCalendar(doctorID)
	for i := range rows {
		if rows[i].DoctorID != doctorID {
			continue
		}
		row := rows[i]
		cal.entries[row.DayOfWeek] = &row
	}
	return cal
}

// SetAvailability upserts the window for day and returns the row to persist
func (c *ScheduleCalendar) SetAvailability(day time.Weekday, start, end entity.TimeOfDay, available bool) (*entity.DoctorSchedule, error) {
	if day < time.Sunday || day > time.Saturday {
		return nil, ErrInvalidWeekday
	}
	if end <= start {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
	}

	row, ok := c.entries[day]
	if !ok {
		row = &entity.DoctorSchedule{DoctorID: c.DoctorID, DayOfWeek: day}
		c.entries[day] = row
	}
	row.StartTime = start
	row.EndTime = end
	row.IsAvailable = available

	return row, nil
}

// WindowFor returns the window for day, false when unset or marked unavailable
func (c *ScheduleCalendar) WindowFor(day time.Weekday) (Window, bool) {
	if c == nil {
		return Window{}, false
	}
	row, ok := c.entries[day]
	if !ok || !row.IsAvailable {
		return Window{}, false
	}
	return Window{Start: row.StartTime, End: row.EndTime, Available: true}, true
}

// Entries returns the calendar rows ordered by weekday
func (c *ScheduleCalendar) Entries() []entity.DoctorSchedule {
	rows := make([]entity.DoctorSchedule, 0, len(c.entries))
	for _, row := range c.entries {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DayOfWeek < rows[j].DayOfWeek })
	return rows
}
