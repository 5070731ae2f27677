package converter

import (
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// ScheduleToResponse converts a DoctorSchedule entity to ScheduleResponse DTO
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.ScheduleResponse{
		ID:          schedule.ID,
		DoctorID:    schedule.DoctorID,
		DayOfWeek:   int(schedule.DayOfWeek),
		DayName:     schedule.DayOfWeek.String(),
		StartTime:   schedule.StartTime.String(),
		EndTime:     schedule.EndTime.String(),
		IsAvailable: schedule.IsAvailable,
		UpdatedAt:   schedule.UpdatedAt,
	}
}

// SchedulesToResponses converts a slice of DoctorSchedule entities to slice of ScheduleResponse DTOs
func SchedulesToResponses(schedules []entity.DoctorSchedule) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = *ScheduleToResponse(&schedules[i])
	}
	return responses
}

// SlotsToStrings renders slots as HH:MM
func SlotsToStrings(slots []entity.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, slot := range slots {
		out[i] = slot.String()
	}
	return out
}
