package converter

import (
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// PatientProfileToResponse converts a PatientProfile with its User to PatientResponse DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientResponse {
	if profile == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          profile.UserID,
		Email:       profile.User.Email,
		FullName:    profile.User.FullName,
		PhoneNumber: profile.PhoneNumber,
		Gender:      profile.Gender,
	}
}
