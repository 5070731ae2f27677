package converter

import (
	"github.com/peter-abel/healthcare/internal/delivery/dto"
	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      roleName(user.RoleID),
		CreatedAt: user.CreatedAt,
	}
}

func roleName(roleID int) string {
	switch roleID {
	case entity.RoleIDAdmin:
		return string(entity.CallerAdmin)
	case entity.RoleIDDoctor:
		return string(entity.CallerDoctor)
	case entity.RoleIDPatient:
		return string(entity.CallerPatient)
	}
	return "unknown"
}
