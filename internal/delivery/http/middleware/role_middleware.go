package middleware

import (
	"net/http"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/pkg/response"
)

// RequireRole creates a middleware that checks if the caller has any of the allowed kinds
// The caller is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowed ...entity.CallerKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCallerFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, kind := range allowed {
				if caller.Kind == kind {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.CallerAdmin)(next)
}

// RequireAdminOrDoctor is a convenience middleware for calendar writes
func RequireAdminOrDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.CallerAdmin, entity.CallerDoctor)(next)
}

// RequireAdminOrPatient is a convenience middleware for booking endpoints
func RequireAdminOrPatient(next http.Handler) http.Handler {
	return RequireRole(entity.CallerAdmin, entity.CallerPatient)(next)
}

// RequireDoctor is a convenience middleware for medical record writes
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.CallerDoctor)(next)
}
