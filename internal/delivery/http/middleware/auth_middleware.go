package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/pkg/jwt"
	"github.com/peter-abel/healthcare/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	RoleIDKey  contextKey = "role_id"
	TokenIDKey contextKey = "token_id"
	CallerKey  contextKey = "caller"
)

// RevokedTokenKey is written by the identity service on logout
func RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		caller, err := entity.CallerFromRoleID(claims.RoleID, claims.UserID)
		if err != nil {
			response.Forbidden(w, "Unknown role")
			return
		}

		revoked, err := m.redisClient.Exists(r.Context(), RevokedTokenKey(claims.TokenID)).Result()
		if err != nil {
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if revoked > 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, RoleIDKey, claims.RoleID)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
		ctx = context.WithValue(ctx, CallerKey, caller)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleIDFromContext extracts role ID from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}

// GetCallerFromContext returns the caller resolved by Authenticate
func GetCallerFromContext(ctx context.Context) (entity.CallerRole, bool) {
	caller, ok := ctx.Value(CallerKey).(entity.CallerRole)
	return caller, ok
}

// WithCaller stores a caller the way Authenticate does
func WithCaller(ctx context.Context, caller entity.CallerRole) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, caller.ID)
	return context.WithValue(ctx, CallerKey, caller)
}
