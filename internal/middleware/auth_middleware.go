package middleware

import (
	"net/http"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextUserRole = "userRole"
	ContextGymID    = "gymID"
	ContextBranchID = "branchID"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextGymID, claims.GymID)
		c.Set(ContextBranchID, claims.BranchID)

		c.Next()
	}
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// The role from the JWT claims must equal one of the allowed roles exactly.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			utils.RespondForbidden(c, "User role not found in token claims")
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		utils.RespondForbidden(c, "Required roles: "+strings.Join(allowedRoles, ", "))
	}
}

// SessionFromContext reads the authenticated caller set by AuthMiddleware.
func SessionFromContext(c *gin.Context) models.Session {
	return models.Session{
		UserID:   c.GetInt64(ContextUserID),
		Username: c.GetString(ContextUsername),
		Role:     c.GetString(ContextUserRole),
		GymID:    c.GetString(ContextGymID),
		BranchID: c.GetString(ContextBranchID),
	}
}
