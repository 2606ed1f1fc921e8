package rmiddleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
)

// RoleMiddleware gates a route group behind one of the required role names.
func RoleMiddleware(db *gorm.DB, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.GetUserIDFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		var userRoles []string
		err = db.Table("roles").
			Joins("JOIN user_roles ON user_roles.role_id = roles.id").
			Where("user_roles.user_id = ?", userID).
			Pluck("roles.name", &userRoles).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user roles"})
			return
		}

		// Check if user has any of the required roles
		hasRequiredRole := false
		for _, userRole := range userRoles {
			for _, requiredRole := range requiredRoles {
				if strings.EqualFold(userRole, requiredRole) {
					hasRequiredRole = true
					break
				}
			}
			if hasRequiredRole {
				break
			}
		}

		if !hasRequiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "Forbidden",
				"message":  "You don't have permission to access this resource",
				"required": requiredRoles,
			})
			return
		}

		// Add roles to context for downstream handlers
		c.Set("user_roles", userRoles)
		c.Next()
	}
}

// AdminMiddleware is a convenience middleware for admin-only access
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return RoleMiddleware(db, "admin")
}

// IsAdmin reports whether the request passed through RoleMiddleware with the
// admin role, for handlers that branch on admin override rather than gate.
func IsAdmin(c *gin.Context, db *gorm.DB) bool {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		return false
	}
	var count int64
	err = db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND LOWER(roles.name) = 'admin'", userID).
		Count(&count).Error
	return err == nil && count > 0
}
