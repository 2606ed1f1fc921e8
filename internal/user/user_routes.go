package user

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
)

// UserRoutes sets up user preference routes.
func UserRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewGormUserRepository(db)
	controller := NewUserController(repo)

	users := router.Group("/users")
	users.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		users.GET("/me/approval-preferences", controller.GetApprovalPreferences)
		users.PUT("/me/approval-preferences", controller.UpdateApprovalPreferences)
	}
}
