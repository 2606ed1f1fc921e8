package auth

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/config"
)

// AuthRoutes sets up public registration and login routes.
func AuthRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewAuthRepository(db)
	controller := NewAuthController(repo, appConfig)

	public := router.Group("/auth")
	{
		public.POST("/register", controller.Register)
		public.POST("/login", controller.Login)
	}
}
