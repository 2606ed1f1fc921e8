package verification

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
)

// VerificationRoutes sets up score verification routes.
func VerificationRoutes(router *gin.RouterGroup, db *gorm.DB, svc *Service, jwtSecret string) {
	controller := NewVerificationController(svc, db)

	authed := router.Group("")
	authed.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authed.POST("/matches/:id/verifications", controller.SubmitScore)
		authed.GET("/matches/:id/verifications", controller.GetMatchVerifications)
		authed.POST("/verifications/:id/respond", controller.Verify)
		authed.POST("/verifications/:id/resolve", controller.ResolveDispute)
	}
}
