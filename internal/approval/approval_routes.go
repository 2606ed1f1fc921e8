package approval

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
)

// ApprovalRoutes sets up approval request routes.
func ApprovalRoutes(router *gin.RouterGroup, db *gorm.DB, svc *Service, jwtSecret string) {
	controller := NewApprovalController(svc, db)

	authed := router.Group("")
	authed.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authed.POST("/matches/:id/approvals", controller.RequestTransition)
		authed.GET("/matches/:id/approvals", controller.GetMatchApprovals)
		authed.POST("/approvals/:id/respond", controller.Respond)
	}
}
