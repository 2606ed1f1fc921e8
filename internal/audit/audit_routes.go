package audit

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
)

// AuditRoutes sets up audit history routes.
func AuditRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewGormAuditRepository(db)
	controller := NewAuditController(repo)

	authed := router.Group("")
	authed.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authed.GET("/matches/:id/audit", controller.GetMatchAudit)
		authed.GET("/audit", controller.GetAudit)
	}
}
