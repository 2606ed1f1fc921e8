package scoring

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
)

// ScoringRoutes sets up ball event and stats routes.
func ScoringRoutes(router *gin.RouterGroup, db *gorm.DB, balls BallRepository, aggregator *Aggregator, teams team.TeamRepository, jwtSecret string) {
	controller := NewScoringController(db, balls, aggregator, teams)

	authed := router.Group("")
	authed.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authed.POST("/matches/:id/balls", controller.RecordBall)
		authed.GET("/matches/:id/balls", controller.GetBalls)
		authed.DELETE("/matches/:id/balls/last", controller.UndoLastBall)
		authed.GET("/matches/:id/stats", controller.GetStats)
		authed.POST("/matches/:id/stats/recompute", controller.RecomputeStats)
	}
}
