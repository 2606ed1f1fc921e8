package match

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
)

// MatchRoutes sets up match read/create routes.
func MatchRoutes(router *gin.RouterGroup, db *gorm.DB, teamRepo team.TeamRepository, jwtSecret string) {
	repo := NewGormMatchRepository(db)
	controller := NewMatchController(repo, teamRepo)

	matches := router.Group("/matches")
	matches.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		matches.POST("", controller.CreateMatch)
		matches.GET("", controller.GetMatches)
		matches.GET("/:id", controller.GetMatchByID)
	}
}
