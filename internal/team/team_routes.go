package team

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
)

// TeamRoutes sets up team routes.
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewGormTeamRepository(db)
	controller := NewTeamController(repo)

	teams := router.Group("/teams")
	teams.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		teams.POST("", controller.CreateTeam)
		teams.GET("/:id", controller.GetTeam)
		teams.POST("/:id/members", controller.AddMember)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
