package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/JayPadhiyar-42/scorepact/config"
	"github.com/JayPadhiyar-42/scorepact/internal/approval"
	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/auth"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/scoring"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
	"github.com/JayPadhiyar-42/scorepact/internal/verification"
)

// Deps carries the shared services the route groups need. Everything else
// (repositories, controllers) is constructed inside each feature's routes.
type Deps struct {
	DB              *gorm.DB
	Config          *config.Config
	TeamRepo        team.TeamRepository
	ApprovalSvc     *approval.Service
	VerificationSvc *verification.Service
	Balls           scoring.BallRepository
	Aggregator      *scoring.Aggregator
}

func SetupRoutes(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "scorepact",
			"docs":    "/swagger/index.html",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtSecret := d.Config.JWT.Secret

	api := r.Group("/api")
	auth.AuthRoutes(api, d.DB, d.Config)
	user.UserRoutes(api, d.DB, jwtSecret)
	team.TeamRoutes(api, d.DB, jwtSecret)
	match.MatchRoutes(api, d.DB, d.TeamRepo, jwtSecret)
	approval.ApprovalRoutes(api, d.DB, d.ApprovalSvc, jwtSecret)
	verification.VerificationRoutes(api, d.DB, d.VerificationSvc, jwtSecret)
	scoring.ScoringRoutes(api, d.DB, d.Balls, d.Aggregator, d.TeamRepo, jwtSecret)
	audit.AuditRoutes(api, d.DB, jwtSecret)

	return r
}
