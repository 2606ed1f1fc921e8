package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/JayPadhiyar-42/scorepact/config"
	_ "github.com/JayPadhiyar-42/scorepact/docs"
	"github.com/JayPadhiyar-42/scorepact/internal/approval"
	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/notification"
	"github.com/JayPadhiyar-42/scorepact/internal/scoring"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
	"github.com/JayPadhiyar-42/scorepact/internal/verification"
	"github.com/JayPadhiyar-42/scorepact/routes"
)

// @title ScorePact REST API
// @version 1.0
// @description Two-party consensus for cricket match progression and score finalization.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()
	db := config.DB

	err := db.AutoMigrate(
		&user.User{}, &user.Role{},
		&team.Team{}, &team.TeamMember{},
		&match.Match{},
		&approval.ApprovalRequest{},
		&verification.ScoreVerification{},
		&scoring.BallEvent{}, &scoring.PlayerStat{},
		&audit.Entry{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	auditRepo := audit.NewGormAuditRepository(db)
	notifier := notification.NewLogNotifier()
	aggregator := scoring.NewAggregator(db, auditRepo)
	balls := scoring.NewGormBallRepository(db, auditRepo)
	teamRepo := team.NewGormTeamRepository(db)

	approvalSvc := approval.NewService(db, auditRepo, notifier, aggregator)
	verificationSvc := verification.NewService(db, auditRepo, notifier, aggregator)

	sweepCfg := approval.SweeperConfig{
		Interval:    time.Duration(cfg.Scheduler.SweepIntervalMinutes) * time.Minute,
		TxTimeout:   time.Duration(cfg.Scheduler.TxTimeoutSeconds) * time.Second,
		MaxAttempts: cfg.Scheduler.MaxRetryAttempts,
		BaseDelay:   time.Duration(cfg.Scheduler.RetryBaseDelayMS) * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
	sweeper := approval.NewSweeper(
		approval.NewSweepStore(db, approvalSvc),
		approval.SystemClock(),
		notifier,
		aggregator,
		auditRepo,
		sweepCfg,
		log.New(os.Stderr, "[sweeper] ", log.LstdFlags),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	r := routes.SetupRoutes(routes.Deps{
		DB:              db,
		Config:          cfg,
		TeamRepo:        teamRepo,
		ApprovalSvc:     approvalSvc,
		VerificationSvc: verificationSvc,
		Balls:           balls,
		Aggregator:      aggregator,
	})

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
