package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"creator-performance-ledger/internal/config"
	handler "creator-performance-ledger/internal/handlers"
	"creator-performance-ledger/internal/repository"
	"creator-performance-ledger/internal/services/columns"
	"creator-performance-ledger/internal/services/importer"
	"creator-performance-ledger/internal/services/ledger"
	"creator-performance-ledger/internal/services/notify"
	"creator-performance-ledger/internal/services/reset"
	"creator-performance-ledger/internal/services/rewards"
	"creator-performance-ledger/internal/services/schedule"
)

type Deps struct {
	Config    *config.Config
	Log       *logrus.Logger
	Notifier  notify.Notifier
	Keywords  columns.Keywords
	Scheduler *reset.Scheduler
}

type Handlers struct {
	Import   *handler.ImportHandler
	Ledger   *handler.LedgerHandler
	Schedule *handler.ScheduleHandler
	Rollup   *handler.RollupHandler
	Reset    *handler.ResetHandler
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, d Deps) {
	memberRepo := repository.NewMemberRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	ledgerEngine := ledger.NewEngine(balanceRepo, d.Log.WithField("module", "ledger"))
	reconciler := schedule.NewReconciler(scheduleRepo, d.Log.WithField("module", "schedule"))
	importService := importer.NewService(
		memberRepo,
		ledgerEngine,
		reconciler,
		d.Notifier,
		d.Keywords,
		d.Log.WithField("module", "importer"),
	)
	aggregator := rewards.NewAggregator(struct {
		*repository.MemberRepository
		*repository.BalanceRepository
		*repository.ScheduleRepository
	}{memberRepo, balanceRepo, scheduleRepo}, d.Config.RewardThreshold)

	Mount(r, Handlers{
		Import:   handler.NewImportHandler(importService, d.Log),
		Ledger:   handler.NewLedgerHandler(ledgerEngine, balanceRepo, memberRepo, d.Log),
		Schedule: handler.NewScheduleHandler(reconciler, memberRepo, d.Log),
		Rollup:   handler.NewRollupHandler(aggregator, d.Log),
		Reset:    handler.NewResetHandler(d.Scheduler, d.Log),
	}, d.Log)
}

// Mount attaches the route table to r.
func Mount(r *gin.Engine, h Handlers, log logrus.FieldLogger) {
	r.Use(handler.RequestMetrics(log))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/imports", h.Import.Upload)

	creators := api.Group("/creators/:id")
	creators.GET("/balance", h.Ledger.GetBalance)
	creators.POST("/balance", h.Ledger.UpdateBalance)
	creators.PUT("/schedule", h.Schedule.Update)
	creators.POST("/schedule/deactivate", h.Schedule.Deactivate)

	api.GET("/rollups/:scope/:nodeId", h.Rollup.Get)
	api.POST("/ledger/monthly-reset", h.Reset.RunNow)
}
