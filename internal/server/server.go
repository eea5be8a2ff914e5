package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsgrid/facilitypulse/internal/config"
	"github.com/opsgrid/facilitypulse/internal/cron"
	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
	obslogger "github.com/opsgrid/facilitypulse/internal/observability/logger"
	obsmetrics "github.com/opsgrid/facilitypulse/internal/observability/metrics"
	obstracing "github.com/opsgrid/facilitypulse/internal/observability/tracing"
	snapshotdomain "github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {}),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	facilityRepo facilitydomain.Repository
	snapshotRepo snapshotdomain.Repository
	cron         *cron.Controller
}

type Params struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	FacilityRepo facilitydomain.Repository
	SnapshotRepo snapshotdomain.Repository
	Cron         *cron.Controller
}

func NewServer(p Params) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		facilityRepo: p.FacilityRepo,
		snapshotRepo: p.SnapshotRepo,
		cron:         p.Cron,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/health", s.HealthCheck)
	s.engine.GET("/api/v1/public/summary", s.PublicSummary)
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/api/v1")

	v1.GET("/snapshots/count", s.Authenticate(SchemeBasic, SchemeAPIKey), s.SnapshotCount)
	v1.GET("/snapshots/latest", s.Authenticate(SchemeBasic, SchemeAPIKey), s.LatestSnapshot)
	v1.GET("/snapshots", s.Authenticate(SchemeBasic, SchemeAPIKey), s.ListSnapshots)

	v1.GET("/facilities/:id/history", s.Authenticate(SchemeBasic, SchemeAPIKey), s.FacilityHistory)
	v1.GET("/facilities/:id/aggregate", s.Authenticate(SchemeBasic, SchemeAPIKey, SchemeBearer), s.FacilityAggregate)

	v2 := s.engine.Group("/api/v2")
	v2.GET("/facilities/:id/metrics", s.Authenticate(SchemeBasic, SchemeAPIKey, SchemeBearer), s.FacilityMetricsV2)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/cron")

	admin.POST("/start", s.CronStart)
	admin.POST("/pause", s.CronPause)
	admin.POST("/resume", s.CronResume)
	admin.POST("/stop", s.CronStop)
	admin.GET("/status", s.CronStatus)
}
