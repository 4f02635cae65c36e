package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/openlearn/insights-api/api/swagger"
	"github.com/openlearn/insights-api/internal/handler"
	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/repository"
	"github.com/openlearn/insights-api/internal/service"
	"github.com/openlearn/insights-api/pkg/cache"
	"github.com/openlearn/insights-api/pkg/config"
	"github.com/openlearn/insights-api/pkg/database"
	"github.com/openlearn/insights-api/pkg/jobs"
	"github.com/openlearn/insights-api/pkg/logger"
	corsmiddleware "github.com/openlearn/insights-api/pkg/middleware/cors"
	reqidmiddleware "github.com/openlearn/insights-api/pkg/middleware/requestid"
	"github.com/openlearn/insights-api/pkg/storage"
)

// @title OpenLearn Insights API
// @version 1.0.0
// @description Read-optimized reporting API over pipeline-produced learning analytics
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Engagement.CacheTTL, logr, cfg.Engagement.CacheEnabled)

	engagementRepo := repository.NewEngagementRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	engagementSvc := service.NewEngagementService(engagementRepo, cacheSvc, metricsSvc, cfg.Engagement, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, cacheSvc, metricsSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, metricsSvc, logr)
	problemSvc := service.NewProblemService(problemRepo, cacheSvc, metricsSvc, logr)
	videoSvc := service.NewVideoService(videoRepo, cacheSvc, metricsSvc, logr)

	engagementHandler := handler.NewEngagementHandler(engagementSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	problemHandler := handler.NewProblemHandler(problemSvc)
	videoHandler := handler.NewVideoHandler(videoSvc)

	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	reportHandler := handler.NewReportHandler(nil)
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		reportSvc, queue, err := buildReportStack(ctx, cfg, db, engagementSvc, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report stack", "error", err)
		}
		reportQueue = queue
		reportHandler = handler.NewReportHandler(reportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.Auth.Enabled {
		api.Use(middleware.Auth(cfg.Auth.Secret))
	}

	courses := api.Group("/courses/:course_id")
	{
		courses.GET("/activity", courseHandler.Activity)
		courses.GET("/summary", courseHandler.Summary)
		courses.GET("/programs", courseHandler.Programs)
		courses.GET("/enrollment", enrollmentHandler.Daily)
		courses.GET("/enrollment/modes", enrollmentHandler.Modes)
		courses.GET("/enrollment/genders", enrollmentHandler.Genders)
		courses.GET("/enrollment/education", enrollmentHandler.Education)
		courses.GET("/enrollment/birth_years", enrollmentHandler.BirthYears)
		courses.GET("/enrollment/locations", enrollmentHandler.Locations)
		courses.GET("/learner_engagement", engagementHandler.LearnerSummaries)
		courses.GET("/engagement_ranges", engagementHandler.MetricRanges)
		courses.GET("/videos", videoHandler.CourseVideos)
	}

	api.GET("/learners/:username/engagement_timeline", engagementHandler.Timeline)
	api.GET("/status", metricsHandler.System)

	problems := api.Group("/problems/:module_id")
	{
		problems.GET("/answer_distribution", problemHandler.AnswerDistribution)
		problems.GET("/grade_distribution", problemHandler.GradeDistribution)
		problems.GET("/sequential_open", problemHandler.SequentialOpen)
		problems.GET("/tags", problemHandler.Tags)
	}

	api.GET("/videos/:video_id/timeline", videoHandler.Timeline)

	reports := api.Group("/reports")
	{
		reports.POST("", reportHandler.Create)
		reports.GET("/download", reportHandler.Download)
		reports.GET("/:job_id", reportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}

func buildReportStack(ctx context.Context, cfg *config.Config, db *sqlx.DB, engagementSvc *service.EngagementService, logr *zap.Logger) (*service.ReportService, *jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(engagementSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	reportRepo := repository.NewReportRepository(db)
	worker := service.NewReportWorker(reportRepo, exporter, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(reportRepo, queue, exporter, nil, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)

	return reportSvc, queue, nil
}
