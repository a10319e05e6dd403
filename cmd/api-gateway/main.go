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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campuseye/attendance-api/api/swagger"
	"github.com/campuseye/attendance-api/internal/handler"
	"github.com/campuseye/attendance-api/internal/middleware"
	"github.com/campuseye/attendance-api/internal/models"
	"github.com/campuseye/attendance-api/internal/recognizer"
	"github.com/campuseye/attendance-api/internal/repository"
	"github.com/campuseye/attendance-api/internal/service"
	"github.com/campuseye/attendance-api/pkg/cache"
	"github.com/campuseye/attendance-api/pkg/config"
	"github.com/campuseye/attendance-api/pkg/database"
	"github.com/campuseye/attendance-api/pkg/jobs"
	"github.com/campuseye/attendance-api/pkg/logger"
	corsmiddleware "github.com/campuseye/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuseye/attendance-api/pkg/middleware/requestid"
	"github.com/campuseye/attendance-api/pkg/storage"
)

// @title CampusEye Attendance API
// @version 1.0.0
// @description Face recognition backed attendance tracking for campus courses
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis is optional: without it the summary cache degrades to no-op.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	facesStore, err := storage.NewImageStore(cfg.Recognition.FacesDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare faces directory", "error", err)
	}
	capturesStore, err := storage.NewImageStore(cfg.Recognition.CapturesDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare captures directory", "error", err)
	}

	faceClient := recognizer.New(cfg.Recognition.ServiceURL, cfg.Recognition.CompareTimeout)
	downloadSigner := storage.NewDownloadSigner(cfg.JWT.Secret, cfg.Recognition.DownloadTokenTTL)

	studentRepo := repository.NewStudentRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	logRepo := repository.NewAttendanceLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	auditQueue := jobs.NewQueue("attendance-audit", auditLogHandler(logRepo, logr), jobs.QueueConfig{
		Workers:    cfg.AuditLog.Workers,
		MaxRetries: cfg.AuditLog.MaxRetries,
		RetryDelay: cfg.AuditLog.RetryDelay,
		Logger:     logr,
	})

	validate := validator.New()
	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(lecturerRepo, studentRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentService := service.NewStudentService(studentRepo, facesStore, downloadSigner, validate, logr)
	lecturerService := service.NewLecturerService(lecturerRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, lecturerRepo, auditQueue, validate, logr)
	recognitionService := service.NewRecognitionService(
		studentRepo, attendanceRepo, faceClient, facesStore, capturesStore,
		auditQueue, metricsService, logr,
		service.RecognitionConfig{MatchThreshold: cfg.Recognition.MatchThreshold},
	)
	reportService := service.NewReportService(attendanceRepo, cacheRepo, logr, cfg.Reports.CacheTTL)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	lecturerHandler := handler.NewLecturerHandler(lecturerService)
	courseHandler := handler.NewCourseHandler(courseService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	recognitionHandler := handler.NewRecognitionHandler(recognitionService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db, faceClient)
	fileHandler := handler.NewFileHandler(downloadSigner, facesStore)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		// Account creation is open, matching kiosk-style onboarding.
		// Lecturer accounts always start without the admin flag.
		api.POST("/students", studentHandler.Create)
		api.POST("/lecturers", lecturerHandler.Create)

		// Auth carried by the signed token rather than a JWT.
		api.GET("/files/faces", fileHandler.Face)

		authed := api.Group("")
		authed.Use(middleware.JWT(authService))
		{
			authed.GET("/students", studentHandler.List)
			authed.GET("/students/:id", studentHandler.Get)

			authed.GET("/lecturers", lecturerHandler.List)
			authed.GET("/lecturers/:id", lecturerHandler.Get)

			authed.GET("/courses", courseHandler.List)
			authed.GET("/courses/:id", courseHandler.Get)

			authed.GET("/attendance/me", middleware.RequireRoles(models.RoleStudent), attendanceHandler.Me)

			lecturerOnly := authed.Group("")
			lecturerOnly.Use(middleware.RequireRoles(models.RoleLecturer))
			{
				// Reference images drive identification, so only
				// lecturers may register or fetch them.
				lecturerOnly.POST("/students/:id/face", studentHandler.RegisterFace)
				lecturerOnly.GET("/students/:id/face", studentHandler.FaceImageLink)

				lecturerOnly.POST("/courses", courseHandler.Create)
				lecturerOnly.GET("/enrollments", enrollmentHandler.List)
				lecturerOnly.POST("/enrollments", enrollmentHandler.Create)
				lecturerOnly.POST("/attendance", attendanceHandler.Mark)
				lecturerOnly.DELETE("/attendance/:id", attendanceHandler.Delete)
				lecturerOnly.POST("/recognition/identify", recognitionHandler.Identify)
				lecturerOnly.GET("/reports/summary", reportHandler.Summary)
				lecturerOnly.GET("/reports/export", reportHandler.Export)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// auditLogHandler persists queued attendance audit rows.
func auditLogHandler(repo *repository.AttendanceLogRepository, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(models.AttendanceLog)
		if !ok {
			logr.Sugar().Errorw("unexpected audit payload type", "job_id", job.ID, "type", job.Type)
			return nil
		}
		return repo.Insert(ctx, &entry)
	}
}
