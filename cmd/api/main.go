package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sms-core-api/api/swagger"
	"github.com/noah-isme/sms-core-api/internal/handler"
	"github.com/noah-isme/sms-core-api/internal/middleware"
	"github.com/noah-isme/sms-core-api/internal/repository"
	"github.com/noah-isme/sms-core-api/internal/service"
	"github.com/noah-isme/sms-core-api/pkg/cache"
	"github.com/noah-isme/sms-core-api/pkg/config"
	"github.com/noah-isme/sms-core-api/pkg/database"
	"github.com/noah-isme/sms-core-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sms-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sms-core-api/pkg/middleware/requestid"
)

// @title SMS Core API
// @version 0.1.0
// @description Student management core: students, courses, enrollments, attendance
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			defer cacheRepo.Close()
		}
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, cacheSvc, validate, logr)

	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	students := api.Group("/students")
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.GET("/by-student-id/:studentId", studentHandler.GetByStudentID)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.PATCH("/:id/status", studentHandler.ChangeStatus)
	students.DELETE("/:id", studentHandler.Delete)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.POST("", courseHandler.Create)
	courses.GET("/by-code/:code", courseHandler.GetByCode)
	courses.GET("/:id", courseHandler.Get)
	courses.PUT("/:id", courseHandler.Update)
	courses.DELETE("/:id", courseHandler.Delete)
	courses.GET("/:id/enrollment-count", enrollmentHandler.EnrolledCount)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", enrollmentHandler.List)
	enrollments.POST("", enrollmentHandler.Enroll)
	enrollments.GET("/:id", enrollmentHandler.Get)
	enrollments.PATCH("/:id/grade", enrollmentHandler.UpdateGrade)
	enrollments.POST("/:id/drop", enrollmentHandler.Drop)
	enrollments.POST("/:id/complete", enrollmentHandler.Complete)
	enrollments.GET("/:id/attendance-summary", attendanceHandler.Summary)
	enrollments.GET("/:id/attendance-percentage", attendanceHandler.Percentage)

	attendance := api.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.POST("", attendanceHandler.Mark)
	attendance.GET("/:id", attendanceHandler.Get)
	attendance.PUT("/:id", attendanceHandler.Update)
	attendance.DELETE("/:id", attendanceHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
