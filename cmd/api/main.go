package main

import (
	"context"
	"errors"
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

	_ "github.com/tafita2023/inata-api/api/swagger"
	"github.com/tafita2023/inata-api/internal/handler"
	"github.com/tafita2023/inata-api/internal/middleware"
	"github.com/tafita2023/inata-api/internal/repository"
	"github.com/tafita2023/inata-api/internal/service"
	"github.com/tafita2023/inata-api/pkg/cache"
	"github.com/tafita2023/inata-api/pkg/config"
	"github.com/tafita2023/inata-api/pkg/database"
	"github.com/tafita2023/inata-api/pkg/export"
	"github.com/tafita2023/inata-api/pkg/logger"
	corsmiddleware "github.com/tafita2023/inata-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tafita2023/inata-api/pkg/middleware/requestid"
	"github.com/tafita2023/inata-api/pkg/payment"
	"github.com/tafita2023/inata-api/pkg/storage"
)

// @title INATA API
// @version 1.0.0
// @description School administration backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	media, err := storage.NewMediaStore(cfg.Media.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media store", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	salaryRepo := repository.NewSalaryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, invitationRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	invitationSvc := service.NewInvitationService(invitationRepo, classRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, media, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, userRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, subjectRepo, cacheRepo, cfg.Timetable.CacheTTL, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, subjectRepo, userRepo, validate, logr)
	promotionSvc := service.NewPromotionService(userRepo, classRepo, gradeRepo, logr)
	feeSvc := service.NewFeeService(feeRepo, userRepo, classRepo, paymentRepo, validate, logr).WithMetrics(metricsSvc)

	checkoutClient := payment.NewClient(cfg.Payment.SecretKey)
	verifier := payment.NewSignatureVerifier(cfg.Payment.WebhookSecret, cfg.Payment.SignatureMaxSkew)
	paymentSvc := service.NewPaymentService(paymentRepo, feeRepo, userRepo, checkoutClient, verifier, service.PaymentConfig{
		Currency:    cfg.Payment.Currency,
		FrontendURL: cfg.Payment.FrontendURL,
	}, validate, logr).WithMetrics(metricsSvc)

	absenceSvc := service.NewAbsenceService(absenceRepo, userRepo, validate, logr)
	renderer := export.NewTranscriptRenderer(export.Letterhead{
		InstitutionName: cfg.Transcript.InstitutionName,
		Program:         cfg.Transcript.Program,
		DirectorName:    cfg.Transcript.DirectorName,
		FooterAddress:   cfg.Transcript.FooterAddress,
	})
	transcriptSvc := service.NewTranscriptService(gradeRepo, userRepo, classRepo, renderer, logr)
	salarySvc := service.NewSalaryService(salaryRepo, userRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, subjectRepo, media, validate, logr)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		User:       handler.NewUserHandler(userSvc),
		Invitation: handler.NewInvitationHandler(invitationSvc),
		Class:      handler.NewClassHandler(classSvc),
		Subject:    handler.NewSubjectHandler(subjectSvc),
		Room:       handler.NewRoomHandler(roomSvc),
		Schedule:   handler.NewScheduleHandler(scheduleSvc, userSvc),
		Grade:      handler.NewGradeHandler(gradeSvc),
		Promotion:  handler.NewPromotionHandler(promotionSvc),
		Fee:        handler.NewFeeHandler(feeSvc),
		Payment:    handler.NewPaymentHandler(paymentSvc),
		Absence:    handler.NewAbsenceHandler(absenceSvc),
		Transcript: handler.NewTranscriptHandler(transcriptSvc),
		Salary:     handler.NewSalaryHandler(salarySvc),
		Event:      handler.NewEventHandler(eventSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc, userSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Media.MaxUploadSize
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc, userRepo)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
