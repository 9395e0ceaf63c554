package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/booking"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/database"
	"github.com/summitprep/satprep-backend/internal/email"
	"github.com/summitprep/satprep-backend/internal/handler"
	"github.com/summitprep/satprep-backend/internal/logger"
	"github.com/summitprep/satprep-backend/internal/outbox"
	"github.com/summitprep/satprep-backend/internal/repository"
	"github.com/summitprep/satprep-backend/internal/router"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
	"github.com/summitprep/satprep-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Summit Prep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	offeringRepo := repository.NewOfferingRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	ambassadorRepo := repository.NewAmbassadorRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// ─── Outbound Integrations ────────────────────────────────────────
	emitter := outbox.NewRedisEmitter(rdb)
	emailSender := email.NewSender(cfg)
	bookingClient := booking.NewClient(cfg)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService, emitter, log)
	adminService := service.NewAdminService(adminRepo, roleRepo)
	adminUserService := service.NewAdminUserService(pool)
	adminRoleService := service.NewAdminRoleService(roleRepo)
	scheduleService := service.NewScheduleService(studentRepo, offeringRepo, cfg, log)
	offeringService := service.NewOfferingService(offeringRepo, studentRepo, log)
	couponService := service.NewCouponService(couponRepo, log)
	ambassadorService := service.NewAmbassadorService(ambassadorRepo, log)
	chatService := service.NewChatService(chatRepo, rdb, log)
	dashboardService := service.NewDashboardService(dashboardRepo, log)
	settingService := service.NewSettingService(settingRepo, log)
	paymentService := service.NewPaymentService(studentRepo, couponService, emitter, cfg, log)
	registrationService := service.NewRegistrationService(
		studentRepo, ambassadorRepo, scheduleService, authService, bookingClient, emitter, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, adminService),
		Registration:  handler.NewRegistrationHandler(registrationService),
		StudentPortal: handler.NewStudentPortalHandler(scheduleService, offeringService, registrationService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService, registrationService),
		Payment:       handler.NewPaymentHandler(paymentService, couponService),
		Offering:      handler.NewOfferingHandler(offeringService),
		Coupon:        handler.NewCouponHandler(couponService),
		Ambassador:    handler.NewAmbassadorHandler(ambassadorService),
		Chat:          handler.NewChatHandler(chatService, studentService, adminService),
		WS:            handler.NewWSHandler(chatService, studentService, adminService, log, cfg.AllowedOrigins),
		Booking:       handler.NewBookingHandler(bookingClient),
		AdminUser:     handler.NewAdminUserHandler(adminUserService),
		AdminRole:     handler.NewAdminRoleHandler(adminRoleService),
		Setting:       handler.NewSettingHandler(settingService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		System:        handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	emailWorker := worker.NewEmailWorker(rdb, emailSender, cfg, log)
	go emailWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the outbox to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
