package main

import (
	"context"
	"fmt"
	"os"

	"gympro-backend/cache"
	"gympro-backend/config"
	"gympro-backend/controllers"
	"gympro-backend/models"
	"gympro-backend/repository"
	"gympro-backend/repository/memory"
	"gympro-backend/repository/postgres"
	"gympro-backend/routes"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	var policy models.ExpiryPolicy = models.EndDateExpiry{}
	if cfg.FreezeExtendsExpiry {
		policy = models.FreezeExtendedExpiry{Limit: models.MaxFreezeAllowanceDays * models.Day}
	}

	lifecycle := services.NewLifecycleService(store.Memberships, policy)
	memberService := services.NewMemberService(store, logger)
	membershipService := services.NewMembershipService(store, logger)
	paymentService := services.NewPaymentService(store, logger)
	attendanceService := services.NewAttendanceService(store, logger)
	dashboardService := services.NewDashboardService(store, lifecycle)
	authService := services.NewAuthService(store.Users, utils.BcryptHasher{Cost: cfg.BcryptCost}, cfg.LoginRatePerMinute, logger)

	if err := membershipService.SeedDefaultTypes(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to seed membership types")
	}
	if err := authService.EnsureAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
		logger.WithError(err).Fatal("Failed to create admin login")
	}

	var reminderService *services.ReminderService
	if cfg.RemindersEnabled() {
		sender := services.NewTwilioSender(services.TwilioConfig{
			AccountSID:     cfg.TwilioAccountSID,
			AuthToken:      cfg.TwilioAuthToken,
			PhoneNumber:    cfg.TwilioPhoneNumber,
			WhatsAppNumber: cfg.TwilioWhatsAppNumber,
		})
		reminderService = services.NewReminderService(dashboardService, store.Reminders, sender, cfg.ReminderDays, logger)
		if err := reminderService.Start(cfg.ReminderSchedule); err != nil {
			logger.WithError(err).Fatal("Failed to start reminder scheduler")
		}
		defer reminderService.Stop()
	} else {
		logger.Info("Twilio is not configured, expiry reminders disabled")
	}

	dashboard := &controllers.DashboardController{
		Dashboard: dashboardService,
		CacheTTL:  cfg.DashboardCacheTTL,
		Logger:    logger,
	}
	if cfg.CacheEnabled() {
		c := cache.New(ctx, cfg.CacheHost, cfg.CachePort, cfg.CachePassword, logger)
		defer c.Close()
		dashboard.Cache = c
	}

	tokens := utils.TokenConfig{Secret: cfg.JWTSecret, Expiry: cfg.JWTExpiry}
	r := routes.SetupRouter(routes.Controllers{
		Auth: &controllers.AuthController{Auth: authService, Tokens: tokens, Logger: logger},
		Members: &controllers.MemberController{
			Members:     memberService,
			Memberships: membershipService,
			Payments:    paymentService,
			Attendance:  attendanceService,
			Lifecycle:   lifecycle,
			Clock:       services.SystemClock,
			Logger:      logger,
		},
		Membership: &controllers.MembershipController{
			Memberships: membershipService,
			Lifecycle:   lifecycle,
			Clock:       services.SystemClock,
			Logger:      logger,
		},
		Payments:   &controllers.PaymentController{Payments: paymentService, Logger: logger},
		Attendance: &controllers.AttendanceController{Attendance: attendanceService, Logger: logger},
		Dashboard:  dashboard,
		Reports:    &controllers.ReportController{Dashboard: dashboardService, Logger: logger},
		Reminders:  &controllers.ReminderController{Reminders: reminderService, Logger: logger},
	}, cfg.CORSOrigins, tokens, logger)

	printRoutes(r)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func openStore(cfg *config.Config, logger *logrus.Logger) (*repository.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}
	db, err := config.ConnectDB(cfg.DBURL, logger)
	if err != nil {
		return nil, err
	}
	return postgres.NewStore(db), nil
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
