package routes

import (
	"gympro-backend/config"
	"gympro-backend/controllers"
	"gympro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Controllers bundles every handler set the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Members    *controllers.MemberController
	Membership *controllers.MembershipController
	Payments   *controllers.PaymentController
	Attendance *controllers.AttendanceController
	Dashboard  *controllers.DashboardController
	Reports    *controllers.ReportController
	Reminders  *controllers.ReminderController
}

func SetupRouter(h Controllers, origins []string, tokens utils.TokenConfig, logger *logrus.Logger) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			logger.WithError(err).Fatal("Failed to register validators")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
	}))

	r.Use(config.PerformanceLogger(logger))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)

		auth.Use(utils.AuthMiddleware(tokens))
		auth.GET("/me", h.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(tokens))
	{
		// Member routes
		members := api.Group("/members")
		{
			members.POST("", h.Members.CreateMember)
			members.GET("", h.Members.GetMembers)
			members.GET("/by-number/:number", h.Members.GetMemberByNumber)
			members.GET("/:id", h.Members.GetMember)
			members.PUT("/:id", h.Members.UpdateMember)
			members.DELETE("/:id", h.Members.DeleteMember)
			members.GET("/:id/memberships", h.Members.GetMemberMemberships)
			members.GET("/:id/payments", h.Members.GetMemberPayments)
			members.GET("/:id/attendance", h.Members.GetMemberAttendance)
		}

		// Membership plan routes
		types := api.Group("/membership-types")
		{
			types.GET("", h.Membership.GetMembershipTypes)
			types.POST("", h.Membership.CreateMembershipType)
			types.GET("/:id", h.Membership.GetMembershipType)
		}

		memberships := api.Group("/memberships")
		{
			memberships.POST("", h.Membership.Enroll)
			memberships.GET("/active", h.Membership.GetActiveMemberships)
			memberships.GET("/expiring", h.Membership.GetExpiringMemberships)
			memberships.POST("/:id/cancel", h.Membership.CancelMembership)
			memberships.POST("/:id/freezes", h.Membership.AddFreeze)
		}
		api.DELETE("/freezes/:id", h.Membership.RemoveFreeze)

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("", h.Payments.CreatePayment)
			payments.GET("/overdue", h.Payments.GetOverduePayments)
			payments.GET("/by-receipt/:receipt", h.Payments.GetPaymentByReceipt)
			payments.GET("/:id", h.Payments.GetPayment)
			payments.PUT("/:id/status", h.Payments.UpdatePaymentStatus)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("/check-in", h.Attendance.CheckIn)
			attendance.POST("/check-out", h.Attendance.CheckOut)
		}

		// Dashboard routes
		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", h.Dashboard.GetDashboardOverview)
			dashboard.GET("/attendance-trend", h.Reports.GetAttendanceTrend)
			dashboard.GET("/expiring", h.Reports.GetExpiringMemberships)
		}

		api.POST("/reminders/run", h.Reminders.SendExpiryReminders)
	}

	return r
}
