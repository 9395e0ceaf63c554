package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/handler"
	"github.com/summitprep/satprep-backend/internal/middleware"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Registration  *handler.RegistrationHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Payment       *handler.PaymentHandler
	Offering      *handler.OfferingHandler
	Coupon        *handler.CouponHandler
	Ambassador    *handler.AmbassadorHandler
	Chat          *handler.ChatHandler
	WS            *handler.WSHandler
	Booking       *handler.BookingHandler
	AdminUser     *handler.AdminUserHandler
	AdminRole     *handler.AdminRoleHandler
	Setting       *handler.SettingHandler
	Dashboard     *handler.DashboardHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Stripe-Signature"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
		publicAPI.GET("/offerings", handlers.StudentPortal.ListOfferings)
	}

	// Stripe calls this directly; signature verification replaces auth.
	router.POST("/api/v1/webhooks/stripe", handlers.Payment.StripeWebhook)

	// Rate limiter for registration and auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Registration & Approval (Public, Rate Limited) ─────────────
	enrollment := router.Group("/api/v1")
	enrollment.Use(authLimiter.Middleware())
	{
		enrollment.POST("/register", handlers.Registration.Register)
		enrollment.POST("/approval/:token/approve", handlers.Registration.ApproveEnrollment)
		enrollment.POST("/approval/:token/decline", handlers.Registration.DeclineEnrollment)
	}

	// ─── 2. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.POST("/student/password-reset", handlers.Auth.RequestPasswordReset)
		auth.POST("/student/password-reset/confirm", handlers.Auth.ConfirmPasswordReset)

		// Authenticated profile routes
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 3. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/schedule", handlers.StudentPortal.GetSchedule)
		studentAPI.GET("/offerings", handlers.StudentPortal.ListOfferings)
		studentAPI.PUT("/schedule/class-time", handlers.StudentPortal.ChangeClassTime)
		studentAPI.PUT("/schedule/diagnostic-test", handlers.StudentPortal.ChangeDiagnosticTest)
		studentAPI.POST("/approval/resend", handlers.StudentPortal.ResendApproval)

		studentAPI.POST("/checkout", handlers.Payment.CreateCheckout)
		studentAPI.POST("/coupons/check", handlers.Payment.CheckCoupon)

		studentAPI.GET("/chat/messages", handlers.Chat.GetStudentConversation)
		studentAPI.POST("/chat/messages", handlers.Chat.SendStudentMessage)
		studentAPI.POST("/chat/read", handlers.Chat.MarkStudentRead)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/student/chat",
			middleware.RequireStudentWSAuth(authService),
			handlers.WS.StudentChatStream,
		)
		ws.GET("/admin/chat/:email",
			middleware.RequireAdminWSAuth(authService),
			handlers.WS.AdminChatStream,
		)
	}

	// ─── 5. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Student management
		adminAPI.GET("/students",
			middleware.RequirePermission(string(model.PermissionStudentsRead)),
			handlers.StudentMgmt.ListStudents,
		)
		adminAPI.GET("/students/:id",
			middleware.RequirePermission(string(model.PermissionStudentsRead)),
			handlers.StudentMgmt.GetStudent,
		)
		adminAPI.PUT("/students/:id",
			middleware.RequirePermission(string(model.PermissionStudentsWrite)),
			handlers.StudentMgmt.UpdateStudent,
		)
		adminAPI.DELETE("/students/:id",
			middleware.RequirePermission(string(model.PermissionStudentsWrite)),
			handlers.StudentMgmt.DeleteStudent,
		)
		adminAPI.POST("/students/:id/approval/resend",
			middleware.RequirePermission(string(model.PermissionStudentsWrite)),
			handlers.StudentMgmt.ResendApproval,
		)

		// Booking platform reporting (read-only passthrough)
		adminAPI.GET("/booking/customers",
			middleware.RequirePermission(string(model.PermissionStudentsRead)),
			handlers.Booking.ListCustomers,
		)
		adminAPI.GET("/booking/appointments",
			middleware.RequirePermission(string(model.PermissionStudentsRead)),
			handlers.Booking.ListAppointments,
		)

		// Offering management (class times and diagnostic test dates)
		adminAPI.GET("/offerings",
			middleware.RequirePermission(string(model.PermissionOfferingsRead)),
			handlers.Offering.ListOfferings,
		)
		adminAPI.POST("/offerings",
			middleware.RequirePermission(string(model.PermissionOfferingsWrite)),
			handlers.Offering.CreateOffering,
		)
		adminAPI.PUT("/offerings/:id",
			middleware.RequirePermission(string(model.PermissionOfferingsWrite)),
			handlers.Offering.UpdateOffering,
		)
		adminAPI.DELETE("/offerings/:id",
			middleware.RequirePermission(string(model.PermissionOfferingsWrite)),
			handlers.Offering.DeleteOffering,
		)

		// Coupon management
		adminAPI.GET("/coupons",
			middleware.RequirePermission(string(model.PermissionCouponsRead)),
			handlers.Coupon.ListCoupons,
		)
		adminAPI.POST("/coupons",
			middleware.RequirePermission(string(model.PermissionCouponsWrite)),
			handlers.Coupon.CreateCoupon,
		)
		adminAPI.PUT("/coupons/:id",
			middleware.RequirePermission(string(model.PermissionCouponsWrite)),
			handlers.Coupon.UpdateCoupon,
		)
		adminAPI.DELETE("/coupons/:id",
			middleware.RequirePermission(string(model.PermissionCouponsWrite)),
			handlers.Coupon.DeleteCoupon,
		)
		adminAPI.GET("/coupons/:id/usages",
			middleware.RequirePermission(string(model.PermissionCouponsRead)),
			handlers.Coupon.ListCouponUsages,
		)

		// Ambassador management
		adminAPI.GET("/ambassadors",
			middleware.RequirePermission(string(model.PermissionAmbassadorsRead)),
			handlers.Ambassador.ListAmbassadors,
		)
		adminAPI.POST("/ambassadors",
			middleware.RequirePermission(string(model.PermissionAmbassadorsWrite)),
			handlers.Ambassador.CreateAmbassador,
		)
		adminAPI.PUT("/ambassadors/:id",
			middleware.RequirePermission(string(model.PermissionAmbassadorsWrite)),
			handlers.Ambassador.UpdateAmbassador,
		)

		// Chat inbox
		adminAPI.GET("/chat/conversations",
			middleware.RequirePermission(string(model.PermissionChat)),
			handlers.Chat.ListConversations,
		)
		adminAPI.GET("/chat/conversations/:email",
			middleware.RequirePermission(string(model.PermissionChat)),
			handlers.Chat.GetAdminConversation,
		)
		adminAPI.POST("/chat/conversations/:email/read",
			middleware.RequirePermission(string(model.PermissionChat)),
			handlers.Chat.MarkAdminRead,
		)
		adminAPI.POST("/chat/conversations/:email",
			middleware.RequirePermission(string(model.PermissionChat)),
			handlers.Chat.SendAdminMessage,
		)

		// Admin User Management
		adminAPI.GET("/users",
			middleware.RequirePermission(string(model.PermissionAdminsRead)),
			handlers.AdminUser.ListAdmins,
		)
		adminAPI.POST("/users",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.CreateAdmin,
		)
		adminAPI.PUT("/users/:id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.UpdateAdmin,
		)
		adminAPI.DELETE("/users/:id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.DeleteAdmin,
		)
		// Roles for selection (using read permission as it's needed for viewing user form)
		adminAPI.GET("/roles",
			middleware.RequirePermission(string(model.PermissionAdminsRead)),
			handlers.AdminUser.GetRoles,
		)

		// Admin Role Management
		adminAPI.GET("/roles/all",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.ListRoles,
		)
		adminAPI.GET("/roles/permissions",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.GetPermissions,
		)
		adminAPI.GET("/roles/:id",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.GetRole,
		)
		adminAPI.POST("/roles",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.CreateRole,
		)
		adminAPI.PUT("/roles/:id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.UpdateRole,
		)
		adminAPI.DELETE("/roles/:id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.DeleteRole,
		)

		// Dashboard
		adminAPI.GET("/dashboard",
			handlers.Dashboard.GetDashboardData, // Open to all admins
		)

		// System Monitoring
		adminAPI.GET("/system/metrics",
			handlers.System.SystemMetricsSSE, // Open to all admins
		)

		// App Settings Routes
		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", middleware.RequirePermission(string(model.PermissionSettingsRead)), handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", middleware.RequirePermission(string(model.PermissionSettingsWrite)), handlers.Setting.UpdateSettings)
		}
	}

	return router
}
