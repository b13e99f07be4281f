// Package http wires the Gin router, controllers and middleware for the
// library API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	staff := auth.RequireStaff()
	admin := auth.RequireRole(entities.UserRoleAdmin)

	// Controllers
	health := NewHealthController(cfg.Database)
	authController := NewAuthController(cfg.AuthService, cfg.SessionManager)
	booksController := NewBooksController(cfg.Books)
	reservationsController := NewReservationsController(cfg.Reservations, cfg.ReservationManager)
	feesController := NewFeesController(cfg.Fees, cfg.FeeEngine)
	bookingsController := NewBookingsController(cfg.Bookings, cfg.Users, cfg.Notifier)
	newsController := NewNewsController(cfg.News)
	applicationsController := NewApplicationsController(cfg.Applications, cfg.AuthService, cfg.Notifier)
	dashboardController := NewDashboardController(
		cfg.Books, cfg.Users, cfg.Reservations, cfg.Fees, cfg.Bookings, cfg.Applications)

	// Health endpoints
	router.GET("/health", health.Health)
	router.GET("/ping", health.Ping)

	// Auth endpoints
	router.POST("/setup", authController.Setup)
	router.POST("/api/auth/login", authController.Login)
	router.POST("/api/auth/logout", authController.Logout)
	router.GET("/api/auth/me", authController.Me)
	router.POST("/api/auth/password", authController.ChangePassword)

	// Membership applications (submission is public)
	router.POST("/api/applications", applicationsController.Submit)
	router.GET("/api/applications", staff, applicationsController.List)
	router.POST("/api/applications/:id/approve", staff, applicationsController.Approve)
	router.POST("/api/applications/:id/reject", staff, applicationsController.Reject)

	// Catalogue
	router.GET("/api/books", booksController.List)
	router.GET("/api/books/:id", booksController.Get)
	router.POST("/api/books", staff, booksController.Create)
	router.PUT("/api/books/:id", staff, booksController.Update)
	router.DELETE("/api/books/:id", admin, booksController.Delete)

	// Reservation lifecycle
	router.POST("/api/reservations", reservationsController.Create)
	router.GET("/api/reservations", reservationsController.List)
	router.GET("/api/reservations/:id", reservationsController.Get)
	router.PUT("/api/reservations/:id", staff, reservationsController.UpdateStatus)
	router.POST("/api/reservations/:id/approve", staff, reservationsController.Approve)
	router.POST("/api/reservations/:id/reject", staff, reservationsController.Reject)
	router.POST("/api/reservations/:id/activate", staff, reservationsController.Activate)
	router.POST("/api/reservations/:id/complete", staff, reservationsController.Complete)
	router.POST("/api/reservations/:id/cancel", reservationsController.Cancel)

	// Fees
	router.POST("/api/fees", staff, feesController.Assess)
	router.GET("/api/fees", feesController.List)
	router.GET("/api/fees/:id", feesController.Get)
	router.POST("/api/fees/:id/approve", staff, feesController.ApprovePayment)
	router.POST("/api/fees/:id/waive", admin, feesController.Waive)

	// Fee structures
	router.GET("/api/fee-structures", staff, feesController.ListStructures)
	router.POST("/api/fee-structures", admin, feesController.CreateStructure)
	router.PUT("/api/fee-structures/:id", admin, feesController.UpdateStructure)

	// Facility bookings
	router.POST("/api/bookings", bookingsController.Create)
	router.GET("/api/bookings", bookingsController.List)
	router.POST("/api/bookings/:id/confirm", staff, bookingsController.Confirm)
	router.POST("/api/bookings/:id/cancel", bookingsController.Cancel)

	// News
	router.GET("/api/news", newsController.List)
	router.GET("/api/news/:id", newsController.Get)
	router.POST("/api/news", staff, newsController.Create)
	router.PUT("/api/news/:id", staff, newsController.Update)
	router.POST("/api/news/:id/publish", staff, newsController.Publish)
	router.DELETE("/api/news/:id", admin, newsController.Delete)

	// Staff dashboard
	router.GET("/api/dashboard/stats", staff, dashboardController.Stats)

	return router
}
