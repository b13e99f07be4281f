package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/config"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/applications"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/bookings"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	feesrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/news"
	resrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/users"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
	http_controllers "github.com/derkdev976-web/davel-library-sub001/internal/http"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
	"github.com/derkdev976-web/davel-library-sub001/internal/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/scheduler"
	"github.com/derkdev976-web/davel-library-sub001/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the sweep and task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Davel Library v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	booksRepo := books.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	reservationsRepo := resrepo.NewRepository(db.DB)
	feesRepo := feesrepo.NewRepository(db.DB)
	bookingsRepo := bookings.NewRepository(db.DB)
	newsRepo := news.NewRepository(db.DB)
	applicationsRepo := applications.NewRepository(db.DB)

	// Email delivery. Without SMTP configuration notifications are still
	// recorded in the outbox but nothing is sent.
	var mailer notifier.Mailer
	var smtpMailer *notifier.SMTPMailer
	if cfg.SMTP.Host != "" {
		smtpMailer, err = notifier.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			log.Fatalf("Failed to initialize SMTP mailer: %v", err)
		}
		mailer = smtpMailer
		log.Printf("SMTP mailer configured for %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		log.Printf("WARNING: SMTP_HOST is not set. Notifications will be recorded but not delivered.")
	}

	notify := notifier.New(db.DB, mailer)

	// Background task queue for asynchronous notification delivery
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && smtpMailer != nil {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSendNotificationQueue(db.DB, smtpMailer),
		)
		notify.SetDispatcher(tasks.NewNotificationDispatcher(taskClient))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Domain services
	feeEngine := fees.NewEngine(db.DB, notify, cfg.Fees.GracePeriod)
	reservationManager := reservations.NewManager(db.DB, notify, feeEngine)

	// Overdue sweep
	var sweeper *scheduler.OverdueSweeper
	var sweepCancel context.CancelFunc
	if cfg.Sweep.Enabled {
		sweeper = scheduler.NewOverdueSweeper(db.DB, reservationManager, feeEngine, cfg.Sweep.Schedule)
		var sweepCtx context.Context
		sweepCtx, sweepCancel = context.WithCancel(context.Background())
		if err := sweeper.Start(sweepCtx); err != nil {
			log.Fatalf("Failed to start overdue sweep: %v", err)
		}
	}

	// Authentication
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	authService = auth.NewService(db.DB, cfg.Auth)

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST to /setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Books:              booksRepo,
		Users:              usersRepo,
		Reservations:       reservationsRepo,
		Fees:               feesRepo,
		Bookings:           bookingsRepo,
		News:               newsRepo,
		Applications:       applicationsRepo,
		ReservationManager: reservationManager,
		FeeEngine:          feeEngine,
		Notifier:           notify,
		AuthService:        authService,
		SessionManager:     sessionManager,
		AuthMiddleware:     authMiddleware,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Auth.SecureCookies,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweeper != nil {
			sweeper.Stop()
			sweepCancel()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
