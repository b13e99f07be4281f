package http

import (
	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/applications"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/bookings"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	feesrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/news"
	resrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/users"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
	"github.com/derkdev976-web/davel-library-sub001/internal/reservations"
)

// RouterConfig holds all dependencies needed to construct the router.
// Using a config struct improves testability and reduces parameter count.
type RouterConfig struct {
	Database *database.Database

	// Repositories
	Books        *books.Repository
	Users        *users.Repository
	Reservations *resrepo.Repository
	Fees         *feesrepo.Repository
	Bookings     *bookings.Repository
	News         *news.Repository
	Applications *applications.Repository

	// Domain services
	ReservationManager *reservations.Manager
	FeeEngine          *fees.Engine
	Notifier           *notifier.Notifier

	// Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool
}
