package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/database/applications"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/bookings"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	feesrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/fees"
	resrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/users"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// DashboardController aggregates operational counters for the staff
// dashboard.
type DashboardController struct {
	books        *books.Repository
	users        *users.Repository
	reservations *resrepo.Repository
	fees         *feesrepo.Repository
	bookings     *bookings.Repository
	applications *applications.Repository
}

func NewDashboardController(
	booksRepo *books.Repository,
	usersRepo *users.Repository,
	reservationsRepo *resrepo.Repository,
	feesRepo *feesrepo.Repository,
	bookingsRepo *bookings.Repository,
	applicationsRepo *applications.Repository,
) *DashboardController {
	return &DashboardController{
		books:        booksRepo,
		users:        usersRepo,
		reservations: reservationsRepo,
		fees:         feesRepo,
		bookings:     bookingsRepo,
		applications: applicationsRepo,
	}
}

// Stats returns the headline counters. Each counter degrades to zero on its
// own query error so one broken table does not blank the whole dashboard.
func (d *DashboardController) Stats(c *gin.Context) {
	totalBooks, _ := d.books.CountBooks()
	totalUsers, _ := d.users.CountUsers()
	pendingReservations, _ := d.reservations.CountByStatus(entities.ReservationStatusPending)
	activeLoans, _ := d.reservations.CountByStatus(entities.ReservationStatusActive)
	overdueLoans, _ := d.reservations.CountByStatus(entities.ReservationStatusOverdue)
	pendingApplications, _ := d.applications.CountPending()
	upcomingBookings, _ := d.bookings.CountUpcoming(time.Now())
	outstandingFees, _ := d.fees.OutstandingTotal()

	c.JSON(http.StatusOK, gin.H{
		"total_books":          totalBooks,
		"total_users":          totalUsers,
		"pending_reservations": pendingReservations,
		"active_loans":         activeLoans,
		"overdue_loans":        overdueLoans,
		"pending_applications": pendingApplications,
		"upcoming_bookings":    upcomingBookings,
		"outstanding_fees":     outstandingFees.StringFixed(2),
	})
}
