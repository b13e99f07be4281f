package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/reservations"
)

// ReservationsController exposes the reservation lifecycle. Members create
// and cancel their own reservations; all other transitions are staff-only.
type ReservationsController struct {
	repo    *resrepo.Repository
	manager *reservations.Manager
}

func NewReservationsController(repo *resrepo.Repository, manager *reservations.Manager) *ReservationsController {
	return &ReservationsController{repo: repo, manager: manager}
}

type createReservationRequest struct {
	BookID uint   `json:"book_id" binding:"required"`
	Notes  string `json:"notes"`
}

// Create places a new PENDING reservation for the authenticated member.
func (rc *ReservationsController) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	reservation, err := rc.repo.CreateReservation(GetUserID(c), req.BookID, req.Notes)
	if err != nil {
		respondDomainError(c, err, "book")
		return
	}
	respondCreated(c, reservation)
}

// List returns reservations. Members see only their own; staff may filter
// by user_id and status.
func (rc *ReservationsController) List(c *gin.Context) {
	userID := GetUserID(c)
	status := entities.ReservationStatus(c.Query("status"))

	if GetUserRole(c).IsStaff() {
		userID = 0
		if id, err := parseOptionalUintQuery(c, "user_id"); err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		} else if id != 0 {
			userID = id
		}
	}

	result, err := rc.repo.ListReservations(userID, status)
	if err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": result, "count": len(result)})
}

// Get returns a single reservation. Members may only read their own.
func (rc *ReservationsController) Get(c *gin.Context) {
	reservation, ok := rc.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, withEffectiveStatus(reservation, time.Now()))
}

// Approve moves PENDING to APPROVED.
func (rc *ReservationsController) Approve(c *gin.Context) {
	rc.transition(c, func(id uint) (*entities.Reservation, error) {
		return rc.manager.Approve(c.Request.Context(), id)
	})
}

// Reject moves PENDING to REJECTED.
func (rc *ReservationsController) Reject(c *gin.Context) {
	rc.transition(c, func(id uint) (*entities.Reservation, error) {
		return rc.manager.Reject(c.Request.Context(), id)
	})
}

type activateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// Activate checks the book out, moving APPROVED to ACTIVE and claiming a
// copy. An omitted due_date falls back to the default loan period.
func (rc *ReservationsController) Activate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBadRequest(c, "invalid due_date")
		return
	}
	dueDate := time.Now().Add(reservations.DefaultLoanPeriod)
	if req.DueDate != nil {
		if req.DueDate.Before(time.Now()) {
			respondBadRequest(c, "due_date must be in the future")
			return
		}
		dueDate = *req.DueDate
	}

	reservation, err := rc.manager.Activate(c.Request.Context(), id, dueDate)
	if err != nil {
		respondDomainError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// Complete records the return, moving ACTIVE or OVERDUE to COMPLETED.
func (rc *ReservationsController) Complete(c *gin.Context) {
	rc.transition(c, func(id uint) (*entities.Reservation, error) {
		return rc.manager.Complete(c.Request.Context(), id)
	})
}

// Cancel voids a reservation from any non-terminal state. Members may only
// cancel their own.
func (rc *ReservationsController) Cancel(c *gin.Context) {
	reservation, ok := rc.loadVisible(c)
	if !ok {
		return
	}

	updated, err := rc.manager.Cancel(c.Request.Context(), reservation.ID)
	if err != nil {
		respondDomainError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, updated)
}

type updateStatusRequest struct {
	Status  entities.ReservationStatus `json:"status" binding:"required"`
	DueDate *time.Time                 `json:"due_date"`
}

// UpdateStatus is a generic transition endpoint. It dispatches to the same
// guarded operations as the verb routes, so illegal edges are rejected
// identically.
func (rc *ReservationsController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	if !entities.ValidReservationStatus(req.Status) {
		respondBadRequest(c, "unknown status")
		return
	}

	dueDate := time.Now().Add(reservations.DefaultLoanPeriod)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	reservation, err := rc.manager.Transition(c.Request.Context(), id, req.Status, dueDate)
	if err != nil {
		respondDomainError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// transition runs a staff lifecycle operation on the :id reservation.
func (rc *ReservationsController) transition(c *gin.Context, op func(id uint) (*entities.Reservation, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reservation, err := op(id)
	if err != nil {
		respondDomainError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// loadVisible fetches the :id reservation and enforces ownership for
// non-staff callers.
func (rc *ReservationsController) loadVisible(c *gin.Context) (*entities.Reservation, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	reservation, err := rc.repo.GetReservationByID(id)
	if err != nil {
		respondDomainError(c, err, "reservation")
		return nil, false
	}
	if !GetUserRole(c).IsStaff() && reservation.UserID != GetUserID(c) {
		respondNotFound(c, "reservation")
		return nil, false
	}
	return reservation, true
}

// withEffectiveStatus renders a reservation with the status a reader should
// see right now, so a loan past its due date reads as OVERDUE even before
// the sweep has stored it.
func withEffectiveStatus(reservation *entities.Reservation, now time.Time) gin.H {
	status := reservation.Status
	if status == entities.ReservationStatusActive &&
		reservation.DueDate != nil && reservation.DueDate.Before(now) {
		status = entities.ReservationStatusOverdue
	}
	return gin.H{"reservation": reservation, "effective_status": status}
}
