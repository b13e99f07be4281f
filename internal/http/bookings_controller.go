package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/database/bookings"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/users"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

// BookingsController handles study room and printing slot bookings.
type BookingsController struct {
	repo     *bookings.Repository
	users    *users.Repository
	notifier *notifier.Notifier
}

func NewBookingsController(repo *bookings.Repository, usersRepo *users.Repository, n *notifier.Notifier) *BookingsController {
	return &BookingsController{repo: repo, users: usersRepo, notifier: n}
}

type bookingRequest struct {
	Facility  entities.FacilityType `json:"facility" binding:"required"`
	RoomName  string                `json:"room_name"`
	StartTime time.Time             `json:"start_time" binding:"required"`
	EndTime   time.Time             `json:"end_time" binding:"required"`
	Notes     string                `json:"notes"`
}

// Create requests a PENDING facility booking for the authenticated member.
func (b *BookingsController) Create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "facility, start_time and end_time are required")
		return
	}
	if !entities.ValidFacilityType(req.Facility) {
		respondBadRequest(c, "unknown facility type")
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		respondBadRequest(c, "start_time must be before end_time")
		return
	}

	booking := &entities.FacilityBooking{
		UserID:    GetUserID(c),
		Facility:  req.Facility,
		RoomName:  req.RoomName,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if err := b.repo.CreateBooking(booking); err != nil {
		respondInternalError(c, err, "create booking")
		return
	}
	respondCreated(c, booking)
}

// List returns bookings. Members see only their own.
func (b *BookingsController) List(c *gin.Context) {
	userID := GetUserID(c)
	if GetUserRole(c).IsStaff() {
		id, err := parseOptionalUintQuery(c, "user_id")
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		userID = id
	}

	result, err := b.repo.ListBookings(userID)
	if err != nil {
		respondInternalError(c, err, "list bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": result, "count": len(result)})
}

// Confirm accepts a PENDING booking unless its slot overlaps a confirmed one.
func (b *BookingsController) Confirm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := b.repo.ConfirmBooking(id)
	if err != nil {
		respondDomainError(c, err, "booking")
		return
	}

	if user, err := b.users.GetUserByID(booking.UserID); err == nil {
		b.notifier.Notify(c.Request.Context(), notifier.Event{
			Kind:      notifier.KindBookingConfirmed,
			Recipient: user.Email,
			Payload: map[string]string{
				"Name":     user.Name,
				"Facility": string(booking.Facility),
				"Room":     booking.RoomName,
				"Start":    booking.StartTime.Format(time.RFC1123),
				"End":      booking.EndTime.Format(time.RFC1123),
			},
		})
	}

	c.JSON(http.StatusOK, booking)
}

// Cancel voids a booking. Members may only cancel their own.
func (b *BookingsController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := b.repo.GetBookingByID(id)
	if err != nil {
		respondDomainError(c, err, "booking")
		return
	}
	if !GetUserRole(c).IsStaff() && booking.UserID != GetUserID(c) {
		respondNotFound(c, "booking")
		return
	}

	updated, err := b.repo.CancelBooking(id)
	if err != nil {
		respondDomainError(c, err, "booking")
		return
	}
	c.JSON(http.StatusOK, updated)
}
