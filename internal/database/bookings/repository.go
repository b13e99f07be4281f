// Package bookings provides database operations for study-space and printing
// facility bookings.
package bookings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles facility booking database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBooking creates a PENDING booking request.
func (r *Repository) CreateBooking(booking *entities.FacilityBooking) error {
	if !booking.StartTime.Before(booking.EndTime) {
		return entities.NewInvalidStateError("booking", "start", "before end")
	}
	booking.Status = entities.BookingStatusPending
	return r.db.Create(booking).Error
}

// GetBookingByID retrieves a booking with its user.
func (r *Repository) GetBookingByID(id uint) (*entities.FacilityBooking, error) {
	var booking entities.FacilityBooking
	err := r.db.Preload("User").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings retrieves bookings ordered by start time. userID of zero means
// all users (staff view).
func (r *Repository) ListBookings(userID uint) ([]entities.FacilityBooking, error) {
	query := r.db.Preload("User").Order("start_time ASC")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	var bookings []entities.FacilityBooking
	err := query.Find(&bookings).Error
	return bookings, err
}

// ConfirmBooking confirms a PENDING booking after checking for overlapping
// confirmed bookings on the same facility/room. The overlap check and the
// status write run inside one transaction.
func (r *Repository) ConfirmBooking(id uint) (*entities.FacilityBooking, error) {
	var booking entities.FacilityBooking
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrNotFound
			}
			return err
		}
		if booking.Status != entities.BookingStatusPending {
			return entities.NewInvalidStateError("booking", string(booking.Status), string(entities.BookingStatusConfirmed))
		}

		var conflicts int64
		err := tx.Model(&entities.FacilityBooking{}).
			Where("facility = ? AND room_name = ? AND status = ? AND start_time < ? AND end_time > ? AND id != ?",
				booking.Facility, booking.RoomName, entities.BookingStatusConfirmed,
				booking.EndTime, booking.StartTime, booking.ID).
			Count(&conflicts).Error
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return entities.ErrBookingConflict
		}

		result := tx.Model(&entities.FacilityBooking{}).
			Where("id = ? AND status = ?", id, entities.BookingStatusPending).
			Update("status", entities.BookingStatusConfirmed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.NewInvalidStateError("booking", string(booking.Status), string(entities.BookingStatusConfirmed))
		}
		booking.Status = entities.BookingStatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking cancels a PENDING or CONFIRMED booking.
func (r *Repository) CancelBooking(id uint) (*entities.FacilityBooking, error) {
	result := r.db.Model(&entities.FacilityBooking{}).
		Where("id = ? AND status IN ?", id, []entities.BookingStatus{entities.BookingStatusPending, entities.BookingStatusConfirmed}).
		Update("status", entities.BookingStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		booking, err := r.GetBookingByID(id)
		if err != nil {
			return nil, err
		}
		return nil, entities.NewInvalidStateError("booking", string(booking.Status), string(entities.BookingStatusCancelled))
	}
	return r.GetBookingByID(id)
}

// CountUpcoming returns the number of confirmed bookings starting after now.
func (r *Repository) CountUpcoming(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.FacilityBooking{}).
		Where("status = ? AND start_time > ?", entities.BookingStatusConfirmed, now).
		Count(&count).Error
	return count, err
}
