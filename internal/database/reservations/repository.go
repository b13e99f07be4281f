// Package reservations provides database read/create operations for
// reservations. Lifecycle transitions are owned by the reservation manager,
// which performs guarded conditional writes.
package reservations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles reservation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReservation creates a PENDING reservation for a member. The book must
// exist and be published; availability is only checked at activation time.
func (r *Repository) CreateReservation(userID, bookID uint, notes string) (*entities.Reservation, error) {
	var book entities.Book
	err := r.db.First(&book, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	reservation := &entities.Reservation{
		Reference:  uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		Status:     entities.ReservationStatusPending,
		ReservedAt: time.Now(),
		Notes:      notes,
	}
	if err := r.db.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// GetReservationByID retrieves a reservation with its user and book.
func (r *Repository) GetReservationByID(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.Preload("User").Preload("Book").First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListReservations retrieves reservations, newest first, optionally filtered
// by status. userID of zero means all users (staff view).
func (r *Repository) ListReservations(userID uint, status entities.ReservationStatus) ([]entities.Reservation, error) {
	query := r.db.Preload("User").Preload("Book").Order("reserved_at DESC")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []entities.Reservation
	err := query.Find(&reservations).Error
	return reservations, err
}

// CountByStatus returns the number of reservations in the given status.
func (r *Repository) CountByStatus(status entities.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// DeleteCancelled permanently removes a CANCELLED reservation. Only admins
// call this; every other status is kept for the audit trail.
func (r *Repository) DeleteCancelled(id uint) error {
	result := r.db.Where("id = ? AND status = ?", id, entities.ReservationStatusCancelled).
		Delete(&entities.Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}
