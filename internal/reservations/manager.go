// Package reservations implements the reservation lifecycle state machine.
//
// Every transition is a guarded conditional write ("UPDATE ... WHERE id = ?
// AND status = ?") inside a single transaction, so concurrent staff actions
// on the same reservation cannot both succeed and book copy counts stay
// consistent under concurrent activations.
package reservations

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

// DefaultLoanPeriod is the due date applied at checkout when none is given.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Notifier sends best-effort notifications after a transition commits.
type Notifier interface {
	Notify(ctx context.Context, event notifier.Event) bool
}

// LateFeeAssessor assesses a late-return fee once an overdue loan is
// returned. Failures must not undo the return itself.
type LateFeeAssessor interface {
	AssessLateFee(ctx context.Context, userID, reservationID uint, reason string) error
}

// Manager validates reservation requests and enforces the allowed status
// transitions, adjusting book copy counts as reservations move through the
// lifecycle.
type Manager struct {
	db       *gorm.DB
	notifier Notifier
	fees     LateFeeAssessor
}

// NewManager creates a reservation manager. The notifier and fee assessor may
// be nil in tests.
func NewManager(db *gorm.DB, n Notifier, fees LateFeeAssessor) *Manager {
	return &Manager{db: db, notifier: n, fees: fees}
}

// Approve moves a PENDING reservation to APPROVED and stamps ApprovedAt.
func (m *Manager) Approve(ctx context.Context, id uint) (*entities.Reservation, error) {
	now := time.Now()
	result := m.db.Model(&entities.Reservation{}).
		Where("id = ? AND status = ?", id, entities.ReservationStatusPending).
		Updates(map[string]any{
			"status":      entities.ReservationStatusApproved,
			"approved_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, m.invalidTransition(id, entities.ReservationStatusApproved)
	}

	reservation, err := m.load(id)
	if err != nil {
		return nil, err
	}
	m.send(ctx, notifier.KindReservationApproved, reservation)
	return reservation, nil
}

// Reject moves a PENDING reservation to REJECTED. The book copy count is
// untouched: nothing was checked out.
func (m *Manager) Reject(ctx context.Context, id uint) (*entities.Reservation, error) {
	result := m.db.Model(&entities.Reservation{}).
		Where("id = ? AND status = ?", id, entities.ReservationStatusPending).
		Update("status", entities.ReservationStatusRejected)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, m.invalidTransition(id, entities.ReservationStatusRejected)
	}

	reservation, err := m.load(id)
	if err != nil {
		return nil, err
	}
	m.send(ctx, notifier.KindReservationRejected, reservation)
	return reservation, nil
}

// Activate checks out an APPROVED reservation: the book copy count is
// decremented with a guarded update and the due date is set. A zero dueDate
// defaults to DefaultLoanPeriod from now.
func (m *Manager) Activate(ctx context.Context, id uint, dueDate time.Time) (*entities.Reservation, error) {
	if dueDate.IsZero() {
		dueDate = time.Now().Add(DefaultLoanPeriod)
	}

	var bookID uint
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		if err := tx.First(&reservation, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return entities.ErrNotFound
			}
			return err
		}
		bookID = reservation.BookID

		result := tx.Model(&entities.Reservation{}).
			Where("id = ? AND status = ?", id, entities.ReservationStatusApproved).
			Updates(map[string]any{
				"status":   entities.ReservationStatusActive,
				"due_date": dueDate,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.NewInvalidStateError("reservation", string(reservation.Status), string(entities.ReservationStatusActive))
		}

		// Guarded decrement: fails when no copy is left, rolling back the
		// status change above.
		result = tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrNoCopiesAvailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reservation, err := m.load(id)
	if err != nil {
		return nil, err
	}
	m.send(ctx, notifier.KindReservationCheckedOut, reservation)
	return reservation, nil
}

// Complete returns an ACTIVE or OVERDUE loan: the copy goes back on the
// shelf, ReturnedAt is stamped, and an overdue return triggers a late fee.
// The late fee is assessed after the return commits; an assessment failure is
// logged, never rolled back into the return.
func (m *Manager) Complete(ctx context.Context, id uint) (*entities.Reservation, error) {
	now := time.Now()
	wasOverdue := false

	err := m.db.Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		if err := tx.First(&reservation, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return entities.ErrNotFound
			}
			return err
		}

		updates := map[string]any{
			"status":      entities.ReservationStatusCompleted,
			"returned_at": now,
		}

		// Try OVERDUE first so the prior status is known atomically.
		result := tx.Model(&entities.Reservation{}).
			Where("id = ? AND status = ?", id, entities.ReservationStatusOverdue).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		wasOverdue = result.RowsAffected == 1

		if !wasOverdue {
			result = tx.Model(&entities.Reservation{}).
				Where("id = ? AND status = ?", id, entities.ReservationStatusActive).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return entities.NewInvalidStateError("reservation", string(reservation.Status), string(entities.ReservationStatusCompleted))
			}
		}

		return incrementCopies(tx, reservation.BookID)
	})
	if err != nil {
		return nil, err
	}

	reservation, err := m.load(id)
	if err != nil {
		return nil, err
	}

	if wasOverdue && m.fees != nil {
		reason := fmt.Sprintf("Late return of %q (due %s)", reservation.Book.Title, formatDue(reservation.DueDate))
		if err := m.fees.AssessLateFee(ctx, reservation.UserID, reservation.ID, reason); err != nil {
			log.Printf("Failed to assess late fee for reservation %d: %v", reservation.ID, err)
		}
	}

	m.send(ctx, notifier.KindReservationReturned, reservation)
	return reservation, nil
}

// Cancel moves any non-terminal reservation to CANCELLED. Cancelling an
// ACTIVE or OVERDUE loan puts the copy back on the shelf.
func (m *Manager) Cancel(ctx context.Context, id uint) (*entities.Reservation, error) {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		if err := tx.First(&reservation, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return entities.ErrNotFound
			}
			return err
		}

		// Checked-out statuses first: these also restore the copy.
		result := tx.Model(&entities.Reservation{}).
			Where("id = ? AND status IN ?", id,
				[]entities.ReservationStatus{entities.ReservationStatusActive, entities.ReservationStatusOverdue}).
			Update("status", entities.ReservationStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return incrementCopies(tx, reservation.BookID)
		}

		result = tx.Model(&entities.Reservation{}).
			Where("id = ? AND status IN ?", id,
				[]entities.ReservationStatus{entities.ReservationStatusPending, entities.ReservationStatusApproved}).
			Update("status", entities.ReservationStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.NewInvalidStateError("reservation", string(reservation.Status), string(entities.ReservationStatusCancelled))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.load(id)
}

// MarkOverdue moves an ACTIVE reservation past its due date to OVERDUE. Used
// by the periodic sweep; returns false when the reservation was not eligible.
func (m *Manager) MarkOverdue(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := m.db.Model(&entities.Reservation{}).
		Where("id = ? AND status = ? AND due_date < ?", id, entities.ReservationStatusActive, now).
		Update("status", entities.ReservationStatusOverdue)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if reservation, err := m.load(id); err == nil {
		m.send(ctx, notifier.KindReservationOverdue, reservation)
	}
	return true, nil
}

// Transition dispatches a generic status update to the matching operation.
// Backing for the PUT endpoint, which accepts a target status instead of a
// named action.
func (m *Manager) Transition(ctx context.Context, id uint, target entities.ReservationStatus, dueDate time.Time) (*entities.Reservation, error) {
	switch target {
	case entities.ReservationStatusApproved:
		return m.Approve(ctx, id)
	case entities.ReservationStatusRejected:
		return m.Reject(ctx, id)
	case entities.ReservationStatusActive:
		return m.Activate(ctx, id, dueDate)
	case entities.ReservationStatusCompleted:
		return m.Complete(ctx, id)
	case entities.ReservationStatusCancelled:
		return m.Cancel(ctx, id)
	case entities.ReservationStatusOverdue:
		marked, err := m.MarkOverdue(ctx, id, time.Now())
		if err != nil {
			return nil, err
		}
		if !marked {
			return nil, m.invalidTransition(id, entities.ReservationStatusOverdue)
		}
		return m.load(id)
	default:
		return nil, m.invalidTransition(id, target)
	}
}

func (m *Manager) load(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := m.db.Preload("User").Preload("Book").First(&reservation, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// invalidTransition builds the InvalidStateError for a failed conditional
// write, reading the current status for the message. A vanished row reports
// ErrNotFound instead.
func (m *Manager) invalidTransition(id uint, target entities.ReservationStatus) error {
	reservation, err := m.load(id)
	if err != nil {
		return err
	}
	return entities.NewInvalidStateError("reservation", string(reservation.Status), string(target))
}

func (m *Manager) send(ctx context.Context, kind notifier.EventKind, reservation *entities.Reservation) {
	if m.notifier == nil || reservation.User.Email == "" {
		return
	}
	m.notifier.Notify(ctx, notifier.Event{
		Kind:      kind,
		Recipient: reservation.User.Email,
		Payload: map[string]string{
			"Name":      reservation.User.Name,
			"BookTitle": reservation.Book.Title,
			"Reference": reservation.Reference,
			"DueDate":   formatDue(reservation.DueDate),
		},
	})
}

// incrementCopies returns a copy to the shelf, guarded so available never
// exceeds total.
func incrementCopies(tx *gorm.DB, bookID uint) error {
	result := tx.Model(&entities.Book{}).
		Where("id = ? AND available_copies < total_copies", bookID).
		UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: available copies already at total", bookID)
	}
	return nil
}

func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format("02 Jan 2006")
}
