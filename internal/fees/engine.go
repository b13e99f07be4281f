// Package fees implements fee assessment and the fee transaction lifecycle.
//
// A transaction starts PENDING and moves to PAID, WAIVED or OVERDUE. PAID and
// WAIVED are terminal. Transitions are guarded conditional writes, mirroring
// the reservation manager.
package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

// DefaultGracePeriod applies when no grace period is configured.
const DefaultGracePeriod = 14 * 24 * time.Hour

// Notifier sends best-effort notifications after a fee event.
type Notifier interface {
	Notify(ctx context.Context, event notifier.Event) bool
}

// Engine derives fee transactions from fee structures and tracks their
// payment lifecycle.
type Engine struct {
	db          *gorm.DB
	notifier    Notifier
	gracePeriod time.Duration
}

// NewEngine creates a fee engine. The notifier may be nil in tests; a
// non-positive gracePeriod falls back to DefaultGracePeriod.
func NewEngine(db *gorm.DB, n Notifier, gracePeriod time.Duration) *Engine {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &Engine{db: db, notifier: n, gracePeriod: gracePeriod}
}

// Assess creates a PENDING fee transaction for a user, priced by the active
// fee structure for the type. reservationID may be nil for fees not tied to
// a loan (membership, processing).
func (e *Engine) Assess(ctx context.Context, userID uint, feeType entities.FeeType, reason string, reservationID *uint) (*entities.FeeTransaction, error) {
	if !entities.ValidFeeType(feeType) {
		return nil, fmt.Errorf("unknown fee type %q", feeType)
	}

	var structure entities.FeeStructure
	err := e.db.Where("type = ? AND is_active = ?", feeType, true).First(&structure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNoActiveFeeStructure
	}
	if err != nil {
		return nil, err
	}

	transaction := &entities.FeeTransaction{
		Reference:     uuid.NewString(),
		UserID:        userID,
		ReservationID: reservationID,
		FeeType:       feeType,
		Amount:        structure.Amount,
		Reason:        reason,
		Status:        entities.FeeStatusPending,
		DueDate:       time.Now().Add(e.gracePeriod),
	}
	if err := e.db.Create(transaction).Error; err != nil {
		return nil, err
	}

	// Reload with the user attached so the notification has a recipient.
	transaction, err = e.load(transaction.ID)
	if err != nil {
		return nil, err
	}
	e.send(ctx, notifier.KindFeeAssessed, transaction)
	return transaction, nil
}

// AssessLateFee assesses a LATE_RETURN fee tied to a reservation. Called by
// the reservation manager when an overdue loan is returned.
func (e *Engine) AssessLateFee(ctx context.Context, userID, reservationID uint, reason string) error {
	_, err := e.Assess(ctx, userID, entities.FeeTypeLateReturn, reason, &reservationID)
	return err
}

// MarkPaid settles a PENDING or OVERDUE transaction, stamping PaidDate.
// Terminal transactions are immutable.
func (e *Engine) MarkPaid(ctx context.Context, id uint) (*entities.FeeTransaction, error) {
	now := time.Now()
	result := e.db.Model(&entities.FeeTransaction{}).
		Where("id = ? AND status IN ?", id, openStatuses()).
		Updates(map[string]any{
			"status":    entities.FeeStatusPaid,
			"paid_date": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, e.invalidTransition(id, entities.FeeStatusPaid)
	}

	transaction, err := e.load(id)
	if err != nil {
		return nil, err
	}
	e.send(ctx, notifier.KindFeePaid, transaction)
	return transaction, nil
}

// Waive forgives a PENDING or OVERDUE transaction without recording a
// payment. Terminal transactions are immutable.
func (e *Engine) Waive(ctx context.Context, id uint) (*entities.FeeTransaction, error) {
	result := e.db.Model(&entities.FeeTransaction{}).
		Where("id = ? AND status IN ?", id, openStatuses()).
		Update("status", entities.FeeStatusWaived)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, e.invalidTransition(id, entities.FeeStatusWaived)
	}

	transaction, err := e.load(id)
	if err != nil {
		return nil, err
	}
	e.send(ctx, notifier.KindFeeWaived, transaction)
	return transaction, nil
}

// MarkOverdue stores the OVERDUE transition for a PENDING transaction past
// its due date. Used by the periodic sweep; reads also derive the same status
// via EffectiveStatus, so a missed sweep never hides an overdue fee.
func (e *Engine) MarkOverdue(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := e.db.Model(&entities.FeeTransaction{}).
		Where("id = ? AND status = ? AND due_date < ?", id, entities.FeeStatusPending, now).
		Update("status", entities.FeeStatusOverdue)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if transaction, err := e.load(id); err == nil {
		e.send(ctx, notifier.KindFeeOverdue, transaction)
	}
	return true, nil
}

func openStatuses() []entities.FeeStatus {
	return []entities.FeeStatus{entities.FeeStatusPending, entities.FeeStatusOverdue}
}

func (e *Engine) load(id uint) (*entities.FeeTransaction, error) {
	var transaction entities.FeeTransaction
	err := e.db.Preload("User").First(&transaction, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (e *Engine) invalidTransition(id uint, target entities.FeeStatus) error {
	transaction, err := e.load(id)
	if err != nil {
		return err
	}
	return entities.NewInvalidStateError("fee transaction", string(transaction.Status), string(target))
}

func (e *Engine) send(ctx context.Context, kind notifier.EventKind, transaction *entities.FeeTransaction) {
	if e.notifier == nil || transaction.User.Email == "" {
		return
	}
	e.notifier.Notify(ctx, notifier.Event{
		Kind:      kind,
		Recipient: transaction.User.Email,
		Payload: map[string]string{
			"Name":    transaction.User.Name,
			"FeeType": string(transaction.FeeType),
			"Amount":  transaction.Amount.StringFixed(2),
			"Reason":  transaction.Reason,
			"DueDate": transaction.DueDate.Format("02 Jan 2006"),
		},
	})
}
