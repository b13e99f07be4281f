package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type FeeType string

const (
	FeeTypeLateReturn FeeType = "LATE_RETURN"
	FeeTypeDamage     FeeType = "DAMAGE"
	FeeTypeLostBook   FeeType = "LOST_BOOK"
	FeeTypeMembership FeeType = "MEMBERSHIP"
	FeeTypeProcessing FeeType = "PROCESSING"
)

// ValidFeeType reports whether the fee type is one of the known types.
func ValidFeeType(t FeeType) bool {
	switch t {
	case FeeTypeLateReturn, FeeTypeDamage, FeeTypeLostBook, FeeTypeMembership, FeeTypeProcessing:
		return true
	}
	return false
}

// FeeStructure is an admin-managed price for a fee type. Only the active
// structure for a type is consulted when assessing fees.
type FeeStructure struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        FeeType         `gorm:"index;size:20" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric" json:"amount"`
	Description string          `gorm:"size:512" json:"description,omitempty"`
	IsActive    bool            `gorm:"index;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (FeeStructure) TableName() string {
	return "fee_structures"
}

type FeeStatus string

const (
	FeeStatusPending FeeStatus = "PENDING"
	FeeStatusPaid    FeeStatus = "PAID"
	FeeStatusWaived  FeeStatus = "WAIVED"
	FeeStatusOverdue FeeStatus = "OVERDUE"
)

// IsTerminal reports whether the fee status admits no further transitions.
func (s FeeStatus) IsTerminal() bool {
	return s == FeeStatusPaid || s == FeeStatusWaived
}

// FeeTransaction is a monetary obligation assessed against a user, optionally
// tied to a reservation. Status moves PENDING -> {PAID, WAIVED, OVERDUE} and
// OVERDUE -> {PAID, WAIVED}; PAID and WAIVED are terminal.
type FeeTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"uniqueIndex;size:36" json:"reference"`
	UserID        uint            `gorm:"index" json:"user_id"`
	ReservationID *uint           `gorm:"index" json:"reservation_id,omitempty"`
	FeeType       FeeType         `gorm:"size:20" json:"fee_type"`
	Amount        decimal.Decimal `gorm:"type:numeric" json:"amount"`
	Reason        string          `gorm:"size:512" json:"reason,omitempty"`
	Status        FeeStatus       `gorm:"index;size:20;default:'PENDING'" json:"status"`
	DueDate       time.Time       `json:"due_date"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	User          User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (FeeTransaction) TableName() string {
	return "fee_transactions"
}

// EffectiveStatus derives the read-time status: a PENDING transaction past its
// due date reads as OVERDUE even before the sweep has stored the transition.
func (t FeeTransaction) EffectiveStatus(now time.Time) FeeStatus {
	if t.Status == FeeStatusPending && now.After(t.DueDate) {
		return FeeStatusOverdue
	}
	return t.Status
}
