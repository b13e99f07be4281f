// Package fees provides database operations for fee structures and fee
// transactions. Status transitions on transactions are owned by the fee
// engine, which performs guarded conditional writes.
package fees

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles fee database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new fees repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActiveStructure returns the active fee structure for a type.
func (r *Repository) GetActiveStructure(feeType entities.FeeType) (*entities.FeeStructure, error) {
	var structure entities.FeeStructure
	err := r.db.Where("type = ? AND is_active = ?", feeType, true).First(&structure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNoActiveFeeStructure
	}
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

// ListStructures returns all fee structures, active and inactive.
func (r *Repository) ListStructures() ([]entities.FeeStructure, error) {
	var structures []entities.FeeStructure
	err := r.db.Order("type ASC, is_active DESC").Find(&structures).Error
	return structures, err
}

// CreateStructure creates a fee structure. When it is active, any previously
// active structure for the same type is deactivated so that at most one
// structure per type answers assessments.
func (r *Repository) CreateStructure(structure *entities.FeeStructure) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if structure.IsActive {
			if err := tx.Model(&entities.FeeStructure{}).
				Where("type = ? AND is_active = ?", structure.Type, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(structure).Error
	})
}

// UpdateStructure updates amount, description and active flag of a structure.
func (r *Repository) UpdateStructure(id uint, amount decimal.Decimal, description string, isActive bool) (*entities.FeeStructure, error) {
	var structure entities.FeeStructure
	err := r.db.First(&structure, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if isActive && !structure.IsActive {
			if err := tx.Model(&entities.FeeStructure{}).
				Where("type = ? AND is_active = ? AND id != ?", structure.Type, true, id).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		structure.Amount = amount
		structure.Description = description
		structure.IsActive = isActive
		return tx.Save(&structure).Error
	})
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

// GetTransactionByID retrieves a fee transaction.
func (r *Repository) GetTransactionByID(id uint) (*entities.FeeTransaction, error) {
	var transaction entities.FeeTransaction
	err := r.db.Preload("User").First(&transaction, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ListTransactions retrieves fee transactions, newest first. userID of zero
// means all users (staff view).
func (r *Repository) ListTransactions(userID uint, status entities.FeeStatus) ([]entities.FeeTransaction, error) {
	query := r.db.Preload("User").Order("created_at DESC")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var transactions []entities.FeeTransaction
	err := query.Find(&transactions).Error
	return transactions, err
}

// OutstandingTotal sums the amounts of all PENDING and OVERDUE transactions.
func (r *Repository) OutstandingTotal() (decimal.Decimal, error) {
	var transactions []entities.FeeTransaction
	err := r.db.Where("status IN ?", []entities.FeeStatus{entities.FeeStatusPending, entities.FeeStatusOverdue}).
		Find(&transactions).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total, nil
}
