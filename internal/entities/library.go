package entities

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Author          string         `gorm:"index;size:256" json:"author"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	Category        string         `gorm:"index;size:100" json:"category,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	PublicationYear int            `json:"publication_year,omitempty"`
	TotalCopies     int            `gorm:"default:1" json:"total_copies"`
	AvailableCopies int            `gorm:"default:1" json:"available_copies"`
	Published       bool           `gorm:"default:true" json:"published"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusApproved  ReservationStatus = "APPROVED"
	ReservationStatusRejected  ReservationStatus = "REJECTED"
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusOverdue   ReservationStatus = "OVERDUE"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ValidReservationStatus reports whether the status is one of the known statuses.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationStatusPending, ReservationStatusApproved, ReservationStatusRejected,
		ReservationStatusActive, ReservationStatusCompleted, ReservationStatusOverdue,
		ReservationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions may leave the status.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusRejected, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

// Reservation is a member's claim on a book copy. It progresses through an
// approval/checkout/return lifecycle:
//
//	PENDING -> APPROVED -> ACTIVE -> COMPLETED
//	PENDING -> REJECTED
//	ACTIVE  -> OVERDUE  -> COMPLETED
//	any non-terminal -> CANCELLED
//
// DueDate is set only when the reservation becomes ACTIVE, ReturnedAt only
// when it becomes COMPLETED.
type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Reference  string            `gorm:"uniqueIndex;size:36" json:"reference"`
	UserID     uint              `gorm:"index" json:"user_id"`
	BookID     uint              `gorm:"index" json:"book_id"`
	Status     ReservationStatus `gorm:"index;size:20;default:'PENDING'" json:"status"`
	ReservedAt time.Time         `json:"reserved_at"`
	ApprovedAt *time.Time        `json:"approved_at,omitempty"`
	DueDate    *time.Time        `json:"due_date,omitempty"`
	ReturnedAt *time.Time        `json:"returned_at,omitempty"`
	Notes      string            `gorm:"type:text" json:"notes,omitempty"`
	User       User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book       Book              `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}
