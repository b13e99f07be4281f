// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(id)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook creates a new catalog entry. AvailableCopies defaults to
// TotalCopies when unset.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.TotalCopies <= 0 {
		book.TotalCopies = 1
	}
	if book.AvailableCopies == 0 {
		book.AvailableCopies = book.TotalCopies
	}
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks retrieves catalog entries, optionally filtered by a
// case-insensitive search over title/author and by category.
func (r *Repository) ListBooks(search, category string) ([]entities.Book, error) {
	query := r.db.Order("title ASC")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// UpdateBook saves catalog fields for an existing book. Copy counts are
// adjusted here only by staff edits; lifecycle changes go through guarded
// updates in the reservation manager.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return entities.NewInvalidStateError("book", "copies", "out of range")
	}
	return r.db.Save(book).Error
}

// DeleteBook soft-deletes a catalog entry.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// CountBooks returns the number of catalog entries.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
