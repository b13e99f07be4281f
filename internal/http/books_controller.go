package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// BooksController exposes the catalogue. Reads are open to all authenticated
// users, mutations require staff.
type BooksController struct {
	repo *books.Repository
}

func NewBooksController(repo *books.Repository) *BooksController {
	return &BooksController{repo: repo}
}

type bookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	PublicationYear int    `json:"publication_year"`
	TotalCopies     int    `json:"total_copies"`
}

// List returns books, optionally filtered by a search term and category.
func (b *BooksController) List(c *gin.Context) {
	result, err := b.repo.ListBooks(c.Query("search"), c.Query("category"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": result, "count": len(result)})
}

// Get returns a single book by ID.
func (b *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := b.repo.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create adds a book to the catalogue.
func (b *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}
	if req.TotalCopies < 0 {
		respondBadRequest(c, "total_copies must not be negative")
		return
	}

	book := &entities.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        req.Category,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	if err := b.repo.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// Update modifies catalogue metadata and the copy counts.
func (b *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := b.repo.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "book")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	// Adding or removing copies moves the available count by the same
	// delta so that checked-out copies stay accounted for.
	delta := req.TotalCopies - book.TotalCopies
	book.Title = req.Title
	book.Author = req.Author
	book.ISBN = req.ISBN
	book.Category = req.Category
	book.Description = req.Description
	book.PublicationYear = req.PublicationYear
	book.TotalCopies = req.TotalCopies
	book.AvailableCopies += delta

	if err := b.repo.UpdateBook(book); err != nil {
		respondDomainError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete removes a book from the catalogue.
func (b *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := b.repo.DeleteBook(id); err != nil {
		respondDomainError(c, err, "book")
		return
	}
	respondSuccess(c, "book deleted")
}
