package http

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

func booksRouter(db *database.Database, identity gin.HandlerFunc) *gin.Engine {
	controller := NewBooksController(books.NewRepository(db.DB))

	staff := auth.RequireStaff()
	admin := auth.RequireRole(entities.UserRoleAdmin)
	router := gin.New()
	router.Use(identity)
	router.GET("/api/books", controller.List)
	router.GET("/api/books/:id", controller.Get)
	router.POST("/api/books", staff, controller.Create)
	router.PUT("/api/books/:id", staff, controller.Update)
	router.DELETE("/api/books/:id", admin, controller.Delete)
	return router
}

func TestBookEndpoints(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	member := makeUser(t, db, "member@example.com", entities.UserRoleMember)
	librarian := makeUser(t, db, "librarian@example.com", entities.UserRoleLibrarian)
	admin := makeUser(t, db, "admin@example.com", entities.UserRoleAdmin)

	memberRouter := booksRouter(db, asUser(member))
	staffRouter := booksRouter(db, asUser(librarian))
	adminRouter := booksRouter(db, asUser(admin))

	var bookID int

	t.Run("staff adds a book to the catalogue", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/books", gin.H{
			"title":        "The Count of Monte Cristo",
			"author":       "Alexandre Dumas",
			"category":     "Fiction",
			"total_copies": 3,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, float64(3), response["available_copies"])
		bookID = int(response["id"].(float64))
	})

	t.Run("members cannot mutate the catalogue", func(t *testing.T) {
		w := doJSON(t, memberRouter, "POST", "/api/books", gin.H{
			"title":  "Nope",
			"author": "Nobody",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/books", gin.H{"author": "Anonymous"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("members can browse", func(t *testing.T) {
		w := doJSON(t, memberRouter, "GET", "/api/books", nil)
		require.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, float64(1), response["count"])

		w = doJSON(t, memberRouter, "GET", "/api/books?search=monte", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decodeBody(t, w)["count"])

		w = doJSON(t, memberRouter, "GET", "/api/books?category=History", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), decodeBody(t, w)["count"])
	})

	t.Run("adding copies moves the available count", func(t *testing.T) {
		w := doJSON(t, staffRouter, "PUT", "/api/books/"+strconv.Itoa(bookID), gin.H{
			"title":        "The Count of Monte Cristo",
			"author":       "Alexandre Dumas",
			"category":     "Fiction",
			"total_copies": 5,
		})
		require.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, float64(5), response["total_copies"])
		assert.Equal(t, float64(5), response["available_copies"])
	})

	t.Run("only admins delete", func(t *testing.T) {
		path := "/api/books/" + strconv.Itoa(bookID)
		assert.Equal(t, http.StatusUnauthorized, doJSON(t, staffRouter, "DELETE", path, nil).Code)

		w := doJSON(t, adminRouter, "DELETE", path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, memberRouter, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown book is a 404", func(t *testing.T) {
		w := doJSON(t, memberRouter, "GET", "/api/books/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
