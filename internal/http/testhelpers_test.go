package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

// asUser injects an authenticated identity, standing in for the session
// middleware.
func asUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, user.ID)
		c.Set(auth.ContextKeyName, user.Name)
		c.Set(auth.ContextKeyRole, user.Role)
		c.Next()
	}
}

func makeUser(t *testing.T, db *database.Database, email string, role entities.UserRole) *entities.User {
	t.Helper()
	user := &entities.User{Name: "Test " + string(role), Email: email, Role: role}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func makeBook(t *testing.T, db *database.Database, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: "Walden", Author: "Henry David Thoreau", TotalCopies: copies, AvailableCopies: copies}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
