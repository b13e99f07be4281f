package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/config"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/applications"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

func applicationsRouter(db *database.Database, identity gin.HandlerFunc) *gin.Engine {
	repo := applications.NewRepository(db.DB)
	service := auth.NewService(db.DB, config.Auth{Mode: config.AuthModeLocal, BcryptCost: 4})
	controller := NewApplicationsController(repo, service, notifier.New(db.DB, nil))

	router := gin.New()
	router.POST("/api/applications", controller.Submit)
	if identity != nil {
		router.Use(identity)
	}
	staff := auth.RequireStaff()
	router.GET("/api/applications", staff, controller.List)
	router.POST("/api/applications/:id/approve", staff, controller.Approve)
	router.POST("/api/applications/:id/reject", staff, controller.Reject)
	return router
}

func TestApplicationEndpoints(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	librarian := makeUser(t, db, "librarian@example.com", entities.UserRoleLibrarian)
	staffRouter := applicationsRouter(db, asUser(librarian))
	publicRouter := applicationsRouter(db, nil)

	t.Run("anyone can apply", func(t *testing.T) {
		w := doJSON(t, publicRouter, "POST", "/api/applications", gin.H{
			"name":  "New Member",
			"email": "new@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "PENDING", decodeBody(t, w)["status"])
	})

	t.Run("approval provisions a member account", func(t *testing.T) {
		w := doJSON(t, publicRouter, "POST", "/api/applications", gin.H{
			"name":  "Approved Member",
			"email": "approved@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := int(decodeBody(t, w)["id"].(float64))

		w = doJSON(t, staffRouter, "POST", "/api/applications/"+itoa(id)+"/approve", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "APPROVED", decodeBody(t, w)["status"])

		var user entities.User
		require.NoError(t, db.DB.Where("email = ?", "approved@example.com").First(&user).Error)
		assert.Equal(t, entities.UserRoleMember, user.Role)
		assert.NotEmpty(t, user.PasswordHash)

		// The welcome mail landed in the outbox.
		var count int64
		require.NoError(t, db.DB.Model(&entities.Notification{}).
			Where("kind = ?", string(notifier.KindApplicationApproved)).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rejecting does not create an account", func(t *testing.T) {
		w := doJSON(t, publicRouter, "POST", "/api/applications", gin.H{
			"name":  "Rejected Member",
			"email": "rejected@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := int(decodeBody(t, w)["id"].(float64))

		w = doJSON(t, staffRouter, "POST", "/api/applications/"+itoa(id)+"/reject", gin.H{"notes": "incomplete"})
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.DB.Model(&entities.User{}).
			Where("email = ?", "rejected@example.com").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("an application cannot be decided twice", func(t *testing.T) {
		w := doJSON(t, publicRouter, "POST", "/api/applications", gin.H{
			"name":  "Twice",
			"email": "twice@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		id := int(decodeBody(t, w)["id"].(float64))

		w = doJSON(t, staffRouter, "POST", "/api/applications/"+itoa(id)+"/reject", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, staffRouter, "POST", "/api/applications/"+itoa(id)+"/approve", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
