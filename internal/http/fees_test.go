package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	feesrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
)

func feesRouter(db *database.Database, identity gin.HandlerFunc) *gin.Engine {
	repo := feesrepo.NewRepository(db.DB)
	engine := fees.NewEngine(db.DB, nil, 0)
	controller := NewFeesController(repo, engine)

	staff := auth.RequireStaff()
	admin := auth.RequireRole(entities.UserRoleAdmin)
	router := gin.New()
	router.Use(identity)
	router.POST("/api/fees", staff, controller.Assess)
	router.GET("/api/fees", controller.List)
	router.GET("/api/fees/:id", controller.Get)
	router.POST("/api/fees/:id/approve", staff, controller.ApprovePayment)
	router.POST("/api/fees/:id/waive", admin, controller.Waive)
	router.GET("/api/fee-structures", staff, controller.ListStructures)
	router.POST("/api/fee-structures", admin, controller.CreateStructure)
	router.PUT("/api/fee-structures/:id", admin, controller.UpdateStructure)
	return router
}

func TestFeeEndpoints(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	member := makeUser(t, db, "member@example.com", entities.UserRoleMember)
	librarian := makeUser(t, db, "librarian@example.com", entities.UserRoleLibrarian)
	adminUser := makeUser(t, db, "admin@example.com", entities.UserRoleAdmin)

	memberRouter := feesRouter(db, asUser(member))
	staffRouter := feesRouter(db, asUser(librarian))
	adminRouter := feesRouter(db, asUser(adminUser))

	t.Run("staff assesses a fee priced by the active structure", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/fees", gin.H{
			"user_id":  member.ID,
			"fee_type": "LATE_RETURN",
			"reason":   "returned three days late",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		response := decodeBody(t, w)
		assert.Equal(t, "PENDING", response["status"])
		assert.Equal(t, "5", response["amount"])
	})

	t.Run("members cannot assess fees", func(t *testing.T) {
		w := doJSON(t, memberRouter, "POST", "/api/fees", gin.H{"user_id": member.ID, "fee_type": "DAMAGE"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("waiving requires admin", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/fees", gin.H{"user_id": member.ID, "fee_type": "PROCESSING"})
		require.Equal(t, http.StatusCreated, w.Code)
		id := int(decodeBody(t, w)["id"].(float64))

		w = doJSON(t, staffRouter, "POST", "/api/fees/"+itoa(id)+"/waive", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, adminRouter, "POST", "/api/fees/"+itoa(id)+"/waive", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "WAIVED", decodeBody(t, w)["status"])

		// Terminal: paying a waived fee is a conflict.
		w = doJSON(t, staffRouter, "POST", "/api/fees/"+itoa(id)+"/approve", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("members see only their own fees", func(t *testing.T) {
		other := makeUser(t, db, "other@example.com", entities.UserRoleMember)
		w := doJSON(t, staffRouter, "POST", "/api/fees", gin.H{"user_id": other.ID, "fee_type": "DAMAGE"})
		require.Equal(t, http.StatusCreated, w.Code)
		otherFee := int(decodeBody(t, w)["id"].(float64))

		w = doJSON(t, memberRouter, "GET", "/api/fees/"+itoa(otherFee), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, feesRouter(db, asUser(other)), "GET", "/api/fees", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decodeBody(t, w)["count"])
	})

	t.Run("unknown fee type is a bad request", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/fees", gin.H{"user_id": member.ID, "fee_type": "GENERIC"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeeStructureEndpoints(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	librarian := makeUser(t, db, "librarian@example.com", entities.UserRoleLibrarian)
	adminUser := makeUser(t, db, "admin@example.com", entities.UserRoleAdmin)

	staffRouter := feesRouter(db, asUser(librarian))
	adminRouter := feesRouter(db, asUser(adminUser))

	t.Run("lists the seeded structures", func(t *testing.T) {
		w := doJSON(t, staffRouter, "GET", "/api/fee-structures", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(5), decodeBody(t, w)["count"])
	})

	t.Run("a new active structure replaces the previous one", func(t *testing.T) {
		w := doJSON(t, adminRouter, "POST", "/api/fee-structures", gin.H{
			"type":      "LATE_RETURN",
			"amount":    "7.50",
			"is_active": true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		// The next assessment picks up the new price.
		member := makeUser(t, db, "member@example.com", entities.UserRoleMember)
		w = doJSON(t, staffRouter, "POST", "/api/fees", gin.H{"user_id": member.ID, "fee_type": "LATE_RETURN"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "7.5", decodeBody(t, w)["amount"])
	})

	t.Run("creation requires admin", func(t *testing.T) {
		w := doJSON(t, staffRouter, "POST", "/api/fee-structures", gin.H{"type": "DAMAGE", "amount": "1.00"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative amounts are rejected", func(t *testing.T) {
		w := doJSON(t, adminRouter, "POST", "/api/fee-structures", gin.H{"type": "DAMAGE", "amount": "-1.00"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
