package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	resrepo "github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/reservations"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

func TestSweep(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	manager := reservations.NewManager(db, nil, nil)
	engine := fees.NewEngine(db, nil, time.Minute)
	sweeper := NewOverdueSweeper(db, manager, engine, "*/30 * * * *")

	user := &entities.User{Name: "Mary", Email: "mary@example.com", Role: entities.UserRoleMember}
	require.NoError(t, db.Create(user).Error)
	book := &entities.Book{Title: "Meditations", Author: "Marcus Aurelius", TotalCopies: 3, AvailableCopies: 3}
	require.NoError(t, db.Create(book).Error)

	repo := resrepo.NewRepository(db)

	// One loan already past due, one still current.
	makeLoan := func(t *testing.T, due time.Time) *entities.Reservation {
		t.Helper()
		reservation, err := repo.CreateReservation(user.ID, book.ID, "")
		require.NoError(t, err)
		_, err = manager.Approve(context.Background(), reservation.ID)
		require.NoError(t, err)
		_, err = manager.Activate(context.Background(), reservation.ID, due)
		require.NoError(t, err)
		return reservation
	}

	lateLoan := makeLoan(t, time.Now().Add(time.Minute))
	currentLoan := makeLoan(t, time.Now().Add(24*time.Hour))

	lateFee, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeProcessing, "", nil)
	require.NoError(t, err)

	sweepTime := time.Now().Add(2 * time.Minute)

	loans, feeTransactions, err := sweeper.Sweep(context.Background(), sweepTime)
	require.NoError(t, err)
	assert.Equal(t, 1, loans)
	assert.Equal(t, 1, feeTransactions)

	var reloaded entities.Reservation
	require.NoError(t, db.First(&reloaded, lateLoan.ID).Error)
	assert.Equal(t, entities.ReservationStatusOverdue, reloaded.Status)

	var reloadedCurrent entities.Reservation
	require.NoError(t, db.First(&reloadedCurrent, currentLoan.ID).Error)
	assert.Equal(t, entities.ReservationStatusActive, reloadedCurrent.Status)

	var reloadedFee entities.FeeTransaction
	require.NoError(t, db.First(&reloadedFee, lateFee.ID).Error)
	assert.Equal(t, entities.FeeStatusOverdue, reloadedFee.Status)

	// A second sweep finds nothing new.
	loans, feeTransactions, err = sweeper.Sweep(context.Background(), sweepTime)
	require.NoError(t, err)
	assert.Zero(t, loans)
	assert.Zero(t, feeTransactions)
}

func TestStartStop(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	manager := reservations.NewManager(db, nil, nil)
	engine := fees.NewEngine(db, nil, time.Minute)

	t.Run("rejects a malformed schedule", func(t *testing.T) {
		sweeper := NewOverdueSweeper(db, manager, engine, "not a schedule")
		err := sweeper.Start(context.Background())
		assert.Error(t, err)
	})

	t.Run("starts and stops cleanly", func(t *testing.T) {
		sweeper := NewOverdueSweeper(db, manager, engine, "* * * * *")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, sweeper.Start(ctx))
		// Idempotent start
		require.NoError(t, sweeper.Start(ctx))
		sweeper.Stop()
	})
}
