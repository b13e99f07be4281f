package bookings

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
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

func newBooking(userID uint, room string, start, end time.Time) *entities.FacilityBooking {
	return &entities.FacilityBooking{
		UserID:    userID,
		Facility:  entities.FacilityStudyRoom,
		RoomName:  room,
		StartTime: start,
		EndTime:   end,
	}
}

func TestConfirmBooking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	user := &entities.User{Name: "Mary", Email: "mary@example.com"}
	require.NoError(t, db.Create(user).Error)

	base := time.Now().Add(time.Hour).Truncate(time.Minute)

	t.Run("confirms a pending booking", func(t *testing.T) {
		booking := newBooking(user.ID, "Room A", base, base.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(booking))

		confirmed, err := repo.ConfirmBooking(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, confirmed.Status)
	})

	t.Run("rejects an overlapping slot", func(t *testing.T) {
		overlapping := newBooking(user.ID, "Room A", base.Add(30*time.Minute), base.Add(90*time.Minute))
		require.NoError(t, repo.CreateBooking(overlapping))

		_, err := repo.ConfirmBooking(overlapping.ID)
		assert.ErrorIs(t, err, entities.ErrBookingConflict)
	})

	t.Run("a different room is not a conflict", func(t *testing.T) {
		other := newBooking(user.ID, "Room B", base, base.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(other))

		confirmed, err := repo.ConfirmBooking(other.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, confirmed.Status)
	})

	t.Run("back to back slots do not conflict", func(t *testing.T) {
		adjacent := newBooking(user.ID, "Room A", base.Add(time.Hour), base.Add(2*time.Hour))
		require.NoError(t, repo.CreateBooking(adjacent))

		confirmed, err := repo.ConfirmBooking(adjacent.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, confirmed.Status)
	})

	t.Run("cannot confirm twice", func(t *testing.T) {
		booking := newBooking(user.ID, "Room C", base, base.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(booking))
		_, err := repo.ConfirmBooking(booking.ID)
		require.NoError(t, err)

		_, err = repo.ConfirmBooking(booking.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})
}

func TestCancelBooking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	user := &entities.User{Name: "Milo", Email: "milo@example.com"}
	require.NoError(t, db.Create(user).Error)

	start := time.Now().Add(time.Hour)

	t.Run("cancels a pending booking", func(t *testing.T) {
		booking := newBooking(user.ID, "Room A", start, start.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(booking))

		cancelled, err := repo.CancelBooking(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		booking := newBooking(user.ID, "Room A", start, start.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(booking))
		_, err := repo.CancelBooking(booking.ID)
		require.NoError(t, err)

		_, err = repo.CancelBooking(booking.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("cancelling a confirmed booking frees the slot", func(t *testing.T) {
		booking := newBooking(user.ID, "Room D", start, start.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(booking))
		_, err := repo.ConfirmBooking(booking.ID)
		require.NoError(t, err)
		_, err = repo.CancelBooking(booking.ID)
		require.NoError(t, err)

		replacement := newBooking(user.ID, "Room D", start, start.Add(time.Hour))
		require.NoError(t, repo.CreateBooking(replacement))
		confirmed, err := repo.ConfirmBooking(replacement.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, confirmed.Status)
	})
}

func TestCreateBooking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	t.Run("rejects an inverted window", func(t *testing.T) {
		start := time.Now().Add(2 * time.Hour)
		booking := newBooking(1, "Room A", start, start.Add(-time.Hour))
		err := repo.CreateBooking(booking)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})
}

func TestOverlaps(t *testing.T) {
	base := time.Now()
	a := entities.FacilityBooking{Facility: entities.FacilityStudyRoom, RoomName: "A", StartTime: base, EndTime: base.Add(time.Hour)}

	b := a
	b.StartTime = base.Add(30 * time.Minute)
	b.EndTime = base.Add(90 * time.Minute)
	assert.True(t, a.Overlaps(b))

	b.RoomName = "B"
	assert.False(t, a.Overlaps(b))

	c := a
	c.StartTime = a.EndTime
	c.EndTime = a.EndTime.Add(time.Hour)
	assert.False(t, a.Overlaps(c))
}
