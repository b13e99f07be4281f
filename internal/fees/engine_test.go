package fees

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/notifier"
)

// setupTestDB creates a fresh test database
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

type recordingNotifier struct {
	events []notifier.Event
}

func (r *recordingNotifier) Notify(_ context.Context, event notifier.Event) bool {
	r.events = append(r.events, event)
	return true
}

func createUser(t *testing.T, db *gorm.DB) *entities.User {
	t.Helper()
	user := &entities.User{Name: "Milo Member", Email: "milo@example.com", Role: entities.UserRoleMember}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAssess(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db)

	t.Run("prices from the active structure", func(t *testing.T) {
		events := &recordingNotifier{}
		engine := NewEngine(db, events, 0)

		transaction, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeLateReturn, "returned two days late", nil)
		require.NoError(t, err)
		assert.Equal(t, entities.FeeStatusPending, transaction.Status)
		assert.True(t, transaction.Amount.Equal(decimal.NewFromFloat(5.00)),
			"expected the seeded late return price, got %s", transaction.Amount)
		assert.NotEmpty(t, transaction.Reference)
		assert.WithinDuration(t, time.Now().Add(DefaultGracePeriod), transaction.DueDate, time.Minute)

		require.Len(t, events.events, 1)
		assert.Equal(t, notifier.KindFeeAssessed, events.events[0].Kind)
		assert.Equal(t, "5.00", events.events[0].Payload["Amount"])
	})

	t.Run("no active structure", func(t *testing.T) {
		engine := NewEngine(db, nil, 0)
		require.NoError(t, db.Model(&entities.FeeStructure{}).
			Where("type = ?", entities.FeeTypeDamage).
			Update("is_active", false).Error)

		_, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeDamage, "", nil)
		assert.ErrorIs(t, err, entities.ErrNoActiveFeeStructure)
	})

	t.Run("unknown fee type", func(t *testing.T) {
		engine := NewEngine(db, nil, 0)
		_, err := engine.Assess(context.Background(), user.ID, entities.FeeType("GENERIC"), "", nil)
		assert.Error(t, err)
	})

	t.Run("late fee carries the reservation id", func(t *testing.T) {
		engine := NewEngine(db, nil, 0)
		err := engine.AssessLateFee(context.Background(), user.ID, 42, "late")
		require.NoError(t, err)

		var transaction entities.FeeTransaction
		require.NoError(t, db.Where("reservation_id = ?", 42).First(&transaction).Error)
		assert.Equal(t, entities.FeeTypeLateReturn, transaction.FeeType)
	})
}

func TestPaymentLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db)
	engine := NewEngine(db, nil, 0)

	assess := func(t *testing.T) *entities.FeeTransaction {
		t.Helper()
		transaction, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeProcessing, "", nil)
		require.NoError(t, err)
		return transaction
	}

	t.Run("marks a pending fee paid", func(t *testing.T) {
		transaction := assess(t)

		paid, err := engine.MarkPaid(context.Background(), transaction.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.FeeStatusPaid, paid.Status)
		assert.NotNil(t, paid.PaidDate)
	})

	t.Run("waives a pending fee", func(t *testing.T) {
		transaction := assess(t)

		waived, err := engine.Waive(context.Background(), transaction.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.FeeStatusWaived, waived.Status)
		assert.Nil(t, waived.PaidDate)
	})

	t.Run("terminal fees are immutable", func(t *testing.T) {
		transaction := assess(t)
		_, err := engine.Waive(context.Background(), transaction.ID)
		require.NoError(t, err)

		_, err = engine.MarkPaid(context.Background(), transaction.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
		_, err = engine.Waive(context.Background(), transaction.ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("an overdue fee can still be settled", func(t *testing.T) {
		transaction := assess(t)
		require.NoError(t, db.Model(transaction).Updates(map[string]any{
			"status":   entities.FeeStatusOverdue,
			"due_date": time.Now().Add(-time.Hour),
		}).Error)

		paid, err := engine.MarkPaid(context.Background(), transaction.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.FeeStatusPaid, paid.Status)
	})

	t.Run("unknown fee", func(t *testing.T) {
		_, err := engine.MarkPaid(context.Background(), 99999)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestMarkOverdue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, db)
	engine := NewEngine(db, nil, time.Minute)

	t.Run("stores the transition for a fee past due", func(t *testing.T) {
		transaction, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeMembership, "", nil)
		require.NoError(t, err)

		marked, err := engine.MarkOverdue(context.Background(), transaction.ID, time.Now().Add(2*time.Minute))
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("skips a fee not yet due", func(t *testing.T) {
		transaction, err := engine.Assess(context.Background(), user.ID, entities.FeeTypeMembership, "", nil)
		require.NoError(t, err)

		marked, err := engine.MarkOverdue(context.Background(), transaction.ID, time.Now())
		require.NoError(t, err)
		assert.False(t, marked)
	})
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now()

	pending := entities.FeeTransaction{Status: entities.FeeStatusPending, DueDate: now.Add(time.Hour)}
	assert.Equal(t, entities.FeeStatusPending, pending.EffectiveStatus(now))

	pastDue := entities.FeeTransaction{Status: entities.FeeStatusPending, DueDate: now.Add(-time.Hour)}
	assert.Equal(t, entities.FeeStatusOverdue, pastDue.EffectiveStatus(now))

	// Settled fees never read as overdue, regardless of the due date.
	paid := entities.FeeTransaction{Status: entities.FeeStatusPaid, DueDate: now.Add(-time.Hour)}
	assert.Equal(t, entities.FeeStatusPaid, paid.EffectiveStatus(now))
}
