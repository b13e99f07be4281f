package notifier

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeDispatcher struct {
	ids []uint
}

func (f *fakeDispatcher) EnqueueNotification(id uint) error {
	f.ids = append(f.ids, id)
	return nil
}

func approvedEvent() Event {
	return Event{
		Kind:      KindReservationApproved,
		Recipient: "mary@example.com",
		Payload:   map[string]string{"Name": "Mary", "BookTitle": "Meditations", "Reference": "ref-1"},
	}
}

func TestNotify(t *testing.T) {
	t.Run("records and delivers inline", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		mailer := &fakeMailer{}
		n := New(db, mailer)

		ok := n.Notify(context.Background(), approvedEvent())
		assert.True(t, ok)
		assert.Equal(t, []string{"mary@example.com"}, mailer.sent)

		var record entities.Notification
		require.NoError(t, db.First(&record).Error)
		assert.Equal(t, string(KindReservationApproved), record.Kind)
		assert.Contains(t, record.Subject, "Meditations")
		assert.NotNil(t, record.SentAt)
		assert.Empty(t, record.Error)
	})

	t.Run("delivery failure is swallowed and recorded", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
		n := New(db, mailer)

		ok := n.Notify(context.Background(), approvedEvent())
		assert.False(t, ok)

		var record entities.Notification
		require.NoError(t, db.First(&record).Error)
		assert.Nil(t, record.SentAt)
		assert.Contains(t, record.Error, "connection refused")
	})

	t.Run("no mailer still records the outbox row", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		n := New(db, nil)
		ok := n.Notify(context.Background(), approvedEvent())
		assert.True(t, ok)

		var count int64
		require.NoError(t, db.Model(&entities.Notification{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("dispatcher takes over delivery", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		mailer := &fakeMailer{}
		dispatcher := &fakeDispatcher{}
		n := New(db, mailer)
		n.SetDispatcher(dispatcher)

		ok := n.Notify(context.Background(), approvedEvent())
		assert.True(t, ok)
		assert.Len(t, dispatcher.ids, 1)
		assert.Empty(t, mailer.sent, "dispatched events must not be sent inline")
	})

	t.Run("unknown event kind is dropped", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		n := New(db, nil)
		ok := n.Notify(context.Background(), Event{Kind: EventKind("mystery"), Recipient: "x@example.com"})
		assert.False(t, ok)

		var count int64
		require.NoError(t, db.Model(&entities.Notification{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestRender(t *testing.T) {
	t.Run("renders subject and body", func(t *testing.T) {
		subject, body, err := Render(Event{
			Kind: KindReservationCheckedOut,
			Payload: map[string]string{
				"Name": "Mary", "BookTitle": "Meditations", "DueDate": "01 Sep 2026", "Reference": "ref-1",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Meditations is checked out until 01 Sep 2026", subject)
		assert.Contains(t, body, "Dear Mary")
		assert.Contains(t, body, "01 Sep 2026")
	})

	t.Run("every kind has a template", func(t *testing.T) {
		kinds := []EventKind{
			KindReservationApproved, KindReservationRejected, KindReservationCheckedOut,
			KindReservationReturned, KindReservationOverdue,
			KindFeeAssessed, KindFeePaid, KindFeeWaived, KindFeeOverdue,
			KindApplicationApproved, KindApplicationRejected, KindBookingConfirmed,
		}
		for _, kind := range kinds {
			_, _, err := Render(Event{Kind: kind, Payload: map[string]string{}})
			assert.NoError(t, err, "kind %s", kind)
		}
	})

	t.Run("payload values are escaped", func(t *testing.T) {
		_, body, err := Render(Event{
			Kind:    KindReservationApproved,
			Payload: map[string]string{"Name": "<script>alert(1)</script>", "BookTitle": "T", "Reference": "r"},
		})
		require.NoError(t, err)
		assert.NotContains(t, body, "<script>")
	})
}
