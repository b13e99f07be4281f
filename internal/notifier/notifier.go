// Package notifier sends templated emails for lifecycle events. Delivery is
// best-effort: every attempt is recorded in the notifications outbox table,
// failures are logged and swallowed so that the state transition that caused
// the event is never rolled back by an email problem.
package notifier

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

type EventKind string

const (
	KindReservationApproved   EventKind = "reservation_approved"
	KindReservationRejected   EventKind = "reservation_rejected"
	KindReservationCheckedOut EventKind = "reservation_checked_out"
	KindReservationReturned   EventKind = "reservation_returned"
	KindReservationOverdue    EventKind = "reservation_overdue"
	KindFeeAssessed           EventKind = "fee_assessed"
	KindFeePaid               EventKind = "fee_paid"
	KindFeeWaived             EventKind = "fee_waived"
	KindFeeOverdue            EventKind = "fee_overdue"
	KindApplicationApproved   EventKind = "application_approved"
	KindApplicationRejected   EventKind = "application_rejected"
	KindBookingConfirmed      EventKind = "booking_confirmed"
)

// Event describes one notification to deliver.
type Event struct {
	Kind      EventKind
	Recipient string
	Payload   map[string]string
}

// Mailer delivers a rendered message. Implemented by SMTPMailer in
// production and by fakes in tests.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Dispatcher hands a stored notification to the background task queue for
// asynchronous delivery.
type Dispatcher interface {
	EnqueueNotification(id uint) error
}

// Notifier renders events and records them in the outbox. With a dispatcher
// configured, delivery happens asynchronously on the task queue; otherwise it
// happens inline on a best-effort basis.
type Notifier struct {
	db         *gorm.DB
	mailer     Mailer
	dispatcher Dispatcher
}

// New creates a notifier. The mailer may be nil (events are recorded but not
// delivered, useful without SMTP configuration).
func New(db *gorm.DB, mailer Mailer) *Notifier {
	return &Notifier{db: db, mailer: mailer}
}

// SetDispatcher switches delivery to the background task queue. Must be
// called before the notifier is shared across goroutines.
func (n *Notifier) SetDispatcher(d Dispatcher) {
	n.dispatcher = d
}

// Notify renders and records the event, then delivers it. It never returns
// an error: the returned bool reports whether the event was handed off
// successfully, and callers are free to ignore it.
func (n *Notifier) Notify(ctx context.Context, event Event) bool {
	subject, body, err := Render(event)
	if err != nil {
		log.Printf("Notification %s for %s dropped: %v", event.Kind, event.Recipient, err)
		return false
	}

	record := &entities.Notification{
		Kind:      string(event.Kind),
		Recipient: event.Recipient,
		Subject:   subject,
		Body:      body,
	}
	if err := n.db.Create(record).Error; err != nil {
		log.Printf("Failed to record notification %s for %s: %v", event.Kind, event.Recipient, err)
		return false
	}

	if n.dispatcher != nil {
		if err := n.dispatcher.EnqueueNotification(record.ID); err != nil {
			log.Printf("Failed to enqueue notification %d: %v", record.ID, err)
			return false
		}
		return true
	}

	return n.deliver(ctx, record)
}

// deliver sends inline and stores the outcome on the outbox row.
func (n *Notifier) deliver(ctx context.Context, record *entities.Notification) bool {
	if n.mailer == nil {
		return true
	}

	err := n.mailer.Send(ctx, record.Recipient, record.Subject, record.Body)
	if err != nil {
		log.Printf("Failed to send notification %d (%s) to %s: %v", record.ID, record.Kind, record.Recipient, err)
		n.db.Model(record).Update("error", err.Error())
		return false
	}

	now := time.Now()
	n.db.Model(record).Update("sent_at", now)
	return true
}
