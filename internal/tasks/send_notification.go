package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// MessageSender delivers a rendered notification. Satisfied by the SMTP
// mailer from internal/notifier.
type MessageSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SendNotificationTask delivers one outbox notification by ID.
type SendNotificationTask struct {
	NotificationID uint `json:"notification_id"`
}

// Config returns the queue configuration for notification delivery tasks.
func (t SendNotificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_notification",
		MaxAttempts: 3,
		Backoff:     2 * time.Minute,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendNotificationProcessor creates a processor that loads the outbox row,
// delivers it and records the outcome on the row.
func SendNotificationProcessor(db *gorm.DB, sender MessageSender) backlite.QueueProcessor[SendNotificationTask] {
	return func(ctx context.Context, task SendNotificationTask) error {
		var record entities.Notification
		if err := db.First(&record, task.NotificationID).Error; err != nil {
			// A deleted outbox row is not retryable.
			log.Printf("[TASK] Notification %d no longer exists, dropping", task.NotificationID)
			return nil
		}
		if record.SentAt != nil {
			return nil
		}

		if sender == nil {
			return fmt.Errorf("no message sender configured")
		}

		if err := sender.Send(ctx, record.Recipient, record.Subject, record.Body); err != nil {
			db.Model(&record).Update("error", err.Error())
			return fmt.Errorf("send notification %d: %w", record.ID, err)
		}

		now := time.Now()
		return db.Model(&record).Updates(map[string]any{
			"sent_at": now,
			"error":   "",
		}).Error
	}
}

// NewSendNotificationQueue creates a backlite queue for notification delivery.
func NewSendNotificationQueue(db *gorm.DB, sender MessageSender) backlite.Queue {
	return backlite.NewQueue(SendNotificationProcessor(db, sender))
}

// NotificationDispatcher adapts the task client to the notifier's Dispatcher
// interface.
type NotificationDispatcher struct {
	client *Client
}

// NewNotificationDispatcher creates a dispatcher backed by the task queue.
func NewNotificationDispatcher(client *Client) *NotificationDispatcher {
	return &NotificationDispatcher{client: client}
}

// EnqueueNotification queues asynchronous delivery of an outbox row.
func (d *NotificationDispatcher) EnqueueNotification(id uint) error {
	_, err := d.client.Add(SendNotificationTask{NotificationID: id}).Save()
	return err
}
