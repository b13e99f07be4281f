package entities

import (
	"time"

	"gorm.io/gorm"
)

// NewsPost is a library announcement authored by staff.
type NewsPost struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AuthorID    uint           `gorm:"index" json:"author_id"`
	Title       string         `gorm:"size:512" json:"title"`
	Body        string         `gorm:"type:text" json:"body"`
	Published   bool           `gorm:"index;default:false" json:"published"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Author      User           `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (NewsPost) TableName() string {
	return "news_posts"
}

// Notification is an outbox row recording every email the notifier attempted,
// including failures. Delivery errors are stored here instead of being
// surfaced to the caller.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Kind      string     `gorm:"index;size:50" json:"kind"`
	Recipient string     `gorm:"size:255" json:"recipient"`
	Subject   string     `gorm:"size:512" json:"subject"`
	Body      string     `gorm:"type:text" json:"-"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Error     string     `gorm:"size:1024" json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
