package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct internal message between accounts. Unread rows drive
// the dashboard badge count.
type Message struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	SenderName  string     `gorm:"column:sender_name;not null"`
	Body        string     `gorm:"column:body;not null"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
