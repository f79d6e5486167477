package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is one entry of the front-of-house event feed.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Event     string         `gorm:"type:varchar(50);not null;index" json:"event"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
}
