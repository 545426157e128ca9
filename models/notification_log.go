// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationVisitReceipt = "visit_receipt"
	NotificationDailySummary = "daily_summary"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

type NotificationLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         string     `gorm:"type:varchar(20);index" json:"kind"` // visit_receipt, daily_summary
	ClientID     *uuid.UUID `gorm:"type:uuid;index" json:"clientId,omitempty"`
	Recipient    string     `gorm:"type:varchar(32)" json:"recipient"`
	Message      string     `gorm:"type:text" json:"message"`
	Status       string     `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time  `json:"sentAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
