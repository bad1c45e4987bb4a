package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusUnread = "unread"
	StatusRead   = "read"

	PurposeApply    = "apply"
	PurposeDecision = "decision"
)

// Notification signals pending work to reviewers. The core only writes
// rows; rendering and delivery belong to the consumers.
type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID string    `gorm:"type:varchar(20);not null;index:idx_notification_employee"`
	Status     string    `gorm:"type:varchar(10);not null;default:'unread'"`
	Purpose    string    `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
}

func (Notification) TableName() string { return "notification" }
