package notification

import "time"

// Notification kinds.
const (
	TypeEventApproved = "event_approved"
	TypeEventRejected = "event_rejected"
	TypeRegistration  = "registration"
	TypeSystem        = "system"
)

type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Type    string `gorm:"type:varchar(50);not null" json:"type"`
	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	EventID *uint  `json:"event_id,omitempty"`

	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
