package registration

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
)

// Registration status values. "approved" is accepted at the boundary as
// an alias of confirmed.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusApproved  = "approved"
)

// Payment status values.
const (
	PaymentFree     = "free"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// CountsTowardCapacity reports whether a registration in the given
// status occupies a capacity slot.
func CountsTowardCapacity(status string) bool {
	return status == StatusPending || status == StatusConfirmed || status == StatusApproved
}

type Registration struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EventID uint `gorm:"not null;index;index:idx_reg_event_user;index:idx_reg_event_status" json:"event_id"`
	UserID  uint `gorm:"not null;index;index:idx_reg_event_user" json:"user_id"`

	Event event.Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  auth.User   `gorm:"foreignKey:UserID" json:"-"`

	// Snapshot of the participant at registration time.
	ParticipantName  string `gorm:"type:varchar(255)" json:"participant_name"`
	ParticipantEmail string `gorm:"type:varchar(255)" json:"participant_email"`
	ParticipantPhone string `gorm:"type:varchar(20)" json:"participant_phone,omitempty"`

	Status string `gorm:"type:varchar(20);default:'pending';index:idx_reg_event_status" json:"status"`

	PaymentStatus     string `gorm:"type:varchar(20);default:'free'" json:"payment_status"`
	PaymentAmount     int    `gorm:"default:0" json:"payment_amount"`
	AmountPaid        int    `gorm:"default:0" json:"amount_paid"`
	PaymentMethod     string `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	TransactionID     string `gorm:"type:varchar(255)" json:"transaction_id,omitempty"`
	PaymentScreenshot string `gorm:"type:text" json:"payment_screenshot,omitempty"`

	// Team fields, set only when the event allows teams.
	TeamName    string         `gorm:"type:varchar(255)" json:"team_name,omitempty"`
	TeamLeader  string         `gorm:"type:varchar(255)" json:"team_leader,omitempty"`
	TeamMembers datatypes.JSON `gorm:"type:jsonb" json:"team_members,omitempty"`

	// Merchandise fields, set only for merchandise events.
	VariantID  *uint  `json:"variant_id,omitempty"`
	VariantSKU string `gorm:"type:varchar(100)" json:"variant_sku,omitempty"`
	Size       string `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color      string `gorm:"type:varchar(50)" json:"color,omitempty"`
	Quantity   int    `gorm:"default:0" json:"quantity,omitempty"`
	UnitPrice  int    `gorm:"default:0" json:"unit_price,omitempty"`
	TotalPrice int    `gorm:"default:0" json:"total_price,omitempty"`

	// Responses keyed by custom field id, stored verbatim.
	CustomFieldResponses datatypes.JSON `gorm:"type:jsonb" json:"custom_field_responses,omitempty"`

	CheckedIn   bool       `gorm:"default:false" json:"checked_in"`
	CheckInTime *time.Time `json:"check_in_time,omitempty"`

	TicketID       string     `gorm:"type:varchar(100);uniqueIndex" json:"ticket_id"`
	TicketQR       string     `gorm:"type:text" json:"ticket_qr,omitempty"`
	TicketIssuedAt *time.Time `json:"ticket_issued_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Registration) TableName() string {
	return "registrations"
}

// ============================
// Request DTOs

type MerchPurchaseInput struct {
	VariantSKU string `json:"variant_sku"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	Quantity   int    `json:"quantity"`
}

type RegisterRequest struct {
	EventID uint `json:"event_id" binding:"required"`

	TeamName    string   `json:"team_name"`
	TeamMembers []string `json:"team_members"`

	CustomFieldResponses map[string]interface{} `json:"custom_field_responses"`

	Merchandise *MerchPurchaseInput `json:"merchandise"`
}

type UpdatePaymentRequest struct {
	PaymentStatus     string `json:"payment_status" binding:"required,oneof=free pending paid failed refunded"`
	PaymentMethod     string `json:"payment_method"`
	TransactionID     string `json:"transaction_id"`
	AmountPaid        int    `json:"amount_paid"`
	PaymentScreenshot string `json:"payment_screenshot"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed rejected approved"`
}

// ListQuery filters an event's registration listing.
type ListQuery struct {
	Status        string
	PaymentStatus string
	CheckedIn     *bool
	Search        string

	Limit  int
	Offset int
}
