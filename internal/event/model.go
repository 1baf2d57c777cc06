package event

import (
	"time"

	"gorm.io/datatypes"
)

// Approval status values (admin-owned, orthogonal to lifecycle).
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Lifecycle values, derived from approval status + close flag + clock.
const (
	LifecycleDraft     = "draft"
	LifecyclePublished = "published"
	LifecycleOngoing   = "ongoing"
	LifecycleCompleted = "completed"
	LifecycleClosed    = "closed"
)

// Event types.
const (
	TypeEvent       = "event"
	TypeWorkshop    = "workshop"
	TypeCompetition = "competition"
	TypeSeminar     = "seminar"
	TypeMerchandise = "merchandise"
)

// Eligibility filters, compared against the participant's segment.
const (
	EligibilityAll     = "all"
	EligibilityIIIT    = "iiit"
	EligibilityNonIIIT = "non-iiit"
)

// Participation modes.
const (
	ModeIndividual = "individual"
	ModeTeam       = "team"
	ModeBoth       = "both"
)

type Event struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OrganizerID   uint   `gorm:"not null;index" json:"organizer_id"`
	OrganizerName string `gorm:"type:varchar(255)" json:"organizer_name"`
	ClubName      string `gorm:"type:varchar(255)" json:"club_name,omitempty"`

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Venue       string `gorm:"type:varchar(255)" json:"venue"`
	Category    string `gorm:"type:varchar(100);index" json:"category"`
	EventType   string `gorm:"type:varchar(50);not null" json:"event_type"`
	Eligibility string `gorm:"type:varchar(20);default:'all'" json:"eligibility"`

	StartTime            time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime              time.Time  `gorm:"not null" json:"end_time"`
	TimeOfDay            string     `gorm:"type:varchar(50)" json:"time_of_day,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	Capacity   int `gorm:"not null" json:"capacity"`
	Registered int `gorm:"default:0" json:"registered"`

	ParticipantMode string `gorm:"type:varchar(20);default:'individual'" json:"participant_mode"`
	MinTeamSize     int    `json:"min_team_size,omitempty"`
	MaxTeamSize     int    `json:"max_team_size,omitempty"`

	// Minor currency units. Zero means free.
	RegistrationFee int `gorm:"default:0" json:"registration_fee"`

	Status          string `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`
	LifecycleStatus string `gorm:"type:varchar(20);default:'draft'" json:"lifecycle_status"`
	IsClosed        bool   `gorm:"default:false" json:"is_closed"`

	// Ordered field descriptors; frozen after the first registration.
	CustomFields datatypes.JSON `gorm:"type:jsonb" json:"custom_fields,omitempty"`

	// Merchandise block, only meaningful when EventType == merchandise.
	MerchItemName    string `gorm:"type:varchar(255)" json:"merch_item_name,omitempty"`
	MerchDescription string `gorm:"type:text" json:"merch_description,omitempty"`
	PurchaseLimit    int    `json:"purchase_limit,omitempty"`
	MerchStock       int    `json:"merch_stock,omitempty"`

	Variants []Variant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// Variant is one purchasable merchandise variant with its own stock.
type Variant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID uint   `gorm:"not null;index" json:"event_id"`
	SKU     string `gorm:"type:varchar(100)" json:"sku"`
	Size    string `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color   string `gorm:"type:varchar(50)" json:"color,omitempty"`
	Price   int    `gorm:"not null" json:"price"`
	Stock   int    `gorm:"not null" json:"stock"`
}

func (Variant) TableName() string {
	return "merch_variants"
}

// AllowsTeams reports whether team registrations are accepted.
func (e *Event) AllowsTeams() bool {
	return e.ParticipantMode == ModeTeam || e.ParticipantMode == ModeBoth
}

// CustomField is one descriptor inside Event.CustomFields.
type CustomField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text, number, boolean, select, multiselect
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// ============================
// Request DTOs

type VariantInput struct {
	SKU   string `json:"sku"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Price int    `json:"price" binding:"min=0"`
	Stock int    `json:"stock" binding:"min=0"`
}

type MerchandiseInput struct {
	ItemName      string         `json:"item_name"`
	Description   string         `json:"description"`
	PurchaseLimit int            `json:"purchase_limit"`
	Stock         int            `json:"stock"`
	Variants      []VariantInput `json:"variants"`
}

type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Category    string `json:"category"`
	EventType   string `json:"event_type" binding:"required,oneof=event workshop competition seminar merchandise"`
	Eligibility string `json:"eligibility" binding:"omitempty,oneof=all iiit non-iiit"`
	ClubName    string `json:"club_name"`

	StartTime            time.Time  `json:"start_time" binding:"required"`
	EndTime              time.Time  `json:"end_time" binding:"required"`
	TimeOfDay            string     `json:"time_of_day"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	Capacity        int    `json:"capacity"`
	ParticipantMode string `json:"participant_mode" binding:"omitempty,oneof=individual team both"`
	MinTeamSize     int    `json:"min_team_size"`
	MaxTeamSize     int    `json:"max_team_size"`
	RegistrationFee int    `json:"registration_fee" binding:"min=0"`

	CustomFields []CustomField     `json:"custom_fields"`
	Merchandise  *MerchandiseInput `json:"merchandise"`

	PublishNow bool `json:"publish_now"`
}

// UpdateEventRequest is a patch; nil pointers mean "leave unchanged".
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Venue       *string `json:"venue"`
	Category    *string `json:"category"`
	Eligibility *string `json:"eligibility"`

	StartTime            *time.Time `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	TimeOfDay            *string    `json:"time_of_day"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	Capacity        *int    `json:"capacity"`
	ParticipantMode *string `json:"participant_mode"`
	MinTeamSize     *int    `json:"min_team_size"`
	MaxTeamSize     *int    `json:"max_team_size"`
	RegistrationFee *int    `json:"registration_fee"`

	CustomFields []CustomField `json:"custom_fields"`

	LifecycleStatus *string `json:"lifecycle_status"`
	IsClosed        *bool   `json:"is_closed"`
}

type ApproveEventRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason"`
}

// ListQuery carries the event listing filters.
type ListQuery struct {
	Category  string
	Status    string
	Organizer *uint
	ClubNames []string
	FromDate  *time.Time
	ToDate    *time.Time
	TeamsOnly bool
	Search    string
	Trending  bool

	Limit  int
	Offset int
	SortBy string // start_time (default), created_at, title
	Order  string // asc (default), desc

	// Filled from the actor by the service, not the client.
	CallerIsAdmin   bool
	ParticipantType string
}
