package auth

import (
	"time"
)

// Role names used across middleware and services.
const (
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
	RoleAdmin       = "admin"
)

// Participant segments. Events carry a matching eligibility filter.
const (
	ParticipantTypeIIIT    = "iiit"
	ParticipantTypeNonIIIT = "non-iiit"
)

type UserRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description"`
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	FullName     string   `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null" json:"-"`
	Phone        string   `gorm:"type:varchar(20)" json:"phone"`
	RoleID       uint     `gorm:"not null" json:"role_id"`
	Role         UserRole `gorm:"foreignKey:RoleID" json:"role"`

	// Only meaningful for participants; empty for organizers/admins.
	ParticipantType string `gorm:"type:varchar(20)" json:"participant_type,omitempty"`

	// Organizers may belong to a club.
	ClubName string `gorm:"type:varchar(255)" json:"club_name,omitempty"`

	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ============================
// Request / response DTOs

type RegisterRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Phone           string `json:"phone"`
	ParticipantType string `json:"participant_type" binding:"required,oneof=iiit non-iiit"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ProvisionOrganizerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	ClubName string `json:"club_name"`
}

type UpdateUserStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type UserResponse struct {
	ID              uint   `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ParticipantType string `json:"participant_type,omitempty"`
	ClubName        string `json:"club_name,omitempty"`
	Active          bool   `json:"active"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Role:            u.Role.RoleName,
		ParticipantType: u.ParticipantType,
		ClubName:        u.ClubName,
		Active:          u.Active,
	}
}
