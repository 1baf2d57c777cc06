package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sharath018/campus-event-backend/config"
	"github.com/sharath018/campus-event-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service interface {
	Register(in RegisterRequest) (*User, error)
	Login(in LoginRequest) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(userID uint) (User, error)

	// Admin-only: provision organizer accounts and toggle user status.
	ProvisionOrganizer(in ProvisionOrganizerRequest) (*User, error)
	SetUserActive(userID uint, active bool) error
	ListUsersByRole(roleName string, limit, offset int) ([]User, int64, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r Repository, cfg *config.Config) Service {
	return &service{
		repo:          r,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

// =============================
// Register (participants only)
// =============================

func (s *service) Register(in RegisterRequest) (*User, error) {
	role, err := s.repo.FindRoleByName(RoleParticipant)
	if err != nil {
		return nil, errors.New("participant role not seeded")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:        in.FullName,
		Email:           strings.ToLower(in.Email),
		PasswordHash:    string(hash),
		Phone:           in.Phone,
		RoleID:          role.ID,
		ParticipantType: in.ParticipantType,
		Active:          true,
	}

	if err := s.repo.Create(user); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.New("an account with this email already exists")
		}
		return nil, err
	}

	user.Role = *role
	return user, nil
}

// =============================
// Login
// =============================

func (s *service) Login(in LoginRequest) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("couldn't find your account")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	if !user.Active {
		return nil, nil, errors.New("your account is inactive")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, user, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role.RoleName,
		"exp":     time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", errors.New("invalid token claims")
	}

	userID := uint(claims["user_id"].(float64))
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return "", errors.New("user not found")
	}

	return s.generateAccessToken(&user)
}

// =============================
// Organizer provisioning (admin)
// =============================

func (s *service) ProvisionOrganizer(in ProvisionOrganizerRequest) (*User, error) {
	role, err := s.repo.FindRoleByName(RoleOrganizer)
	if err != nil {
		return nil, errors.New("organizer role not seeded")
	}

	password := generateTempPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     in.FullName,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
		Phone:        in.Phone,
		RoleID:       role.ID,
		ClubName:     in.ClubName,
		Active:       true,
	}

	if err := s.repo.Create(user); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.New("an account with this email already exists")
		}
		return nil, err
	}

	// Credential mail is best-effort; the account exists either way and
	// an admin can re-send credentials later.
	if err := utils.SendOrganizerProvisionEmail(user.Email, user.FullName, password); err != nil {
		log.Printf("⚠️ failed to send provision email to %s: %v", user.Email, err)
	}

	user.Role = *role
	return user, nil
}

func (s *service) SetUserActive(userID uint, active bool) error {
	if _, err := s.repo.FindByID(userID); err != nil {
		return errors.New("user not found")
	}
	return s.repo.UpdateActive(userID, active)
}

func (s *service) ListUsersByRole(roleName string, limit, offset int) ([]User, int64, error) {
	return s.repo.ListByRole(strings.ToLower(roleName), limit, offset)
}

func (s *service) GetUserByID(userID uint) (User, error) {
	return s.repo.FindByID(userID)
}

func generateTempPassword() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
