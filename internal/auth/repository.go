package auth

import (
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(userID uint) (User, error)
	FindRoleByName(name string) (*UserRole, error)
	Update(user *User) error
	UpdateActive(userID uint, active bool) error
	ListByRole(roleName string, limit, offset int) ([]User, int64, error)
	ListRecent(limit int) ([]User, error)
	CountByRole() (map[string]int64, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(user *User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.Create(user).Error
}

// Find user by email (used in login)
func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Preload("Role").Where("email = ?", strings.ToLower(email)).First(&u).Error
	return &u, err
}

// Find user by ID (with role preload)
func (r *repository) FindByID(userID uint) (User, error) {
	var user User
	err := r.db.Preload("Role").First(&user, userID).Error
	return user, err
}

func (r *repository) FindRoleByName(name string) (*UserRole, error) {
	var role UserRole
	err := r.db.Where("role_name = ?", name).First(&role).Error
	return &role, err
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

func (r *repository) UpdateActive(userID uint, active bool) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("active", active).Error
}

// ListByRole returns paginated users of a role plus the total count.
func (r *repository) ListByRole(roleName string, limit, offset int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.Model(&User{}).
		Joins("JOIN user_roles ON users.role_id = user_roles.id").
		Where("user_roles.role_name = ?", roleName)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Role").
		Order("users.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	return users, total, err
}

func (r *repository) ListRecent(limit int) ([]User, error) {
	var users []User
	err := r.db.Preload("Role").
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *repository) CountByRole() (map[string]int64, error) {
	type row struct {
		RoleName string
		Count    int64
	}
	var rows []row
	err := r.db.Table("users").
		Select("user_roles.role_name, COUNT(*) as count").
		Joins("JOIN user_roles ON users.role_id = user_roles.id").
		Group("user_roles.role_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.RoleName] = r.Count
	}
	return counts, nil
}
