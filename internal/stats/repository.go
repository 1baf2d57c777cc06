package stats

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/internal/registration"
)

// Repository recomputes the projections on demand; nothing is cached
// or maintained incrementally.
type Repository interface {
	EventCounts(ctx context.Context, now time.Time) (EventCounts, error)
	RegistrationCounts(ctx context.Context) (RegistrationCounts, error)
	UserCountsByRole(ctx context.Context) (map[string]int64, error)
	EventStats(ctx context.Context, eventID uint) (EventStats, error)
	RecentActivity(ctx context.Context, limit int) (RecentActivity, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) EventCounts(ctx context.Context, now time.Time) (EventCounts, error) {
	var out EventCounts
	rows := []struct {
		Status string
		N      int64
	}{}
	err := r.db.WithContext(ctx).Model(&event.Event{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return out, err
	}
	for _, row := range rows {
		out.Total += row.N
		switch row.Status {
		case event.StatusDraft:
			out.Draft = row.N
		case event.StatusPending:
			out.Pending = row.N
		case event.StatusApproved:
			out.Approved = row.N
		case event.StatusRejected:
			out.Rejected = row.N
		}
	}
	err = r.db.WithContext(ctx).Model(&event.Event{}).
		Where("status = ? AND start_time >= ?", event.StatusApproved, now).
		Count(&out.Upcoming).Error
	return out, err
}

func (r *repository) RegistrationCounts(ctx context.Context) (RegistrationCounts, error) {
	var out RegistrationCounts
	rows := []struct {
		Status string
		N      int64
	}{}
	err := r.db.WithContext(ctx).Model(&registration.Registration{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return out, err
	}
	for _, row := range rows {
		out.Total += row.N
		switch row.Status {
		case registration.StatusPending:
			out.Pending = row.N
		case registration.StatusConfirmed, registration.StatusApproved:
			out.Confirmed += row.N
		case registration.StatusRejected:
			out.Rejected = row.N
		}
	}

	err = r.db.WithContext(ctx).Model(&registration.Registration{}).
		Where("checked_in = true").
		Count(&out.CheckedIn).Error
	if err != nil {
		return out, err
	}

	err = r.db.WithContext(ctx).Model(&registration.Registration{}).
		Select("payment_status, COUNT(*) AS count, COALESCE(SUM(amount_paid), 0) AS amount_paid").
		Group("payment_status").
		Scan(&out.Payments).Error
	return out, err
}

func (r *repository) UserCountsByRole(ctx context.Context) (map[string]int64, error) {
	rows := []struct {
		RoleName string
		N        int64
	}{}
	err := r.db.WithContext(ctx).Model(&auth.User{}).
		Select("user_roles.role_name, COUNT(*) AS n").
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Group("user_roles.role_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.RoleName] = row.N
	}
	return out, nil
}

func (r *repository) EventStats(ctx context.Context, eventID uint) (EventStats, error) {
	out := EventStats{EventID: eventID}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&registration.Registration{}).Where("event_id = ?", eventID)
	}

	if err := base().Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := base().Where("status IN (?)",
		[]string{registration.StatusConfirmed, registration.StatusApproved}).
		Count(&out.Confirmed).Error; err != nil {
		return out, err
	}
	if err := base().Where("status = ?", registration.StatusPending).Count(&out.Pending).Error; err != nil {
		return out, err
	}
	if err := base().Where("status = ?", registration.StatusRejected).Count(&out.Cancelled).Error; err != nil {
		return out, err
	}
	if err := base().Where("checked_in = true").Count(&out.CheckedIn).Error; err != nil {
		return out, err
	}
	if err := base().Where("payment_status = ?", registration.PaymentPending).Count(&out.PaymentPending).Error; err != nil {
		return out, err
	}
	err := base().Where("payment_status IN (?)",
		[]string{registration.PaymentPaid, registration.PaymentFree}).
		Count(&out.PaymentCompleted).Error
	return out, err
}

func (r *repository) RecentActivity(ctx context.Context, limit int) (RecentActivity, error) {
	var out RecentActivity
	err := r.db.WithContext(ctx).Model(&auth.User{}).
		Select("id, full_name, email, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&out.Users).Error
	if err != nil {
		return out, err
	}
	err = r.db.WithContext(ctx).Model(&event.Event{}).
		Select("id, title, status, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&out.Events).Error
	return out, err
}
