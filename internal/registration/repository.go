package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/campus-event-backend/internal/event"
)

type Repository interface {
	// Commit inserts the registration together with its capacity and
	// stock effects in one transaction. The capacity increment only
	// applies while registered < capacity, the stock decrement only
	// while stock >= quantity; a failed guard aborts the whole commit
	// with ErrFull or ErrOutOfStock.
	Commit(ctx context.Context, reg *Registration, decrementEventStock bool) error

	GetByID(ctx context.Context, id uint) (*Registration, error)
	FindActive(ctx context.Context, eventID, userID uint) (*Registration, error)
	SumQuantity(ctx context.Context, eventID, userID uint) (int, error)

	Update(ctx context.Context, reg *Registration) error
	// UpdateWithDelta saves the registration and shifts the event's
	// registered counter by delta in the same transaction.
	UpdateWithDelta(ctx context.Context, reg *Registration, delta int) error

	// MarkCheckedIn flips the check-in flag at most once. It reports
	// false when the registration was already checked in or is not in
	// a confirmed state.
	MarkCheckedIn(ctx context.Context, id uint, now time.Time) (bool, error)

	ListByEvent(ctx context.Context, eventID uint, q ListQuery) ([]Registration, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]Registration, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// IsDuplicateTicket reports whether an insert failed on the ticket id
// unique index, meaning the caller should mint a fresh id and retry.
func IsDuplicateTicket(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key") &&
		strings.Contains(err.Error(), "ticket_id")
}

func (r *repository) Commit(ctx context.Context, reg *Registration, decrementEventStock bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&event.Event{}).
			Where("id = ? AND registered < capacity", reg.EventID).
			Update("registered", gorm.Expr("registered + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrFull
		}

		if reg.VariantID != nil {
			res = tx.Model(&event.Variant{}).
				Where("id = ? AND stock >= ?", *reg.VariantID, reg.Quantity).
				Update("stock", gorm.Expr("stock - ?", reg.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}
		} else if decrementEventStock {
			res = tx.Model(&event.Event{}).
				Where("id = ? AND merch_stock >= ?", reg.EventID, reg.Quantity).
				Update("merch_stock", gorm.Expr("merch_stock - ?", reg.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}
		}

		return tx.Create(reg).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Registration, error) {
	var reg Registration
	err := r.db.WithContext(ctx).Preload("Event").First(&reg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindActive returns a user's non-rejected registration for an event,
// or nil when none exists.
func (r *repository) FindActive(ctx context.Context, eventID, userID uint) (*Registration, error) {
	var reg Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND status <> ?", eventID, userID, StatusRejected).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// SumQuantity totals a user's merchandise quantities for an event.
// Cancelled purchases still count: cancellation does not restock.
func (r *repository) SumQuantity(ctx context.Context, eventID, userID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Registration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *repository) Update(ctx context.Context, reg *Registration) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

func (r *repository) UpdateWithDelta(ctx context.Context, reg *Registration, delta int) error {
	if delta == 0 {
		return r.Update(ctx, reg)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(reg).Error; err != nil {
			return err
		}
		return tx.Model(&event.Event{}).
			Where("id = ?", reg.EventID).
			Update("registered", gorm.Expr("GREATEST(registered + ?, 0)", delta)).Error
	})
}

func (r *repository) MarkCheckedIn(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND checked_in = false AND status IN (?)", id, []string{StatusConfirmed, StatusApproved}).
		Updates(map[string]interface{}{
			"checked_in":    true,
			"check_in_time": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ListByEvent(ctx context.Context, eventID uint, q ListQuery) ([]Registration, int64, error) {
	var regs []Registration
	var total int64

	query := r.db.WithContext(ctx).Model(&Registration{}).Where("event_id = ?", eventID)

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.PaymentStatus != "" {
		query = query.Where("payment_status = ?", q.PaymentStatus)
	}
	if q.CheckedIn != nil {
		query = query.Where("checked_in = ?", *q.CheckedIn)
	}
	if q.Search != "" {
		ilike := "%" + q.Search + "%"
		query = query.Where(
			"participant_name ILIKE ? OR participant_email ILIKE ? OR ticket_id ILIKE ? OR team_name ILIKE ?",
			ilike, ilike, ilike, ilike,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}

	err := query.Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&regs).Error

	return regs, total, err
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Registration, error) {
	var regs []Registration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error
	return regs, err
}
