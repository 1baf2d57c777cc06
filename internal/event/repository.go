package event

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	Update(ctx context.Context, e *Event) error
	UpdateLifecycle(ctx context.Context, id uint, lifecycle string) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, q ListQuery) ([]Event, int64, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]Event, error)

	// HasRegistrations reports whether any registration row exists for
	// the event, regardless of status. Drives the custom-field freeze.
	HasRegistrations(ctx context.Context, eventID uint) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).Preload("Variants").First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) Update(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// UpdateLifecycle persists just the derived lifecycle column.
func (r *repository) UpdateLifecycle(ctx context.Context, id uint, lifecycle string) error {
	return r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Update("lifecycle_status", lifecycle).Error
}

// Delete removes the event and cascades to its registrations and variants.
func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM registrations WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&Variant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Event{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// fuzzyPattern interleaves ".*" between the search characters so that
// "wrk" still matches "workshop". Whitespace is dropped.
func fuzzyPattern(search string) string {
	var parts []string
	for _, ch := range search {
		if ch == ' ' || ch == '\t' {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(ch)))
	}
	return strings.Join(parts, ".*")
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.db.WithContext(ctx).Model(&Event{})

	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Organizer != nil {
		query = query.Where("organizer_id = ?", *q.Organizer)
	}
	if len(q.ClubNames) > 0 {
		query = query.Where("club_name IN (?)", q.ClubNames)
	}
	if q.FromDate != nil {
		query = query.Where("start_time >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		query = query.Where("start_time <= ?", *q.ToDate)
	}
	if q.TeamsOnly {
		query = query.Where("participant_mode IN (?)", []string{ModeTeam, ModeBoth})
	}

	// Non-admin participants only see events open to their segment.
	if !q.CallerIsAdmin && q.ParticipantType != "" {
		query = query.Where("eligibility IN (?)", []string{EligibilityAll, q.ParticipantType})
	}

	if q.Search != "" {
		ilike := "%" + q.Search + "%"
		query = query.Where(
			"title ILIKE ? OR organizer_name ILIKE ? OR description ILIKE ? OR venue ILIKE ? OR title ~* ?",
			ilike, ilike, ilike, ilike, fuzzyPattern(q.Search),
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "start_time"
	switch q.SortBy {
	case "created_at", "title", "start_time":
		sortBy = q.SortBy
	}
	order := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		order = "DESC"
	}

	if q.Limit <= 0 {
		q.Limit = 20
	}

	err := query.Preload("Variants").
		Order(sortBy + " " + order).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&events).Error

	return events, total, err
}

// Trending ranks approved events by registrations created since the
// cutoff, keeping the top N.
func (r *repository) Trending(ctx context.Context, since time.Time, limit int) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Model(&Event{}).
		Select("events.*, COUNT(registrations.id) AS recent_count").
		Joins("JOIN registrations ON registrations.event_id = events.id AND registrations.created_at >= ?", since).
		Where("events.status = ?", StatusApproved).
		Group("events.id").
		Order("recent_count DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *repository) HasRegistrations(ctx context.Context, eventID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("registrations").
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count > 0, err
}
