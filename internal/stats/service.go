package stats

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
)

var ErrForbidden = errors.New("not allowed to view these statistics")

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	EventStats(ctx context.Context, actor *auth.User, eventID uint) (*EventStats, error)
	RecentActivity(ctx context.Context, limit int) (*RecentActivity, error)
}

type service struct {
	repo   Repository
	events event.Repository
	now    func() time.Time
}

func NewService(repo Repository, events event.Repository) Service {
	return &service{repo: repo, events: events, now: time.Now}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.repo.UserCountsByRole(ctx)
	if err != nil {
		return nil, err
	}
	eventCounts, err := s.repo.EventCounts(ctx, s.now())
	if err != nil {
		return nil, err
	}
	regCounts, err := s.repo.RegistrationCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Users: users, Events: eventCounts, Registrations: regCounts}, nil
}

func (s *service) EventStats(ctx context.Context, actor *auth.User, eventID uint) (*EventStats, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor.Role.RoleName != auth.RoleAdmin &&
		!(actor.Role.RoleName == auth.RoleOrganizer && e.OrganizerID == actor.ID) {
		return nil, ErrForbidden
	}
	out, err := s.repo.EventStats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) RecentActivity(ctx context.Context, limit int) (*RecentActivity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	out, err := s.repo.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
