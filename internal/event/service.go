package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/utils"
)

// Service wraps event management: creation, editing under lifecycle
// rules, admin approval and listing.
type Service interface {
	CreateEvent(ctx context.Context, actor *auth.User, req CreateEventRequest, ip string) (*Event, error)
	GetEvent(ctx context.Context, actor *auth.User, id uint) (*Event, error)
	UpdateEvent(ctx context.Context, actor *auth.User, id uint, req UpdateEventRequest, ip string) (*Event, error)
	DeleteEvent(ctx context.Context, actor *auth.User, id uint, ip string) error
	PublishEvent(ctx context.Context, actor *auth.User, id uint, ip string) (*Event, error)
	ReviewEvent(ctx context.Context, actor *auth.User, id uint, req ApproveEventRequest, ip string) (*Event, error)
	ListEvents(ctx context.Context, actor *auth.User, q ListQuery) ([]Event, int64, error)
}

type service struct {
	repo       Repository
	audit      AuditLogger
	defaultCap int
	now        func() time.Time
}

// AuditLogger is the slice of the audit log service this package needs.
type AuditLogger interface {
	LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error
}

func NewService(repo Repository, audit AuditLogger, defaultCapacity int) Service {
	if defaultCapacity < 1 {
		defaultCapacity = 100
	}
	return &service{repo: repo, audit: audit, defaultCap: defaultCapacity, now: time.Now}
}

const trendingCacheKey = "events:trending"

func validateTimes(start, end time.Time, deadline *time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end time must not precede start time", ErrValidation)
	}
	if deadline != nil && deadline.After(start) {
		return fmt.Errorf("%w: registration deadline must not be after the start time", ErrValidation)
	}
	return nil
}

func validateTeamBounds(mode string, min, max int) error {
	if mode != ModeTeam && mode != ModeBoth {
		return nil
	}
	if min < 2 {
		return fmt.Errorf("%w: minimum team size must be at least 2", ErrValidation)
	}
	if max < min {
		return fmt.Errorf("%w: maximum team size must not be below the minimum", ErrValidation)
	}
	return nil
}

func (s *service) CreateEvent(ctx context.Context, actor *auth.User, req CreateEventRequest, ip string) (*Event, error) {
	if err := validateTimes(req.StartTime, req.EndTime, req.RegistrationDeadline); err != nil {
		return nil, err
	}

	mode := req.ParticipantMode
	if mode == "" {
		mode = ModeIndividual
	}
	if req.EventType == TypeMerchandise && mode != ModeIndividual {
		return nil, fmt.Errorf("%w: merchandise sales are individual only", ErrValidation)
	}
	if err := validateTeamBounds(mode, req.MinTeamSize, req.MaxTeamSize); err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = s.defaultCap
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}

	eligibility := req.Eligibility
	if eligibility == "" {
		eligibility = EligibilityAll
	}

	e := &Event{
		OrganizerID:          actor.ID,
		OrganizerName:        actor.FullName,
		ClubName:             req.ClubName,
		Title:                req.Title,
		Description:          req.Description,
		Venue:                req.Venue,
		Category:             req.Category,
		EventType:            req.EventType,
		Eligibility:          eligibility,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		TimeOfDay:            req.TimeOfDay,
		RegistrationDeadline: req.RegistrationDeadline,
		Capacity:             capacity,
		ParticipantMode:      mode,
		MinTeamSize:          req.MinTeamSize,
		MaxTeamSize:          req.MaxTeamSize,
		RegistrationFee:      req.RegistrationFee,
		Status:               StatusDraft,
		LifecycleStatus:      LifecycleDraft,
	}
	if e.ClubName == "" {
		e.ClubName = actor.ClubName
	}

	if req.EventType == TypeMerchandise {
		if req.Merchandise == nil || req.Merchandise.ItemName == "" {
			return nil, fmt.Errorf("%w: merchandise events need a merchandise block", ErrValidation)
		}
		if req.Merchandise.Stock < 1 && len(req.Merchandise.Variants) == 0 {
			return nil, fmt.Errorf("%w: merchandise needs stock or at least one variant", ErrValidation)
		}
		e.MerchItemName = req.Merchandise.ItemName
		e.MerchDescription = req.Merchandise.Description
		e.PurchaseLimit = req.Merchandise.PurchaseLimit
		e.MerchStock = req.Merchandise.Stock
		for _, v := range req.Merchandise.Variants {
			e.Variants = append(e.Variants, Variant{
				SKU:   v.SKU,
				Size:  v.Size,
				Color: v.Color,
				Price: v.Price,
				Stock: v.Stock,
			})
		}
	} else if req.Merchandise != nil {
		return nil, fmt.Errorf("%w: merchandise block is only valid for merchandise events", ErrValidation)
	}

	if len(req.CustomFields) > 0 {
		raw, err := json.Marshal(req.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("%w: bad custom fields", ErrValidation)
		}
		e.CustomFields = raw
	}

	if req.PublishNow {
		e.Status = StatusPending
		e.LifecycleStatus = LifecyclePublished
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, e.ID, "EVENT_CREATED", map[string]interface{}{
		"title":      e.Title,
		"event_type": e.EventType,
		"status":     e.Status,
	}, ip)

	return e, nil
}

func (s *service) GetEvent(ctx context.Context, actor *auth.User, id uint) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusApproved && !s.canManage(actor, e) {
		return nil, ErrNotFound
	}
	s.refresh(ctx, e)
	return e, nil
}

// refresh recomputes the derived lifecycle against the clock and
// persists it when it moved.
func (s *service) refresh(ctx context.Context, e *Event) {
	if RefreshLifecycle(e, s.now()) {
		if err := s.repo.UpdateLifecycle(ctx, e.ID, e.LifecycleStatus); err != nil {
			log.Printf("⚠️ failed to persist lifecycle for event %d: %v", e.ID, err)
		}
	}
}

func (s *service) canManage(actor *auth.User, e *Event) bool {
	if actor == nil {
		return false
	}
	if actor.Role.RoleName == auth.RoleAdmin {
		return true
	}
	return actor.Role.RoleName == auth.RoleOrganizer && e.OrganizerID == actor.ID
}

func (s *service) UpdateEvent(ctx context.Context, actor *auth.User, id uint, req UpdateEventRequest, ip string) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, e) {
		return nil, ErrForbidden
	}
	s.refresh(ctx, e)

	isAdmin := actor.Role.RoleName == auth.RoleAdmin
	lifecycle := e.LifecycleStatus

	if !isAdmin {
		if err := checkEditable(req, lifecycle); err != nil {
			return nil, err
		}
	}

	material := false

	set := func(dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			material = true
		}
	}

	set(&e.Title, req.Title)
	set(&e.Description, req.Description)
	set(&e.Venue, req.Venue)
	set(&e.Category, req.Category)
	set(&e.Eligibility, req.Eligibility)
	set(&e.TimeOfDay, req.TimeOfDay)
	set(&e.ParticipantMode, req.ParticipantMode)

	if req.StartTime != nil {
		e.StartTime = *req.StartTime
		material = true
	}
	if req.EndTime != nil {
		e.EndTime = *req.EndTime
		material = true
	}
	if req.RegistrationDeadline != nil {
		e.RegistrationDeadline = req.RegistrationDeadline
		material = true
	}
	if req.RegistrationFee != nil {
		e.RegistrationFee = *req.RegistrationFee
		material = true
	}
	if req.MinTeamSize != nil {
		e.MinTeamSize = *req.MinTeamSize
		material = true
	}
	if req.MaxTeamSize != nil {
		e.MaxTeamSize = *req.MaxTeamSize
		material = true
	}

	if req.Capacity != nil {
		if *req.Capacity < e.Registered {
			return nil, fmt.Errorf("%w: capacity cannot drop below current registrations (%d)", ErrValidation, e.Registered)
		}
		if *req.Capacity < 1 {
			return nil, fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
		}
		e.Capacity = *req.Capacity
		material = true
	}

	if req.CustomFields != nil {
		has, err := s.repo.HasRegistrations(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, ErrFormLocked
		}
		raw, err := json.Marshal(req.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("%w: bad custom fields", ErrValidation)
		}
		e.CustomFields = raw
		material = true
	}

	if err := validateTimes(e.StartTime, e.EndTime, e.RegistrationDeadline); err != nil {
		return nil, err
	}
	if err := validateTeamBounds(e.ParticipantMode, e.MinTeamSize, e.MaxTeamSize); err != nil {
		return nil, err
	}

	if req.IsClosed != nil {
		e.IsClosed = *req.IsClosed
	}
	if req.LifecycleStatus != nil {
		e.LifecycleStatus = *req.LifecycleStatus
	}

	// Material edits to an approved event send it back through review.
	if material && !isAdmin && e.Status == StatusApproved {
		e.Status = StatusPending
	}

	// An explicit lifecycle set wins over the derived value.
	if req.LifecycleStatus == nil {
		RefreshLifecycle(e, s.now())
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, e.ID, "EVENT_UPDATED", map[string]interface{}{
		"status": e.Status,
	}, ip)

	return e, nil
}

// patchFields names every field present in the patch.
func patchFields(req UpdateEventRequest) []string {
	var fields []string
	add := func(present bool, name string) {
		if present {
			fields = append(fields, name)
		}
	}
	add(req.Title != nil, "title")
	add(req.Description != nil, "description")
	add(req.Venue != nil, "venue")
	add(req.Category != nil, "category")
	add(req.Eligibility != nil, "eligibility")
	add(req.StartTime != nil, "start_time")
	add(req.EndTime != nil, "end_time")
	add(req.TimeOfDay != nil, "time_of_day")
	add(req.RegistrationDeadline != nil, "registration_deadline")
	add(req.Capacity != nil, "capacity")
	add(req.ParticipantMode != nil, "participant_mode")
	add(req.MinTeamSize != nil, "min_team_size")
	add(req.MaxTeamSize != nil, "max_team_size")
	add(req.RegistrationFee != nil, "registration_fee")
	add(req.CustomFields != nil, "custom_fields")
	add(req.IsClosed != nil, "is_closed")
	add(req.LifecycleStatus != nil, "lifecycle_status")
	return fields
}

// Per-lifecycle whitelists for non-admin edits. Draft events are
// fully editable; once published only logistics may move, and once
// running only the close flag and lifecycle itself.
var (
	publishedEditable = map[string]bool{
		"description":           true,
		"registration_deadline": true,
		"capacity":              true,
		"is_closed":             true,
	}
	runningEditable = map[string]bool{
		"lifecycle_status": true,
		"is_closed":        true,
	}
)

func checkEditable(req UpdateEventRequest, lifecycle string) error {
	var allowed map[string]bool
	switch lifecycle {
	case LifecyclePublished:
		allowed = publishedEditable
	case LifecycleOngoing, LifecycleCompleted, LifecycleClosed:
		allowed = runningEditable
	default:
		return nil
	}
	for _, f := range patchFields(req) {
		if !allowed[f] {
			return fmt.Errorf("%w: %s is not editable while the event is %s", ErrFieldLocked, f, lifecycle)
		}
	}
	return nil
}

func (s *service) DeleteEvent(ctx context.Context, actor *auth.User, id uint, ip string) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, e) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	utils.DeleteCache(trendingCacheKey)
	s.logAction(ctx, actor, id, "EVENT_DELETED", map[string]interface{}{
		"title": e.Title,
	}, ip)
	return nil
}

// PublishEvent moves a draft into the review queue.
func (s *service) PublishEvent(ctx context.Context, actor *auth.User, id uint, ip string) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, e) {
		return nil, ErrForbidden
	}
	if e.Status != StatusDraft && e.Status != StatusRejected {
		return nil, fmt.Errorf("%w: only draft or rejected events can be submitted", ErrValidation)
	}

	e.Status = StatusPending
	e.RejectionReason = ""
	e.LifecycleStatus = LifecyclePublished
	RefreshLifecycle(e, s.now())

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, e.ID, "EVENT_SUBMITTED", nil, ip)
	return e, nil
}

// ReviewEvent is the admin approval step.
func (s *service) ReviewEvent(ctx context.Context, actor *auth.User, id uint, req ApproveEventRequest, ip string) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusPending {
		return nil, fmt.Errorf("%w: event is not awaiting review", ErrBadApproval)
	}

	switch req.Status {
	case StatusApproved:
		e.Status = StatusApproved
		e.RejectionReason = ""
		e.LifecycleStatus = LifecyclePublished
		RefreshLifecycle(e, s.now())
	case StatusRejected:
		if req.RejectionReason == "" {
			return nil, ErrNeedReason
		}
		e.Status = StatusRejected
		e.RejectionReason = req.RejectionReason
	default:
		return nil, ErrBadApproval
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	utils.PublishActivity(utils.ActivityEvent{
		Type:    "EVENT_" + strings.ToUpper(req.Status),
		UserID:  e.OrganizerID,
		EventID: e.ID,
		Details: map[string]interface{}{
			"title":  e.Title,
			"reason": req.RejectionReason,
		},
	})

	s.logAction(ctx, actor, e.ID, "EVENT_"+strings.ToUpper(req.Status), map[string]interface{}{
		"reason": req.RejectionReason,
	}, ip)

	return e, nil
}

func (s *service) ListEvents(ctx context.Context, actor *auth.User, q ListQuery) ([]Event, int64, error) {
	if actor != nil {
		q.CallerIsAdmin = actor.Role.RoleName == auth.RoleAdmin
		if actor.Role.RoleName == auth.RoleParticipant {
			q.ParticipantType = actor.ParticipantType
		}
	}

	if q.Trending {
		if cached, err := utils.GetCache(trendingCacheKey); err == nil {
			var events []Event
			if json.Unmarshal([]byte(cached), &events) == nil {
				return events, int64(len(events)), nil
			}
		}
		events, err := s.repo.Trending(ctx, s.now().Add(-24*time.Hour), 5)
		if err != nil {
			return nil, 0, err
		}
		if raw, err := json.Marshal(events); err == nil {
			utils.SetCache(trendingCacheKey, string(raw), 5*time.Minute)
		}
		return events, int64(len(events)), nil
	}

	// Non-managers only ever see approved events.
	if actor == nil || actor.Role.RoleName == auth.RoleParticipant {
		q.Status = StatusApproved
	}

	events, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range events {
		RefreshLifecycle(&events[i], now)
	}
	return events, total, nil
}

func (s *service) logAction(ctx context.Context, actor *auth.User, eventID uint, action string, details map[string]interface{}, ip string) {
	if s.audit == nil {
		return
	}
	uid := actor.ID
	eid := eventID
	if err := s.audit.LogAction(ctx, &uid, &eid, action, details, ip, "success"); err != nil {
		log.Printf("⚠️ audit log write failed: %v", err)
	}
}
