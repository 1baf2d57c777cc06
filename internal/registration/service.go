package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/utils"
)

// Service is the registration engine: it owns the registered counter,
// merchandise stock movements and ticket issuance.
type Service interface {
	Register(ctx context.Context, actor *auth.User, req RegisterRequest, ip string) (*Registration, error)
	GetRegistration(ctx context.Context, actor *auth.User, id uint) (*Registration, error)
	Cancel(ctx context.Context, actor *auth.User, id uint, ip string) (*Registration, error)
	UpdateStatus(ctx context.Context, actor *auth.User, id uint, newStatus string, ip string) (*Registration, error)
	UpdatePayment(ctx context.Context, actor *auth.User, id uint, req UpdatePaymentRequest, ip string) (*Registration, error)
	CheckIn(ctx context.Context, actor *auth.User, id uint, ip string) (*Registration, error)
	ListByEvent(ctx context.Context, actor *auth.User, eventID uint, q ListQuery) ([]Registration, int64, error)
	MyRegistrations(ctx context.Context, actor *auth.User) ([]Registration, error)
}

// AuditLogger is the slice of the audit log service this package needs.
type AuditLogger interface {
	LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error
}

type service struct {
	repo   Repository
	events event.Repository
	audit  AuditLogger

	sendTicket func(to, eventTitle, ticketID string, qrPNG []byte) error
	now        func() time.Time
}

func NewService(repo Repository, events event.Repository, audit AuditLogger) Service {
	return &service{
		repo:       repo,
		events:     events,
		audit:      audit,
		sendTicket: utils.SendTicketEmail,
		now:        time.Now,
	}
}

const ticketIDRetries = 3

func (s *service) Register(ctx context.Context, actor *auth.User, req RegisterRequest, ip string) (*Registration, error) {
	e, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if e.Status != event.StatusApproved || e.IsClosed {
		return nil, ErrNotApproved
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return nil, ErrDeadlinePassed
	}
	if e.Eligibility != event.EligibilityAll && e.Eligibility != actor.ParticipantType {
		return nil, ErrNotEligible
	}

	isMerch := e.EventType == event.TypeMerchandise

	if !isMerch {
		existing, err := s.repo.FindActive(ctx, e.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyRegistered
		}
	}

	if e.Registered >= e.Capacity {
		return nil, ErrFull
	}

	reg := &Registration{
		EventID:          e.ID,
		UserID:           actor.ID,
		ParticipantName:  actor.FullName,
		ParticipantEmail: actor.Email,
		ParticipantPhone: actor.Phone,
	}

	if err := s.applyTeamRules(e, req, reg); err != nil {
		return nil, err
	}

	decrementEventStock := false
	if isMerch {
		var err error
		decrementEventStock, err = s.applyMerchandise(ctx, actor, e, req, reg)
		if err != nil {
			return nil, err
		}
	} else {
		reg.PaymentAmount = e.RegistrationFee
	}

	if reg.PaymentAmount == 0 {
		reg.PaymentStatus = PaymentFree
		reg.Status = StatusConfirmed
	} else {
		reg.PaymentStatus = PaymentPending
		reg.Status = StatusPending
	}

	if err := s.applyCustomResponses(e, req, reg); err != nil {
		return nil, err
	}

	reg.TicketID = NewTicketID(now)
	for attempt := 0; ; attempt++ {
		err := s.repo.Commit(ctx, reg, decrementEventStock)
		if err == nil {
			break
		}
		if IsDuplicateTicket(err) && attempt < ticketIDRetries {
			reg.ID = 0
			reg.TicketID = NewTicketID(s.now())
			continue
		}
		return nil, err
	}

	// Confirmed registrations get their ticket right away; pending ones
	// get it when the payment lands.
	if reg.Status == StatusConfirmed {
		s.issueAndMail(ctx, reg, e)
	}

	utils.PublishActivity(utils.ActivityEvent{
		Type:    "REGISTRATION_CREATED",
		UserID:  actor.ID,
		EventID: e.ID,
		Details: map[string]interface{}{
			"ticket_id": reg.TicketID,
			"status":    reg.Status,
		},
	})
	s.logAction(ctx, actor.ID, e.ID, "REGISTRATION_CREATED", map[string]interface{}{
		"registration_id": reg.ID,
		"ticket_id":       reg.TicketID,
	}, ip)

	return reg, nil
}

func (s *service) applyTeamRules(e *event.Event, req RegisterRequest, reg *Registration) error {
	hasTeamFields := req.TeamName != "" || len(req.TeamMembers) > 0

	if e.EventType == event.TypeMerchandise {
		if hasTeamFields {
			return ErrMerchIndividual
		}
		return nil
	}

	switch e.ParticipantMode {
	case event.ModeIndividual:
		if hasTeamFields {
			return fmt.Errorf("%w: event does not accept teams", ErrTeamMismatch)
		}
		return nil
	case event.ModeBoth:
		if !hasTeamFields {
			return nil
		}
	}

	// Team required (mode team) or team supplied (mode both).
	if req.TeamName == "" {
		return fmt.Errorf("%w: team name is required", ErrTeamMismatch)
	}
	// Member list excludes the leader.
	size := len(req.TeamMembers) + 1
	if size < e.MinTeamSize {
		return fmt.Errorf("%w: minimum %d members", ErrTeamMismatch, e.MinTeamSize)
	}
	if size > e.MaxTeamSize {
		return fmt.Errorf("%w: cannot exceed %d", ErrTeamMismatch, e.MaxTeamSize)
	}

	members, err := json.Marshal(req.TeamMembers)
	if err != nil {
		return fmt.Errorf("%w: bad team members", ErrTeamMismatch)
	}
	reg.TeamName = req.TeamName
	reg.TeamLeader = reg.ParticipantName
	reg.TeamMembers = members
	return nil
}

// applyMerchandise resolves quantity, variant and pricing. It reports
// whether the commit should draw from the event-level stock.
func (s *service) applyMerchandise(ctx context.Context, actor *auth.User, e *event.Event, req RegisterRequest, reg *Registration) (bool, error) {
	qty := 1
	if req.Merchandise != nil && req.Merchandise.Quantity > 1 {
		qty = req.Merchandise.Quantity
	}
	reg.Quantity = qty

	if e.PurchaseLimit > 0 {
		prior, err := s.repo.SumQuantity(ctx, e.ID, actor.ID)
		if err != nil {
			return false, err
		}
		if prior+qty > e.PurchaseLimit {
			return false, ErrPurchaseLimit
		}
	}

	if len(e.Variants) > 0 {
		v, err := matchVariant(e.Variants, req.Merchandise)
		if err != nil {
			return false, err
		}
		if v.Stock < qty {
			return false, ErrOutOfStock
		}
		id := v.ID
		reg.VariantID = &id
		reg.VariantSKU = v.SKU
		reg.Size = v.Size
		reg.Color = v.Color
		reg.UnitPrice = v.Price
	} else {
		if e.MerchStock < qty {
			return false, ErrOutOfStock
		}
		// Without variants the event has no per-item price; the
		// registration fee stands in as the unit price.
		reg.UnitPrice = e.RegistrationFee
	}

	reg.TotalPrice = reg.UnitPrice * qty
	reg.PaymentAmount = reg.TotalPrice
	return reg.VariantID == nil, nil
}

// matchVariant prefers an exact sku; without one it takes the first
// (size, color) match.
func matchVariant(variants []event.Variant, in *MerchPurchaseInput) (*event.Variant, error) {
	if in == nil {
		return nil, ErrVariantNotFound
	}
	if in.VariantSKU != "" {
		for i := range variants {
			if variants[i].SKU == in.VariantSKU {
				return &variants[i], nil
			}
		}
		return nil, ErrVariantNotFound
	}
	for i := range variants {
		if variants[i].Size == in.Size && variants[i].Color == in.Color {
			return &variants[i], nil
		}
	}
	return nil, ErrVariantNotFound
}

func (s *service) applyCustomResponses(e *event.Event, req RegisterRequest, reg *Registration) error {
	var fields []event.CustomField
	if len(e.CustomFields) > 0 {
		if err := json.Unmarshal(e.CustomFields, &fields); err != nil {
			return err
		}
	}
	for _, f := range fields {
		if !f.Required {
			continue
		}
		v, ok := req.CustomFieldResponses[f.ID]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.Label)
		}
	}
	if len(req.CustomFieldResponses) > 0 {
		raw, err := json.Marshal(req.CustomFieldResponses)
		if err != nil {
			return err
		}
		reg.CustomFieldResponses = raw
	}
	return nil
}

// issueAndMail renders the ticket, persists it and dispatches the mail.
// Mail failure never reverts issuance.
func (s *service) issueAndMail(ctx context.Context, reg *Registration, e *event.Event) {
	png, err := IssueTicket(reg, e, s.now())
	if err != nil {
		log.Printf("⚠️ ticket issue failed for registration %d: %v", reg.ID, err)
		return
	}
	if png == nil {
		return // already issued
	}
	if err := s.repo.Update(ctx, reg); err != nil {
		log.Printf("⚠️ failed to persist ticket for registration %d: %v", reg.ID, err)
		return
	}
	if err := s.sendTicket(reg.ParticipantEmail, e.Title, reg.TicketID, png); err != nil {
		log.Printf("⚠️ ticket mail failed for registration %d: %v", reg.ID, err)
	}
}

func (s *service) GetRegistration(ctx context.Context, actor *auth.User, id uint) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, reg) {
		return nil, ErrForbidden
	}
	return reg, nil
}

// canManage: the owner, the event's organizer, or an admin.
func (s *service) canManage(actor *auth.User, reg *Registration) bool {
	if actor == nil {
		return false
	}
	if actor.Role.RoleName == auth.RoleAdmin || actor.ID == reg.UserID {
		return true
	}
	return actor.Role.RoleName == auth.RoleOrganizer && reg.Event.OrganizerID == actor.ID
}

func (s *service) isEventManager(actor *auth.User, reg *Registration) bool {
	if actor == nil {
		return false
	}
	if actor.Role.RoleName == auth.RoleAdmin {
		return true
	}
	return actor.Role.RoleName == auth.RoleOrganizer && reg.Event.OrganizerID == actor.ID
}

func (s *service) Cancel(ctx context.Context, actor *auth.User, id uint, ip string) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if reg.Status == StatusRejected {
		return nil, ErrAlreadyCancelled
	}
	if !reg.Event.EndTime.IsZero() && s.now().After(reg.Event.EndTime) {
		return nil, ErrEventOver
	}

	reg.Status = StatusRejected
	// Merchandise cancellations do not restock.
	if err := s.repo.UpdateWithDelta(ctx, reg, -1); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor.ID, reg.EventID, "REGISTRATION_CANCELLED", map[string]interface{}{
		"registration_id": reg.ID,
	}, ip)
	return reg, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor *auth.User, id uint, newStatus string, ip string) (*Registration, error) {
	switch newStatus {
	case StatusPending, StatusConfirmed, StatusRejected, StatusApproved:
	default:
		return nil, ErrBadStatus
	}

	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, reg) {
		return nil, ErrForbidden
	}

	delta := 0
	wasCounted := CountsTowardCapacity(reg.Status)
	willCount := CountsTowardCapacity(newStatus)
	if wasCounted && !willCount {
		delta = -1
	} else if !wasCounted && willCount {
		delta = 1
	}

	reg.Status = newStatus
	if err := s.repo.UpdateWithDelta(ctx, reg, delta); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor.ID, reg.EventID, "REGISTRATION_STATUS_UPDATED", map[string]interface{}{
		"registration_id": reg.ID,
		"status":          newStatus,
	}, ip)
	return reg, nil
}

func (s *service) UpdatePayment(ctx context.Context, actor *auth.User, id uint, req UpdatePaymentRequest, ip string) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isEventManager(actor, reg) {
		return nil, ErrForbidden
	}

	switch req.PaymentStatus {
	case PaymentFree, PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
	default:
		return nil, ErrBadPayment
	}

	if req.PaymentMethod != "" {
		reg.PaymentMethod = req.PaymentMethod
	}
	if req.TransactionID != "" {
		reg.TransactionID = req.TransactionID
	}
	if req.PaymentScreenshot != "" {
		reg.PaymentScreenshot = req.PaymentScreenshot
	}
	if req.AmountPaid > 0 {
		reg.AmountPaid = req.AmountPaid
	}

	wasPending := reg.Status == StatusPending
	reg.PaymentStatus = req.PaymentStatus

	switch req.PaymentStatus {
	case PaymentPaid:
		if reg.AmountPaid == 0 {
			reg.AmountPaid = reg.PaymentAmount
		}
		if wasPending {
			reg.Status = StatusConfirmed
		}
	case PaymentFree:
		// Zero-amount paid: confirms a pending registration.
		if wasPending {
			reg.Status = StatusConfirmed
		}
	}

	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}

	// The payment path is the only one that issues a ticket after the
	// fact; issuance is idempotent so a re-send is harmless.
	if reg.Status == StatusConfirmed && reg.TicketQR == "" {
		s.issueAndMail(ctx, reg, &reg.Event)
	}

	s.logAction(ctx, actor.ID, reg.EventID, "PAYMENT_STATUS_UPDATED", map[string]interface{}{
		"registration_id": reg.ID,
		"payment_status":  req.PaymentStatus,
	}, ip)
	return reg, nil
}

func (s *service) CheckIn(ctx context.Context, actor *auth.User, id uint, ip string) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isEventManager(actor, reg) {
		return nil, ErrForbidden
	}
	// "approved" is accepted as an alias of confirmed here.
	if reg.Status != StatusConfirmed && reg.Status != StatusApproved {
		return nil, ErrNotConfirmed
	}
	if reg.CheckedIn {
		return nil, ErrAlreadyCheckedIn
	}

	now := s.now()
	ok, err := s.repo.MarkCheckedIn(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyCheckedIn
	}

	reg.CheckedIn = true
	reg.CheckInTime = &now

	s.logAction(ctx, actor.ID, reg.EventID, "PARTICIPANT_CHECKED_IN", map[string]interface{}{
		"registration_id": reg.ID,
		"ticket_id":       reg.TicketID,
	}, ip)
	return reg, nil
}

func (s *service) ListByEvent(ctx context.Context, actor *auth.User, eventID uint, q ListQuery) ([]Registration, int64, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if actor.Role.RoleName != auth.RoleAdmin &&
		!(actor.Role.RoleName == auth.RoleOrganizer && e.OrganizerID == actor.ID) {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListByEvent(ctx, eventID, q)
}

func (s *service) MyRegistrations(ctx context.Context, actor *auth.User) ([]Registration, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *service) logAction(ctx context.Context, userID, eventID uint, action string, details map[string]interface{}, ip string) {
	if s.audit == nil {
		return
	}
	uid := userID
	eid := eventID
	if err := s.audit.LogAction(ctx, &uid, &eid, action, details, ip, "success"); err != nil {
		log.Printf("⚠️ audit log write failed: %v", err)
	}
}
