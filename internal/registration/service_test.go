package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
)

// fakeEventRepo is a minimal in-memory event.Repository.
type fakeEventRepo struct {
	events map[uint]*event.Event
	nextID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uint]*event.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(_ context.Context, e *event.Event) error {
	e.ID = f.nextID
	f.nextID++
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id uint) (*event.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	cp := *e
	cp.Variants = append([]event.Variant(nil), e.Variants...)
	return &cp, nil
}

func (f *fakeEventRepo) Update(_ context.Context, e *event.Event) error {
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) UpdateLifecycle(_ context.Context, id uint, lifecycle string) error {
	if e, ok := f.events[id]; ok {
		e.LifecycleStatus = lifecycle
	}
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uint) error {
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) List(_ context.Context, _ event.ListQuery) ([]event.Event, int64, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) Trending(_ context.Context, _ time.Time, _ int) ([]event.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) HasRegistrations(_ context.Context, _ uint) (bool, error) {
	return false, nil
}

// fakeRegRepo mimics the transactional commit against the shared event
// store: all guards are checked before anything mutates.
type fakeRegRepo struct {
	events  *fakeEventRepo
	regs    map[uint]*Registration
	nextID  uint
	tickets map[string]bool
}

func newFakeRegRepo(events *fakeEventRepo) *fakeRegRepo {
	return &fakeRegRepo{events: events, regs: make(map[uint]*Registration), nextID: 1, tickets: make(map[string]bool)}
}

func (f *fakeRegRepo) Commit(_ context.Context, reg *Registration, decrementEventStock bool) error {
	e, ok := f.events.events[reg.EventID]
	if !ok {
		return event.ErrNotFound
	}
	if e.Registered >= e.Capacity {
		return ErrFull
	}
	var variant *event.Variant
	if reg.VariantID != nil {
		for i := range e.Variants {
			if e.Variants[i].ID == *reg.VariantID {
				variant = &e.Variants[i]
			}
		}
		if variant == nil || variant.Stock < reg.Quantity {
			return ErrOutOfStock
		}
	}
	if decrementEventStock && e.MerchStock < reg.Quantity {
		return ErrOutOfStock
	}
	if f.tickets[reg.TicketID] {
		return errors.New(`duplicate key value violates unique constraint on ticket_id`)
	}

	e.Registered++
	if variant != nil {
		variant.Stock -= reg.Quantity
	}
	if decrementEventStock {
		e.MerchStock -= reg.Quantity
	}
	reg.ID = f.nextID
	f.nextID++
	f.tickets[reg.TicketID] = true
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegRepo) GetByID(_ context.Context, id uint) (*Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *reg
	if e, ok := f.events.events[reg.EventID]; ok {
		cp.Event = *e
	}
	return &cp, nil
}

func (f *fakeRegRepo) FindActive(_ context.Context, eventID, userID uint) (*Registration, error) {
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID && r.Status != StatusRejected {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegRepo) SumQuantity(_ context.Context, eventID, userID uint) (int, error) {
	total := 0
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			total += r.Quantity
		}
	}
	return total, nil
}

func (f *fakeRegRepo) Update(_ context.Context, reg *Registration) error {
	cp := *reg
	cp.Event = event.Event{}
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegRepo) UpdateWithDelta(_ context.Context, reg *Registration, delta int) error {
	if err := f.Update(nil, reg); err != nil {
		return err
	}
	if e, ok := f.events.events[reg.EventID]; ok {
		e.Registered += delta
		if e.Registered < 0 {
			e.Registered = 0
		}
	}
	return nil
}

func (f *fakeRegRepo) MarkCheckedIn(_ context.Context, id uint, now time.Time) (bool, error) {
	reg, ok := f.regs[id]
	if !ok {
		return false, ErrNotFound
	}
	if reg.CheckedIn || (reg.Status != StatusConfirmed && reg.Status != StatusApproved) {
		return false, nil
	}
	reg.CheckedIn = true
	reg.CheckInTime = &now
	return true, nil
}

func (f *fakeRegRepo) ListByEvent(_ context.Context, eventID uint, _ ListQuery) ([]Registration, int64, error) {
	var out []Registration
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRegRepo) ListByUser(_ context.Context, userID uint) ([]Registration, error) {
	var out []Registration
	for _, r := range f.regs {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type nopAudit struct{}

func (nopAudit) LogAction(_ context.Context, _ *uint, _ *uint, _ string, _ map[string]interface{}, _ string, _ string) error {
	return nil
}

type harness struct {
	events *fakeEventRepo
	regs   *fakeRegRepo
	svc    *service
	mails  []string // ticket ids, in dispatch order
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		events: newFakeEventRepo(),
		now:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	h.regs = newFakeRegRepo(h.events)
	h.svc = NewService(h.regs, h.events, nopAudit{}).(*service)
	h.svc.now = func() time.Time { return h.now }
	h.svc.sendTicket = func(_, _, ticketID string, _ []byte) error {
		h.mails = append(h.mails, ticketID)
		return nil
	}
	return h
}

func (h *harness) addEvent(mutate func(*event.Event)) *event.Event {
	e := &event.Event{
		OrganizerID:     100,
		Title:           "Hack Night",
		EventType:       event.TypeEvent,
		Eligibility:     event.EligibilityAll,
		ParticipantMode: event.ModeIndividual,
		StartTime:       h.now.Add(48 * time.Hour),
		EndTime:         h.now.Add(52 * time.Hour),
		Capacity:        10,
		Status:          event.StatusApproved,
		LifecycleStatus: event.LifecyclePublished,
	}
	if mutate != nil {
		mutate(e)
	}
	_ = h.events.Create(context.Background(), e)
	return e
}

func participant(id uint, ptype string) *auth.User {
	return &auth.User{
		ID:              id,
		FullName:        "Asha Rao",
		Email:           "asha@example.com",
		Role:            auth.UserRole{RoleName: auth.RoleParticipant},
		ParticipantType: ptype,
	}
}

func organizer(id uint) *auth.User {
	return &auth.User{ID: id, FullName: "Org", Role: auth.UserRole{RoleName: auth.RoleOrganizer}}
}

func TestRegisterFreeEvent(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(func(e *event.Event) { e.Capacity = 2 })
	actor := participant(1, auth.ParticipantTypeIIIT)

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, reg.Status)
	assert.Equal(t, PaymentFree, reg.PaymentStatus)
	assert.Equal(t, 0, reg.PaymentAmount)
	assert.NotEmpty(t, reg.TicketID)
	assert.NotEmpty(t, reg.TicketQR)
	assert.Equal(t, 1, h.events.events[e.ID].Registered)
	assert.Equal(t, []string{reg.TicketID}, h.mails)
	assert.Equal(t, "Asha Rao", reg.ParticipantName)
	assert.Equal(t, "asha@example.com", reg.ParticipantEmail)
}

func TestRegisterPaidEventTwoStep(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(func(e *event.Event) {
		e.Capacity = 5
		e.RegistrationFee = 100
	})
	actor := participant(1, auth.ParticipantTypeIIIT)

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reg.Status)
	assert.Equal(t, PaymentPending, reg.PaymentStatus)
	assert.Equal(t, 100, reg.PaymentAmount)
	assert.Empty(t, reg.TicketQR)
	assert.Empty(t, h.mails)

	updated, err := h.svc.UpdatePayment(context.Background(), organizer(100), reg.ID,
		UpdatePaymentRequest{PaymentStatus: PaymentPaid}, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, 100, updated.AmountPaid)
	assert.NotEmpty(t, updated.TicketQR)
	assert.Equal(t, []string{updated.TicketID}, h.mails)
}

func TestRegisterPreconditions(t *testing.T) {
	t.Run("unknown event", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: 99}, "")
		assert.ErrorIs(t, err, event.ErrNotFound)
	})

	t.Run("event not approved", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) { e.Status = event.StatusPending })
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrNotApproved)
	})

	t.Run("closed event", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) { e.IsClosed = true })
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrNotApproved)
	})

	t.Run("deadline passed", func(t *testing.T) {
		h := newHarness(t)
		past := h.now.Add(-time.Hour)
		e := h.addEvent(func(e *event.Event) { e.RegistrationDeadline = &past })
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("deadline equal to now is accepted", func(t *testing.T) {
		h := newHarness(t)
		deadline := h.now
		e := h.addEvent(func(e *event.Event) { e.RegistrationDeadline = &deadline })
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: e.ID}, "")
		assert.NoError(t, err)
	})

	t.Run("eligibility mismatch", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) { e.Eligibility = event.EligibilityIIIT })
		_, err := h.svc.Register(context.Background(), participant(1, auth.ParticipantTypeNonIIIT), RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(nil)
		actor := participant(1, "iiit")
		_, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
		require.NoError(t, err)
		_, err = h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("capacity of one admits exactly one", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) { e.Capacity = 1 })
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"), RegisterRequest{EventID: e.ID}, "")
		require.NoError(t, err)
		_, err = h.svc.Register(context.Background(), participant(2, "iiit"), RegisterRequest{EventID: e.ID}, "")
		assert.ErrorIs(t, err, ErrFull)
	})
}

func TestRegisterTeamRules(t *testing.T) {
	newTeamEvent := func(h *harness) *event.Event {
		return h.addEvent(func(e *event.Event) {
			e.ParticipantMode = event.ModeTeam
			e.MinTeamSize = 3
			e.MaxTeamSize = 5
		})
	}
	members := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "member"
		}
		return out
	}

	t.Run("too few members", func(t *testing.T) {
		h := newHarness(t)
		e := newTeamEvent(h)
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamName: "T", TeamMembers: members(1)}, "")
		require.ErrorIs(t, err, ErrTeamMismatch)
		assert.Contains(t, err.Error(), "minimum 3 members")
	})

	t.Run("leader plus four members is accepted", func(t *testing.T) {
		h := newHarness(t)
		e := newTeamEvent(h)
		reg, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamName: "T", TeamMembers: members(4)}, "")
		require.NoError(t, err)
		assert.Equal(t, "T", reg.TeamName)
		assert.Equal(t, "Asha Rao", reg.TeamLeader)
	})

	t.Run("too many members", func(t *testing.T) {
		h := newHarness(t)
		e := newTeamEvent(h)
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamName: "T", TeamMembers: members(5)}, "")
		require.ErrorIs(t, err, ErrTeamMismatch)
		assert.Contains(t, err.Error(), "cannot exceed 5")
	})

	t.Run("missing team name", func(t *testing.T) {
		h := newHarness(t)
		e := newTeamEvent(h)
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamMembers: members(3)}, "")
		assert.ErrorIs(t, err, ErrTeamMismatch)
	})

	t.Run("individual event rejects team fields", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(nil)
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamName: "T", TeamMembers: members(2)}, "")
		assert.ErrorIs(t, err, ErrTeamMismatch)
	})
}

func TestRegisterMerchandise(t *testing.T) {
	t.Run("purchase limit across orders", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) {
			e.EventType = event.TypeMerchandise
			e.MerchItemName = "Club Tee"
			e.MerchStock = 10
			e.PurchaseLimit = 2
		})
		actor := participant(1, "iiit")

		reg, err := h.svc.Register(context.Background(), actor,
			RegisterRequest{EventID: e.ID, Merchandise: &MerchPurchaseInput{Quantity: 2}}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, reg.Status)
		assert.Equal(t, 0, reg.PaymentAmount)
		assert.Equal(t, 8, h.events.events[e.ID].MerchStock)

		_, err = h.svc.Register(context.Background(), actor,
			RegisterRequest{EventID: e.ID, Merchandise: &MerchPurchaseInput{Quantity: 1}}, "")
		assert.ErrorIs(t, err, ErrPurchaseLimit)
	})

	t.Run("variant stock exhaustion", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) {
			e.EventType = event.TypeMerchandise
			e.MerchItemName = "Club Tee"
			e.PurchaseLimit = 5
			e.Variants = []event.Variant{{ID: 1, SKU: "A", Price: 50, Stock: 1}}
		})

		reg, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, Merchandise: &MerchPurchaseInput{VariantSKU: "A", Quantity: 1}}, "")
		require.NoError(t, err)
		assert.Equal(t, 50, reg.PaymentAmount)
		assert.Equal(t, StatusPending, reg.Status)
		assert.Equal(t, 0, h.events.events[e.ID].Variants[0].Stock)

		_, err = h.svc.Register(context.Background(), participant(2, "iiit"),
			RegisterRequest{EventID: e.ID, Merchandise: &MerchPurchaseInput{VariantSKU: "A", Quantity: 1}}, "")
		assert.ErrorIs(t, err, ErrOutOfStock)
	})

	t.Run("unknown variant", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) {
			e.EventType = event.TypeMerchandise
			e.MerchItemName = "Club Tee"
			e.PurchaseLimit = 5
			e.Variants = []event.Variant{{ID: 1, SKU: "A", Price: 50, Stock: 5}}
		})
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, Merchandise: &MerchPurchaseInput{VariantSKU: "B", Quantity: 1}}, "")
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("team fields rejected", func(t *testing.T) {
		h := newHarness(t)
		e := h.addEvent(func(e *event.Event) {
			e.EventType = event.TypeMerchandise
			e.MerchItemName = "Club Tee"
			e.MerchStock = 10
		})
		_, err := h.svc.Register(context.Background(), participant(1, "iiit"),
			RegisterRequest{EventID: e.ID, TeamName: "T"}, "")
		assert.ErrorIs(t, err, ErrMerchIndividual)
	})
}

func TestMatchVariant(t *testing.T) {
	variants := []event.Variant{
		{ID: 1, SKU: "TEE-S-RED", Size: "S", Color: "red", Price: 40, Stock: 5},
		{ID: 2, SKU: "TEE-M-RED", Size: "M", Color: "red", Price: 45, Stock: 5},
	}

	t.Run("sku wins", func(t *testing.T) {
		v, err := matchVariant(variants, &MerchPurchaseInput{VariantSKU: "TEE-M-RED", Size: "S", Color: "red"})
		require.NoError(t, err)
		assert.Equal(t, uint(2), v.ID)
	})

	t.Run("size and color fallback", func(t *testing.T) {
		v, err := matchVariant(variants, &MerchPurchaseInput{Size: "S", Color: "red"})
		require.NoError(t, err)
		assert.Equal(t, uint(1), v.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := matchVariant(variants, &MerchPurchaseInput{Size: "XL", Color: "red"})
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})
}

func TestRequiredCustomFields(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(func(e *event.Event) {
		e.CustomFields = []byte(`[{"id":"roll","label":"Roll number","type":"text","required":true}]`)
	})
	actor := participant(1, "iiit")

	_, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "Roll number")

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{
		EventID:              e.ID,
		CustomFieldResponses: map[string]interface{}{"roll": "2023111001"},
	}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.CustomFieldResponses)
}

func TestCancel(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(nil)
	actor := participant(1, "iiit")

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)
	require.Equal(t, 1, h.events.events[e.ID].Registered)

	t.Run("only the owner may cancel", func(t *testing.T) {
		_, err := h.svc.Cancel(context.Background(), participant(2, "iiit"), reg.ID, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cancel frees the slot once", func(t *testing.T) {
		cancelled, err := h.svc.Cancel(context.Background(), actor, reg.ID, "")
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, cancelled.Status)
		assert.Equal(t, 0, h.events.events[e.ID].Registered)

		_, err = h.svc.Cancel(context.Background(), actor, reg.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.Equal(t, 0, h.events.events[e.ID].Registered)
	})

	t.Run("cannot cancel after the event ended", func(t *testing.T) {
		past := h.addEvent(func(e *event.Event) {
			e.StartTime = h.now.Add(-48 * time.Hour)
			e.EndTime = h.now.Add(-24 * time.Hour)
		})
		// Register while the event was still upcoming.
		h.now = past.StartTime.Add(-time.Hour)
		other := participant(3, "iiit")
		r, err := h.svc.Register(context.Background(), other, RegisterRequest{EventID: past.ID}, "")
		require.NoError(t, err)

		h.now = past.EndTime.Add(time.Hour)
		_, err = h.svc.Cancel(context.Background(), other, r.ID, "")
		assert.ErrorIs(t, err, ErrEventOver)
	})
}

func TestUpdateStatusAdjustsCounter(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(nil)
	actor := participant(1, "iiit")
	admin := &auth.User{ID: 50, Role: auth.UserRole{RoleName: auth.RoleAdmin}}

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)
	require.Equal(t, 1, h.events.events[e.ID].Registered)

	_, err = h.svc.UpdateStatus(context.Background(), admin, reg.ID, StatusRejected, "")
	require.NoError(t, err)
	assert.Equal(t, 0, h.events.events[e.ID].Registered)

	// Restoring out of rejected takes the slot back.
	_, err = h.svc.UpdateStatus(context.Background(), admin, reg.ID, StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, 1, h.events.events[e.ID].Registered)

	// pending -> confirmed is slot-neutral.
	_, err = h.svc.UpdateStatus(context.Background(), admin, reg.ID, StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, 1, h.events.events[e.ID].Registered)

	_, err = h.svc.UpdateStatus(context.Background(), admin, reg.ID, "archived", "")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestCheckIn(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(func(e *event.Event) { e.RegistrationFee = 100 })
	actor := participant(1, "iiit")
	org := organizer(100)

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)

	t.Run("pending registrations cannot check in", func(t *testing.T) {
		_, err := h.svc.CheckIn(context.Background(), org, reg.ID, "")
		assert.ErrorIs(t, err, ErrNotConfirmed)
	})

	t.Run("participants cannot check themselves in", func(t *testing.T) {
		_, err := h.svc.CheckIn(context.Background(), actor, reg.ID, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("confirmed checks in exactly once", func(t *testing.T) {
		_, err := h.svc.UpdatePayment(context.Background(), org, reg.ID,
			UpdatePaymentRequest{PaymentStatus: PaymentPaid}, "")
		require.NoError(t, err)

		checked, err := h.svc.CheckIn(context.Background(), org, reg.ID, "")
		require.NoError(t, err)
		assert.True(t, checked.CheckedIn)
		require.NotNil(t, checked.CheckInTime)

		_, err = h.svc.CheckIn(context.Background(), org, reg.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	})
}

func TestUpdatePayment(t *testing.T) {
	h := newHarness(t)
	e := h.addEvent(func(e *event.Event) { e.RegistrationFee = 250 })
	actor := participant(1, "iiit")
	org := organizer(100)

	reg, err := h.svc.Register(context.Background(), actor, RegisterRequest{EventID: e.ID}, "")
	require.NoError(t, err)

	t.Run("owner cannot mark own payment", func(t *testing.T) {
		_, err := h.svc.UpdatePayment(context.Background(), actor, reg.ID,
			UpdatePaymentRequest{PaymentStatus: PaymentPaid}, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("failed has no side effects", func(t *testing.T) {
		updated, err := h.svc.UpdatePayment(context.Background(), org, reg.ID,
			UpdatePaymentRequest{PaymentStatus: PaymentFailed}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, updated.Status)
		assert.Empty(t, updated.TicketQR)
	})

	t.Run("explicit amount is kept", func(t *testing.T) {
		updated, err := h.svc.UpdatePayment(context.Background(), org, reg.ID,
			UpdatePaymentRequest{PaymentStatus: PaymentPaid, AmountPaid: 200, PaymentMethod: "upi", TransactionID: "TXN-1"}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, updated.Status)
		assert.Equal(t, 200, updated.AmountPaid)
		assert.Equal(t, "upi", updated.PaymentMethod)
		assert.NotEmpty(t, updated.TicketQR)
	})

	t.Run("re-marking paid does not resend the ticket", func(t *testing.T) {
		mails := len(h.mails)
		_, err := h.svc.UpdatePayment(context.Background(), org, reg.ID,
			UpdatePaymentRequest{PaymentStatus: PaymentPaid}, "")
		require.NoError(t, err)
		assert.Len(t, h.mails, mails)
	})
}
