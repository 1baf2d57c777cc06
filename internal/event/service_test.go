package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/campus-event-backend/internal/auth"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	events     map[uint]*Event
	nextID     uint
	registered map[uint]bool // eventID -> has registrations
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[uint]*Event), nextID: 1, registered: make(map[uint]bool)}
}

func (f *fakeRepo) Create(_ context.Context, e *Event) error {
	e.ID = f.nextID
	f.nextID++
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uint) (*Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, e *Event) error {
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateLifecycle(_ context.Context, id uint, lifecycle string) error {
	if e, ok := f.events[id]; ok {
		e.LifecycleStatus = lifecycle
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, q ListQuery) ([]Event, int64, error) {
	var out []Event
	for _, e := range f.events {
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		if q.Organizer != nil && e.OrganizerID != *q.Organizer {
			continue
		}
		if !q.CallerIsAdmin && q.ParticipantType != "" &&
			e.Eligibility != EligibilityAll && e.Eligibility != q.ParticipantType {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Trending(_ context.Context, _ time.Time, _ int) ([]Event, error) {
	return nil, nil
}

func (f *fakeRepo) HasRegistrations(_ context.Context, eventID uint) (bool, error) {
	return f.registered[eventID], nil
}

type nopAudit struct{}

func (nopAudit) LogAction(_ context.Context, _ *uint, _ *uint, _ string, _ map[string]interface{}, _ string, _ string) error {
	return nil
}

func testUser(id uint, role string) *auth.User {
	return &auth.User{
		ID:       id,
		FullName: "Test User",
		Role:     auth.UserRole{RoleName: role},
	}
}

func newTestService(repo *fakeRepo, now time.Time) *service {
	s := NewService(repo, nopAudit{}, 100).(*service)
	s.now = func() time.Time { return now }
	return s
}

func validCreateReq(now time.Time) CreateEventRequest {
	return CreateEventRequest{
		Title:     "Hack Night",
		EventType: TypeEvent,
		StartTime: now.Add(48 * time.Hour),
		EndTime:   now.Add(52 * time.Hour),
		Capacity:  50,
	}
}

func TestCreateEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	organizer := testUser(7, auth.RoleOrganizer)

	t.Run("creates a draft by default", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		e, err := svc.CreateEvent(context.Background(), organizer, validCreateReq(now), "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, e.Status)
		assert.Equal(t, LifecycleDraft, e.LifecycleStatus)
		assert.Equal(t, uint(7), e.OrganizerID)
	})

	t.Run("publish now submits for review", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.PublishNow = true
		e, err := svc.CreateEvent(context.Background(), organizer, req, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
		assert.Equal(t, LifecyclePublished, e.LifecycleStatus)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.EndTime = req.StartTime.Add(-time.Hour)
		_, err := svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects deadline after start", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		late := req.StartTime.Add(time.Hour)
		req.RegistrationDeadline = &late
		_, err := svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects bad team bounds", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.ParticipantMode = ModeTeam
		req.MinTeamSize = 1
		req.MaxTeamSize = 4
		_, err := svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)

		req.MinTeamSize = 5
		_, err = svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("merchandise requires a merchandise block", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.EventType = TypeMerchandise
		_, err := svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("merchandise needs stock or variants", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.EventType = TypeMerchandise
		req.Merchandise = &MerchandiseInput{ItemName: "Club Tee"}
		_, err := svc.CreateEvent(context.Background(), organizer, req, "")
		assert.ErrorIs(t, err, ErrValidation)

		// Variants alone satisfy it.
		req.Merchandise.Variants = []VariantInput{{SKU: "TEE-M", Size: "M", Price: 499, Stock: 25}}
		e, err := svc.CreateEvent(context.Background(), organizer, req, "")
		require.NoError(t, err)
		assert.Len(t, e.Variants, 1)
	})

	t.Run("merchandise with variants", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.EventType = TypeMerchandise
		req.Merchandise = &MerchandiseInput{
			ItemName:      "Club Hoodie",
			PurchaseLimit: 2,
			Stock:         100,
			Variants: []VariantInput{
				{SKU: "HOOD-S", Size: "S", Price: 799, Stock: 40},
				{SKU: "HOOD-M", Size: "M", Price: 799, Stock: 60},
			},
		}
		e, err := svc.CreateEvent(context.Background(), organizer, req, "")
		require.NoError(t, err)
		assert.Len(t, e.Variants, 2)
		assert.Equal(t, 2, e.PurchaseLimit)
	})

	t.Run("applies default capacity", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), now)
		req := validCreateReq(now)
		req.Capacity = 0
		e, err := svc.CreateEvent(context.Background(), organizer, req, "")
		require.NoError(t, err)
		assert.Equal(t, 100, e.Capacity)
	})
}

func TestUpdateEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	organizer := testUser(7, auth.RoleOrganizer)
	stranger := testUser(8, auth.RoleOrganizer)
	admin := testUser(1, auth.RoleAdmin)

	seed := func(repo *fakeRepo, mutate func(*Event)) uint {
		e := &Event{
			OrganizerID:     7,
			Title:           "Hack Night",
			EventType:       TypeEvent,
			Eligibility:     EligibilityAll,
			ParticipantMode: ModeIndividual,
			StartTime:       now.Add(48 * time.Hour),
			EndTime:         now.Add(52 * time.Hour),
			Capacity:        50,
			Status:          StatusApproved,
			LifecycleStatus: LifecyclePublished,
		}
		if mutate != nil {
			mutate(e)
		}
		_ = repo.Create(context.Background(), e)
		return e.ID
	}

	t.Run("other organizers are forbidden", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, nil)
		svc := newTestService(repo, now)

		title := "Hijacked"
		_, err := svc.UpdateEvent(context.Background(), stranger, id, UpdateEventRequest{Title: &title}, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("material edit demotes approved to pending", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, nil)
		svc := newTestService(repo, now)

		desc := "Now with free pizza"
		deadline := now.Add(36 * time.Hour)
		e, err := svc.UpdateEvent(context.Background(), organizer, id,
			UpdateEventRequest{Description: &desc, RegistrationDeadline: &deadline}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
	})

	t.Run("published events lock identity fields for organizers", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, nil)
		svc := newTestService(repo, now)

		title := "Renamed While Published"
		_, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Title: &title}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		venue := "New Venue"
		_, err = svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Venue: &venue}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		fee := 500
		_, err = svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{RegistrationFee: &fee}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		e, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Hack Night", e.Title)
		assert.Equal(t, StatusApproved, e.Status)
	})

	t.Run("published events allow logistics edits for organizers", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, nil)
		svc := newTestService(repo, now)

		desc := "Updated description"
		capacity := 80
		closed := false
		deadline := now.Add(40 * time.Hour)
		e, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{
			Description:          &desc,
			Capacity:             &capacity,
			RegistrationDeadline: &deadline,
			IsClosed:             &closed,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 80, e.Capacity)
		assert.Equal(t, "Updated description", e.Description)
	})

	t.Run("admin edits keep approval", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, nil)
		svc := newTestService(repo, now)

		title := "Hack Night v2"
		e, err := svc.UpdateEvent(context.Background(), admin, id, UpdateEventRequest{Title: &title}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, e.Status)
	})

	t.Run("schedule is locked while ongoing", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, func(e *Event) {
			e.StartTime = now.Add(-time.Hour)
			e.EndTime = now.Add(time.Hour)
			e.LifecycleStatus = LifecycleOngoing
		})
		svc := newTestService(repo, now)

		newStart := now.Add(24 * time.Hour)
		_, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{StartTime: &newStart}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		venue := "Main Auditorium"
		_, err = svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Venue: &venue}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		desc := "Mid-event edit"
		_, err = svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Description: &desc}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		// Only the close flag may move while running.
		closed := true
		e, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{IsClosed: &closed}, "")
		require.NoError(t, err)
		assert.True(t, e.IsClosed)
	})

	t.Run("completed events only allow the close toggle", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, func(e *Event) {
			e.StartTime = now.Add(-48 * time.Hour)
			e.EndTime = now.Add(-24 * time.Hour)
			e.LifecycleStatus = LifecycleCompleted
		})
		svc := newTestService(repo, now)

		title := "Too late"
		_, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Title: &title}, "")
		assert.ErrorIs(t, err, ErrFieldLocked)

		closed := true
		e, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{IsClosed: &closed}, "")
		require.NoError(t, err)
		assert.True(t, e.IsClosed)
		assert.Equal(t, LifecycleClosed, e.LifecycleStatus)
	})

	t.Run("capacity cannot drop below registrations", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, func(e *Event) { e.Registered = 30 })
		svc := newTestService(repo, now)

		capacity := 20
		_, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{Capacity: &capacity}, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("custom fields editable before the first registration", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, func(e *Event) {
			e.Status = StatusDraft
			e.LifecycleStatus = LifecycleDraft
		})
		svc := newTestService(repo, now)

		fields := []CustomField{{ID: "tshirt", Label: "T-shirt size", Type: "select", Options: []string{"S", "M", "L"}}}
		e, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{CustomFields: fields}, "")
		require.NoError(t, err)
		assert.NotEmpty(t, e.CustomFields)
	})

	t.Run("custom fields frozen after the first registration", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, func(e *Event) {
			e.Status = StatusDraft
			e.LifecycleStatus = LifecycleDraft
		})
		repo.registered[id] = true
		svc := newTestService(repo, now)

		fields := []CustomField{{ID: "tshirt", Label: "T-shirt size", Type: "text"}}
		_, err := svc.UpdateEvent(context.Background(), organizer, id, UpdateEventRequest{CustomFields: fields}, "")
		assert.ErrorIs(t, err, ErrFormLocked)
		assert.Equal(t, "Registration form is locked after first registration", err.Error())
	})
}

func TestReviewEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	admin := testUser(1, auth.RoleAdmin)

	seedPending := func(repo *fakeRepo) uint {
		e := &Event{
			OrganizerID:     7,
			Title:           "Hack Night",
			EventType:       TypeEvent,
			StartTime:       now.Add(48 * time.Hour),
			EndTime:         now.Add(52 * time.Hour),
			Capacity:        50,
			Status:          StatusPending,
			LifecycleStatus: LifecyclePublished,
		}
		_ = repo.Create(context.Background(), e)
		return e.ID
	}

	t.Run("approve", func(t *testing.T) {
		repo := newFakeRepo()
		id := seedPending(repo)
		svc := newTestService(repo, now)

		e, err := svc.ReviewEvent(context.Background(), admin, id, ApproveEventRequest{Status: StatusApproved}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, e.Status)
		assert.Equal(t, LifecyclePublished, e.LifecycleStatus)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		repo := newFakeRepo()
		id := seedPending(repo)
		svc := newTestService(repo, now)

		_, err := svc.ReviewEvent(context.Background(), admin, id, ApproveEventRequest{Status: StatusRejected}, "")
		assert.ErrorIs(t, err, ErrNeedReason)

		e, err := svc.ReviewEvent(context.Background(), admin, id,
			ApproveEventRequest{Status: StatusRejected, RejectionReason: "venue clash"}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, e.Status)
		assert.Equal(t, "venue clash", e.RejectionReason)
	})

	t.Run("only pending events are reviewable", func(t *testing.T) {
		repo := newFakeRepo()
		id := seedPending(repo)
		svc := newTestService(repo, now)

		_, err := svc.ReviewEvent(context.Background(), admin, id, ApproveEventRequest{Status: StatusApproved}, "")
		require.NoError(t, err)
		_, err = svc.ReviewEvent(context.Background(), admin, id, ApproveEventRequest{Status: StatusRejected, RejectionReason: "x"}, "")
		assert.ErrorIs(t, err, ErrBadApproval)
	})

	t.Run("resubmission clears the rejection reason", func(t *testing.T) {
		repo := newFakeRepo()
		id := seedPending(repo)
		svc := newTestService(repo, now)

		_, err := svc.ReviewEvent(context.Background(), admin, id,
			ApproveEventRequest{Status: StatusRejected, RejectionReason: "venue clash"}, "")
		require.NoError(t, err)

		organizer := testUser(7, auth.RoleOrganizer)
		e, err := svc.PublishEvent(context.Background(), organizer, id, "")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
		assert.Empty(t, e.RejectionReason)
	})
}

func TestListEventsEligibility(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo()

	for _, elig := range []string{EligibilityAll, EligibilityIIIT, EligibilityNonIIIT} {
		_ = repo.Create(context.Background(), &Event{
			OrganizerID:     7,
			Title:           "Event " + elig,
			Eligibility:     elig,
			Status:          StatusApproved,
			LifecycleStatus: LifecyclePublished,
			StartTime:       now.Add(24 * time.Hour),
			EndTime:         now.Add(26 * time.Hour),
		})
	}
	svc := newTestService(repo, now)

	participant := testUser(9, auth.RoleParticipant)
	participant.ParticipantType = auth.ParticipantTypeIIIT

	events, total, err := svc.ListEvents(context.Background(), participant, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range events {
		assert.NotEqual(t, EligibilityNonIIIT, e.Eligibility)
	}

	// Admin sees the full set.
	events, _, err = svc.ListEvents(context.Background(), testUser(1, auth.RoleAdmin), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
