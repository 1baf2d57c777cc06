package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/internal/registration"
)

var ErrForbidden = errors.New("not allowed to export this report")

// File is a rendered report ready for download.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

type Service interface {
	RegistrationsReport(ctx context.Context, actor *auth.User, eventID uint, format string) (*File, error)
	EventsSummaryReport(ctx context.Context, format string) (*File, error)
}

type service struct {
	events        event.Repository
	registrations registration.Repository
}

func NewService(events event.Repository, registrations registration.Repository) Service {
	return &service{events: events, registrations: registrations}
}

func (s *service) RegistrationsReport(ctx context.Context, actor *auth.User, eventID uint, format string) (*File, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor.Role.RoleName != auth.RoleAdmin &&
		!(actor.Role.RoleName == auth.RoleOrganizer && e.OrganizerID == actor.ID) {
		return nil, ErrForbidden
	}

	regs, _, err := s.registrations.ListByEvent(ctx, eventID, registration.ListQuery{Limit: 10000})
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Title:   "Registrations — " + e.Title,
		Headers: []string{"Ticket", "Name", "Email", "Status", "Payment", "Amount Paid", "Team", "Checked In", "Registered At"},
	}
	for _, r := range regs {
		checkedIn := "no"
		if r.CheckedIn {
			checkedIn = "yes"
		}
		rep.Rows = append(rep.Rows, []string{
			r.TicketID,
			r.ParticipantName,
			r.ParticipantEmail,
			r.Status,
			r.PaymentStatus,
			strconv.Itoa(r.AmountPaid),
			r.TeamName,
			checkedIn,
			r.CreatedAt.Format(time.RFC3339),
		})
	}

	return render(rep, fmt.Sprintf("registrations-event-%d", eventID), format)
}

func (s *service) EventsSummaryReport(ctx context.Context, format string) (*File, error) {
	events, _, err := s.events.List(ctx, event.ListQuery{Limit: 10000, CallerIsAdmin: true})
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Title:   "Events Summary",
		Headers: []string{"ID", "Title", "Organizer", "Type", "Status", "Lifecycle", "Registered", "Capacity", "Starts"},
	}
	for _, e := range events {
		rep.Rows = append(rep.Rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Title,
			e.OrganizerName,
			e.EventType,
			e.Status,
			e.LifecycleStatus,
			strconv.Itoa(e.Registered),
			strconv.Itoa(e.Capacity),
			e.StartTime.Format(time.RFC3339),
		})
	}

	return render(rep, "events-summary", format)
}

func render(rep *Report, baseName, format string) (*File, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := exporter.Write(&buf, rep); err != nil {
		return nil, err
	}
	return &File{
		Name:        baseName + "." + exporter.FileExt(),
		ContentType: exporter.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}
