package registration

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sharath018/campus-event-backend/internal/event"
)

const ticketIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTicketID mints a human-readable ticket id. Uniqueness is enforced
// by the store's unique index; callers retry on a collision.
func NewTicketID(now time.Time) string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read on a healthy system does not fail; fall back to the
		// clock so the id is still unique enough for the index retry.
		return fmt.Sprintf("EVT-%d-%09d", now.UnixMilli(), now.Nanosecond())
	}
	for i, b := range buf {
		buf[i] = ticketIDCharset[int(b)%len(ticketIDCharset)]
	}
	return fmt.Sprintf("EVT-%d-%s", now.UnixMilli(), string(buf))
}

// ticketPayload is the QR content. Field order is the canonical
// serialization order and must not change: the QR is the only
// authoritative proof at check-in.
type ticketPayload struct {
	TicketID         string `json:"ticketId"`
	RegistrationID   uint   `json:"registrationId"`
	EventID          uint   `json:"eventId"`
	EventTitle       string `json:"eventTitle"`
	ParticipantName  string `json:"participantName"`
	ParticipantEmail string `json:"participantEmail"`
}

// TicketPayloadJSON serializes the canonical QR payload.
func TicketPayloadJSON(r *Registration, e *event.Event) ([]byte, error) {
	return json.Marshal(ticketPayload{
		TicketID:         r.TicketID,
		RegistrationID:   r.ID,
		EventID:          e.ID,
		EventTitle:       e.Title,
		ParticipantName:  r.ParticipantName,
		ParticipantEmail: r.ParticipantEmail,
	})
}

// IssueTicket renders the QR for a registration and stamps the issue
// time on the in-memory record. It is idempotent: a registration that
// already carries a QR is returned untouched. Persistence and mail
// dispatch are the caller's job.
func IssueTicket(r *Registration, e *event.Event, now time.Time) ([]byte, error) {
	if r.TicketQR != "" {
		return nil, nil
	}

	payload, err := TicketPayloadJSON(r, e)
	if err != nil {
		return nil, fmt.Errorf("encode ticket payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr: %w", err)
	}

	r.TicketQR = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	issued := now
	r.TicketIssuedAt = &issued
	return png, nil
}
