package registration

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/campus-event-backend/internal/event"
)

func TestNewTicketID(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^EVT-\d+-[A-Z0-9]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTicketID(now)
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "ticket id repeated: %s", id)
		seen[id] = true
	}
}

func TestTicketPayloadOrder(t *testing.T) {
	r := &Registration{
		ID:               42,
		TicketID:         "EVT-1750000000000-ABC123XYZ",
		ParticipantName:  "Asha Rao",
		ParticipantEmail: "asha@example.com",
	}
	e := &event.Event{ID: 7, Title: "Hack Night"}

	raw, err := TicketPayloadJSON(r, e)
	require.NoError(t, err)

	// The QR content is the canonical serialization; key order matters.
	want := `{"ticketId":"EVT-1750000000000-ABC123XYZ","registrationId":42,"eventId":7,"eventTitle":"Hack Night","participantName":"Asha Rao","participantEmail":"asha@example.com"}`
	assert.Equal(t, want, string(raw))
}

func TestIssueTicket(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	e := &event.Event{ID: 7, Title: "Hack Night"}

	t.Run("renders a png data url and stamps the time", func(t *testing.T) {
		r := &Registration{
			ID:               1,
			TicketID:         NewTicketID(now),
			ParticipantName:  "Asha Rao",
			ParticipantEmail: "asha@example.com",
		}
		png, err := IssueTicket(r, e, now)
		require.NoError(t, err)
		require.NotEmpty(t, png)
		assert.True(t, strings.HasPrefix(r.TicketQR, "data:image/png;base64,"))
		require.NotNil(t, r.TicketIssuedAt)
		assert.Equal(t, now, *r.TicketIssuedAt)
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		r := &Registration{
			ID:               1,
			TicketID:         NewTicketID(now),
			ParticipantName:  "Asha Rao",
			ParticipantEmail: "asha@example.com",
		}
		_, err := IssueTicket(r, e, now)
		require.NoError(t, err)
		qr := r.TicketQR
		issued := *r.TicketIssuedAt

		png, err := IssueTicket(r, e, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, png)
		assert.Equal(t, qr, r.TicketQR)
		assert.Equal(t, issued, *r.TicketIssuedAt)
	})

	t.Run("payload round-trips through json", func(t *testing.T) {
		r := &Registration{
			ID:               9,
			TicketID:         NewTicketID(now),
			ParticipantName:  "Asha Rao",
			ParticipantEmail: "asha@example.com",
		}
		raw, err := TicketPayloadJSON(r, e)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, r.TicketID, decoded["ticketId"])
		assert.Equal(t, float64(9), decoded["registrationId"])
	})
}
