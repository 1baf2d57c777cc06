package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sharath018/campus-event-backend/config"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/utils"
)

var ErrNotFound = errors.New("notification not found")

type Service interface {
	Notify(ctx context.Context, userID uint, kind, title, message string, eventID *uint) error
	List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error

	// PostEventToDiscord announces an approved event on the configured
	// webhook. Best-effort: failures are logged, never returned.
	PostEventToDiscord(e *event.Event)

	// StartConsumer drains the activity stream into notifications until
	// the context is cancelled. Run it on its own goroutine.
	StartConsumer(ctx context.Context)
}

type service struct {
	repo       Repository
	events     event.Repository
	webhookURL string
	httpClient *http.Client
}

func NewService(repo Repository, events event.Repository, cfg *config.Config) Service {
	return &service{
		repo:       repo,
		events:     events,
		webhookURL: cfg.DiscordWebhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *service) Notify(ctx context.Context, userID uint, kind, title, message string, eventID *uint) error {
	return s.repo.Create(ctx, &Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		EventID: eventID,
	})
}

func (s *service) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]Notification, int64, error) {
	items, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uint) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// discordPayload is the minimal webhook body with one embed.
type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (s *service) PostEventToDiscord(e *event.Event) {
	if s.webhookURL == "" {
		return
	}

	payload := discordPayload{
		Content: "📢 New event approved!",
		Embeds: []discordEmbed{{
			Title:       e.Title,
			Description: e.Description,
			URL:         fmt.Sprintf("%s/events/%d", config.BaseURL, e.ID),
			Fields: []discordEmbedField{
				{Name: "Venue", Value: e.Venue, Inline: true},
				{Name: "Starts", Value: e.StartTime.Format(time.RFC1123), Inline: true},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ discord payload encode failed: %v", err)
		return
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ discord webhook failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("⚠️ discord webhook returned %d", resp.StatusCode)
	}
}

func (s *service) StartConsumer(ctx context.Context) {
	reader := utils.NewActivityReader()
	if reader == nil {
		return
	}
	defer reader.Close()

	log.Println("📨 notification consumer started")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ activity read failed: %v", err)
			continue
		}

		var activity utils.ActivityEvent
		if err := json.Unmarshal(msg.Value, &activity); err != nil {
			log.Printf("⚠️ bad activity payload: %v", err)
			continue
		}
		s.handleActivity(ctx, activity)
	}
}

func (s *service) handleActivity(ctx context.Context, activity utils.ActivityEvent) {
	eid := activity.EventID
	title, _ := activity.Details["title"].(string)

	switch activity.Type {
	case "EVENT_APPROVED":
		if err := s.Notify(ctx, activity.UserID, TypeEventApproved,
			"Event approved", fmt.Sprintf("Your event %q was approved.", title), &eid); err != nil {
			log.Printf("⚠️ notify failed: %v", err)
		}
		if e, err := s.events.GetByID(ctx, eid); err == nil {
			s.PostEventToDiscord(e)
		}
	case "EVENT_REJECTED":
		reason, _ := activity.Details["reason"].(string)
		if err := s.Notify(ctx, activity.UserID, TypeEventRejected,
			"Event rejected", fmt.Sprintf("Your event %q was rejected: %s", title, reason), &eid); err != nil {
			log.Printf("⚠️ notify failed: %v", err)
		}
	case "REGISTRATION_CREATED":
		ticketID, _ := activity.Details["ticket_id"].(string)
		if err := s.Notify(ctx, activity.UserID, TypeRegistration,
			"Registration received", fmt.Sprintf("Your registration %s was recorded.", ticketID), &eid); err != nil {
			log.Printf("⚠️ notify failed: %v", err)
		}
	}
}
