package stats

import "time"

// EventCounts breaks events down by approval status.
type EventCounts struct {
	Total    int64 `json:"total"`
	Draft    int64 `json:"draft"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Upcoming int64 `json:"upcoming"`
}

// PaymentBucket is one payment-status slice with its observed revenue.
type PaymentBucket struct {
	PaymentStatus string `json:"payment_status"`
	Count         int64  `json:"count"`
	AmountPaid    int64  `json:"amount_paid"`
}

// RegistrationCounts breaks registrations down by status and payment.
type RegistrationCounts struct {
	Total     int64           `json:"total"`
	Pending   int64           `json:"pending"`
	Confirmed int64           `json:"confirmed"`
	Rejected  int64           `json:"rejected"`
	CheckedIn int64           `json:"checked_in"`
	Payments  []PaymentBucket `json:"payments"`
}

// EventStats is the per-event projection shown to organizers.
type EventStats struct {
	EventID          uint  `json:"event_id"`
	Total            int64 `json:"total"`
	Confirmed        int64 `json:"confirmed"`
	Pending          int64 `json:"pending"`
	Cancelled        int64 `json:"cancelled"`
	CheckedIn        int64 `json:"checked_in"`
	PaymentPending   int64 `json:"payment_pending"`
	PaymentCompleted int64 `json:"payment_completed"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Users         map[string]int64   `json:"users"`
	Events        EventCounts        `json:"events"`
	Registrations RegistrationCounts `json:"registrations"`
}

// RecentUser is a trimmed user row for the activity feed.
type RecentUser struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentEvent is a trimmed event row for the activity feed.
type RecentEvent struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentActivity pairs the newest users and events.
type RecentActivity struct {
	Users  []RecentUser  `json:"users"`
	Events []RecentEvent `json:"events"`
}
