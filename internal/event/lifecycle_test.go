package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name: "draft status stays draft",
			event: Event{
				Status:          StatusDraft,
				LifecycleStatus: LifecycleDraft,
				StartTime:       now.Add(24 * time.Hour),
				EndTime:         now.Add(26 * time.Hour),
			},
			want: LifecycleDraft,
		},
		{
			name: "approved future event is published",
			event: Event{
				Status:          StatusApproved,
				LifecycleStatus: LifecyclePublished,
				StartTime:       now.Add(24 * time.Hour),
				EndTime:         now.Add(26 * time.Hour),
			},
			want: LifecyclePublished,
		},
		{
			name: "between start and end is ongoing",
			event: Event{
				Status:          StatusApproved,
				LifecycleStatus: LifecyclePublished,
				StartTime:       now.Add(-time.Hour),
				EndTime:         now.Add(time.Hour),
			},
			want: LifecycleOngoing,
		},
		{
			name: "exactly at start is ongoing",
			event: Event{
				Status:          StatusApproved,
				LifecycleStatus: LifecyclePublished,
				StartTime:       now,
				EndTime:         now.Add(time.Hour),
			},
			want: LifecycleOngoing,
		},
		{
			name: "past end is completed",
			event: Event{
				Status:          StatusApproved,
				LifecycleStatus: LifecycleOngoing,
				StartTime:       now.Add(-3 * time.Hour),
				EndTime:         now.Add(-time.Hour),
			},
			want: LifecycleCompleted,
		},
		{
			name: "close flag wins over everything",
			event: Event{
				Status:          StatusApproved,
				LifecycleStatus: LifecycleOngoing,
				IsClosed:        true,
				StartTime:       now.Add(-time.Hour),
				EndTime:         now.Add(time.Hour),
			},
			want: LifecycleClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeLifecycle(&tt.event, now))
		})
	}
}

func TestRefreshLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("moves published to ongoing", func(t *testing.T) {
		e := Event{
			Status:          StatusApproved,
			LifecycleStatus: LifecyclePublished,
			StartTime:       now.Add(-time.Hour),
			EndTime:         now.Add(time.Hour),
		}
		changed := RefreshLifecycle(&e, now)
		assert.True(t, changed)
		assert.Equal(t, LifecycleOngoing, e.LifecycleStatus)
	})

	t.Run("no change reports false", func(t *testing.T) {
		e := Event{
			Status:          StatusApproved,
			LifecycleStatus: LifecyclePublished,
			StartTime:       now.Add(time.Hour),
			EndTime:         now.Add(2 * time.Hour),
		}
		assert.False(t, RefreshLifecycle(&e, now))
	})

	t.Run("never regresses to draft", func(t *testing.T) {
		e := Event{
			Status:          StatusDraft,
			LifecycleStatus: LifecyclePublished,
			StartTime:       now.Add(time.Hour),
			EndTime:         now.Add(2 * time.Hour),
		}
		assert.False(t, RefreshLifecycle(&e, now))
		assert.Equal(t, LifecyclePublished, e.LifecycleStatus)
	})
}
