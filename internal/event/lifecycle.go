package event

import "time"

// ComputeLifecycle derives the lifecycle state from the approval status,
// the close flag and the clock. It is a pure function; callers persist
// the result separately.
func ComputeLifecycle(e *Event, now time.Time) string {
	switch {
	case e.IsClosed:
		return LifecycleClosed
	case e.Status == StatusDraft || e.LifecycleStatus == LifecycleDraft:
		return LifecycleDraft
	case !e.EndTime.IsZero() && now.After(e.EndTime):
		return LifecycleCompleted
	case !e.StartTime.IsZero() && !e.EndTime.IsZero() &&
		!now.Before(e.StartTime) && !now.After(e.EndTime):
		return LifecycleOngoing
	default:
		return LifecyclePublished
	}
}

// RefreshLifecycle applies the computed lifecycle to the in-memory event
// and reports whether it changed. A published event never regresses to
// draft here; only an explicit status change can do that.
func RefreshLifecycle(e *Event, now time.Time) bool {
	computed := ComputeLifecycle(e, now)
	if computed == e.LifecycleStatus {
		return false
	}
	if computed == LifecycleDraft && e.LifecycleStatus != LifecycleDraft {
		return false
	}
	e.LifecycleStatus = computed
	return true
}
