package schedule

import (
	"fmt"
	"time"

	"practicecal/backend/internal/domain"
)

type ResizeDirection string

const (
	// ResizeTop moves the start time and anchors the end.
	ResizeTop ResizeDirection = "top"
	// ResizeBottom moves the end time and anchors the start.
	ResizeBottom ResizeDirection = "bottom"
)

const (
	DefaultSnapIntervalMinutes = 15
	DefaultResizeBufferMinutes = 30
)

// canonicalDurations is the menu of common durations offered while
// resizing, before filtering to the appointment's own bounds.
var canonicalDurations = []int{15, 30, 45, 60, 90, 120, 180, 240, 300, 360, 420, 480}

// ResizeConfig carries the tenant-level knobs; zero values fall back to
// the shared defaults so a zero Manager still behaves sensibly.
type ResizeConfig struct {
	SnapIntervalMinutes int
	MinDurationMinutes  int
	MaxDurationMinutes  int
	// ResizeBufferMinutes blocks gestures on appointments starting
	// within this window from now (imminent or in progress).
	ResizeBufferMinutes int
}

// Manager validates and computes resize gestures. It is stateless
// apart from its configuration; the clock is injected for tests.
type Manager struct {
	cfg ResizeConfig
	now func() time.Time
}

func NewManager(cfg ResizeConfig, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	if cfg.SnapIntervalMinutes <= 0 {
		cfg.SnapIntervalMinutes = DefaultSnapIntervalMinutes
	}
	if cfg.MinDurationMinutes <= 0 {
		cfg.MinDurationMinutes = domain.DefaultMinDurationMinutes
	}
	if cfg.MaxDurationMinutes <= 0 {
		cfg.MaxDurationMinutes = domain.DefaultMaxDurationMinutes
	}
	if cfg.ResizeBufferMinutes <= 0 {
		cfg.ResizeBufferMinutes = DefaultResizeBufferMinutes
	}
	return &Manager{cfg: cfg, now: now}
}

// SnapInterval is the configured snapping granularity in minutes.
func (m *Manager) SnapInterval() int {
	return m.cfg.SnapIntervalMinutes
}

type ResizeConstraints struct {
	MinDurationMinutes  int
	MaxDurationMinutes  int
	SnapIntervalMinutes int
}

// Constraints returns the appointment's own duration bounds when set,
// otherwise the manager's configured defaults.
func (m *Manager) Constraints(a domain.Appointment) ResizeConstraints {
	c := ResizeConstraints{
		MinDurationMinutes:  m.cfg.MinDurationMinutes,
		MaxDurationMinutes:  m.cfg.MaxDurationMinutes,
		SnapIntervalMinutes: m.cfg.SnapIntervalMinutes,
	}
	if a.MinDurationMinutes > 0 {
		c.MinDurationMinutes = a.MinDurationMinutes
	}
	if a.MaxDurationMinutes > 0 {
		c.MaxDurationMinutes = a.MaxDurationMinutes
	}
	return c
}

// snapDuration rounds to the nearest multiple of the snap interval,
// half up.
func snapDuration(durationMinutes, snapMinutes int) int {
	if snapMinutes <= 0 {
		return durationMinutes
	}
	return (2*durationMinutes + snapMinutes) / (2 * snapMinutes) * snapMinutes
}

// CalculateResized applies a snapped target duration on the anchored
// endpoint: top keeps the end fixed and recomputes the start, bottom
// keeps the start fixed and recomputes the end.
func (m *Manager) CalculateResized(a domain.Appointment, direction ResizeDirection, newDurationMinutes int) (start, end time.Time) {
	snapped := snapDuration(newDurationMinutes, m.Constraints(a).SnapIntervalMinutes)
	d := time.Duration(snapped) * time.Minute
	if direction == ResizeTop {
		return a.EndTime.Add(-d), a.EndTime
	}
	return a.StartTime, a.StartTime.Add(d)
}

// ResizeResult is the authoritative outcome of a resize attempt.
// Validation and conflict failures are results, not errors.
type ResizeResult struct {
	Success   bool
	Updated   domain.Appointment
	Conflicts []domain.Appointment
	Message   string
}

// ValidateResize checks the target duration against the bounds, then
// the snapped candidate interval against the provider's snapshot. The
// bounds are checked before snapping so a target below the minimum is
// rejected rather than silently lifted onto it. On success the
// returned appointment carries the new interval but has not been
// committed anywhere.
func (m *Manager) ValidateResize(a domain.Appointment, direction ResizeDirection, newDurationMinutes int, snapshot []domain.Appointment, provider domain.Provider) ResizeResult {
	c := m.Constraints(a)

	snapped := snapDuration(newDurationMinutes, c.SnapIntervalMinutes)
	if newDurationMinutes < c.MinDurationMinutes || snapped < c.MinDurationMinutes {
		return ResizeResult{Message: fmt.Sprintf("Minimum duration: %dm", c.MinDurationMinutes)}
	}
	if newDurationMinutes > c.MaxDurationMinutes || snapped > c.MaxDurationMinutes {
		return ResizeResult{Message: fmt.Sprintf("Maximum duration: %dm", c.MaxDurationMinutes)}
	}

	start, end := m.CalculateResized(a, direction, newDurationMinutes)
	res := CheckAppointmentConflicts(a, start, end.Sub(start), snapshot, provider)
	if res.HasConflict {
		return ResizeResult{Conflicts: res.Conflicts, Message: res.Reason}
	}

	updated := a
	updated.StartTime = start
	updated.EndTime = end
	return ResizeResult{Success: true, Updated: updated}
}

// ResizeFeedback is the cheap synchronous pre-check shown while the
// user drags; it never consults the snapshot.
type ResizeFeedback struct {
	Valid        bool
	DeltaMinutes int
	Message      string
}

// Feedback frames the live duration delta by which endpoint is moving,
// or names the violated bound when the target is out of range.
func (m *Manager) Feedback(a domain.Appointment, direction ResizeDirection, currentDurationMinutes, targetDurationMinutes int) ResizeFeedback {
	c := m.Constraints(a)
	delta := targetDurationMinutes - currentDurationMinutes

	if targetDurationMinutes < c.MinDurationMinutes {
		return ResizeFeedback{DeltaMinutes: delta, Message: fmt.Sprintf("Minimum duration: %dm", c.MinDurationMinutes)}
	}
	if targetDurationMinutes > c.MaxDurationMinutes {
		return ResizeFeedback{DeltaMinutes: delta, Message: fmt.Sprintf("Maximum duration: %dm", c.MaxDurationMinutes)}
	}

	verb := "Extending"
	if delta < 0 {
		verb = "Shortening"
	}
	edge := "end"
	if direction == ResizeTop {
		edge = "start"
	}
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return ResizeFeedback{
		Valid:        true,
		DeltaMinutes: delta,
		Message:      fmt.Sprintf("%s from %s: %d minutes", verb, edge, magnitude),
	}
}

// SuggestedDurations filters the canonical duration menu to the
// appointment's bounds, splicing in the current duration so the menu
// always contains a no-op choice.
func (m *Manager) SuggestedDurations(a domain.Appointment) []int {
	c := m.Constraints(a)
	current := a.DurationMinutes()

	out := make([]int, 0, len(canonicalDurations)+1)
	seen := false
	for _, d := range canonicalDurations {
		if d < c.MinDurationMinutes || d > c.MaxDurationMinutes {
			continue
		}
		if current > 0 && !seen && current <= d {
			if current < d {
				out = append(out, current)
			}
			seen = true
		}
		out = append(out, d)
	}
	if current > 0 && !seen {
		out = append(out, current)
	}
	return out
}

// FormatDuration renders minutes for display: "45m", "1h", "1h 30m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// CanResize reports whether a resize gesture may start at all: the
// appointment must be resizable, not finished or cancelled, not
// already past, and not starting within the buffer window from now.
func (m *Manager) CanResize(a domain.Appointment) bool {
	if !a.Resizable {
		return false
	}
	if a.Status == domain.AppointmentStatusCompleted || a.Status == domain.AppointmentStatusCancelled {
		return false
	}
	now := m.now()
	if !a.EndTime.After(now) {
		return false
	}
	buffer := time.Duration(m.cfg.ResizeBufferMinutes) * time.Minute
	return a.StartTime.After(now.Add(buffer))
}

// Cursor returns the pointer hint for a resize handle. While a gesture
// is active the hint is direction-independent.
func Cursor(direction ResizeDirection, active bool) string {
	if active {
		return "resize-vertical"
	}
	if direction == ResizeTop {
		return "resize-north"
	}
	return "resize-south"
}
