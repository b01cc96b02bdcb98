package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

// CommitFunc persists a validated appointment. The coordinator never
// talks to storage itself; the caller injects whatever save mechanism
// it has. A returned error means the optimistic UI update must be
// rolled back.
type CommitFunc func(ctx context.Context, appt domain.Appointment) error

// Coordinator is a stateless validate-then-commit pipeline for drag
// and resize gestures. It performs no retries and holds no snapshot;
// serializing gestures per appointment is the caller's contract.
type Coordinator struct {
	resize *Manager
	commit CommitFunc
	log    *slog.Logger
}

func NewCoordinator(resize *Manager, commit CommitFunc, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		resize: resize,
		commit: commit,
		log:    log.With(slog.String("component", "schedule.coordinator")),
	}
}

// DropTarget is where a dragged appointment was released. A nil
// ProviderID keeps the current provider; a different one reassigns.
type DropTarget struct {
	Start      time.Time
	ProviderID uuid.UUID
}

// OnAppointmentDrop validates a move (duration preserved) against the
// snapshot and commits it. Returns false without committing on
// conflict; returns false plus the underlying error when the commit
// itself fails, so the caller can log and revert.
func (c *Coordinator) OnAppointmentDrop(ctx context.Context, appt domain.Appointment, target DropTarget, snapshot []domain.Appointment, provider domain.Provider) (bool, error) {
	if !appt.Draggable {
		c.log.Debug("drop rejected", slog.String("appointment_id", appt.ID.String()), slog.String("reason", "not_draggable"))
		return false, nil
	}

	candidate := appt
	candidate.StartTime = target.Start
	candidate.EndTime = target.Start.Add(appt.Duration())
	if target.ProviderID != uuid.Nil {
		candidate.ProviderID = target.ProviderID
	}

	res := CheckAppointmentConflicts(candidate, candidate.StartTime, candidate.Duration(), snapshot, provider)
	if res.HasConflict {
		c.log.Info(
			"drop conflict",
			slog.String("appointment_id", appt.ID.String()),
			slog.Time("start_time", candidate.StartTime),
			slog.Int("conflicts", len(res.Conflicts)),
			slog.String("reason", res.Reason),
		)
		return false, nil
	}

	if err := c.commit(ctx, candidate); err != nil {
		c.log.Error("drop commit failed", slog.Any("err", err), slog.String("appointment_id", appt.ID.String()))
		return false, err
	}

	c.log.Info(
		"appointment moved",
		slog.String("appointment_id", appt.ID.String()),
		slog.Time("start_time", candidate.StartTime),
		slog.Time("end_time", candidate.EndTime),
	)
	return true, nil
}

// OnAppointmentResize validates a resize through the resize engine and
// commits the updated interval. Same outcome contract as drop.
func (c *Coordinator) OnAppointmentResize(ctx context.Context, appt domain.Appointment, direction ResizeDirection, newDurationMinutes int, snapshot []domain.Appointment, provider domain.Provider) (bool, error) {
	res := c.resize.ValidateResize(appt, direction, newDurationMinutes, snapshot, provider)
	if !res.Success {
		c.log.Info(
			"resize rejected",
			slog.String("appointment_id", appt.ID.String()),
			slog.Int("target_minutes", newDurationMinutes),
			slog.String("reason", res.Message),
		)
		return false, nil
	}

	if err := c.commit(ctx, res.Updated); err != nil {
		c.log.Error("resize commit failed", slog.Any("err", err), slog.String("appointment_id", appt.ID.String()))
		return false, err
	}

	c.log.Info(
		"appointment resized",
		slog.String("appointment_id", appt.ID.String()),
		slog.Time("start_time", res.Updated.StartTime),
		slog.Time("end_time", res.Updated.EndTime),
	)
	return true, nil
}
