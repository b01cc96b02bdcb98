package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
	"practicecal/backend/internal/schedule"
	"practicecal/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ConflictError carries the full conflict outcome so callers can show
// which appointments collide rather than a generic failure.
type ConflictError struct {
	Result schedule.ConflictResult
}

func (e *ConflictError) Error() string {
	if e.Result.Reason != "" {
		return e.Result.Reason
	}
	return "schedule conflict"
}

type Service struct {
	repo   store.AppointmentRepository
	resize *schedule.Manager
	log    *slog.Logger
}

func NewService(repo store.AppointmentRepository, resize *schedule.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		resize: resize,
		log:    log.With(slog.String("component", "service.calendar")),
	}
}

type CreateInput struct {
	ProviderID         uuid.UUID
	ClientID           uuid.UUID
	ServiceID          uuid.UUID
	Title              string
	ClientName         string
	Color              string
	StartTime          time.Time
	EndTime            time.Time
	Type               domain.AppointmentType
	CreatedBy          domain.CreatedBy
	MinDurationMinutes int
	MaxDurationMinutes int
	IdempotencyKey     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if in.ProviderID == uuid.Nil {
		return domain.Appointment{}, validationError("provider_id is required")
	}

	apptType := in.Type
	if apptType == "" {
		apptType = domain.AppointmentTypeAppointment
	}
	if apptType != domain.AppointmentTypeAppointment && apptType != domain.AppointmentTypeBreak {
		return domain.Appointment{}, validationError("invalid type")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		if apptType != domain.AppointmentTypeBreak {
			return domain.Appointment{}, validationError("title is required")
		}
		title = "Break"
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = domain.CreatedByProvider
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()

	appt := domain.Appointment{
		ProviderID:         in.ProviderID,
		ClientID:           in.ClientID,
		ServiceID:          in.ServiceID,
		Title:              title,
		ClientName:         strings.TrimSpace(in.ClientName),
		Color:              in.Color,
		StartTime:          start,
		EndTime:            end,
		Status:             domain.AppointmentStatusScheduled,
		Type:               apptType,
		CreatedBy:          createdBy,
		Draggable:          true,
		Resizable:          true,
		MinDurationMinutes: in.MinDurationMinutes,
		MaxDurationMinutes: in.MaxDurationMinutes,
	}
	if err := appt.Validate(); err != nil {
		return domain.Appointment{}, validationError(err.Error())
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Appointment{}, validationError("idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("practicecal:create_appointment:"+in.ProviderID.String()+":"+key))
	}

	provider, snapshot, err := s.loadContext(ctx, in.ProviderID, start, end)
	if err != nil {
		return domain.Appointment{}, err
	}

	res := schedule.CheckAppointmentConflicts(appt, start, end.Sub(start), snapshot, provider)
	if res.HasConflict {
		return domain.Appointment{}, &ConflictError{Result: res}
	}

	return s.repo.Create(ctx, appt)
}

type MoveInput struct {
	ProviderID    uuid.UUID
	AppointmentID uuid.UUID
	NewStart      time.Time
	// NewProviderID reassigns the appointment when set; uuid.Nil keeps
	// the current provider.
	NewProviderID uuid.UUID
}

func (s *Service) Move(ctx context.Context, in MoveInput) (domain.Appointment, error) {
	if in.ProviderID == uuid.Nil {
		return domain.Appointment{}, validationError("provider_id is required")
	}
	if in.AppointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	if in.NewStart.IsZero() {
		return domain.Appointment{}, validationError("start_time is required")
	}

	appt, err := s.repo.Get(ctx, in.ProviderID, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !appt.Draggable {
		return domain.Appointment{}, validationError("appointment is not draggable")
	}

	target := schedule.DropTarget{Start: in.NewStart.UTC(), ProviderID: in.NewProviderID}
	targetProvider := appt.ProviderID
	if in.NewProviderID != uuid.Nil {
		targetProvider = in.NewProviderID
	}

	provider, snapshot, err := s.loadContext(ctx, targetProvider, target.Start, target.Start.Add(appt.Duration()))
	if err != nil {
		return domain.Appointment{}, err
	}

	var committed domain.Appointment
	coord := schedule.NewCoordinator(s.resize, func(ctx context.Context, a domain.Appointment) error {
		out, err := s.repo.Update(ctx, a)
		if err != nil {
			return err
		}
		committed = out
		return nil
	}, s.log)

	ok, err := coord.OnAppointmentDrop(ctx, appt, target, snapshot, provider)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("move commit: %w", err)
	}
	if !ok {
		// Re-derive the conflict from the same snapshot; the check is
		// pure and deterministic, so the answer matches the rejection.
		candidate := appt
		candidate.ProviderID = targetProvider
		res := schedule.CheckAppointmentConflicts(candidate, target.Start, appt.Duration(), snapshot, provider)
		return domain.Appointment{}, &ConflictError{Result: res}
	}
	return committed, nil
}

type ResizeInput struct {
	ProviderID      uuid.UUID
	AppointmentID   uuid.UUID
	Direction       schedule.ResizeDirection
	DurationMinutes int
}

func (s *Service) Resize(ctx context.Context, in ResizeInput) (domain.Appointment, error) {
	if in.ProviderID == uuid.Nil {
		return domain.Appointment{}, validationError("provider_id is required")
	}
	if in.AppointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	if in.Direction != schedule.ResizeTop && in.Direction != schedule.ResizeBottom {
		return domain.Appointment{}, validationError("direction must be top or bottom")
	}
	if in.DurationMinutes <= 0 {
		return domain.Appointment{}, validationError("duration_minutes must be positive")
	}

	appt, err := s.repo.Get(ctx, in.ProviderID, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !appt.Resizable {
		return domain.Appointment{}, validationError("appointment is not resizable")
	}

	window := time.Duration(in.DurationMinutes) * time.Minute
	provider, snapshot, err := s.loadContext(ctx, appt.ProviderID, appt.StartTime.Add(-window), appt.EndTime.Add(window))
	if err != nil {
		return domain.Appointment{}, err
	}

	res := s.resize.ValidateResize(appt, in.Direction, in.DurationMinutes, snapshot, provider)
	if !res.Success {
		if len(res.Conflicts) > 0 {
			return domain.Appointment{}, &ConflictError{Result: schedule.ConflictResult{
				HasConflict: true,
				Conflicts:   res.Conflicts,
				Reason:      res.Message,
			}}
		}
		return domain.Appointment{}, validationError(res.Message)
	}

	return s.repo.Update(ctx, res.Updated)
}

func (s *Service) ListDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]domain.Appointment, error) {
	if providerID == uuid.Nil {
		return nil, validationError("provider_id is required")
	}
	dayStart, dayEnd := dayBounds(day)
	appts, err := s.repo.ListProviderWindow(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return schedule.SortAppointmentsByTime(appts), nil
}

func (s *Service) DayAvailability(ctx context.Context, providerID uuid.UUID, day time.Time, durationMinutes int) ([]schedule.TimeSlot, error) {
	if providerID == uuid.Nil {
		return nil, validationError("provider_id is required")
	}
	if durationMinutes <= 0 {
		return nil, validationError("duration_minutes must be positive")
	}

	provider, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := dayBounds(day)
	appts, err := s.repo.ListProviderWindow(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return schedule.AvailableTimeSlots(provider, dayStart, durationMinutes, s.resize.SnapInterval(), appts), nil
}

func (s *Service) Delete(ctx context.Context, providerID, appointmentID uuid.UUID) error {
	if providerID == uuid.Nil {
		return validationError("provider_id is required")
	}
	if appointmentID == uuid.Nil {
		return validationError("appointment_id is required")
	}
	return s.repo.Delete(ctx, providerID, appointmentID)
}

func (s *Service) loadContext(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) (domain.Provider, []domain.Appointment, error) {
	provider, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return domain.Provider{}, nil, err
	}
	snapshot, err := s.repo.ListProviderWindow(ctx, providerID, windowStart.Add(-24*time.Hour), windowEnd.Add(24*time.Hour))
	if err != nil {
		return domain.Provider{}, nil, err
	}
	return provider, snapshot, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
