package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

// ScheduleTx is the per-provider transactional view. Implementations
// hold the provider's calendar lock for the duration of the callback.
type ScheduleTx interface {
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetAppointment(ctx context.Context, providerID, appointmentID uuid.UUID) (domain.Appointment, error)
	ListAppointments(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	DeleteAppointment(ctx context.Context, providerID, appointmentID uuid.UUID) error
}
