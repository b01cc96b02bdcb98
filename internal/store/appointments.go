package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Get(ctx context.Context, providerID, appointmentID uuid.UUID) (domain.Appointment, error)
	ListProviderWindow(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Appointment, error)
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Delete(ctx context.Context, providerID, appointmentID uuid.UUID) error

	GetProvider(ctx context.Context, providerID uuid.UUID) (domain.Provider, error)
}
