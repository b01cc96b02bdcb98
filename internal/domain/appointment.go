package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCheckedIn AppointmentStatus = "checked_in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type AppointmentType string

const (
	AppointmentTypeAppointment AppointmentType = "appointment"
	AppointmentTypeBreak       AppointmentType = "break"
)

type CreatedBy string

const (
	CreatedByProvider CreatedBy = "provider"
	CreatedByPatient  CreatedBy = "patient"
)

// Default duration bounds, applied when an appointment carries none of
// its own (MinDurationMinutes/MaxDurationMinutes == 0).
const (
	DefaultMinDurationMinutes = 15
	DefaultMaxDurationMinutes = 480
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID                 uuid.UUID         `bun:"id,pk,type:uuid"`
	ProviderID         uuid.UUID         `bun:"provider_id,notnull,type:uuid"`
	ClientID           uuid.UUID         `bun:"client_id,type:uuid"`
	ServiceID          uuid.UUID         `bun:"service_id,type:uuid"`
	Title              string            `bun:"title,notnull"`
	ClientName         string            `bun:"client_name"`
	Color              string            `bun:"color"`
	StartTime          time.Time         `bun:"start_time,notnull"`
	EndTime            time.Time         `bun:"end_time,notnull"`
	Status             AppointmentStatus `bun:"status,notnull"`
	Type               AppointmentType   `bun:"type,notnull"`
	CreatedBy          CreatedBy         `bun:"created_by,notnull"`
	Draggable          bool              `bun:"is_draggable,notnull"`
	Resizable          bool              `bun:"is_resizable,notnull"`
	MinDurationMinutes int               `bun:"min_duration_minutes"`
	MaxDurationMinutes int               `bun:"max_duration_minutes"`
	CreatedAt          time.Time         `bun:"created_at,notnull"`
	UpdatedAt          time.Time         `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

func (a Appointment) DurationMinutes() int {
	return int(a.Duration() / time.Minute)
}

// MinDuration and MaxDuration report the appointment's own bounds,
// substituting the shared defaults when unset.
func (a Appointment) MinDuration() int {
	if a.MinDurationMinutes > 0 {
		return a.MinDurationMinutes
	}
	return DefaultMinDurationMinutes
}

func (a Appointment) MaxDuration() int {
	if a.MaxDurationMinutes > 0 {
		return a.MaxDurationMinutes
	}
	return DefaultMaxDurationMinutes
}

func (a Appointment) Validate() error {
	if a.ProviderID == uuid.Nil {
		return errors.New("provider_id is required")
	}
	if !a.EndTime.After(a.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	d := a.DurationMinutes()
	if d < a.MinDuration() {
		return fmt.Errorf("duration %dm below minimum %dm", d, a.MinDuration())
	}
	if d > a.MaxDuration() {
		return fmt.Errorf("duration %dm above maximum %dm", d, a.MaxDuration())
	}
	return nil
}

// Blocks reports whether the appointment occupies its interval for
// conflict purposes. Cancelled and no-show appointments free their slot.
func (a Appointment) Blocks() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusNoShow
}
