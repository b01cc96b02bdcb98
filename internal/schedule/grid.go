// Package schedule is the scheduling core: time/position mapping,
// conflict detection, and resize/drag validation over a caller-supplied
// snapshot of appointments. Everything here is a pure function or a
// small injectable service; nothing touches storage or the network.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

const (
	hoursPerDay = 24

	// blockGap separates adjacent blocks visually; minBlockHeight keeps
	// very short appointments clickable. Both are in the same unit as
	// unitsPerHour, whatever the caller chooses that to be.
	blockGap       = 0.25
	minBlockHeight = 0.5
)

// GenerateTimeSlots returns the fixed hourly grid labels "0:00" through
// "23:00". The output is identical on every call.
func GenerateTimeSlots() []string {
	slots := make([]string, 0, hoursPerDay)
	for h := 0; h < hoursPerDay; h++ {
		slots = append(slots, fmt.Sprintf("%d:00", h))
	}
	return slots
}

// FormatTimeSlot renders an on-the-hour grid label in 12-hour form:
// "0:00" becomes "12:00 AM", "15:00" becomes "3:00 PM". Labels that do
// not parse are returned unchanged.
func FormatTimeSlot(label string) string {
	minutes, err := domain.ParseClockTime(label)
	if err != nil {
		return label
	}
	hour := minutes / 60
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}

// BlockPosition is a vertical placement on the day grid, in whatever
// unit unitsPerHour was given in.
type BlockPosition struct {
	Top    float64
	Height float64
}

// AppointmentPosition maps an appointment's interval to a grid
// position. Top is linear in the start time; Height is linear in the
// duration minus a fixed gap, floored so zero-length blocks stay
// visible.
func AppointmentPosition(a domain.Appointment, unitsPerHour float64) BlockPosition {
	startHours := float64(a.StartTime.Hour()) + float64(a.StartTime.Minute())/60
	height := float64(a.DurationMinutes())/60*unitsPerHour - blockGap
	if height < minBlockHeight {
		height = minBlockHeight
	}
	return BlockPosition{
		Top:    startHours * unitsPerHour,
		Height: height,
	}
}

// CurrentTimePosition returns the grid offset of now, but only when
// reference falls on the same calendar day as now; otherwise the
// second return is false and the indicator should not be drawn.
func CurrentTimePosition(reference, now time.Time, unitsPerHour float64) (float64, bool) {
	ry, rm, rd := reference.Date()
	ny, nm, nd := now.Date()
	if ry != ny || rm != nm || rd != nd {
		return 0, false
	}
	return (float64(now.Hour()) + float64(now.Minute())/60) * unitsPerHour, true
}

// TimeSlot is a derived bookability probe for one candidate start time.
// It is recomputed on demand and never stored.
type TimeSlot struct {
	Time       time.Time
	ProviderID uuid.UUID
	Available  bool
}

// AvailableTimeSlots walks the provider's working day on the given
// date at stepMinutes granularity and reports, per candidate start,
// whether a booking of durationMinutes would fit. Days the provider
// does not work yield no slots.
func AvailableTimeSlots(provider domain.Provider, date time.Time, durationMinutes, stepMinutes int, appts []domain.Appointment) []TimeSlot {
	if durationMinutes <= 0 || stepMinutes <= 0 {
		return nil
	}
	day, ok := provider.WorkingHours.ScheduleFor(date.Weekday())
	if !ok {
		return nil
	}
	open, err := domain.ParseClockTime(day.Start)
	if err != nil {
		return nil
	}
	close, err := domain.ParseClockTime(day.End)
	if err != nil {
		return nil
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	duration := time.Duration(durationMinutes) * time.Minute

	var slots []TimeSlot
	for m := open; m+durationMinutes <= close; m += stepMinutes {
		start := midnight.Add(time.Duration(m) * time.Minute)
		slots = append(slots, TimeSlot{
			Time:       start,
			ProviderID: provider.ID,
			Available:  IsTimeSlotAvailable(start, duration, provider.ID, appts, provider),
		})
	}
	return slots
}
