package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

// ConflictResult is a derived outcome, never stored. A true HasConflict
// with an empty Conflicts slice means the candidate interval is invalid
// for a non-overlap reason (outside working hours, inside a break).
type ConflictResult struct {
	HasConflict bool
	Conflicts   []domain.Appointment
	Reason      string
}

// Overlaps is the half-open interval test: [a.Start, a.End) and
// [b.Start, b.End) overlap iff each starts before the other ends.
// Touching edges do not overlap. Symmetric by construction.
func Overlaps(a, b domain.Appointment) bool {
	return a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsTimeSlotAvailable reports whether a booking of the given duration
// starting at start would be valid for the provider: inside working
// hours, outside declared breaks, and clear of every blocking
// appointment the provider already has.
func IsTimeSlotAvailable(start time.Time, duration time.Duration, providerID uuid.UUID, appts []domain.Appointment, provider domain.Provider) bool {
	end := start.Add(duration)

	if !withinWorkingHours(provider, start, end) {
		return false
	}
	for _, a := range appts {
		if a.ProviderID != providerID || !a.Blocks() {
			continue
		}
		if intervalsOverlap(start, end, a.StartTime, a.EndTime) {
			return false
		}
	}
	return true
}

func withinWorkingHours(provider domain.Provider, start, end time.Time) bool {
	day, ok := provider.WorkingHours.ScheduleFor(start.Weekday())
	if !ok {
		return false
	}
	open, err := domain.ParseClockTime(day.Start)
	if err != nil {
		return false
	}
	close, err := domain.ParseClockTime(day.End)
	if err != nil {
		return false
	}

	startMin := domain.MinuteOfDay(start)
	endMin := startMin + int(end.Sub(start)/time.Minute)
	if startMin < open || endMin > close {
		return false
	}

	for _, br := range day.Breaks {
		bs, err := domain.ParseClockTime(br.Start)
		if err != nil {
			continue
		}
		be, err := domain.ParseClockTime(br.End)
		if err != nil {
			continue
		}
		if startMin < be && bs < endMin {
			return false
		}
	}
	return true
}

// CheckAppointmentConflicts validates a candidate interval for an
// existing appointment. candidateStart and candidateDuration override
// the stored interval; the appointment itself is excluded from the
// comparison set. Every overlapping blocking appointment of the same
// provider is collected, not just the first.
func CheckAppointmentConflicts(appt domain.Appointment, candidateStart time.Time, candidateDuration time.Duration, all []domain.Appointment, provider domain.Provider) ConflictResult {
	candidateEnd := candidateStart.Add(candidateDuration)

	var conflicts []domain.Appointment
	for _, other := range all {
		if other.ID == appt.ID {
			continue
		}
		if other.ProviderID != appt.ProviderID || !other.Blocks() {
			continue
		}
		if intervalsOverlap(candidateStart, candidateEnd, other.StartTime, other.EndTime) {
			conflicts = append(conflicts, other)
		}
	}

	if len(conflicts) > 0 {
		return ConflictResult{
			HasConflict: true,
			Conflicts:   conflicts,
			Reason:      conflictReason(conflicts),
		}
	}

	if len(provider.WorkingHours) > 0 && !withinWorkingHours(provider, candidateStart, candidateEnd) {
		return ConflictResult{
			HasConflict: true,
			Reason:      fmt.Sprintf("Outside %s's working hours", providerLabel(provider)),
		}
	}

	return ConflictResult{}
}

func providerLabel(p domain.Provider) string {
	if p.Name != "" {
		return p.Name
	}
	return "provider"
}

func conflictReason(conflicts []domain.Appointment) string {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		title := c.Title
		if title == "" {
			title = string(c.Type)
		}
		parts = append(parts, fmt.Sprintf("%s at %s", title, c.StartTime.Format("3:04 PM")))
	}
	return "Overlaps with " + strings.Join(parts, ", ")
}

// DetectProviderConflicts groups a provider's blocking appointments
// into connected components of mutual overlap: if A overlaps B and B
// overlaps C, all three land in one group even when A and C are clear
// of each other. Groups are ordered by start time; singletons are
// omitted.
func DetectProviderConflicts(appts []domain.Appointment, providerID uuid.UUID) [][]domain.Appointment {
	var mine []domain.Appointment
	for _, a := range appts {
		if a.ProviderID == providerID && a.Blocks() {
			mine = append(mine, a)
		}
	}
	mine = SortAppointmentsByTime(mine)

	var groups [][]domain.Appointment
	var current []domain.Appointment
	var reach time.Time

	for _, a := range mine {
		if len(current) > 0 && a.StartTime.Before(reach) {
			current = append(current, a)
			if a.EndTime.After(reach) {
				reach = a.EndTime
			}
			continue
		}
		if len(current) > 1 {
			groups = append(groups, current)
		}
		current = []domain.Appointment{a}
		reach = a.EndTime
	}
	if len(current) > 1 {
		groups = append(groups, current)
	}
	return groups
}

// SortAppointmentsByTime returns a copy sorted ascending by start time.
func SortAppointmentsByTime(appts []domain.Appointment) []domain.Appointment {
	out := make([]domain.Appointment, len(appts))
	copy(out, appts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
