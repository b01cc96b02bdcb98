package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
)

func TestGenerateTimeSlots_FixedHourlyGrid(t *testing.T) {
	slots := GenerateTimeSlots()
	if len(slots) != 24 {
		t.Fatalf("len(slots) = %d, want 24", len(slots))
	}
	if slots[0] != "0:00" {
		t.Fatalf("slots[0] = %q, want %q", slots[0], "0:00")
	}
	if slots[23] != "23:00" {
		t.Fatalf("slots[23] = %q, want %q", slots[23], "23:00")
	}

	again := GenerateTimeSlots()
	for i := range slots {
		if slots[i] != again[i] {
			t.Fatalf("slot %d differs between calls: %q vs %q", i, slots[i], again[i])
		}
	}
}

func TestFormatTimeSlot(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"0:00", "12:00 AM"},
		{"1:00", "1:00 AM"},
		{"11:00", "11:00 AM"},
		{"12:00", "12:00 PM"},
		{"13:00", "1:00 PM"},
		{"15:00", "3:00 PM"},
		{"23:00", "11:00 PM"},
	}
	for _, tc := range cases {
		if got := FormatTimeSlot(tc.label); got != tc.want {
			t.Fatalf("FormatTimeSlot(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestAppointmentPosition_LinearInStartAndDuration(t *testing.T) {
	a := domain.Appointment{
		StartTime: time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}

	pos := AppointmentPosition(a, 4)
	if pos.Top != 42 {
		t.Fatalf("top = %v, want 42", pos.Top)
	}
	if pos.Height != 5.75 {
		t.Fatalf("height = %v, want 5.75", pos.Height)
	}
}

func TestAppointmentPosition_MinimumHeightFloor(t *testing.T) {
	a := domain.Appointment{
		StartTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC),
	}

	pos := AppointmentPosition(a, 4)
	if pos.Height != minBlockHeight {
		t.Fatalf("height = %v, want floor %v", pos.Height, minBlockHeight)
	}
}

func TestCurrentTimePosition_SameDayOnly(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	pos, ok := CurrentTimePosition(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), now, 4)
	if !ok {
		t.Fatalf("expected position for same-day reference")
	}
	if pos != 58 {
		t.Fatalf("pos = %v, want 58", pos)
	}

	_, ok = CurrentTimePosition(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), now, 4)
	if ok {
		t.Fatalf("expected no position for a different day")
	}
}

func TestAvailableTimeSlots_MarksBusyAndBreaks(t *testing.T) {
	providerID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	provider := domain.Provider{
		ID:   providerID,
		Name: "Dana",
		WorkingHours: domain.WorkingHours{
			"monday": {Start: "9:00", End: "12:00", Breaks: []domain.BreakWindow{
				{Start: "10:00", End: "10:30", Label: "Coffee"},
			}},
		},
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	appts := []domain.Appointment{{
		ID:         uuid.MustParse("00000000-0000-0000-0000-000000000010"),
		ProviderID: providerID,
		Title:      "Existing",
		StartTime:  day.Add(11 * time.Hour),
		EndTime:    day.Add(11*time.Hour + 30*time.Minute),
		Status:     domain.AppointmentStatusScheduled,
	}}

	slots := AvailableTimeSlots(provider, day, 30, 30, appts)
	if len(slots) != 6 {
		t.Fatalf("len(slots) = %d, want 6", len(slots))
	}

	byTime := make(map[string]bool, len(slots))
	for _, s := range slots {
		if s.ProviderID != providerID {
			t.Fatalf("slot provider = %s, want %s", s.ProviderID, providerID)
		}
		byTime[s.Time.Format("15:04")] = s.Available
	}

	if !byTime["09:00"] || !byTime["09:30"] {
		t.Fatalf("expected 09:00 and 09:30 available, got %v", byTime)
	}
	if byTime["10:00"] {
		t.Fatalf("expected 10:00 unavailable (break), got %v", byTime)
	}
	if byTime["11:00"] {
		t.Fatalf("expected 11:00 unavailable (busy), got %v", byTime)
	}
	if !byTime["11:30"] {
		t.Fatalf("expected 11:30 available, got %v", byTime)
	}
}

func TestAvailableTimeSlots_NonWorkingDay(t *testing.T) {
	provider := domain.Provider{
		ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		WorkingHours: domain.WorkingHours{
			"monday": {Start: "9:00", End: "17:00"},
		},
	}
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if slots := AvailableTimeSlots(provider, sunday, 30, 30, nil); len(slots) != 0 {
		t.Fatalf("expected no slots on a non-working day, got %d", len(slots))
	}
}
