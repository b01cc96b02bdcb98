package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
	"practicecal/backend/internal/schedule"
	"practicecal/backend/internal/service/calendar"
	"practicecal/backend/internal/store"
)

type fakeCalendarService struct {
	createFn       func(ctx context.Context, in calendar.CreateInput) (domain.Appointment, error)
	moveFn         func(ctx context.Context, in calendar.MoveInput) (domain.Appointment, error)
	resizeFn       func(ctx context.Context, in calendar.ResizeInput) (domain.Appointment, error)
	listDayFn      func(ctx context.Context, providerID uuid.UUID, day time.Time) ([]domain.Appointment, error)
	availabilityFn func(ctx context.Context, providerID uuid.UUID, day time.Time, durationMinutes int) ([]schedule.TimeSlot, error)
	deleteFn       func(ctx context.Context, providerID, appointmentID uuid.UUID) error
}

func (f *fakeCalendarService) Create(ctx context.Context, in calendar.CreateInput) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeCalendarService) Move(ctx context.Context, in calendar.MoveInput) (domain.Appointment, error) {
	if f.moveFn == nil {
		panic("Move not configured")
	}
	return f.moveFn(ctx, in)
}

func (f *fakeCalendarService) Resize(ctx context.Context, in calendar.ResizeInput) (domain.Appointment, error) {
	if f.resizeFn == nil {
		panic("Resize not configured")
	}
	return f.resizeFn(ctx, in)
}

func (f *fakeCalendarService) ListDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]domain.Appointment, error) {
	if f.listDayFn == nil {
		panic("ListDay not configured")
	}
	return f.listDayFn(ctx, providerID, day)
}

func (f *fakeCalendarService) DayAvailability(ctx context.Context, providerID uuid.UUID, day time.Time, durationMinutes int) ([]schedule.TimeSlot, error) {
	if f.availabilityFn == nil {
		panic("DayAvailability not configured")
	}
	return f.availabilityFn(ctx, providerID, day, durationMinutes)
}

func (f *fakeCalendarService) Delete(ctx context.Context, providerID, appointmentID uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, providerID, appointmentID)
}

var (
	testProviderID    = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	testAppointmentID = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

func sampleAppointment() domain.Appointment {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return domain.Appointment{
		ID:         testAppointmentID,
		ProviderID: testProviderID,
		Title:      "Consultation",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     domain.AppointmentStatusScheduled,
		Type:       domain.AppointmentTypeAppointment,
		CreatedBy:  domain.CreatedByProvider,
		Draggable:  true,
		Resizable:  true,
	}
}

func serve(t *testing.T, svc *fakeCalendarService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewCalendarServer(svc, nil).Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleCreate_Created(t *testing.T) {
	var gotKey string
	svc := &fakeCalendarService{
		createFn: func(ctx context.Context, in calendar.CreateInput) (domain.Appointment, error) {
			gotKey = in.IdempotencyKey
			a := sampleAppointment()
			a.Title = in.Title
			return a, nil
		},
	}

	body := `{
		"provider_id": "` + testProviderID.String() + `",
		"title": "Consultation",
		"start_time": "2026-03-02T10:00:00Z",
		"end_time": "2026-03-02T11:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "abc-123")

	rec := serve(t, svc, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if gotKey != "abc-123" {
		t.Fatalf("idempotency key = %q, want %q", gotKey, "abc-123")
	}

	var got appointmentJSON
	decodeBody(t, rec, &got)
	if got.ID != testAppointmentID.String() || got.Title != "Consultation" {
		t.Fatalf("body = %+v", got)
	}
	if got.StartTime != "2026-03-02T10:00:00Z" {
		t.Fatalf("start_time = %q", got.StartTime)
	}
}

func TestHandleCreate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader("{not json"))
	rec := serve(t, &fakeCalendarService{}, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleCreate_ValidationErrorMapsTo400(t *testing.T) {
	svc := &fakeCalendarService{
		createFn: func(ctx context.Context, in calendar.CreateInput) (domain.Appointment, error) {
			return domain.Appointment{}, &calendar.ValidationError{}
		},
	}

	body := `{
		"provider_id": "` + testProviderID.String() + `",
		"start_time": "2026-03-02T10:00:00Z",
		"end_time": "2026-03-02T11:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/appointments", strings.NewReader(body))
	rec := serve(t, svc, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleMove_ConflictBodyListsCollisions(t *testing.T) {
	blocker := sampleAppointment()
	svc := &fakeCalendarService{
		moveFn: func(ctx context.Context, in calendar.MoveInput) (domain.Appointment, error) {
			return domain.Appointment{}, &calendar.ConflictError{Result: schedule.ConflictResult{
				HasConflict: true,
				Conflicts:   []domain.Appointment{blocker},
				Reason:      "Overlaps with Consultation at 10:00 AM",
			}}
		},
	}

	url := "/v1/providers/" + testProviderID.String() + "/appointments/" + testAppointmentID.String() + "/move"
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"start_time":"2026-03-02T10:30:00Z"}`))
	rec := serve(t, svc, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var got conflictJSON
	decodeBody(t, rec, &got)
	if got.Error != "Overlaps with Consultation at 10:00 AM" {
		t.Fatalf("error = %q", got.Error)
	}
	if len(got.Conflicts) != 1 || got.Conflicts[0].ID != blocker.ID.String() {
		t.Fatalf("conflicts = %+v", got.Conflicts)
	}
}

func TestHandleMove_PassesNewProvider(t *testing.T) {
	other := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	var gotIn calendar.MoveInput
	svc := &fakeCalendarService{
		moveFn: func(ctx context.Context, in calendar.MoveInput) (domain.Appointment, error) {
			gotIn = in
			return sampleAppointment(), nil
		},
	}

	url := "/v1/providers/" + testProviderID.String() + "/appointments/" + testAppointmentID.String() + "/move"
	body := `{"start_time":"2026-03-02T09:00:00Z","new_provider_id":"` + other.String() + `"}`
	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, url, strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotIn.NewProviderID != other {
		t.Fatalf("new provider = %s, want %s", gotIn.NewProviderID, other)
	}
	if gotIn.ProviderID != testProviderID || gotIn.AppointmentID != testAppointmentID {
		t.Fatalf("path ids not forwarded: %+v", gotIn)
	}
}

func TestHandleResize_ForwardsDirectionAndDuration(t *testing.T) {
	var gotIn calendar.ResizeInput
	svc := &fakeCalendarService{
		resizeFn: func(ctx context.Context, in calendar.ResizeInput) (domain.Appointment, error) {
			gotIn = in
			return sampleAppointment(), nil
		},
	}

	url := "/v1/providers/" + testProviderID.String() + "/appointments/" + testAppointmentID.String() + "/resize"
	body := `{"direction":"bottom","duration_minutes":90}`
	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, url, strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotIn.Direction != schedule.ResizeBottom || gotIn.DurationMinutes != 90 {
		t.Fatalf("input = %+v", gotIn)
	}
}

func TestHandleListDay_RequiresDate(t *testing.T) {
	url := "/v1/providers/" + testProviderID.String() + "/appointments"
	rec := serve(t, &fakeCalendarService{}, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleListDay_OK(t *testing.T) {
	var gotDay time.Time
	svc := &fakeCalendarService{
		listDayFn: func(ctx context.Context, providerID uuid.UUID, day time.Time) ([]domain.Appointment, error) {
			gotDay = day
			return []domain.Appointment{sampleAppointment()}, nil
		},
	}

	url := "/v1/providers/" + testProviderID.String() + "/appointments?date=2026-03-02"
	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotDay.Format("2006-01-02") != "2026-03-02" {
		t.Fatalf("day = %v", gotDay)
	}

	var got struct {
		Appointments []appointmentJSON `json:"appointments"`
	}
	decodeBody(t, rec, &got)
	if len(got.Appointments) != 1 {
		t.Fatalf("appointments = %+v", got.Appointments)
	}
}

func TestHandleAvailability_OK(t *testing.T) {
	slot := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := &fakeCalendarService{
		availabilityFn: func(ctx context.Context, providerID uuid.UUID, day time.Time, durationMinutes int) ([]schedule.TimeSlot, error) {
			if durationMinutes != 30 {
				t.Fatalf("duration = %d, want 30", durationMinutes)
			}
			return []schedule.TimeSlot{{Time: slot, ProviderID: providerID, Available: true}}, nil
		},
	}

	url := "/v1/providers/" + testProviderID.String() + "/availability?date=2026-03-02&duration_minutes=30"
	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Slots []slotJSON `json:"slots"`
	}
	decodeBody(t, rec, &got)
	if len(got.Slots) != 1 || got.Slots[0].Time != "2026-03-02T09:00:00Z" || !got.Slots[0].Available {
		t.Fatalf("slots = %+v", got.Slots)
	}
}

func TestHandleAvailability_BadDuration(t *testing.T) {
	url := "/v1/providers/" + testProviderID.String() + "/availability?date=2026-03-02&duration_minutes=zero"
	rec := serve(t, &fakeCalendarService{}, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleDelete_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", err: nil, want: http.StatusNoContent},
		{name: "not found", err: store.ErrNotFound, want: http.StatusNotFound},
		{name: "store conflict", err: store.ErrConflict, want: http.StatusConflict},
		{name: "internal", err: context.DeadlineExceeded, want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCalendarService{
				deleteFn: func(ctx context.Context, providerID, appointmentID uuid.UUID) error {
					return tc.err
				},
			}
			url := "/v1/providers/" + testProviderID.String() + "/appointments/" + testAppointmentID.String()
			rec := serve(t, svc, httptest.NewRequest(http.MethodDelete, url, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestPathUUID_Invalid(t *testing.T) {
	rec := serve(t, &fakeCalendarService{}, httptest.NewRequest(http.MethodGet, "/v1/providers/not-a-uuid/appointments?date=2026-03-02", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
