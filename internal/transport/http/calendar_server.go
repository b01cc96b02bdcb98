package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"practicecal/backend/internal/domain"
	"practicecal/backend/internal/schedule"
	"practicecal/backend/internal/service/calendar"
	"practicecal/backend/internal/store"
)

type calendarService interface {
	Create(ctx context.Context, in calendar.CreateInput) (domain.Appointment, error)
	Move(ctx context.Context, in calendar.MoveInput) (domain.Appointment, error)
	Resize(ctx context.Context, in calendar.ResizeInput) (domain.Appointment, error)
	ListDay(ctx context.Context, providerID uuid.UUID, day time.Time) ([]domain.Appointment, error)
	DayAvailability(ctx context.Context, providerID uuid.UUID, day time.Time, durationMinutes int) ([]schedule.TimeSlot, error)
	Delete(ctx context.Context, providerID, appointmentID uuid.UUID) error
}

type CalendarServer struct {
	svc calendarService
	log *slog.Logger
}

func NewCalendarServer(svc calendarService, log *slog.Logger) *CalendarServer {
	if log == nil {
		log = slog.Default()
	}
	return &CalendarServer{
		svc: svc,
		log: log.With(slog.String("component", "http.calendar")),
	}
}

func (s *CalendarServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/appointments", s.handleCreate)
	mux.HandleFunc("GET /v1/providers/{providerID}/appointments", s.handleListDay)
	mux.HandleFunc("GET /v1/providers/{providerID}/availability", s.handleAvailability)
	mux.HandleFunc("POST /v1/providers/{providerID}/appointments/{appointmentID}/move", s.handleMove)
	mux.HandleFunc("POST /v1/providers/{providerID}/appointments/{appointmentID}/resize", s.handleResize)
	mux.HandleFunc("DELETE /v1/providers/{providerID}/appointments/{appointmentID}", s.handleDelete)
	return mux
}

type appointmentJSON struct {
	ID                 string `json:"id"`
	ProviderID         string `json:"provider_id"`
	ClientID           string `json:"client_id,omitempty"`
	ServiceID          string `json:"service_id,omitempty"`
	Title              string `json:"title"`
	ClientName         string `json:"client_name,omitempty"`
	Color              string `json:"color,omitempty"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	Status             string `json:"status"`
	Type               string `json:"type"`
	CreatedBy          string `json:"created_by"`
	Draggable          bool   `json:"is_draggable"`
	Resizable          bool   `json:"is_resizable"`
	MinDurationMinutes int    `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes int    `json:"max_duration_minutes,omitempty"`
}

func toAppointmentJSON(a domain.Appointment) appointmentJSON {
	out := appointmentJSON{
		ID:                 a.ID.String(),
		ProviderID:         a.ProviderID.String(),
		Title:              a.Title,
		ClientName:         a.ClientName,
		Color:              a.Color,
		StartTime:          a.StartTime.UTC().Format(time.RFC3339),
		EndTime:            a.EndTime.UTC().Format(time.RFC3339),
		Status:             string(a.Status),
		Type:               string(a.Type),
		CreatedBy:          string(a.CreatedBy),
		Draggable:          a.Draggable,
		Resizable:          a.Resizable,
		MinDurationMinutes: a.MinDurationMinutes,
		MaxDurationMinutes: a.MaxDurationMinutes,
	}
	if a.ClientID != uuid.Nil {
		out.ClientID = a.ClientID.String()
	}
	if a.ServiceID != uuid.Nil {
		out.ServiceID = a.ServiceID.String()
	}
	return out
}

type conflictJSON struct {
	Error     string            `json:"error"`
	Conflicts []appointmentJSON `json:"conflicts"`
}

type createRequest struct {
	ProviderID         string `json:"provider_id"`
	ClientID           string `json:"client_id"`
	ServiceID          string `json:"service_id"`
	Title              string `json:"title"`
	ClientName         string `json:"client_name"`
	Color              string `json:"color"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	Type               string `json:"type"`
	CreatedBy          string `json:"created_by"`
	MinDurationMinutes int    `json:"min_duration_minutes"`
	MaxDurationMinutes int    `json:"max_duration_minutes"`
}

func (s *CalendarServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "create"))

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	providerID, err := uuid.Parse(strings.TrimSpace(req.ProviderID))
	if err != nil {
		writeError(w, http.StatusBadRequest, "provider_id must be a UUID")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_time")
		return
	}

	in := calendar.CreateInput{
		ProviderID:         providerID,
		Title:              req.Title,
		ClientName:         req.ClientName,
		Color:              req.Color,
		StartTime:          start,
		EndTime:            end,
		Type:               domain.AppointmentType(req.Type),
		CreatedBy:          domain.CreatedBy(req.CreatedBy),
		MinDurationMinutes: req.MinDurationMinutes,
		MaxDurationMinutes: req.MaxDurationMinutes,
		IdempotencyKey:     idempotencyKey(r),
	}
	if id, err := uuid.Parse(strings.TrimSpace(req.ClientID)); err == nil {
		in.ClientID = id
	}
	if id, err := uuid.Parse(strings.TrimSpace(req.ServiceID)); err == nil {
		in.ServiceID = id
	}

	appt, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("provider_id", appt.ProviderID.String()),
		slog.Time("start_time", appt.StartTime),
	)
	writeJSON(w, http.StatusCreated, toAppointmentJSON(appt))
}

func (s *CalendarServer) handleListDay(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "list_day"))

	providerID, ok := pathUUID(w, r, "providerID")
	if !ok {
		return
	}
	day, ok := queryDate(w, r)
	if !ok {
		return
	}

	appts, err := s.svc.ListDay(r.Context(), providerID, day)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	out := make([]appointmentJSON, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentJSON(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

type slotJSON struct {
	Time       string `json:"time"`
	ProviderID string `json:"provider_id"`
	Available  bool   `json:"available"`
}

func (s *CalendarServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "availability"))

	providerID, ok := pathUUID(w, r, "providerID")
	if !ok {
		return
	}
	day, ok := queryDate(w, r)
	if !ok {
		return
	}
	duration, err := strconv.Atoi(r.URL.Query().Get("duration_minutes"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration_minutes must be a positive integer")
		return
	}

	slots, err := s.svc.DayAvailability(r.Context(), providerID, day, duration)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	out := make([]slotJSON, 0, len(slots))
	for _, sl := range slots {
		out = append(out, slotJSON{
			Time:       sl.Time.UTC().Format(time.RFC3339),
			ProviderID: sl.ProviderID.String(),
			Available:  sl.Available,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

type moveRequest struct {
	StartTime     string `json:"start_time"`
	NewProviderID string `json:"new_provider_id"`
}

func (s *CalendarServer) handleMove(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "move"))

	providerID, ok := pathUUID(w, r, "providerID")
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "appointmentID")
	if !ok {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time")
		return
	}

	in := calendar.MoveInput{
		ProviderID:    providerID,
		AppointmentID: appointmentID,
		NewStart:      start,
	}
	if req.NewProviderID != "" {
		id, err := uuid.Parse(strings.TrimSpace(req.NewProviderID))
		if err != nil {
			writeError(w, http.StatusBadRequest, "new_provider_id must be a UUID")
			return
		}
		in.NewProviderID = id
	}

	appt, err := s.svc.Move(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	log.Info(
		"appointment moved",
		slog.String("appointment_id", appt.ID.String()),
		slog.Time("start_time", appt.StartTime),
		slog.Time("end_time", appt.EndTime),
	)
	writeJSON(w, http.StatusOK, toAppointmentJSON(appt))
}

type resizeRequest struct {
	Direction       string `json:"direction"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *CalendarServer) handleResize(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "resize"))

	providerID, ok := pathUUID(w, r, "providerID")
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "appointmentID")
	if !ok {
		return
	}

	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	appt, err := s.svc.Resize(r.Context(), calendar.ResizeInput{
		ProviderID:      providerID,
		AppointmentID:   appointmentID,
		Direction:       schedule.ResizeDirection(req.Direction),
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	log.Info(
		"appointment resized",
		slog.String("appointment_id", appt.ID.String()),
		slog.Time("start_time", appt.StartTime),
		slog.Time("end_time", appt.EndTime),
	)
	writeJSON(w, http.StatusOK, toAppointmentJSON(appt))
}

func (s *CalendarServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "delete"))

	providerID, ok := pathUUID(w, r, "providerID")
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "appointmentID")
	if !ok {
		return
	}

	if err := s.svc.Delete(r.Context(), providerID, appointmentID); err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	log.Info("appointment deleted", slog.String("appointment_id", appointmentID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *CalendarServer) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *calendar.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err))
		writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}

	var cErr *calendar.ConflictError
	if errors.As(err, &cErr) {
		log.Info("schedule conflict", slog.String("reason", cErr.Error()), slog.Int("conflicts", len(cErr.Result.Conflicts)))
		conflicts := make([]appointmentJSON, 0, len(cErr.Result.Conflicts))
		for _, c := range cErr.Result.Conflicts {
			conflicts = append(conflicts, toAppointmentJSON(c))
		}
		writeJSON(w, http.StatusConflict, conflictJSON{Error: cErr.Error(), Conflicts: conflicts})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "the time slot is no longer free")
		return
	}
	if errors.Is(err, store.ErrIdempotencyConflict) {
		writeError(w, http.StatusConflict, "this request key was already used for a different appointment")
		return
	}

	log.Error("request failed", slog.Any("err", err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func idempotencyKey(r *http.Request) string {
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = r.Header.Get("X-Idempotency-Key")
	}
	return strings.TrimSpace(key)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
