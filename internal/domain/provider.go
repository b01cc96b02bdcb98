package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BreakWindow is a non-bookable interval inside a working day. Start
// and End are local clock times in "H:MM" form ("12:00", "9:30").
type BreakWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

type DaySchedule struct {
	Start  string        `json:"start"`
	End    string        `json:"end"`
	Breaks []BreakWindow `json:"breaks,omitempty"`
}

// WorkingHours maps lowercase weekday names ("monday", ...) to the
// provider's schedule for that day. A missing day means the provider
// does not work it.
type WorkingHours map[string]DaySchedule

func weekdayKey(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// ScheduleFor returns the schedule for a weekday, false if the
// provider does not work that day.
func (wh WorkingHours) ScheduleFor(wd time.Weekday) (DaySchedule, bool) {
	ds, ok := wh[weekdayKey(wd)]
	return ds, ok
}

type Provider struct {
	bun.BaseModel `bun:"table:providers"`

	ID              uuid.UUID    `bun:"id,pk,type:uuid"`
	Name            string       `bun:"name,notnull"`
	ServicesOffered []uuid.UUID  `bun:"services_offered,array"`
	WorkingHours    WorkingHours `bun:"working_hours,type:jsonb"`
	CreatedAt       time.Time    `bun:"created_at,notnull"`
	UpdatedAt       time.Time    `bun:"updated_at,notnull"`
}

func (p *Provider) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			p.ID = id
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}

func (p Provider) Offers(serviceID uuid.UUID) bool {
	for _, id := range p.ServicesOffered {
		if id == serviceID {
			return true
		}
	}
	return false
}

// ParseClockTime converts an "H:MM" clock string to minutes since
// midnight. Hours 0-23, minutes 0-59.
func ParseClockTime(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return hour*60 + minute, nil
}

// MinuteOfDay returns t's offset from its own midnight, in minutes.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
