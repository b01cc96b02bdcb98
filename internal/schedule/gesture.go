package schedule

import "errors"

type GesturePhase string

const (
	GestureIdle      GesturePhase = "idle"
	GestureDragging  GesturePhase = "dragging"
	GestureCommitted GesturePhase = "committed"
	GestureCancelled GesturePhase = "cancelled"
)

var ErrGesturePhase = errors.New("invalid gesture phase transition")

// Gesture tracks one live resize interaction. The callers' UI layer
// owns one per active handle; a finished gesture cannot be reused.
type Gesture struct {
	phase        GesturePhase
	direction    ResizeDirection
	liveDuration int
}

func NewGesture() *Gesture {
	return &Gesture{phase: GestureIdle}
}

func (g *Gesture) Phase() GesturePhase { return g.phase }

func (g *Gesture) Direction() ResizeDirection { return g.direction }

// LiveDurationMinutes is the most recent uncommitted target duration.
func (g *Gesture) LiveDurationMinutes() int { return g.liveDuration }

func (g *Gesture) Begin(direction ResizeDirection, currentDurationMinutes int) error {
	if g.phase != GestureIdle {
		return ErrGesturePhase
	}
	g.phase = GestureDragging
	g.direction = direction
	g.liveDuration = currentDurationMinutes
	return nil
}

func (g *Gesture) Update(targetDurationMinutes int) error {
	if g.phase != GestureDragging {
		return ErrGesturePhase
	}
	g.liveDuration = targetDurationMinutes
	return nil
}

func (g *Gesture) Commit() error {
	if g.phase != GestureDragging {
		return ErrGesturePhase
	}
	g.phase = GestureCommitted
	return nil
}

func (g *Gesture) Cancel() error {
	if g.phase != GestureDragging {
		return ErrGesturePhase
	}
	g.phase = GestureCancelled
	return nil
}

// Cursor is the pointer hint for the gesture's current state.
func (g *Gesture) Cursor() string {
	return Cursor(g.direction, g.phase == GestureDragging)
}
