package schedule

import (
	"errors"
	"testing"
)

func TestGesture_Lifecycle(t *testing.T) {
	g := NewGesture()
	if g.Phase() != GestureIdle {
		t.Fatalf("phase = %q, want idle", g.Phase())
	}
	if g.Cursor() != "resize-south" {
		t.Fatalf("idle cursor = %q", g.Cursor())
	}

	if err := g.Begin(ResizeTop, 60); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if g.Phase() != GestureDragging || g.Direction() != ResizeTop {
		t.Fatalf("phase = %q direction = %q", g.Phase(), g.Direction())
	}
	if g.Cursor() != "resize-vertical" {
		t.Fatalf("dragging cursor = %q", g.Cursor())
	}

	if err := g.Update(90); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if g.LiveDurationMinutes() != 90 {
		t.Fatalf("live duration = %d, want 90", g.LiveDurationMinutes())
	}

	if err := g.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if g.Phase() != GestureCommitted {
		t.Fatalf("phase = %q, want committed", g.Phase())
	}
}

func TestGesture_InvalidTransitions(t *testing.T) {
	g := NewGesture()
	if err := g.Update(30); !errors.Is(err, ErrGesturePhase) {
		t.Fatalf("Update on idle gesture: err = %v", err)
	}
	if err := g.Commit(); !errors.Is(err, ErrGesturePhase) {
		t.Fatalf("Commit on idle gesture: err = %v", err)
	}

	if err := g.Begin(ResizeBottom, 60); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if err := g.Begin(ResizeBottom, 60); !errors.Is(err, ErrGesturePhase) {
		t.Fatalf("double Begin: err = %v", err)
	}

	if err := g.Cancel(); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if err := g.Commit(); !errors.Is(err, ErrGesturePhase) {
		t.Fatalf("Commit after Cancel: err = %v", err)
	}
}
