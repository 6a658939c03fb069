package timekeeper

import (
	"time"

	"desktimer/internal/core/model"
)

// View is the render state handed to a RenderSink.
type View struct {
	DisplayText  string
	RingFraction float64
	Running      bool
	Mode         model.Mode
	Remaining    time.Duration
	Duration     time.Duration
}

// Completion describes a session whose deadline was crossed.
type Completion struct {
	Mode   model.Mode
	EndsAt time.Time
}

// RenderSink receives a View after every state change.
// Implementations must not call back into the TimeKeeper.
type RenderSink interface {
	Render(view View)
}

// CompletionSink receives each genuine deadline crossing once.
// Implementations must not call back into the TimeKeeper.
type CompletionSink interface {
	Complete(completion Completion)
}

// RenderFunc adapts a function to RenderSink.
type RenderFunc func(View)

// Render calls fn(view).
func (fn RenderFunc) Render(view View) { fn(view) }

// CompletionFunc adapts a function to CompletionSink.
type CompletionFunc func(Completion)

// Complete calls fn(completion).
func (fn CompletionFunc) Complete(completion Completion) { fn(completion) }
